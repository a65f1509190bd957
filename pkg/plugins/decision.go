package plugins

// Decision is a three-valued confirmation input for destructive
// operations. DecisionAsk delegates the choice to a Confirmer; by the time
// the engine acts the decision has been resolved to yes or no.
type Decision int

const (
	// DecisionAsk delegates to the configured Confirmer.
	DecisionAsk Decision = iota
	// DecisionYes proceeds without asking.
	DecisionYes
	// DecisionNo aborts without touching any state.
	DecisionNo
)

// String returns a string representation of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionAsk:
		return "ask"
	case DecisionYes:
		return "yes"
	case DecisionNo:
		return "no"
	default:
		return "unknown"
	}
}

// Confirmer resolves DecisionAsk by consulting the user (or policy).
// Implementations must return DecisionYes or DecisionNo.
type Confirmer interface {
	ConfirmOverwrite(rec *Record) Decision
	ConfirmUninstall(rec *Record) Decision
}

// StaticConfirmer answers every question with a fixed decision. Useful for
// headless operation.
type StaticConfirmer Decision

// ConfirmOverwrite returns the fixed decision.
func (c StaticConfirmer) ConfirmOverwrite(rec *Record) Decision { return Decision(c) }

// ConfirmUninstall returns the fixed decision.
func (c StaticConfirmer) ConfirmUninstall(rec *Record) Decision { return Decision(c) }
