package host

import "sync"

// Menu is a concrete in-memory MenuNode. It backs the test host and any
// embedding application that builds its menu tree programmatically.
type Menu struct {
	mu       sync.Mutex
	name     string
	children []*Menu
	actions  []Action
}

// NewMenu creates a menu node with the given object name.
func NewMenu(objectName string) *Menu {
	return &Menu{name: objectName}
}

// ObjectName returns the node's object name.
func (m *Menu) ObjectName() string {
	return m.name
}

// AddMenu creates and attaches a child submenu, returning it for chaining.
func (m *Menu) AddMenu(objectName string) *Menu {
	child := NewMenu(objectName)
	m.mu.Lock()
	m.children = append(m.children, child)
	m.mu.Unlock()
	return child
}

// Child returns the direct submenu with the given object name, or nil.
func (m *Menu) Child(objectName string) MenuNode {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, child := range m.children {
		if child.name == objectName {
			return child
		}
	}
	return nil
}

// AddAction appends an action to this menu.
func (m *Menu) AddAction(a Action) {
	m.mu.Lock()
	m.actions = append(m.actions, a)
	m.mu.Unlock()
}

// Actions returns the actions attached to this menu.
func (m *Menu) Actions() []Action {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Action, len(m.actions))
	copy(out, m.actions)
	return out
}

// SimpleAction is a concrete Action carrying an object name and a flat
// property map.
type SimpleAction struct {
	name  string
	props map[string]string
}

// NewSimpleAction creates an action. props may be nil.
func NewSimpleAction(objectName string, props map[string]string) *SimpleAction {
	return &SimpleAction{name: objectName, props: props}
}

// ObjectName returns the action's object name.
func (a *SimpleAction) ObjectName() string {
	return a.name
}

// Property returns a property value and whether it is set.
func (a *SimpleAction) Property(name string) (string, bool) {
	v, ok := a.props[name]
	return v, ok
}
