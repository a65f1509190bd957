// Command pluginman manages script plugins for a Krita-style host:
// listing, installing from zip archives, enabling, disabling and
// uninstalling.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/easelhq/pluginman/pkg/config"
	"github.com/easelhq/pluginman/pkg/host"
	"github.com/easelhq/pluginman/pkg/host/luahost"
	"github.com/easelhq/pluginman/pkg/plugins"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	verbose        bool
	forceOverwrite bool
	assumeYes      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pluginman",
	Short: "Manage script plugins",
	Long: `pluginman discovers, installs and manages script plugins.

Plugins are distributed as zip archives containing a desktop-entry
manifest and a plugin directory with an entry module. Installed plugins
are enabled or disabled through a persisted settings file, the same way
the host application would.`,
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed plugins",
	RunE:  runList,
}

var infoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Show details for an installed plugin",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var installCmd = &cobra.Command{
	Use:   "install <archive>",
	Short: "Install a plugin from a zip archive",
	Long: `Install a plugin from a zip archive and enable it.

The archive must contain exactly one .desktop manifest and an entry
module under the plugin's directory. If the plugin is already installed
you are asked before it is overwritten, unless --force is given.

Examples:
  pluginman install tenbrushes.zip
  pluginman install --force tenbrushes.zip`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <id>",
	Short: "Remove an installed plugin",
	Long: `Remove a plugin entirely: its files, its action definition and its
enabled setting. Asks for confirmation unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

var enableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable an installed plugin",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnable,
}

var disableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable an installed plugin",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisable,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	installCmd.Flags().BoolVarP(&forceOverwrite, "force", "f", false, "Overwrite an existing install without asking")
	uninstallCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

// app bundles the wired-up components every command needs.
type app struct {
	paths     config.Paths
	settings  *host.FileSettings
	host      *luahost.Host
	registry  *plugins.Registry
	lifecycle *plugins.Lifecycle
	installer *plugins.Installer
	log       *logrus.Logger
}

func newApp() (*app, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	paths, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}

	settings, err := host.OpenFileSettings(filepath.Join(paths.AppDataDir, "pluginmanrc"))
	if err != nil {
		return nil, err
	}

	h := luahost.New(luahost.WithLogger(log), luahost.WithSettings(settings))

	registry := plugins.NewRegistry(paths, settings, log)
	if err := registry.Refresh(); err != nil {
		return nil, err
	}

	lifecycle := plugins.NewLifecycle(paths, h, log)
	installer := plugins.NewInstaller(paths, h, lifecycle, log)

	// without a terminal there is nobody to ask, so Ask resolves to no
	var confirmer plugins.Confirmer = plugins.StaticConfirmer(plugins.DecisionNo)
	if info, err := os.Stdin.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
		confirmer = &terminalConfirmer{in: bufio.NewReader(os.Stdin)}
	}
	lifecycle.SetConfirmer(confirmer)
	installer.SetConfirmer(confirmer)

	return &app{
		paths:     paths,
		settings:  settings,
		host:      h,
		registry:  registry,
		lifecycle: lifecycle,
		installer: installer,
		log:       log,
	}, nil
}

func (a *app) close() {
	a.host.Close()
}

// terminalConfirmer asks yes/no questions on the controlling terminal.
type terminalConfirmer struct {
	in *bufio.Reader
}

func (c *terminalConfirmer) ConfirmOverwrite(rec *plugins.Record) plugins.Decision {
	return c.ask(fmt.Sprintf("Plugin %s is already installed. Overwrite? [y/N] ", rec.ID))
}

func (c *terminalConfirmer) ConfirmUninstall(rec *plugins.Record) plugins.Decision {
	return c.ask(fmt.Sprintf("Remove plugin %s and all of its files? [y/N] ", rec.ID))
}

func (c *terminalConfirmer) ask(prompt string) plugins.Decision {
	fmt.Fprint(os.Stderr, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil {
		return plugins.DecisionNo
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return plugins.DecisionYes
	default:
		return plugins.DecisionNo
	}
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	records := a.registry.All()
	if len(records) == 0 {
		fmt.Println("No plugins installed.")
		return nil
	}

	fmt.Printf("%-24s %-8s %s\n", "ID", "STATE", "NAME")
	for _, rec := range records {
		state := "disabled"
		if rec.Active {
			state = "enabled"
		}
		fmt.Printf("%-24s %-8s %s\n", rec.ID, state, rec.Name)
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	rec, err := a.registry.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", rec.ID)
	fmt.Printf("Name:     %s\n", rec.Name)
	fmt.Printf("State:    %s\n", stateName(rec.Active))
	fmt.Printf("Path:     %s\n", rec.InstallPath)
	fmt.Printf("Manifest: %s\n", rec.ManifestPath)
	if rec.ManualPath != "" {
		fmt.Printf("Manual:   %s\n", rec.ManualPath)
	}
	if rec.Description != "" {
		fmt.Println()
		fmt.Println(rec.Description)
	}
	return nil
}

func stateName(active bool) string {
	if active {
		return "enabled"
	}
	return "disabled"
}

func runInstall(cmd *cobra.Command, args []string) error {
	archive := args[0]
	if _, err := os.Stat(archive); os.IsNotExist(err) {
		return fmt.Errorf("archive does not exist: %s", archive)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	overwrite := plugins.DecisionAsk
	if forceOverwrite {
		overwrite = plugins.DecisionYes
	}

	rec, err := a.installer.Install(archive, overwrite)
	if err != nil {
		return err
	}
	if err := a.settings.Save(); err != nil {
		return err
	}

	fmt.Printf("Installed and enabled plugin %s (%s)\n", rec.ID, rec.Name)
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	rec, err := a.registry.Get(args[0])
	if err != nil {
		return err
	}

	confirm := plugins.DecisionAsk
	if assumeYes {
		confirm = plugins.DecisionYes
	}

	id := rec.ID
	removed, err := a.lifecycle.Uninstall(rec, confirm)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Println("Cancelled.")
		return nil
	}
	if err := a.settings.Save(); err != nil {
		return err
	}

	if err := a.registry.Remove(id); err != nil {
		return err
	}
	fmt.Printf("Uninstalled plugin %s\n", id)
	return nil
}

func runEnable(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	rec, err := a.registry.Get(args[0])
	if err != nil {
		return err
	}
	if rec.Active {
		fmt.Printf("Plugin %s is already enabled\n", rec.ID)
		return nil
	}

	if err := a.lifecycle.Activate(rec); err != nil {
		return err
	}
	if err := a.settings.Save(); err != nil {
		return err
	}

	fmt.Printf("Enabled plugin %s\n", rec.ID)
	return nil
}

func runDisable(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	rec, err := a.registry.Get(args[0])
	if err != nil {
		return err
	}
	if !rec.Active {
		fmt.Printf("Plugin %s is already disabled\n", rec.ID)
		return nil
	}

	if err := a.lifecycle.Deactivate(rec); err != nil {
		return err
	}
	if err := a.settings.Save(); err != nil {
		return err
	}

	fmt.Printf("Disabled plugin %s\n", rec.ID)
	return nil
}
