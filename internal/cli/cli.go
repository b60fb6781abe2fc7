// Package cli implements the stackbundle command-line interface.
//
// # Commands
//
//   - resolve: classify a module's dependency tree and write back the
//     bundle headers
//   - range: turn a version into an OSGi version range
//   - match: test coordinates against a filter expression
//   - report: inspect stored resolution reports
//   - cache: manage the resolved-tree cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context and retrieved with loggerFromContext.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbundle/pkg/buildinfo"
	"github.com/matzehuels/stackbundle/pkg/observability"
	"github.com/matzehuels/stackbundle/pkg/observability/prom"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stackbundle"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath  string
	envFiles    []string
	metricsFile string
	metrics     *prom.Metrics
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stackbundle classifies dependency trees into OSGi bundle headers",
		Long: `Stackbundle walks a module's resolved dependency tree and decides, per
dependency, whether it is shared with other bundles, embedded into the
bundle, or left out. The decision is written back as Bundle-ClassPath,
Require-Bundle and Import-Package headers.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if c.metricsFile != "" {
				c.metrics = prom.New()
				c.metrics.Install()
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.flushMetrics()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "config file (default ./"+appName+".toml if present)")
	flags.StringSliceVar(&c.envFiles, "env-file", nil, "dotenv files loaded before reading STACKBUNDLE_* variables (default .env)")
	flags.StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.rangeCommand())
	root.AddCommand(c.matchCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// flushMetrics writes the collected metrics and uninstalls the hooks.
func (c *CLI) flushMetrics() error {
	if c.metrics == nil {
		return nil
	}
	defer func() {
		observability.Reset()
		c.metrics = nil
	}()
	if err := c.metrics.WriteTextfile(c.metricsFile); err != nil {
		return fmt.Errorf("write metrics %s: %w", c.metricsFile, err)
	}
	c.Logger.Debug("wrote metrics", "file", c.metricsFile)
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stackbundle/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
