// Package cli implements the clauselens command-line interface: document
// extraction, ambiguity analysis, conflict detection, question answering, and
// schema migration.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/clauselens/clauselens/internal/config"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
}

// appFactory builds the wired application for one command run.  Tests swap in
// a factory backed by in-memory stores.
type appFactory func(ctx context.Context) (*App, error)

// NewRootCommand creates the root command.  A nil factory wires the real
// infrastructure from configuration.
func NewRootCommand(factory appFactory) *cobra.Command {
	opts := &RootOptions{}
	if factory == nil {
		factory = func(ctx context.Context) (*App, error) {
			return buildApp(ctx, opts)
		}
	}

	cmd := &cobra.Command{
		Use:     "clauselens",
		Short:   "ClauseLens — contract clause extraction, risk analysis, and question answering",
		Long:    "ClauseLens ingests contract documents, segments them into typed clauses,\nscores clause ambiguity and risk, detects conflicts within and across contract\nversions, and answers natural-language questions with clause-level evidence.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./clauselens.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")

	cmd.AddCommand(
		newExtractCmd(factory, opts),
		newAnalyzeCmd(factory, opts),
		newConflictsCmd(factory, opts),
		newAskCmd(factory, opts),
		newQuestionsCmd(factory, opts),
		newContractsCmd(factory, opts),
		newMigrateCmd(opts),
	)
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	cmd := NewRootCommand(nil)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
		return err
	}
	return nil
}

// loadConfig resolves configuration: an explicit path wins, then the first
// config file found on the search path, then pure environment loading.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./clauselens.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".clauselens", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/clauselens/config.yaml")

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return config.Load(p)
		}
	}
	return config.LoadFromEnv()
}

// printResult writes data to the command's stdout in the selected format.
// Text output uses the value's String method when it has one.
func printResult(cmd *cobra.Command, opts *RootOptions, data interface{}) error {
	if opts.OutputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}
