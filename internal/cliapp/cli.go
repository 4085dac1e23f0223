package cliapp

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set via build-time ldflags.
var Version = "dev"

const defaultConfigPath = "./blackdwarf.toml"

type rootOptions struct {
	configPath  string
	module      string
	dryRun      bool
	infer       bool
	noFormat    bool
	createAll   bool
	watch       bool
	ui          bool
	verbose     bool
	metricsAddr string
}

// exitCodeError carries a non-zero process status out of a command whose
// output was already printed; Execute unwraps it silently.
type exitCodeError struct{ code int }

func (e exitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "blackdwarf [flags] <target>",
		Short: "Rewrite Python wildcard imports into explicit import lists",
		Long: `BlackDwarf rewrites "from module import *" statements into explicit
minimal import lists without changing program behavior. Point it at a Python
file or a directory; add --watch to keep narrowing imports as files change.`,
		Version:       Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.verbose, opts.watch && opts.ui)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "Path to config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.Flags().StringVarP(&opts.module, "module", "m", "", "Only narrow wildcard imports of this module")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "d", false, "Don't write changes to disk; print a diff instead")
	cmd.Flags().BoolVarP(&opts.infer, "infer-imports", "i", true, "Infer __all__ from top-level bindings when missing")
	cmd.Flags().BoolVar(&opts.noFormat, "no-format", false, "Don't run the formatter after rewriting")
	cmd.Flags().BoolVar(&opts.createAll, "create-all", false, "Write inferred __all__ lists into dependency modules")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Stay resident and reprocess files as they change")
	cmd.Flags().BoolVar(&opts.ui, "ui", false, "With --watch: live terminal dashboard")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "With --watch: serve /metrics and /health on this address")

	cmd.AddCommand(newHistoryCommand(opts))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blackdwarf %s\n", Version)
		},
	}
}

// Execute runs the root command. Summaries print their own findings, so an
// exitCodeError only sets the process status.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		var ec exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
