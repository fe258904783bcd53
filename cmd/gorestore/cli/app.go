package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gorestore/cmd/gorestore/output"
)

var flags GlobalFlags

var rootCmd = &cobra.Command{
	Use:   "gorestore",
	Short: "Resolve project.json dependencies into project.lock.json",
	Long: `gorestore resolves the dependencies of a project.json for every target
framework, writes project.lock.json and reports compatibility problems.

Settings are read from .gorestore.yaml; flags take precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return Environment.Setup(cmd.Context(), flags)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return Environment.Shutdown(cmd.Context())
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Show help when no command is provided
		_ = cmd.Help()
	},
}

// Environment is shared by every CLI command.
var Environment *Env

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	Environment = NewEnv(output.DefaultConsole())

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.Verbosity, "verbosity", "v", "normal", "Display verbosity: q[uiet], n[ormal], d[etailed] or diag[nostic]")
	pf.StringVar(&flags.SettingsFile, "settings", "", "Settings file to use instead of the nearest .gorestore.yaml")
	pf.StringVar(&flags.LogLevel, "log-level", "", "Log level: verbose, debug, info, warn or error")
	pf.StringVar(&flags.Trace, "trace", "", "Trace exporter: none, stdout or otlp")
	pf.StringVar(&flags.TraceEndpoint, "trace-endpoint", "", "OTLP collector gRPC endpoint")
	pf.StringVar(&flags.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
}

// SetupVersion configures version information after variables are set
func SetupVersion() {
	rootCmd.SetVersionTemplate(GetFullVersion() + "\n")
	rootCmd.Version = GetVersion()
}

// AddCommand adds a command to the root command
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
