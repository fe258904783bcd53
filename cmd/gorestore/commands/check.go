package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gorestore/cmd/gorestore/cli"
	"github.com/willibrandon/gorestore/cmd/gorestore/output"
	"github.com/willibrandon/gorestore/compatibility"
	"github.com/willibrandon/gorestore/lockfile"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(env *cli.Env) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check [<LOCKFILE>]",
		Short: "Check a lock file for compatibility issues",
		Long: `Checks every target of an existing project.lock.json for packages that
cannot be used on the target framework.

LOCKFILE is a project.lock.json or the directory holding one; it defaults
to the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runCheck(cmd, env, path, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any issue is found")
	return cmd
}

func runCheck(cmd *cobra.Command, env *cli.Env, path string, strict bool) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, lockfile.FileName)
	}

	lf, err := lockfile.ReadFile(cmd.Context(), path)
	if err != nil {
		return err
	}

	checker := compatibility.NewChecker(compatibility.WithLogger(env.Logger))
	issues := checker.Check(cmd.Context(), lf, nil)
	output.ReportIssues(env.Console, issues)

	if strict && len(issues) > 0 {
		return ErrReported
	}
	return nil
}
