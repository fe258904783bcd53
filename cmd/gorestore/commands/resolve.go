package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gorestore/cmd/gorestore/cli"
	"github.com/willibrandon/gorestore/cmd/gorestore/config"
	"github.com/willibrandon/gorestore/cmd/gorestore/output"
	"github.com/willibrandon/gorestore/core/resolver"
	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/restore"
)

type resolveOptions struct {
	frameworks     []string
	runtimes       []string
	packages       string
	sources        []string
	configFile     string
	ignoreFailed   bool
	lock           bool
	unlock         bool
	noWrite        bool
	concurrent     bool
	maxConcurrency int
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(env *cli.Env) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve [<PROJECT>]",
		Short: "Resolve dependencies and write project.lock.json",
		Long: `Resolves the dependencies of a project.json for every target framework
and writes project.lock.json next to it.

PROJECT is a project.json or the directory holding one; it defaults to the
current directory. Packages are taken from the packages folder first, then
from each file-system source.

Examples:
  gorestore resolve
  gorestore resolve src/App/project.json --framework dnxcore50
  gorestore resolve --packages ~/.dnx/packages --source /feeds/local
  gorestore resolve --runtime win7-x64 --lock`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectPath := "."
			if len(args) > 0 {
				projectPath = args[0]
			}
			restoreOpts, err := opts.restoreOptions(env, projectPath)
			if err != nil {
				return err
			}
			return runResolve(cmd, env, projectPath, restoreOpts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.frameworks, "framework", "f", nil, "Restrict the restore to these target frameworks (e.g. dnx451)")
	cmd.Flags().StringSliceVarP(&opts.runtimes, "runtime", "r", nil, "Add a runtime-specific target per framework (e.g. win7-x64)")
	cmd.Flags().StringVar(&opts.packages, "packages", "", "Packages folder")
	cmd.Flags().StringSliceVarP(&opts.sources, "source", "s", nil, "File-system package source(s) to use")
	cmd.Flags().StringVar(&opts.configFile, "configfile", "", "NuGet configuration file")
	cmd.Flags().BoolVar(&opts.ignoreFailed, "ignore-failed-sources", false, "Treat package sources that cannot be read as empty")
	cmd.Flags().BoolVar(&opts.lock, "lock", false, "Write a locked lock file")
	cmd.Flags().BoolVar(&opts.unlock, "unlock", false, "Ignore a locked lock file and write an unlocked one")
	cmd.Flags().BoolVar(&opts.noWrite, "no-write", false, "Resolve and check without writing the lock file")
	cmd.Flags().BoolVar(&opts.concurrent, "concurrent", false, "Resolve each level of the graph concurrently")
	cmd.Flags().IntVar(&opts.maxConcurrency, "max-concurrency", 0, "Maximum number of targets walked at once")
	cmd.MarkFlagsMutuallyExclusive("lock", "unlock")

	return cmd
}

func runResolve(cmd *cobra.Command, env *cli.Env, projectPath string, opts restore.Options) error {
	status := output.NewStatus(env.Console.Err(), "Resolve")
	result, err := restore.NewRestorer(opts).Restore(cmd.Context(), projectPath)
	status.Stop()
	if err != nil {
		return err
	}

	output.ReportRestore(env.Console, result)
	if !result.Success() {
		return ErrReported
	}
	return nil
}

// restoreOptions merges flags over .gorestore.yaml over NuGet.config.
func (o *resolveOptions) restoreOptions(env *cli.Env, projectPath string) (restore.Options, error) {
	settings := env.Settings
	opts := restore.Options{
		PackagesFolder:      o.packages,
		Sources:             o.sources,
		IgnoreFailedSources: o.ignoreFailed,
		Runtimes:            o.runtimes,
		Lock:                o.lock,
		Unlock:              o.unlock,
		NoWrite:             o.noWrite,
		MaxConcurrency:      o.maxConcurrency,
		Platform:            DefaultPlatform(settings),
		Logger:              env.Logger,
	}

	for _, name := range o.frameworks {
		fw, err := frameworks.ParseFramework(name)
		if err != nil {
			return opts, fmt.Errorf("invalid framework %q: %w", name, err)
		}
		opts.Frameworks = append(opts.Frameworks, fw)
	}

	if o.concurrent || settings.Mode == "concurrent" {
		opts.Mode = resolver.ModeConcurrent
	}
	if opts.MaxConcurrency == 0 {
		opts.MaxConcurrency = settings.MaxConcurrency
	}
	if len(opts.Runtimes) == 0 {
		opts.Runtimes = settings.Runtimes
	}
	if opts.PackagesFolder == "" {
		opts.PackagesFolder = settings.PackagesFolder()
	}
	if len(opts.Sources) == 0 {
		opts.Sources = settings.SourceFolders()
	}

	if opts.PackagesFolder != "" && len(opts.Sources) > 0 {
		return opts, nil
	}
	nugetConfig, err := o.loadNuGetConfig(projectPath)
	if err != nil {
		return opts, err
	}
	if nugetConfig == nil {
		return opts, nil
	}
	if opts.PackagesFolder == "" {
		opts.PackagesFolder = nugetConfig.GlobalPackagesFolder()
	}
	if len(opts.Sources) == 0 {
		opts.Sources = nugetConfig.FolderSources()
	}
	return opts, nil
}

func (o *resolveOptions) loadNuGetConfig(projectPath string) (*config.NuGetConfig, error) {
	if o.configFile != "" {
		return config.LoadNuGetConfig(o.configFile)
	}
	dir := projectPath
	if info, err := os.Stat(projectPath); err != nil || !info.IsDir() {
		dir = filepath.Dir(projectPath)
	}
	return config.LoadForProject(dir)
}
