package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DavidJovino/deivao-recon/internal/executil"
	"github.com/DavidJovino/deivao-recon/internal/installer"
	"github.com/DavidJovino/deivao-recon/internal/tools"
)

var (
	installMissingFlag bool
	installSystemFlag  bool
)

var installCmd = &cobra.Command{
	Use:   "install [tool...]",
	Short: "Install catalog tools",
	Long:  "Install the named tools, or everything the availability check reports\nmissing. This is the only command that changes the system.",
	RunE:  runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installMissingFlag, "missing", false, "install every missing catalog tool")
	installCmd.Flags().BoolVar(&installSystemFlag, "system-deps", false, "also install the apt dependency set")
}

func runInstall(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !installMissingFlag && !installSystemFlag {
		return fmt.Errorf("name tools to install, or pass --missing")
	}

	ctx := cmd.Context()
	runner := executil.New(logger)
	catalog := tools.Default()

	inst, err := installer.New(catalog, runner, installer.Options{
		ToolsDir: cfg.ToolsDir,
		Logger:   logger,
	})
	if err != nil {
		return setupFailure(err)
	}

	var errs []error
	if installSystemFlag {
		if err := inst.InstallSystemDeps(ctx); err != nil {
			logger.Warn("system dependencies failed", "error", err)
			errs = append(errs, err)
		}
	}

	names := args
	if installMissingFlag {
		checker := tools.NewChecker(catalog, runner, logger)
		rep := checker.CheckAll(ctx)
		for _, name := range rep.Missing {
			if d, ok := catalog.Get(name); ok && d.Install == nil {
				logger.Debug("no automated install", "tool", name)
				continue
			}
			names = append(names, name)
		}
	}

	if len(names) > 0 {
		if err := inst.InstallMissing(ctx, dedupe(names)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
