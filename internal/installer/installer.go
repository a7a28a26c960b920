// Package installer puts missing recon tools onto the system, one
// strategy per install method. Detection lives in internal/tools and
// never installs anything; this package is only reached from the
// explicit install command.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/DavidJovino/deivao-recon/internal/executil"
	"github.com/DavidJovino/deivao-recon/internal/output"
	"github.com/DavidJovino/deivao-recon/internal/tools"
)

const (
	defaultToolsDir = "~/tools"

	installTimeout    = 300 * time.Second
	aptUpdateTimeout  = 300 * time.Second
	systemDepsTimeout = 600 * time.Second
)

var debianVersionFile = "/etc/debian_version"

// Strategy installs one tool. Implementations shell out through the
// shared executor and never elevate privileges on their own.
type Strategy interface {
	Name() string
	Install(ctx context.Context, d tools.Descriptor) error
}

// Options configure an Installer.
type Options struct {
	ToolsDir string // where cloned repos and go binaries land; ~/tools when empty
	Logger   *log.Logger
}

// Installer maps catalog descriptors to install strategies. The mapping
// is fixed at construction: a descriptor naming a method no strategy
// covers fails New, not some later Install call.
type Installer struct {
	catalog    *tools.Catalog
	runner     tools.Runner
	strategies map[string]Strategy
	toolsDir   string
	log        *log.Logger
}

func New(catalog *tools.Catalog, runner tools.Runner, opts Options) (*Installer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	toolsDir := opts.ToolsDir
	if toolsDir == "" {
		toolsDir = tools.ExpandHome(defaultToolsDir)
	}

	strategies := map[string]Strategy{
		"go":   goInstall{runner: runner, toolsDir: toolsDir},
		"pip":  pipInstall{runner: runner},
		"apt":  aptInstall{runner: runner},
		"git":  shellInstall{runner: runner, toolsDir: toolsDir, method: "git"},
		"curl": shellInstall{runner: runner, toolsDir: toolsDir, method: "curl"},
	}
	for _, name := range catalog.Names() {
		d, _ := catalog.Get(name)
		if d.Install == nil {
			continue
		}
		if _, ok := strategies[d.Install.Method]; !ok {
			return nil, fmt.Errorf("tool %s: no install strategy for method %q", name, d.Install.Method)
		}
	}

	return &Installer{
		catalog:    catalog,
		runner:     runner,
		strategies: strategies,
		toolsDir:   toolsDir,
		log:        logger,
	}, nil
}

// Install installs one tool by name. An already-available tool is a
// no-op, and availability is verified again after the strategy ran.
func (ins *Installer) Install(ctx context.Context, name string) error {
	d, ok := ins.catalog.Get(name)
	if !ok {
		return fmt.Errorf("unknown tool %q", name)
	}
	if ins.available(ctx, d) {
		ins.log.Info("already installed", "tool", name)
		return nil
	}
	if d.Install == nil {
		return fmt.Errorf("%s: no automated install, see the tool's documentation", name)
	}
	if err := output.EnsureDir(ins.toolsDir); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	s := ins.strategies[d.Install.Method]
	ins.log.Info("installing", "tool", name, "method", s.Name())
	if err := s.Install(ctx, d); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !ins.available(ctx, d) {
		return fmt.Errorf("%s: still unavailable after install", name)
	}
	ins.log.Info("installed", "tool", name)
	return nil
}

// InstallMissing walks a list of tools and installs the unavailable
// ones. One broken install does not stop the rest; every failure comes
// back joined.
func (ins *Installer) InstallMissing(ctx context.Context, names []string) error {
	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := ins.Install(ctx, name); err != nil {
			ins.log.Error("install failed", "tool", name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InstallSystemDeps refreshes the apt index and installs the baseline
// package set the recon tools build against. Debian-based systems only.
func (ins *Installer) InstallSystemDeps(ctx context.Context) error {
	if !onDebian() {
		return errors.New("system dependencies use apt, which needs a Debian-based system")
	}

	ins.log.Info("updating package index")
	res := ins.runner.Run(ctx, executil.Spec{
		Args:    []string{"apt-get", "update", "-y"},
		Timeout: aptUpdateTimeout,
	})
	if err := installError(res); err != nil {
		return fmt.Errorf("apt-get update: %w", err)
	}

	pkgs := SystemPackages()
	ins.log.Info("installing system packages", "count", len(pkgs))
	res = ins.runner.Run(ctx, executil.Spec{
		Args:    append([]string{"apt-get", "install", "-y"}, pkgs...),
		Timeout: systemDepsTimeout,
	})
	if err := installError(res); err != nil {
		return fmt.Errorf("apt-get install: %w", err)
	}
	return nil
}

// ToolsDir is the directory cloned repos and go binaries land in.
func (ins *Installer) ToolsDir() string { return ins.toolsDir }

// available re-probes the descriptor fresh on every call. Binaries that
// landed in the tools dir count even when that dir is not on PATH yet.
func (ins *Installer) available(ctx context.Context, d tools.Descriptor) bool {
	if ok, _ := tools.Available(ctx, ins.runner, d); ok {
		return true
	}
	if d.Command == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(ins.toolsDir, d.Command))
	return err == nil
}

// SystemPackages lists the apt baseline for building and running the
// supported recon tools.
func SystemPackages() []string {
	return []string{
		"git", "python3", "python3-pip", "golang", "ruby", "ruby-dev",
		"nmap", "masscan", "whois", "nikto", "dirb", "sqlmap", "hydra",
		"wfuzz", "curl", "wget", "zip", "unzip", "jq",
		"build-essential", "libssl-dev", "libffi-dev", "python3-dev",
		"chromium-browser",
	}
}

func onDebian() bool {
	_, err := os.Stat(debianVersionFile)
	return err == nil
}

type goInstall struct {
	runner   tools.Runner
	toolsDir string
}

func (goInstall) Name() string { return "go" }

func (s goInstall) Install(ctx context.Context, d tools.Descriptor) error {
	if !s.runner.CommandExists(ctx, "go") {
		return errors.New("the go toolchain is not installed")
	}
	res := s.runner.Run(ctx, executil.Spec{
		Args:    []string{"go", "install", d.Install.Package + "@latest"},
		Env:     []string{"GOBIN=" + s.toolsDir},
		Timeout: installTimeout,
	})
	return installError(res)
}

type pipInstall struct {
	runner tools.Runner
}

func (pipInstall) Name() string { return "pip" }

func (s pipInstall) Install(ctx context.Context, d tools.Descriptor) error {
	if !s.runner.CommandExists(ctx, "pip3") {
		return errors.New("pip3 is not installed")
	}
	res := s.runner.Run(ctx, executil.Spec{
		Args:    []string{"pip3", "install", d.Install.Package},
		Timeout: installTimeout,
	})
	return installError(res)
}

type aptInstall struct {
	runner tools.Runner
}

func (aptInstall) Name() string { return "apt" }

func (s aptInstall) Install(ctx context.Context, d tools.Descriptor) error {
	if !onDebian() {
		return errors.New("apt is only available on Debian-based systems")
	}
	res := s.runner.Run(ctx, executil.Spec{
		Args:    []string{"apt-get", "install", "-y", d.Install.Package},
		Timeout: installTimeout,
	})
	return installError(res)
}

// shellInstall covers the git and curl methods: the descriptor carries
// the exact command line, run through the shell from the tools dir.
type shellInstall struct {
	runner   tools.Runner
	toolsDir string
	method   string
}

func (s shellInstall) Name() string { return s.method }

func (s shellInstall) Install(ctx context.Context, d tools.Descriptor) error {
	res := s.runner.Run(ctx, executil.Spec{
		Command: d.Install.Command,
		Dir:     s.toolsDir,
		Shell:   executil.ShellAlways,
		Timeout: installTimeout,
	})
	return installError(res)
}

func installError(res executil.Result) error {
	if res.TimedOut {
		return fmt.Errorf("timed out after %s", res.Duration.Round(time.Second))
	}
	if res.Succeeded {
		return nil
	}
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		return fmt.Errorf("exit code %d", res.ExitCode)
	}
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return fmt.Errorf("exit code %d: %s", res.ExitCode, msg)
}
