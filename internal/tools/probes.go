package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DavidJovino/deivao-recon/internal/executil"
)

// Runner is the executor surface probes and the checker need.
type Runner interface {
	Run(ctx context.Context, spec executil.Spec) executil.Result
	CommandExists(ctx context.Context, name string) bool
}

// ExistenceProbe decides whether a tool is usable when a plain PATH lookup
// is not enough. A failing probe may name a catalog tool to use instead.
// Probes only inspect the system; they never install anything.
type ExistenceProbe interface {
	Available(ctx context.Context, r Runner) (ok bool, fallback string)
}

const probeTimeout = 10 * time.Second

// BuiltinProbe marks a capability implemented inside this binary, so it is
// always available.
type BuiltinProbe struct{}

func (BuiltinProbe) Available(ctx context.Context, r Runner) (bool, string) {
	return true, ""
}

// RubyScriptProbe checks for a tool distributed as a Ruby script: the
// script file, the ruby interpreter and the required gem must all be
// present.
type RubyScriptProbe struct {
	Script   string // path to the script, ~ expands to the home directory
	Gem      string
	Fallback string
}

func (p RubyScriptProbe) Available(ctx context.Context, r Runner) (bool, string) {
	if _, err := os.Stat(ExpandHome(p.Script)); err != nil {
		return false, p.Fallback
	}
	if !r.CommandExists(ctx, "ruby") {
		return false, p.Fallback
	}
	res := r.Run(ctx, executil.Spec{
		Command: "gem list | grep " + p.Gem,
		Timeout: probeTimeout,
	})
	if !res.Succeeded {
		return false, p.Fallback
	}
	return true, ""
}

// PipPackageProbe checks that a pip-distributed tool is installed by asking
// pip3 for its metadata.
type PipPackageProbe struct {
	Package  string
	Fallback string
}

func (p PipPackageProbe) Available(ctx context.Context, r Runner) (bool, string) {
	res := r.Run(ctx, executil.Spec{
		Args:    []string{"pip3", "show", p.Package},
		Timeout: probeTimeout,
	})
	if res.Succeeded && strings.Contains(res.Stdout, "Name: "+p.Package) {
		return true, ""
	}
	return false, p.Fallback
}

// Available probes one descriptor directly, with no memoization: the
// descriptor's probe when it carries one, a PATH lookup otherwise.
func Available(ctx context.Context, r Runner, d Descriptor) (ok bool, fallback string) {
	if d.Probe != nil {
		return d.Probe.Available(ctx, r)
	}
	return r.CommandExists(ctx, d.Command), ""
}

// ExpandHome replaces a leading ~ with the current user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
