package tools

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Report is the outcome of an availability check over a set of tools.
// Substitutions maps each missing tool to the available tool standing in
// for it; every substitute also appears in Available.
type Report struct {
	Available     []string
	Missing       []string
	Substitutions map[string]string
}

// Checker resolves tool availability against a catalog. Results are
// memoized per instance, so a tool is probed at most once no matter how
// many groups list it.
type Checker struct {
	catalog *Catalog
	runner  Runner
	log     *log.Logger

	mu   sync.Mutex
	seen map[string]checkState
}

type checkState struct {
	ok       bool
	fallback string
}

func NewChecker(catalog *Catalog, runner Runner, logger *log.Logger) *Checker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Checker{
		catalog: catalog,
		runner:  runner,
		log:     logger,
		seen:    make(map[string]checkState),
	}
}

// CheckTool reports whether a single tool is usable. Unknown names are
// logged and report false.
func (c *Checker) CheckTool(ctx context.Context, name string) bool {
	return c.check(ctx, name).ok
}

// CheckGroup checks every tool serving a group and resolves substitutes
// for the missing ones: the first available alternative wins, then
// probe-suggested fallbacks cover tools no ordinary alternative could.
// A group with nothing available still returns a valid report.
func (c *Checker) CheckGroup(ctx context.Context, group string) Report {
	return c.checkSet(ctx, c.catalog.ToolsFor(group))
}

// CheckAll checks the union of every capability group.
func (c *Checker) CheckAll(ctx context.Context) Report {
	return c.checkSet(ctx, c.catalog.ToolsFor(GroupAll))
}

// CheckEssential verifies the baseline commands the pipeline shells out to
// and returns the missing ones.
func (c *Checker) CheckEssential(ctx context.Context) []string {
	var missing []string
	for _, name := range EssentialCommands() {
		if !c.runner.CommandExists(ctx, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func (c *Checker) checkSet(ctx context.Context, descs []Descriptor) Report {
	rep := Report{Substitutions: make(map[string]string)}
	have := make(map[string]bool)

	for _, d := range descs {
		if c.CheckTool(ctx, d.Name) {
			rep.Available = append(rep.Available, d.Name)
			have[d.Name] = true
		} else {
			rep.Missing = append(rep.Missing, d.Name)
		}
	}

	for _, name := range rep.Missing {
		for _, alt := range c.catalog.AlternativesFor(name) {
			if !c.CheckTool(ctx, alt) {
				continue
			}
			rep.Substitutions[name] = alt
			if !have[alt] {
				rep.Available = append(rep.Available, alt)
				have[alt] = true
			}
			c.log.Info("using substitute", "tool", name, "substitute", alt)
			break
		}
	}

	// Probe-suggested fallbacks, for tools still uncovered.
	for _, name := range rep.Missing {
		if _, done := rep.Substitutions[name]; done {
			continue
		}
		fb := c.fallbackFor(name)
		if fb == "" || !c.CheckTool(ctx, fb) {
			continue
		}
		rep.Substitutions[name] = fb
		if !have[fb] {
			rep.Available = append(rep.Available, fb)
			have[fb] = true
		}
		c.log.Info("using fallback", "tool", name, "fallback", fb)
	}

	return rep
}

func (c *Checker) check(ctx context.Context, name string) checkState {
	c.mu.Lock()
	if st, ok := c.seen[name]; ok {
		c.mu.Unlock()
		return st
	}
	c.mu.Unlock()

	st := c.probe(ctx, name)

	c.mu.Lock()
	c.seen[name] = st
	c.mu.Unlock()
	return st
}

func (c *Checker) probe(ctx context.Context, name string) checkState {
	d, ok := c.catalog.Get(name)
	if !ok {
		c.log.Warn("unknown tool requested", "tool", name)
		return checkState{}
	}
	avail, fallback := Available(ctx, c.runner, d)
	c.log.Debug("tool lookup", "tool", name, "available", avail)
	return checkState{ok: avail, fallback: fallback}
}

func (c *Checker) fallbackFor(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[name].fallback
}
