package recon

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/DavidJovino/deivao-recon/internal/discovery"
	"github.com/DavidJovino/deivao-recon/internal/executil"
	"github.com/DavidJovino/deivao-recon/internal/output"
	"github.com/DavidJovino/deivao-recon/internal/tools"
)

const (
	DefaultThreads = 10
	DefaultTimeout = 2800 * time.Second

	rawFileName   = "raw_subdomains.txt"
	finalFileName = "final_subdomains.txt"
	enumSubdir    = "subdomain_enum"
)

// Phase names a stage of the enumeration pipeline.
type Phase string

const (
	PhaseValidating      Phase = "validating"
	PhaseResolvingTools  Phase = "resolving-tools"
	PhaseEnumerating     Phase = "enumerating"
	PhaseConsolidating   Phase = "consolidating"
	PhaseProbingLiveness Phase = "probing-liveness"
	PhaseDone            Phase = "done"
)

// RunError is an unexpected failure inside Run, tagged with the phase that
// produced it. Individual tool failures never surface as RunErrors.
type RunError struct {
	Phase Phase
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("recon failed while %s: %v", e.Phase, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Result is the structured outcome of one enumeration run. Subdomains is
// the sorted deduplicated union of every tool's output; Active is the
// liveness-confirmed subset of it.
type Result struct {
	RunID      string        `json:"run_id"`
	Domain     string        `json:"domain"`
	Subdomains []string      `json:"subdomains"`
	Active     []string      `json:"active_subdomains"`
	ToolsUsed  []string      `json:"tools_used"`
	Tools      []ToolOutcome `json:"tools"`
	RawFile    string        `json:"raw_file"`
	FinalFile  string        `json:"final_file"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// Options configure an Orchestrator.
type Options struct {
	OutputDir string        // per-domain directories are created below this
	Threads   int           // worker pool size; DefaultThreads when zero
	Timeout   time.Duration // per-command budget; DefaultTimeout when zero
	CrtSh     *discovery.CrtShClient
	Logger    *log.Logger
}

// Orchestrator runs the subdomain enumeration pipeline for one target:
// resolve tools, fan enumerators out over a bounded pool, consolidate,
// probe liveness.
type Orchestrator struct {
	catalog  *tools.Catalog
	checker  *tools.Checker
	runner   tools.Runner
	builtins map[string]Enumerator
	opts     Options
	log      *log.Logger
}

func NewOrchestrator(catalog *tools.Catalog, checker *tools.Checker, runner tools.Runner, opts Options) *Orchestrator {
	if opts.Threads <= 0 {
		opts.Threads = DefaultThreads
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	crtsh := opts.CrtSh
	if crtsh == nil {
		crtsh = discovery.NewCrtShClient()
	}
	return &Orchestrator{
		catalog: catalog,
		checker: checker,
		runner:  runner,
		builtins: map[string]Enumerator{
			"crtsh": &crtshEnumerator{client: crtsh},
		},
		opts: opts,
		log:  logger,
	}
}

// Run executes the full pipeline for a domain. Individual tool failures
// are absorbed into the result; the error return is a *ValidationError for
// a malformed domain or a *RunError for unexpected internal failures.
func (o *Orchestrator) Run(ctx context.Context, domain string) (res *Result, err error) {
	phase := PhaseValidating
	defer func() {
		if r := recover(); r != nil {
			o.log.Debug("panic during recon", "phase", phase, "panic", r)
			res = nil
			err = &RunError{Phase: phase, Err: fmt.Errorf("internal error: %v", r)}
		}
	}()

	started := time.Now()
	domain = strings.TrimSpace(domain)
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}

	domainDir := filepath.Join(o.opts.OutputDir, domain)
	enumDir := filepath.Join(domainDir, enumSubdir)
	if err := output.EnsureDir(enumDir); err != nil {
		return nil, &RunError{Phase: phase, Err: err}
	}

	res = &Result{
		RunID:     uuid.New().String(),
		Domain:    domain,
		StartedAt: started,
		RawFile:   filepath.Join(domainDir, rawFileName),
		FinalFile: filepath.Join(domainDir, finalFileName),
	}

	phase = PhaseResolvingTools
	rep := o.checker.CheckGroup(ctx, tools.GroupSubdomains)
	for _, name := range rep.Missing {
		if sub, ok := rep.Substitutions[name]; ok {
			o.log.Info("tool unavailable, using substitute", "tool", name, "substitute", sub)
		} else {
			o.log.Warn("tool unavailable", "tool", name)
		}
	}
	enums := o.enumerators(rep)

	phase = PhaseEnumerating
	if len(enums) == 0 {
		o.log.Warn("no enumeration tools available, results will be empty", "domain", domain)
	} else {
		outcomes, fanErr := o.fanOut(ctx, enums, domain, enumDir)
		res.Tools = outcomes
		if fanErr != nil {
			return nil, &RunError{Phase: phase, Err: fanErr}
		}
	}

	phase = PhaseConsolidating
	res.Subdomains = o.consolidate(res.Tools)
	if err := output.WriteLines(res.RawFile, res.Subdomains); err != nil {
		return nil, &RunError{Phase: phase, Err: err}
	}
	o.log.Info("subdomains consolidated", "domain", domain, "total", len(res.Subdomains))

	phase = PhaseProbingLiveness
	if err := ctx.Err(); err != nil {
		return nil, &RunError{Phase: phase, Err: err}
	}
	active, probeOutcome := o.probeLiveness(ctx, domain, enumDir, res)
	res.Active = active
	if probeOutcome != nil {
		res.Tools = append(res.Tools, *probeOutcome)
	}
	if err := output.WriteLines(res.FinalFile, res.Active); err != nil {
		return nil, &RunError{Phase: phase, Err: err}
	}

	for _, oc := range res.Tools {
		if oc.Succeeded() {
			res.ToolsUsed = append(res.ToolsUsed, oc.Tool)
		}
	}
	res.Duration = time.Since(started)
	phase = PhaseDone
	o.log.Info("recon finished", "domain", domain,
		"subdomains", len(res.Subdomains), "active", len(res.Active),
		"duration", res.Duration.Round(time.Second))
	return res, nil
}

// enumerators maps an availability report to runnable enumerators:
// builtins bound at construction first, then every available descriptor
// carrying a run template.
func (o *Orchestrator) enumerators(rep tools.Report) []Enumerator {
	var enums []Enumerator
	for _, name := range rep.Available {
		if e, ok := o.builtins[name]; ok {
			enums = append(enums, e)
			continue
		}
		d, ok := o.catalog.Get(name)
		if !ok || d.RunTemplate == "" {
			o.log.Debug("tool has no run template, skipping", "tool", name)
			continue
		}
		enums = append(enums, &commandEnumerator{
			desc:    d,
			runner:  o.runner,
			timeout: o.opts.Timeout,
			threads: o.opts.Threads,
		})
	}
	return enums
}

// fanOut runs every enumerator on a semaphore-bounded pool and collects
// outcomes through a channel. Aggregation happens only after the join, so
// no shared state is touched concurrently.
func (o *Orchestrator) fanOut(ctx context.Context, enums []Enumerator, domain, enumDir string) ([]ToolOutcome, error) {
	sem := make(chan struct{}, o.opts.Threads)
	results := make(chan ToolOutcome, len(enums))
	var wg sync.WaitGroup

	for _, e := range enums {
		wg.Add(1)
		go func(e Enumerator) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			o.log.Info("starting tool", "tool", e.Name(), "domain", domain)
			outFile := filepath.Join(enumDir, e.Name()+".txt")
			results <- e.Enumerate(ctx, domain, outFile)
		}(e)
	}

	wg.Wait()
	close(results)

	outcomes := make([]ToolOutcome, 0, len(enums))
	for oc := range results {
		if oc.Succeeded() {
			o.log.Info("tool finished", "tool", oc.Tool, "lines", oc.Lines,
				"duration", oc.Duration.Round(time.Millisecond))
		} else {
			o.log.Warn("tool failed", "tool", oc.Tool, "timed_out", oc.TimedOut, "error", oc.Error)
		}
		outcomes = append(outcomes, oc)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Tool < outcomes[j].Tool })

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// consolidate merges the output files of every successful tool into one
// sorted, deduplicated, lowercased set.
func (o *Orchestrator) consolidate(outcomes []ToolOutcome) []string {
	seen := make(map[string]struct{})
	for _, oc := range outcomes {
		if !oc.Succeeded() || oc.OutputFile == "" {
			continue
		}
		lines, err := output.ReadLines(oc.OutputFile)
		if err != nil {
			o.log.Debug("no readable output", "tool", oc.Tool, "error", err)
			continue
		}
		for _, line := range lines {
			seen[strings.ToLower(line)] = struct{}{}
		}
	}

	subs := make([]string, 0, len(seen))
	for host := range seen {
		subs = append(subs, host)
	}
	sort.Strings(subs)
	return subs
}

// probeLiveness filters the consolidated set down to hosts a probe tool
// reports as responsive. Probing is an enhancement: with no probe tool, or
// a failing one, the full set is kept and the fallback logged.
func (o *Orchestrator) probeLiveness(ctx context.Context, domain, enumDir string, res *Result) ([]string, *ToolOutcome) {
	if len(res.Subdomains) == 0 {
		return nil, nil
	}

	rep := o.checker.CheckGroup(ctx, tools.GroupLiveness)
	var desc tools.Descriptor
	found := false
	for _, name := range rep.Available {
		if d, ok := o.catalog.Get(name); ok && d.RunTemplate != "" {
			desc = d
			found = true
			break
		}
	}
	if !found {
		o.log.Warn("no liveness probe available, keeping the full set", "domain", domain)
		return res.Subdomains, nil
	}

	outFile := filepath.Join(enumDir, desc.Name+".txt")
	command := ExpandTemplate(desc.RunTemplate, map[string]string{
		"domain":  domain,
		"input":   res.RawFile,
		"output":  outFile,
		"threads": strconv.Itoa(o.opts.Threads),
	})
	o.log.Info("probing live hosts", "tool", desc.Name, "candidates", len(res.Subdomains))
	r := o.runner.Run(ctx, executil.Spec{Command: command, Timeout: o.opts.Timeout})

	outcome := outcomeFromResult(desc.Name, outFile, r, o.opts.Timeout)
	if !outcome.Succeeded() {
		o.log.Warn("liveness probe failed, keeping the full set", "tool", desc.Name, "error", outcome.Error)
		return res.Subdomains, &outcome
	}

	lines, err := output.ReadLines(outFile)
	if err != nil {
		o.log.Warn("liveness output unreadable, keeping the full set", "tool", desc.Name, "error", err)
		return res.Subdomains, &outcome
	}

	// Probe output is URL-shaped; reduce to hostnames and keep only ones
	// from the consolidated set.
	raw := make(map[string]struct{}, len(res.Subdomains))
	for _, s := range res.Subdomains {
		raw[s] = struct{}{}
	}
	seen := make(map[string]struct{}, len(lines))
	var active []string
	for _, line := range lines {
		host := normalizeHost(line)
		if _, inRaw := raw[host]; !inRaw {
			continue
		}
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		active = append(active, host)
	}
	sort.Strings(active)
	return active, &outcome
}

// normalizeHost reduces a probe output line (typically a URL) to the bare
// lowercase hostname.
func normalizeHost(line string) string {
	host := strings.ToLower(strings.TrimSpace(line))
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host
}
