package recon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DavidJovino/deivao-recon/internal/discovery"
	"github.com/DavidJovino/deivao-recon/internal/executil"
	"github.com/DavidJovino/deivao-recon/internal/output"
	"github.com/DavidJovino/deivao-recon/internal/tools"
)

// ToolOutcome records how one tool invocation fared.
type ToolOutcome struct {
	Tool       string        `json:"tool"`
	OutputFile string        `json:"output_file,omitempty"`
	Lines      int           `json:"lines"`
	Duration   time.Duration `json:"duration"`
	ExitCode   int           `json:"exit_code,omitempty"`
	TimedOut   bool          `json:"timed_out,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Succeeded reports whether the tool ran to completion.
func (o ToolOutcome) Succeeded() bool {
	return o.Error == "" && !o.TimedOut
}

// Enumerator produces subdomain candidates for a domain, writing one
// hostname per line to outFile. Implementations never return an error;
// failures are folded into the outcome.
type Enumerator interface {
	Name() string
	Enumerate(ctx context.Context, domain, outFile string) ToolOutcome
}

// commandEnumerator shells out to an external tool through its descriptor's
// run template.
type commandEnumerator struct {
	desc    tools.Descriptor
	runner  tools.Runner
	timeout time.Duration
	threads int
}

func (e *commandEnumerator) Name() string { return e.desc.Name }

func (e *commandEnumerator) Enumerate(ctx context.Context, domain, outFile string) ToolOutcome {
	command := ExpandTemplate(e.desc.RunTemplate, map[string]string{
		"domain":  domain,
		"output":  outFile,
		"threads": strconv.Itoa(e.threads),
	})
	res := e.runner.Run(ctx, executil.Spec{Command: command, Timeout: e.timeout})
	return outcomeFromResult(e.desc.Name, outFile, res, e.timeout)
}

// crtshEnumerator queries certificate transparency logs in-process, so a
// run has at least one source even on a machine with no tools installed.
type crtshEnumerator struct {
	client *discovery.CrtShClient
}

func (e *crtshEnumerator) Name() string { return "crtsh" }

func (e *crtshEnumerator) Enumerate(ctx context.Context, domain, outFile string) ToolOutcome {
	started := time.Now()
	outcome := ToolOutcome{Tool: "crtsh", OutputFile: outFile}

	subs, err := e.client.QuerySubdomains(ctx, domain)
	outcome.Duration = time.Since(started)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	if err := output.WriteLines(outFile, subs); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Lines = len(subs)
	return outcome
}

// ExpandTemplate fills {{name}} placeholders in a run template.
func ExpandTemplate(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func outcomeFromResult(tool, outFile string, res executil.Result, timeout time.Duration) ToolOutcome {
	outcome := ToolOutcome{
		Tool:       tool,
		OutputFile: outFile,
		Duration:   res.Duration,
		ExitCode:   res.ExitCode,
		TimedOut:   res.TimedOut,
	}
	switch {
	case res.TimedOut:
		outcome.Error = fmt.Sprintf("timed out after %s", timeout)
	case !res.Succeeded:
		outcome.Error = commandError(res)
	default:
		outcome.Lines = output.CountLines(outFile)
	}
	return outcome
}

func commandError(res executil.Result) string {
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = fmt.Sprintf("exit code %d", res.ExitCode)
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
