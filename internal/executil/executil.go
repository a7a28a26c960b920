package executil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	shellwords "github.com/mattn/go-shellwords"
)

// Characters that force a command line through `sh -c`.
const shellChars = "|><&;*?~$"

// Deadline for the `which` probe in CommandExists.
const existsTimeout = 5 * time.Second

// How long Wait may linger after a kill before pipes are forcibly closed.
const waitDelay = 2 * time.Second

const maxLineBuffer = 1024 * 1024

// ShellMode controls how a string command is interpreted.
type ShellMode int

const (
	// ShellAuto uses the shell only when the command line contains shell
	// metacharacters; otherwise the line is split with shell-word rules
	// and run directly.
	ShellAuto ShellMode = iota
	ShellAlways
	ShellNever
)

// Spec describes a single external command invocation.
type Spec struct {
	Command string        // raw command line; ignored when Args is set
	Args    []string      // pre-tokenized argument vector
	Timeout time.Duration // zero means no deadline
	Dir     string        // working directory
	Env     []string      // KEY=VALUE pairs appended to the parent environment
	Shell   ShellMode
}

// Result is the structured outcome of one invocation, complete even when the
// process failed to spawn. ExitCode is -1 if the process never completed.
type Result struct {
	Command   string
	Stdout    string
	Stderr    string
	ExitCode  int
	TimedOut  bool
	Succeeded bool
	Duration  time.Duration
}

// OutputLine is one line streamed by RunLive as it is produced.
type OutputLine struct {
	Text   string
	Stderr bool
}

// Executor runs external commands. Construct with New.
type Executor struct {
	log *log.Logger
}

func New(logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Executor{log: logger}
}

// Run executes the command described by spec. It never returns an error:
// spawn failures, OS-level errors, timeouts and unreadable streams are all
// folded into the Result, so a batch of invocations can be processed
// uniformly without one bad tool aborting the rest.
func (e *Executor) Run(ctx context.Context, spec Spec) Result {
	return e.run(ctx, spec, nil)
}

// RunLive behaves like Run but additionally delivers each stdout/stderr line
// to sink as soon as it is read, for live progress display.
func (e *Executor) RunLive(ctx context.Context, spec Spec, sink func(OutputLine)) Result {
	if sink == nil {
		sink = func(OutputLine) {}
	}
	return e.run(ctx, spec, sink)
}

func (e *Executor) run(ctx context.Context, spec Spec, sink func(OutputLine)) Result {
	res := Result{ExitCode: -1}

	argv, display, err := buildArgv(spec)
	res.Command = display
	if err != nil {
		res.Stderr = err.Error()
		e.log.Debug("cannot prepare command", "command", display, "error", err)
		return res
	}

	runCtx := ctx
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		// Releases the deadline timer as soon as the process exits
		// naturally, so it cannot fire after completion.
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	// The child gets its own process group so that a timeout kills the
	// whole tree, shell-spawned grandchildren included.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		res.Stderr = err.Error()
		return res
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		res.Stderr = err.Error()
		return res
	}

	e.log.Debug("running command", "command", display)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		res.Stderr = err.Error()
		res.Duration = time.Since(start)
		e.log.Debug("failed to start command", "command", display, "error", err)
		return res
	}

	var outBuf, errBuf strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)
	go collectLines(stdout, &outBuf, false, sink, &wg)
	go collectLines(stderr, &errBuf, true, sink, &wg)
	wg.Wait()

	waitErr := cmd.Wait()
	res.Duration = time.Since(start)
	res.Stdout = outBuf.String()
	res.Stderr = errBuf.String()

	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		e.log.Debug("command timed out", "command", display, "timeout", spec.Timeout)
	}
	res.Succeeded = res.ExitCode == 0 && !res.TimedOut

	if !res.Succeeded && !res.TimedOut {
		if waitErr != nil && res.Stderr == "" {
			res.Stderr = waitErr.Error()
		}
		e.log.Debug("command failed", "command", display, "exit", res.ExitCode)
	}

	return res
}

// collectLines drains one pipe line by line, accumulating into buf and
// forwarding to sink when streaming. Lines beyond the scanner's buffer are
// dropped rather than erroring the whole read.
func collectLines(r io.Reader, buf *strings.Builder, isStderr bool, sink func(OutputLine), wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineBuffer), maxLineBuffer)
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteByte('\n')
		if sink != nil {
			sink(OutputLine{Text: line, Stderr: isStderr})
		}
	}
	// Keep draining even if the scanner gave up, so the child never blocks
	// on a full pipe.
	io.Copy(io.Discard, r)
}

// CommandExists reports whether name resolves to an executable on this
// system. The probe shells out to `which` under a short fixed deadline;
// every failure mode counts as "not installed" and is never propagated.
func (e *Executor) CommandExists(ctx context.Context, name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	res := e.Run(ctx, Spec{Args: []string{"which", name}, Timeout: existsTimeout})
	return res.Succeeded && strings.TrimSpace(res.Stdout) != ""
}

// NeedsShell reports whether a command line relies on shell interpretation
// (pipes, redirection, globs, variable expansion and the like).
func NeedsShell(command string) bool {
	return strings.ContainsAny(command, shellChars)
}

func buildArgv(spec Spec) (argv []string, display string, err error) {
	if len(spec.Args) > 0 {
		return spec.Args, strings.Join(spec.Args, " "), nil
	}

	command := strings.TrimSpace(spec.Command)
	if command == "" {
		return nil, "", fmt.Errorf("empty command")
	}

	useShell := spec.Shell == ShellAlways || (spec.Shell == ShellAuto && NeedsShell(command))
	if useShell {
		return []string{"sh", "-c", command}, command, nil
	}

	words, err := shellwords.Parse(command)
	if err != nil {
		return nil, command, fmt.Errorf("tokenize command: %w", err)
	}
	if len(words) == 0 {
		return nil, command, fmt.Errorf("empty command")
	}
	return words, command, nil
}
