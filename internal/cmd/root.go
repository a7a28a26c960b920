// Package cmd wires the deivao-recon command line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/DavidJovino/deivao-recon/internal/config"
	"github.com/DavidJovino/deivao-recon/internal/logging"
	"github.com/DavidJovino/deivao-recon/internal/tools"
	"github.com/DavidJovino/deivao-recon/internal/version"
)

var (
	cfgPath   string
	threads   int
	timeout   int
	outputDir string
	debug     bool
	logFile   string
	noNotify  bool
	silent    bool

	logger *log.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "deivao-recon",
	Short:         "Domain reconnaissance pipeline",
	Long:          "deivao-recon orchestrates external security tools to enumerate subdomains,\nprobe liveness and produce reports.",
	Version:       version.Number,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(debug, logFile)
		if err != nil {
			return setupFailure(err)
		}

		cfg, err = config.Load(cfgPath)
		if err != nil {
			return setupFailure(fmt.Errorf("loading config: %w", err))
		}
		if err := config.Validate(cfg); err != nil {
			return setupFailure(err)
		}
		applyFlagOverrides()

		if !silent && !checkJSON {
			printBanner()
		}
		return nil
	}
}

// Execute runs the CLI and exits the process: 0 on success, 1 when a run
// or its input failed, 2 when setup itself broke.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error(err.Error())
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		var se *setupError
		if errors.As(err, &se) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "config file path (default ~/.config/deivao-recon/config.yaml)")
	pf.IntVarP(&threads, "threads", "t", 0, "concurrent tool executions")
	pf.IntVar(&timeout, "timeout", 0, "per-tool timeout in seconds")
	pf.StringVarP(&outputDir, "output", "o", "", "results directory")
	pf.BoolVar(&debug, "debug", false, "verbose logging")
	pf.StringVar(&logFile, "log-file", "", "also append logs to this file")
	pf.BoolVar(&noNotify, "no-notify", false, "disable all notifications")
	pf.BoolVar(&silent, "silent", false, "suppress the banner and summary output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(updateCmd)
}

// applyFlagOverrides lets explicitly set flags win over the config file.
func applyFlagOverrides() {
	pf := rootCmd.PersistentFlags()
	if pf.Changed("threads") {
		cfg.Threads = threads
	}
	if pf.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if pf.Changed("output") {
		cfg.OutputDir = outputDir
	}
}

func printBanner() {
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	banner := `
░█▀▄░█▀▀░▀█▀░█░█░█▀█░█▀█░░░█▀▄░█▀▀░█▀▀░█▀█░█▀█░
░█░█░█▀▀░░█░░▀▄▀░█▀█░█░█░░░█▀▄░█▀▀░█░░░█░█░█░█░
░▀▀░░▀▀▀░▀▀▀░░▀░░▀░▀░▀▀▀░░░▀░▀░▀▀▀░▀▀▀░▀▀▀░▀░▀░
`
	fmt.Println(cyan.Render(banner))
	fmt.Println(dim.Render("domain reconnaissance pipeline v" + version.Number))
	fmt.Println()
}

// setupError marks failures that happen before any real work starts, so
// Execute can exit 2 instead of 1.
type setupError struct{ err error }

func (e *setupError) Error() string { return e.err.Error() }
func (e *setupError) Unwrap() error { return e.err }

func setupFailure(err error) error { return &setupError{err: err} }

// installHint returns the command a user can run to get a missing tool.
func installHint(d tools.Descriptor) string {
	if d.Install == nil {
		return ""
	}
	switch d.Install.Method {
	case "go":
		return "go install " + d.Install.Package + "@latest"
	case "pip":
		return "pip3 install " + d.Install.Package
	case "apt":
		return "sudo apt-get install -y " + d.Install.Package
	default:
		return "deivao-recon install " + d.Name
	}
}
