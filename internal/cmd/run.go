package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/DavidJovino/deivao-recon/internal/executil"
	"github.com/DavidJovino/deivao-recon/internal/notify"
	"github.com/DavidJovino/deivao-recon/internal/recon"
	"github.com/DavidJovino/deivao-recon/internal/report"
	"github.com/DavidJovino/deivao-recon/internal/store"
	"github.com/DavidJovino/deivao-recon/internal/tools"
)

var runDBPath string

var runCmd = &cobra.Command{
	Use:   "run <domain>",
	Short: "Run the reconnaissance pipeline against a domain",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecon,
}

func init() {
	runCmd.Flags().StringVar(&runDBPath, "db", "", "history database path (default ~/.config/deivao-recon/history.db)")
}

func runRecon(cmd *cobra.Command, args []string) error {
	domain := args[0]

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("interrupt received, stopping")
			cancel()
		case <-ctx.Done():
		}
	}()

	runner := executil.New(logger)
	catalog := tools.Default()
	for _, w := range catalog.Warnings() {
		logger.Debug(w)
	}
	checker := tools.NewChecker(catalog, runner, logger)

	if missing := checker.CheckEssential(ctx); len(missing) > 0 {
		logger.Warn("essential commands missing, some tools will not work",
			"commands", strings.Join(missing, ", "))
	}

	// Surface install hints before the run; the orchestrator only logs
	// what it skips.
	rep := checker.CheckGroup(ctx, tools.GroupSubdomains)
	for _, name := range rep.Missing {
		if _, ok := rep.Substitutions[name]; ok {
			continue
		}
		d, _ := catalog.Get(name)
		if hint := installHint(d); hint != "" {
			logger.Warn("tool unavailable", "tool", name, "install", hint)
		}
	}

	notifier := buildNotifier()
	notifier.Send(ctx, notify.Message{
		Title: "Recon started",
		Text:  fmt.Sprintf("Enumerating subdomains of %s", domain),
		Level: notify.LevelInfo,
	})

	orch := recon.NewOrchestrator(catalog, checker, runner, recon.Options{
		OutputDir: cfg.OutputDir,
		Threads:   cfg.Threads,
		Timeout:   cfg.TimeoutDuration(),
		Logger:    logger,
	})

	res, err := orch.Run(ctx, domain)
	if err != nil {
		notifyDone(notifier, notify.Message{
			Title: "Recon failed",
			Text:  fmt.Sprintf("%s: %v", domain, err),
			Level: notify.LevelError,
		})
		return err
	}

	fresh := saveHistory(res)
	writeReports(res)

	text := fmt.Sprintf("%s: %d subdomains, %d active in %s",
		domain, len(res.Subdomains), len(res.Active), res.Duration.Round(time.Second))
	if fresh > 0 {
		text += fmt.Sprintf(" (%d never seen before)", fresh)
	}
	notifyDone(notifier, notify.Message{Title: "Recon finished", Text: text, Level: notify.LevelSuccess})

	if !silent {
		printSummary(res)
	}
	return nil
}

func buildNotifier() *notify.Notifier {
	if noNotify {
		return notify.New(logger)
	}

	var senders []notify.Sender
	n := cfg.Notifications
	if n.Discord.Enabled && n.Discord.WebhookURL != "" {
		senders = append(senders, notify.NewDiscord(n.Discord.WebhookURL))
	}
	if n.Slack.Enabled && n.Slack.WebhookURL != "" {
		senders = append(senders, notify.NewSlack(n.Slack.WebhookURL))
	}
	if n.Telegram.Enabled && n.Telegram.BotToken != "" && n.Telegram.ChatID != "" {
		senders = append(senders, notify.NewTelegram(n.Telegram.BotToken, n.Telegram.ChatID))
	}
	if n.Email.Enabled && n.Email.Host != "" {
		senders = append(senders, notify.NewEmail(n.Email.Host, n.Email.Port,
			n.Email.Username, n.Email.Password, n.Email.From, n.Email.To))
	}
	return notify.New(logger, senders...)
}

// notifyDone sends with its own deadline; the run context may already be
// canceled by the time the final notification goes out.
func notifyDone(n *notify.Notifier, msg notify.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	n.Send(ctx, msg)
}

// saveHistory records the run and returns how many subdomains were never
// seen before. A broken database degrades to a warning.
func saveHistory(res *recon.Result) int {
	st, err := store.Open(runDBPath)
	if err != nil {
		logger.Warn("history database unavailable, run not recorded", "error", err)
		return 0
	}
	defer st.Close()

	if err := st.SaveRun(res); err != nil {
		logger.Warn("could not record run", "error", err)
	}
	fresh, err := st.MarkSubdomains(res.Domain, res.Subdomains)
	if err != nil {
		logger.Warn("could not record subdomains", "error", err)
		return 0
	}
	if len(fresh) > 0 {
		logger.Info("new subdomains since last run", "count", len(fresh))
	}
	return len(fresh)
}

func writeReports(res *recon.Result) {
	rec := report.FromRunResult(res)
	dir := filepath.Join(cfg.OutputDir, res.Domain, "reports")
	for _, format := range cfg.Report.Formats {
		path := filepath.Join(dir, report.Filename(res.Domain, format, res.StartedAt))
		if err := report.Generate(rec, format, path); err != nil {
			logger.Warn("report generation failed", "format", format, "error", err)
			continue
		}
		logger.Info("report written", "path", path)
	}
}

func printSummary(res *recon.Result) {
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	fmt.Println()
	fmt.Println(green.Render("recon complete"))
	fmt.Printf("  domain       %s\n", res.Domain)
	fmt.Printf("  subdomains   %d\n", len(res.Subdomains))
	fmt.Printf("  active       %d\n", len(res.Active))
	fmt.Printf("  tools        %s\n", strings.Join(res.ToolsUsed, ", "))
	fmt.Printf("  duration     %s\n", res.Duration.Round(time.Second))
	fmt.Println(dim.Render("  results in " + filepath.Dir(res.RawFile)))
	fmt.Println()
}
