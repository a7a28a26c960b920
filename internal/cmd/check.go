package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/DavidJovino/deivao-recon/internal/executil"
	"github.com/DavidJovino/deivao-recon/internal/tools"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check [group]",
	Short: "Report which catalog tools are installed",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "machine readable output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	group := tools.GroupAll
	if len(args) == 1 {
		group = args[0]
	}
	if !validGroup(group) {
		return fmt.Errorf("unknown group %q (valid: %s, all)", group, strings.Join(tools.Groups(), ", "))
	}

	ctx := cmd.Context()
	runner := executil.New(logger)
	catalog := tools.Default()
	checker := tools.NewChecker(catalog, runner, logger)

	rep := checker.CheckGroup(ctx, group)

	if checkJSON {
		out := struct {
			Group         string            `json:"group"`
			Available     []string          `json:"available"`
			Missing       []string          `json:"missing"`
			Substitutions map[string]string `json:"substitutions,omitempty"`
		}{group, rep.Available, rep.Missing, rep.Substitutions}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		printCheckTable(catalog, group, rep)
	}

	// The pipeline cannot start without at least one discovery source.
	if group == tools.GroupAll || group == tools.GroupSubdomains {
		enum := checker.CheckGroup(ctx, tools.GroupSubdomains)
		if len(enum.Available) == 0 {
			return fmt.Errorf("no subdomain discovery capability available")
		}
	}
	return nil
}

func printCheckTable(catalog *tools.Catalog, group string, rep tools.Report) {
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	have := make(map[string]bool, len(rep.Available))
	for _, name := range rep.Available {
		have[name] = true
	}

	fmt.Printf("tools for %s:\n\n", group)
	for _, d := range catalog.ToolsFor(group) {
		var status string
		switch {
		case have[d.Name]:
			status = green.Render("ok")
		case rep.Substitutions[d.Name] != "":
			status = yellow.Render("substituted by " + rep.Substitutions[d.Name])
		default:
			status = red.Render("missing")
			if hint := installHint(d); hint != "" {
				status += dim.Render("   " + hint)
			}
		}
		fmt.Printf("  %-14s %s\n", d.Name, status)
	}
	fmt.Println()
}

func validGroup(group string) bool {
	if group == tools.GroupAll {
		return true
	}
	for _, g := range tools.Groups() {
		if g == group {
			return true
		}
	}
	return false
}
