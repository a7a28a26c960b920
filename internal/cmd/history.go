package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DavidJovino/deivao-recon/internal/store"
)

var (
	historyLimit int
	historyDB    string
)

var historyCmd = &cobra.Command{
	Use:   "history [domain]",
	Short: "Show recent reconnaissance runs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum runs to show")
	historyCmd.Flags().StringVar(&historyDB, "db", "", "history database path (default ~/.config/deivao-recon/history.db)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := store.Open(historyDB)
	if err != nil {
		return setupFailure(fmt.Errorf("opening history database: %w", err))
	}
	defer st.Close()

	domain := ""
	if len(args) == 1 {
		domain = args[0]
	}

	runs, err := st.RecentRuns(domain, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	fmt.Printf("%-19s  %-30s %6s %6s  %s\n", "STARTED", "DOMAIN", "FOUND", "ACTIVE", "TOOLS")
	for _, r := range runs {
		fmt.Printf("%-19s  %-30s %6d %6d  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Domain, r.RawCount, r.ActiveCount, strings.Join(r.ToolsUsed, ","))
	}
	return nil
}
