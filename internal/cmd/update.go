package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DavidJovino/deivao-recon/internal/update"
)

var updateCheckOnly bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update deivao-recon to the latest release",
	Args:  cobra.NoArgs,
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "only report whether an update exists")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if updateCheckOnly {
		st, err := update.Check()
		if err != nil {
			return err
		}
		if !st.Outdated {
			logger.Info("already up to date", "version", st.Current)
			return nil
		}
		logger.Info("update available", "current", st.Current, "latest", st.Latest)
		return nil
	}

	st, err := update.Apply()
	if err != nil {
		return err
	}
	if !st.Outdated {
		logger.Info("already up to date", "version", st.Current)
		return nil
	}
	logger.Info("updated", "from", st.Current, "to", st.Latest)
	if st.Notes != "" {
		fmt.Println(st.Notes)
	}
	return nil
}
