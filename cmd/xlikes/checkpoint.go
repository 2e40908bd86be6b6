package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/norandom/x-likes-scraper/pkg/checkpoint"
	"github.com/norandom/x-likes-scraper/pkg/logger"
	"github.com/norandom/x-likes-scraper/pkg/ui"
)

var checkpointDir string

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect or clear the export checkpoint",
}

var checkpointInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show checkpoint information",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := checkpoint.NewStore(checkpointDir, logger.GetLogger())
		if err != nil {
			return err
		}

		info := store.Info()
		if info == nil {
			ui.PrintWarning("No checkpoint found")
			return nil
		}

		ui.PrintInfo("User ID", info.UserID)
		ui.PrintInfo("Tweets fetched", fmt.Sprintf("%d", info.TotalFetched))
		ui.PrintInfo("Timestamp", info.Timestamp)
		hasCursor := "No"
		if info.Cursor != "" {
			hasCursor = "Yes"
		}
		ui.PrintInfo("Has cursor", hasCursor)
		ui.PrintInfo("Download media", fmt.Sprintf("%t", info.DownloadMedia))
		fmt.Println()
		fmt.Println("To resume: xlikes export <user_id> --resume")
		fmt.Println("To clear:  xlikes checkpoint clear")
		return nil
	},
}

var checkpointClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the checkpoint and start fresh next time",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := checkpoint.NewStore(checkpointDir, logger.GetLogger())
		if err != nil {
			return err
		}

		if !store.Exists() {
			ui.PrintWarning("No checkpoint to clear")
			return nil
		}

		if err := store.Clear(); err != nil {
			return err
		}
		ui.PrintSuccess("Checkpoint cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointInfoCmd)
	checkpointCmd.AddCommand(checkpointClearCmd)

	checkpointCmd.PersistentFlags().StringVarP(&checkpointDir, "output", "o", "output", "output directory holding the checkpoint")
}
