package client

import (
	"fmt"
	"time"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/spf13/cobra"
)

// SyncCmd creates the sync command.
func SyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Trigger an ingestion pass",
		Long:  "Asks the server to fetch Notion, GitHub and Slack content now. Requires the admin token when the server sets one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := NewAPIClientWithCmd(cmd)
			resp, err := api.Post(cmd.Context(), "/api/sync/trigger", nil)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			var res domain.SyncResult
			if err := resp.decode(&res); err != nil {
				return err
			}
			if outputJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), res)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Stored %d items (notion %d, github %d, slack %d)\n", res.Total(), res.Notion, res.GitHub, res.Slack)
			fmt.Fprintf(w, "Next sync: %s\n", formatTime(res.NextSyncAt))
			return nil
		},
	}
}

// StatusCmd creates the status command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := NewAPIClientWithCmd(cmd)
			resp, err := api.Get(cmd.Context(), "/api/sync/status")
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}
			var status domain.SyncStatus
			if err := resp.decode(&status); err != nil {
				return err
			}
			if outputJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Last sync: %s\nNext sync: %s\n",
				formatTime(status.LastSyncAt), formatTime(status.NextSyncAt))
			return nil
		},
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04 MST")
}
