package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/spf13/cobra"
)

// BriefCmd creates the brief command.
func BriefCmd() *cobra.Command {
	var latest bool

	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Show today's brief",
		Long:  "Compiles the six-section product brief. With --latest, shows the last archived brief instead.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := NewAPIClientWithCmd(cmd)
			var brief domain.Brief
			if latest {
				resp, err := api.Get(cmd.Context(), "/api/brief/latest")
				if err != nil {
					return fmt.Errorf("brief failed: %w", err)
				}
				var res domain.BriefResult
				if err := resp.decode(&res); err != nil {
					return err
				}
				if res.Brief != nil {
					brief = *res.Brief
				}
			} else {
				resp, err := api.Post(cmd.Context(), "/api/brief", nil)
				if err != nil {
					return fmt.Errorf("brief failed: %w", err)
				}
				if err := resp.decode(&brief); err != nil {
					return err
				}
			}

			if outputJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), brief)
			}
			printBrief(cmd.OutOrStdout(), &brief)
			return nil
		},
	}

	cmd.Flags().BoolVar(&latest, "latest", false, "Show the last archived brief")
	return cmd
}

func printBrief(w io.Writer, b *domain.Brief) {
	for i, key := range domain.BriefKeys {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, strings.ToUpper(key))
		items := *b.Section(key)
		if len(items) == 0 {
			fmt.Fprintln(w, "  (none)")
			continue
		}
		for _, item := range items {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
}
