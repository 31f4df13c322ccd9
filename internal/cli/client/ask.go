package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/spf13/cobra"
)

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the company",
		Long:  "Answers from synced Notion, GitHub and Slack content, with citations. Brief phrases such as \"daily brief\" return the brief.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := NewAPIClientWithCmd(cmd)
			resp, err := api.Post(cmd.Context(), "/api/ask", map[string]string{"question": strings.Join(args, " ")})
			if err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}

			var ans domain.Answer
			if err := resp.decode(&ans); err != nil {
				return err
			}
			if outputJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), ans)
			}
			if ans.Brief != nil {
				printBrief(cmd.OutOrStdout(), ans.Brief)
				return nil
			}
			printAnswer(cmd.OutOrStdout(), &ans)
			return nil
		},
	}
}

func printAnswer(w io.Writer, ans *domain.Answer) {
	fmt.Fprintln(w, ans.Answer)
	if len(ans.Citations) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, c := range ans.Citations {
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, c.Source, c.Title)
	}
}
