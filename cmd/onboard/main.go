package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/onboardai/internal/cli"
	"github.com/cloo-solutions/onboardai/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "onboard",
		Short: "OnboardAI CLI - ask about the company, read the brief",
		Long: `OnboardAI CLI talks to a running onboardd server.

Environment variables:
  ONBOARD_API_URL       API base URL (default: http://localhost:8080)
  ONBOARD_ADMIN_TOKEN   Bearer token for sync and intel refresh`,
		Version:      version,
		SilenceUsage: true,
		Annotations: map[string]string{
			cli.EnvAnnotation: "ONBOARD_API_URL,ONBOARD_ADMIN_TOKEN",
		},
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("token", "", "Admin token (overrides env)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.BriefCmd())
	rootCmd.AddCommand(client.SyncCmd())
	rootCmd.AddCommand(client.StatusCmd())
	rootCmd.AddCommand(client.IntelCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
