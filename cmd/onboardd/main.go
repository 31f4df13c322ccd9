package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/onboardai/internal/cli"
	"github.com/cloo-solutions/onboardai/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "onboardd",
		Short: "OnboardAI daemon",
		Long:  "OnboardAI daemon for serving the API, running syncs and intel refreshes, and exposing MCP tools",
		Annotations: map[string]string{
			cli.EnvAnnotation: "ONBOARD_DATABASE_URL,ONBOARD_COMPOSIO_API_KEY,ONBOARD_YOU_API_KEY,ONBOARD_GEMINI_API_KEY,ONBOARD_OPENAI_API_KEY,ONBOARD_ADMIN_TOKEN",
		},
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.SyncCmd())
	rootCmd.AddCommand(admin.IntelCmd())
	rootCmd.AddCommand(admin.MCPCmd())
	rootCmd.AddCommand(admin.MigrateCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
