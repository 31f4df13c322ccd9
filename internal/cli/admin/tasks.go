package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloo-solutions/onboardai/internal/database"
	"github.com/cloo-solutions/onboardai/internal/mcpserver"
	"github.com/spf13/cobra"
)

// SyncCmd runs one ingestion pass and exits.
func SyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one ingestion pass",
		Long:  "Fetch Notion pages, GitHub READMEs and Slack messages through Composio and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *App) error {
				res, err := app.Ingestion.Sync(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
}

// IntelCmd groups competitor intel maintenance.
func IntelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intel",
		Short: "Manage cached competitor intel",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Run the competitor queries and cache the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *App) error {
				added, err := app.Intel.Refresh(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %d intel rows\n", added)
				return nil
			})
		},
	})
	return cmd
}

// MCPCmd serves the assistant tools over stdio.
func MCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve ask, brief, sync_status and intel_search as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *App) error {
				s := mcpserver.New(mcpserver.Deps{
					Assistant: app.Assistant,
					Sync:      app.Ingestion,
					Intel:     app.Intel,
				})
				return mcpserver.ServeStdio(s)
			})
		},
	}
}

// MigrateCmd applies database migrations.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("database-url")
			if url == "" {
				url = os.Getenv("ONBOARD_DATABASE_URL")
			}
			if url == "" {
				url = os.Getenv("DATABASE_URL")
			}
			if url == "" {
				return fmt.Errorf("database url is required (--database-url or ONBOARD_DATABASE_URL)")
			}
			source, _ := cmd.Flags().GetString("source")
			return database.Migrate(url, source, nil)
		},
	}
	cmd.Flags().String("database-url", "", "Postgres connection URL")
	cmd.Flags().String("source", database.DefaultMigrationsSource, "Migrations source URL")
	return cmd
}

func withApp(fn func(ctx context.Context, app *App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := loadApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
