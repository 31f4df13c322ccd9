package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/pagination"
	"github.com/cloo-solutions/onboardai/internal/youcom"
	"github.com/spf13/cobra"
)

// IntelCmd creates the intel command group.
func IntelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intel",
		Short: "Competitor intel",
	}
	cmd.AddCommand(intelFeedCmd(), intelSearchCmd(), intelRefreshCmd())
	return cmd
}

func intelFeedCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List cached competitor intel, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			if cursor != "" {
				q.Set("cursor", cursor)
			}

			api := NewAPIClientWithCmd(cmd)
			resp, err := api.Get(cmd.Context(), "/api/intel/feed?"+q.Encode())
			if err != nil {
				return fmt.Errorf("feed failed: %w", err)
			}
			var page pagination.PageResult[domain.CompetitorIntel]
			if err := resp.decode(&page); err != nil {
				return err
			}
			if outputJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), page)
			}

			w := cmd.OutOrStdout()
			if len(page.Items) == 0 {
				fmt.Fprintln(w, "No competitor intel cached.")
				return nil
			}
			for i, it := range page.Items {
				fmt.Fprintf(w, "%d. %s  %s\n", i+1, it.Label(), it.CreatedAt.Local().Format("2006-01-02"))
				fmt.Fprintf(w, "   %s\n", domain.Ellipsize(it.Content, 160))
				if it.SourceURL != "" {
					fmt.Fprintf(w, "   %s\n", it.SourceURL)
				}
			}
			if page.HasMore && page.Cursor != "" {
				fmt.Fprintf(w, "\nMore results available. Use --cursor %s\n", page.Cursor)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of rows")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	return cmd
}

func intelSearchCmd() *cobra.Command {
	var (
		count     int
		freshness string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search live web and news",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("q", strings.Join(args, " "))
			q.Set("count", strconv.Itoa(count))
			if freshness != "" {
				q.Set("freshness", freshness)
			}

			api := NewAPIClientWithCmd(cmd)
			resp, err := api.Get(cmd.Context(), "/api/intel/search?"+q.Encode())
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			var res youcom.LiveResult
			if err := resp.decode(&res); err != nil {
				return err
			}
			if outputJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), res)
			}

			w := cmd.OutOrStdout()
			if len(res.Web) == 0 && len(res.News) == 0 {
				fmt.Fprintln(w, "No results found.")
				return nil
			}
			for _, section := range []struct {
				name string
				hits []youcom.Hit
			}{{"Web", res.Web}, {"News", res.News}} {
				if len(section.hits) == 0 {
					continue
				}
				fmt.Fprintf(w, "%s\n", section.name)
				for i, h := range section.hits {
					fmt.Fprintf(w, "%d. %s\n   %s\n", i+1, h.Title, h.URL)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 8, "Results per section (max 20)")
	cmd.Flags().StringVar(&freshness, "freshness", "", "day, week, month or year")
	return cmd
}

func intelRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh cached competitor intel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := NewAPIClientWithCmd(cmd)
			resp, err := api.Post(cmd.Context(), "/api/intel/refresh", nil)
			if err != nil {
				return fmt.Errorf("refresh failed: %w", err)
			}
			var out struct {
				Added int `json:"added"`
			}
			if err := resp.decode(&out); err != nil {
				return err
			}
			if outputJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d intel rows\n", out.Added)
			return nil
		},
	}
}
