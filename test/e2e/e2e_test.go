//go:build e2e

package e2e

import (
	"net/http"
	"testing"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/pagination"
	"github.com/cloo-solutions/onboardai/internal/youcom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_SyncAskBrief walks the onboarding flow: an empty store, a sync
// from the toolkit API, a cited answer and an archived brief.
func TestE2E_SyncAskBrief(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("health reports the database", func(t *testing.T) {
		resp := env.Get("/health")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var h struct {
			Status   string `json:"status"`
			Database string `json:"database"`
		}
		resp.Decode(t, &h)
		assert.Equal(t, "connected", h.Database)
	})

	t.Run("status before any sync", func(t *testing.T) {
		resp := env.Get("/api/sync/status")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var status domain.SyncStatus
		resp.Decode(t, &status)
		assert.Nil(t, status.LastSyncAt)
		assert.NotNil(t, status.NextSyncAt)
	})

	t.Run("brief with an empty store is a placeholder", func(t *testing.T) {
		resp := env.Post("/api/brief", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, string(domain.OutcomeEmpty), resp.Outcome)
	})

	t.Run("latest brief before archiving", func(t *testing.T) {
		resp := env.Get("/api/brief/latest")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("sync trigger requires the admin token", func(t *testing.T) {
		resp := env.Post("/api/sync/trigger", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp = env.Post("/api/sync/trigger", nil, "wrong")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("sync stores the notion page", func(t *testing.T) {
		resp := env.Post("/api/sync/trigger", nil, adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, resp.Error)

		var res domain.SyncResult
		resp.Decode(t, &res)
		assert.Equal(t, 1, res.Notion)
		assert.Zero(t, res.GitHub)
		assert.Zero(t, res.Slack)
		require.NotNil(t, res.LastSyncAt)
		require.NotNil(t, res.NextSyncAt)
		assert.True(t, res.NextSyncAt.After(*res.LastSyncAt))
		assert.Positive(t, env.composioCalls.Load())

		var count int
		require.NoError(t, env.Pool.QueryRow(env.Ctx, "SELECT count(*) FROM knowledge_items WHERE source = 'notion'").Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("status after sync", func(t *testing.T) {
		var status domain.SyncStatus
		env.Get("/api/sync/status").Decode(t, &status)
		require.NotNil(t, status.LastSyncAt)
		require.NotNil(t, status.NextSyncAt)
	})

	t.Run("ask cites the synced page", func(t *testing.T) {
		resp := env.Post("/api/ask", map[string]string{"question": "When do releases go out?"}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, resp.Error)

		var ans domain.Answer
		resp.Decode(t, &ans)
		assert.Contains(t, ans.Answer, "Thursdays")
		require.NotEmpty(t, ans.Citations)
		assert.Equal(t, "notion", ans.Citations[0].Source)
	})

	t.Run("blank question", func(t *testing.T) {
		resp := env.Post("/api/ask", map[string]string{"question": "   "}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var ans domain.Answer
		resp.Decode(t, &ans)
		assert.Empty(t, ans.Citations)
		assert.NotEmpty(t, ans.Answer)
	})

	t.Run("brief is generated and archived", func(t *testing.T) {
		resp := env.Post("/api/brief", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, string(domain.OutcomeOK), resp.Outcome)

		var brief domain.Brief
		resp.Decode(t, &brief)
		assert.Equal(t, []string{"Velora ships weekly"}, brief.Summary)
		assert.Empty(t, brief.Risks)

		latest := env.Get("/api/brief/latest")
		require.Equal(t, http.StatusOK, latest.StatusCode, latest.Error)
		var res domain.BriefResult
		latest.Decode(t, &res)
		require.NotNil(t, res.Brief)
		assert.Equal(t, brief, *res.Brief)
		assert.Equal(t, domain.OutcomeOK, res.Outcome)
	})
}

// TestE2E_CompetitorIntel refreshes intel from the search API and pages
// through the cached feed.
func TestE2E_CompetitorIntel(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("refresh requires the admin token", func(t *testing.T) {
		resp := env.Post("/api/intel/refresh", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh stores web hits", func(t *testing.T) {
		resp := env.Post("/api/intel/refresh", nil, adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, resp.Error)
		var out struct {
			Added int `json:"added"`
		}
		resp.Decode(t, &out)
		assert.Equal(t, 1, out.Added)
	})

	t.Run("feed lists cached intel", func(t *testing.T) {
		env.Post("/api/intel/refresh", nil, adminToken)

		resp := env.Get("/api/intel/feed?limit=1")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var page pagination.PageResult[domain.CompetitorIntel]
		resp.Decode(t, &page)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Zendesk", page.Items[0].CompetitorName)
		assert.Equal(t, domain.IntelTypePricing, page.Items[0].IntelType)
		assert.True(t, page.HasMore)
		require.NotEmpty(t, page.Cursor)

		next := env.Get("/api/intel/feed?limit=1&cursor=" + page.Cursor)
		require.Equal(t, http.StatusOK, next.StatusCode)
		var second pagination.PageResult[domain.CompetitorIntel]
		next.Decode(t, &second)
		require.Len(t, second.Items, 1)
		assert.NotEqual(t, page.Items[0].ID, second.Items[0].ID)
		assert.False(t, second.HasMore)
	})

	t.Run("bad cursor", func(t *testing.T) {
		resp := env.Get("/api/intel/feed?cursor=not-base64!")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("live search falls back to live news", func(t *testing.T) {
		resp := env.Get("/api/intel/search?q=helpdesk&count=3")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var res youcom.LiveResult
		resp.Decode(t, &res)
		require.Len(t, res.Web, 1)
		require.Len(t, res.News, 1)
		assert.Equal(t, "Helpdesk market update", res.News[0].Title)
	})

	t.Run("search requires q", func(t *testing.T) {
		resp := env.Get("/api/intel/search")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

// TestE2E_CLIWorkflow drives the onboard binary against the server.
func TestE2E_CLIWorkflow(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.BuildBinaries()

	t.Run("onboard sync without token fails", func(t *testing.T) {
		output, err := env.RunOnboard("", "sync")
		require.Error(t, err)
		assert.Contains(t, output, "401")
	})

	t.Run("onboard sync", func(t *testing.T) {
		output, err := env.RunOnboard(adminToken, "sync")
		require.NoError(t, err, "sync failed: %s", output)
		assert.Contains(t, output, "Stored 1 items (notion 1, github 0, slack 0)")
	})

	t.Run("onboard ask", func(t *testing.T) {
		output, err := env.RunOnboard("", "ask", "When", "do", "releases", "go", "out?")
		require.NoError(t, err, "ask failed: %s", output)
		assert.Contains(t, output, "Thursdays")
		assert.Contains(t, output, "[notion]")
	})

	t.Run("onboard brief --output", func(t *testing.T) {
		output, err := env.RunOnboard("", "brief", "--output")
		require.NoError(t, err, "brief failed: %s", output)
		assert.Contains(t, output, `"summary"`)
		assert.Contains(t, output, "Velora ships weekly")
	})

	t.Run("onboard status", func(t *testing.T) {
		output, err := env.RunOnboard("", "status")
		require.NoError(t, err, "status failed: %s", output)
		assert.Contains(t, output, "Last sync:")
		assert.NotContains(t, output, "Last sync: never")
	})
}
