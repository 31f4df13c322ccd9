//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/pagination"
	"github.com/cloo-solutions/onboardai/internal/service"
	"github.com/cloo-solutions/onboardai/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pc.Terminate(ctx) })

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)
	return pool
}

func unitVector(hot int) []float32 {
	v := make([]float32, 768)
	v[hot] = 1
	return v
}

func newItem(t *testing.T, source domain.Source, content string, vec []float32, meta domain.Metadata) *domain.KnowledgeItem {
	t.Helper()
	item, err := domain.NewKnowledgeItem(source, content, vec, meta)
	require.NoError(t, err)
	return item
}

func TestKnowledgeRepository(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewKnowledgeRepository(pool)

	t.Run("create batch assigns ids", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		items := []*domain.KnowledgeItem{
			newItem(t, domain.SourceNotion, "Product strategy", unitVector(0), domain.Metadata{"title": "Strategy"}),
			newItem(t, domain.SourceSlack, "Standup notes", nil, domain.Metadata{"channel": "#general", "author": "U1"}),
		}
		require.NoError(t, repo.CreateBatch(ctx, items))
		assert.NotZero(t, items[0].ID)
		assert.Greater(t, items[1].ID, items[0].ID)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("search orders by cosine distance then id", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		far := newItem(t, domain.SourceGitHub, "far", unitVector(5), nil)
		tieA := newItem(t, domain.SourceNotion, "tie a", unitVector(1), nil)
		tieB := newItem(t, domain.SourceNotion, "tie b", unitVector(1), nil)
		noVec := newItem(t, domain.SourceSlack, "no vector", nil, nil)
		require.NoError(t, repo.CreateBatch(ctx, []*domain.KnowledgeItem{far, tieA, tieB, noVec}))

		got, err := repo.SearchSimilar(ctx, unitVector(1), 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"tie a", "tie b", "far"}, []string{got[0].Content, got[1].Content, got[2].Content})

		again, err := repo.SearchSimilar(ctx, unitVector(1), 3)
		require.NoError(t, err)
		assert.Equal(t, got[0].ID, again[0].ID)
		assert.Equal(t, got[1].ID, again[1].ID)
	})

	t.Run("nil vector falls back to recency", func(t *testing.T) {
		got, err := repo.SearchSimilar(ctx, nil, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "no vector", got[0].Content)
		assert.Equal(t, "tie b", got[1].Content)
	})

	t.Run("metadata round trips", func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
		require.NoError(t, repo.CreateBatch(ctx, []*domain.KnowledgeItem{
			newItem(t, domain.SourceSlack, "hello team", nil, domain.Metadata{"channel": "#general", "author": "U1"}),
		}))
		got, err := repo.ListRecent(ctx, 5)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "#general", got[0].Metadata.String("channel"))
		assert.Equal(t, domain.SourceSlack, got[0].Source)
	})
}

func TestCompetitorIntelRepository(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewCompetitorIntelRepository(pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	var rows []*domain.CompetitorIntel
	for i, name := range []string{"Intercom", "Zendesk", "Gorgias", "Zendesk"} {
		ci, err := domain.NewCompetitorIntel(name, domain.IntelTypePricing, name+" update", "")
		require.NoError(t, err)
		ci.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		rows = append(rows, ci)
	}
	require.NoError(t, repo.CreateBatch(ctx, rows))

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, rows[3].ID, recent[0].ID)
	assert.Equal(t, rows[2].ID, recent[1].ID)

	zendesk, err := repo.ListRecentByCompetitors(ctx, []string{"zendesk"}, 5)
	require.NoError(t, err)
	require.Len(t, zendesk, 2)
	assert.Equal(t, "Zendesk", zendesk[0].CompetitorName)

	cursor := &pagination.Cursor{LastID: pagination.FormatID(recent[1].ID), Timestamp: recent[1].CreatedAt}
	page, err := repo.ListWithCursor(ctx, cursor, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, rows[1].ID, page[0].ID)
	assert.Equal(t, rows[0].ID, page[1].ID)
}

func TestSyncStateRepository(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewSyncStateRepository(pool)

	got, err := repo.GetTime(ctx, domain.SyncKeyLastSyncAt)
	require.NoError(t, err)
	assert.Nil(t, got)

	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.SetTime(ctx, domain.SyncKeyLastSyncAt, first))
	second := first.Add(6 * time.Hour)
	require.NoError(t, repo.SetTime(ctx, domain.SyncKeyLastSyncAt, second))

	got, err = repo.GetTime(ctx, domain.SyncKeyLastSyncAt)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, second.Equal(*got))
}

func TestTxRunner_RollsBack(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	runner := NewTxRunner(pool)

	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		item := newItem(t, domain.SourceNotion, "rolled back", nil, nil)
		if err := repos.Knowledge().CreateBatch(ctx, []*domain.KnowledgeItem{item}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	n, err := NewKnowledgeRepository(pool).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPoolHandles(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	handles := NewPoolHandles(pool)

	require.NoError(t, handles.Ping(ctx))

	h, err := handles.Acquire(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pool.Stat().AcquiredConns())

	_, err = h.Knowledge().ListRecent(ctx, 1)
	require.NoError(t, err)

	h.Release()
	h.Release()
	assert.EqualValues(t, 0, pool.Stat().AcquiredConns())
}
