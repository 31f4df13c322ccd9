package repository

import (
	"context"
	"strings"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const intelColumns = `id, competitor_name, intel_type, content, source_url, created_at`

type CompetitorIntelRepository struct {
	db dbtx
}

func NewCompetitorIntelRepository(pool *pgxpool.Pool) *CompetitorIntelRepository {
	return &CompetitorIntelRepository{db: pool}
}

func NewCompetitorIntelRepositoryWithTx(tx pgx.Tx) *CompetitorIntelRepository {
	return &CompetitorIntelRepository{db: tx}
}

func (r *CompetitorIntelRepository) CreateBatch(ctx context.Context, rows []*domain.CompetitorIntel) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		ci := row
		batch.Queue(
			`INSERT INTO competitor_intel (competitor_name, intel_type, content, source_url, created_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			ci.CompetitorName, string(ci.IntelType), ci.Content, nullableString(ci.SourceURL), ci.CreatedAt,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&ci.ID)
		})
	}
	return r.db.SendBatch(ctx, batch).Close()
}

// ListRecent returns cached intel newest first.
func (r *CompetitorIntelRepository) ListRecent(ctx context.Context, limit int) ([]*domain.CompetitorIntel, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+intelColumns+` FROM competitor_intel
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIntelRows(rows)
}

// ListRecentByCompetitors returns the newest intel for the named competitors,
// matched case-insensitively.
func (r *CompetitorIntelRepository) ListRecentByCompetitors(ctx context.Context, names []string, limit int) ([]*domain.CompetitorIntel, error) {
	if len(names) == 0 {
		return nil, nil
	}
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, strings.ToLower(n))
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+intelColumns+` FROM competitor_intel
		 WHERE lower(competitor_name) = ANY($1)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		lowered, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIntelRows(rows)
}

// ListWithCursor pages through intel newest first, starting after cursor.
func (r *CompetitorIntelRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.CompetitorIntel, error) {
	if cursor == nil {
		return r.ListRecent(ctx, limit)
	}
	lastID, err := cursor.RowID()
	if err != nil {
		return nil, domain.ErrInvalidCursor
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+intelColumns+` FROM competitor_intel
		 WHERE (created_at, id) < ($1, $2)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`,
		cursor.Timestamp, lastID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIntelRows(rows)
}

func scanIntelRows(rows pgx.Rows) ([]*domain.CompetitorIntel, error) {
	var out []*domain.CompetitorIntel
	for rows.Next() {
		var (
			ci        domain.CompetitorIntel
			intelType string
			sourceURL *string
		)
		if err := rows.Scan(&ci.ID, &ci.CompetitorName, &intelType, &ci.Content, &sourceURL, &ci.CreatedAt); err != nil {
			return nil, err
		}
		ci.IntelType = domain.IntelType(intelType)
		if sourceURL != nil {
			ci.SourceURL = *sourceURL
		}
		out = append(out, &ci)
	}
	return out, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
