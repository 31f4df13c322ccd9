package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const knowledgeColumns = `id, source, content, metadata, created_at`

type KnowledgeRepository struct {
	db dbtx
}

func NewKnowledgeRepository(pool *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: pool}
}

func NewKnowledgeRepositoryWithTx(tx pgx.Tx) *KnowledgeRepository {
	return &KnowledgeRepository{db: tx}
}

func newKnowledgeRepository(db dbtx) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

// CreateBatch inserts all items in one round trip and fills in their ids.
func (r *KnowledgeRepository) CreateBatch(ctx context.Context, items []*domain.KnowledgeItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, item := range items {
		meta, err := json.Marshal(item.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		var embedding any
		if item.HasEmbedding() {
			embedding = pgvector.NewVector(item.Embedding)
		}
		it := item
		batch.Queue(
			`INSERT INTO knowledge_items (source, content, embedding, metadata, created_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			string(it.Source), it.Content, embedding, meta, it.CreatedAt,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&it.ID)
		})
	}
	return r.db.SendBatch(ctx, batch).Close()
}

// SearchSimilar returns up to k items nearest to vec by cosine distance,
// ties broken by insertion order. A nil vector or a database without the
// vector operator falls back to the k most recent items.
func (r *KnowledgeRepository) SearchSimilar(ctx context.Context, vec []float32, k int) ([]*domain.KnowledgeItem, error) {
	if len(vec) == 0 {
		return r.ListRecent(ctx, k)
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+knowledgeColumns+`
		 FROM knowledge_items
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1, id ASC
		 LIMIT $2`,
		pgvector.NewVector(vec), k,
	)
	if err != nil {
		if isVectorUnavailable(err) {
			return r.ListRecent(ctx, k)
		}
		return nil, err
	}
	defer rows.Close()
	items, err := scanKnowledgeRows(rows)
	if err != nil && isVectorUnavailable(err) {
		return r.ListRecent(ctx, k)
	}
	return items, err
}

// ListRecent returns the most recently inserted items, newest first.
func (r *KnowledgeRepository) ListRecent(ctx context.Context, limit int) ([]*domain.KnowledgeItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+knowledgeColumns+`
		 FROM knowledge_items
		 ORDER BY id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKnowledgeRows(rows)
}

func (r *KnowledgeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM knowledge_items`).Scan(&n)
	return n, err
}

func scanKnowledgeRows(rows pgx.Rows) ([]*domain.KnowledgeItem, error) {
	var out []*domain.KnowledgeItem
	for rows.Next() {
		var (
			item   domain.KnowledgeItem
			source string
			meta   []byte
		)
		if err := rows.Scan(&item.ID, &source, &item.Content, &meta, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Source = domain.Source(source)
		item.Metadata = domain.Metadata{}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &item.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for item %d: %w", item.ID, err)
			}
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}
