package repository

import (
	"context"
	"sync"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolHandles hands out one dedicated pooled connection per request.
type PoolHandles struct {
	pool *pgxpool.Pool
}

func NewPoolHandles(pool *pgxpool.Pool) *PoolHandles {
	return &PoolHandles{pool: pool}
}

func (p *PoolHandles) Acquire(ctx context.Context) (service.Handle, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to acquire connection", err)
	}
	return &connHandle{conn: conn}, nil
}

func (p *PoolHandles) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

type connHandle struct {
	conn *pgxpool.Conn
	once sync.Once
}

func (h *connHandle) Knowledge() service.KnowledgeRepositoryInterface {
	return newKnowledgeRepository(h.conn)
}

func (h *connHandle) Intel() service.CompetitorIntelRepositoryInterface {
	return &CompetitorIntelRepository{db: h.conn}
}

func (h *connHandle) SyncState() service.SyncStateRepositoryInterface {
	return &SyncStateRepository{db: h.conn}
}

// Release returns the connection to the pool. Extra calls are no-ops.
func (h *connHandle) Release() {
	h.once.Do(h.conn.Release)
}
