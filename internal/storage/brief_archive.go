package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloo-solutions/onboardai/internal/domain"
)

const (
	briefPrefix    = "briefs/"
	latestBriefKey = briefPrefix + "latest.json"
	jsonType       = "application/json"
)

// ObjectStore is the subset of S3Client the archive needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// BriefArchive keeps every generated brief under a timestamped key and the
// most recent one under briefs/latest.json.
type BriefArchive struct {
	store ObjectStore
}

func NewBriefArchive(store ObjectStore) *BriefArchive {
	return &BriefArchive{store: store}
}

// BriefKey returns the history key for a brief generated at t.
func BriefKey(t time.Time) string {
	return briefPrefix + t.UTC().Format("20060102T150405Z") + ".json"
}

func (a *BriefArchive) Save(ctx context.Context, result *domain.BriefResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode brief: %w", err)
	}
	if err := a.store.PutObject(ctx, BriefKey(result.GeneratedAt), jsonType, body); err != nil {
		return err
	}
	return a.store.PutObject(ctx, latestBriefKey, jsonType, body)
}

// Latest returns the last saved brief, or domain.ErrBriefNotArchived.
func (a *BriefArchive) Latest(ctx context.Context) (*domain.BriefResult, error) {
	body, err := a.store.GetObject(ctx, latestBriefKey)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, domain.ErrBriefNotArchived
		}
		return nil, err
	}
	var res domain.BriefResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode archived brief: %w", err)
	}
	if res.Brief == nil {
		return nil, domain.ErrBriefNotArchived
	}
	return &res, nil
}
