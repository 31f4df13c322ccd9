package domain

import (
	"strings"
	"time"
)

// IntelType classifies a piece of cached competitor research.
type IntelType string

const (
	IntelTypePricing IntelType = "pricing"
	IntelTypeProduct IntelType = "product"
	IntelTypeMarket  IntelType = "market"
)

// IsValid checks if the intel type is one of the known values.
func (t IntelType) IsValid() bool {
	switch t {
	case IntelTypePricing, IntelTypeProduct, IntelTypeMarket:
		return true
	}
	return false
}

// CompetitorIntel is a cached competitor research snippet. Rows are written
// only by the refresh operation and never updated.
type CompetitorIntel struct {
	ID             int64     `json:"id"`
	CompetitorName string    `json:"competitor_name"`
	IntelType      IntelType `json:"intel_type"`
	Content        string    `json:"content"`
	SourceURL      string    `json:"source_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewCompetitorIntel validates and builds a CompetitorIntel row.
func NewCompetitorIntel(name string, intelType IntelType, content, sourceURL string) (*CompetitorIntel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingRequiredField
	}
	if !intelType.IsValid() {
		return nil, ErrInvalidIntelType
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	return &CompetitorIntel{
		CompetitorName: name,
		IntelType:      intelType,
		Content:        content,
		SourceURL:      sourceURL,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Label renders the intel as a citation title, e.g. "Zendesk (pricing)".
func (c *CompetitorIntel) Label() string {
	return c.CompetitorName + " (" + string(c.IntelType) + ")"
}
