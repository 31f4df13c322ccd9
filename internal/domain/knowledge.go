package domain

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies where a corpus item was ingested from.
type Source string

const (
	SourceNotion Source = "notion"
	SourceGitHub Source = "github"
	SourceSlack  Source = "slack"
)

// MaxContentChars caps stored item content.
const MaxContentChars = 100_000

// Metadata is display-only provenance attached to a corpus item.
type Metadata map[string]any

// String returns the value under key as a trimmed string, or "" when absent.
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// KnowledgeItem is one normalized, stored unit of knowledge text.
type KnowledgeItem struct {
	ID        int64
	Source    Source
	Content   string
	Embedding []float32
	Metadata  Metadata
	CreatedAt time.Time
}

// NewKnowledgeItem builds an item ready for insertion. Content must already be
// cleaned; it is truncated to MaxContentChars.
func NewKnowledgeItem(source Source, content string, embedding []float32, meta Metadata) (*KnowledgeItem, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if meta == nil {
		meta = Metadata{}
	}
	return &KnowledgeItem{
		Source:    source,
		Content:   Truncate(content, MaxContentChars),
		Embedding: embedding,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// HasEmbedding reports whether the item carries a vector.
func (k *KnowledgeItem) HasEmbedding() bool {
	return len(k.Embedding) > 0
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Ellipsize truncates s to n runes and appends "..." when anything was cut.
func Ellipsize(s string, n int) string {
	t := Truncate(s, n)
	if len(t) < len(s) {
		return t + "..."
	}
	return t
}
