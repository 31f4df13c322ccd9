// Package pagination implements keyset cursors for the competitor intel
// feed. The feed is ordered by (created_at DESC, id DESC), so a cursor
// carries both values of the last row served; ids break ties between rows
// written in the same refresh.
package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Cursor is the position after the last row of a page.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

// PageResult is one page of a feed. Cursor is set only when HasMore is.
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

var ErrInvalidCursor = errors.New("invalid cursor format")

// Cursors travel in query strings, so they use the unpadded URL alphabet.
var cursorEncoding = base64.RawURLEncoding

// EncodeCursor returns an opaque cursor for the row (lastID, timestamp).
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := lastID + "|" + timestamp.UTC().Format(time.RFC3339Nano)
	return cursorEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor. An empty string is the first page and
// yields a nil cursor.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := cursorEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	lastID, ts, ok := strings.Cut(string(decoded), "|")
	if !ok || lastID == "" {
		return nil, ErrInvalidCursor
	}
	timestamp, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: lastID, Timestamp: timestamp}, nil
}

// RowID returns LastID as a positive row id.
func (c *Cursor) RowID() (int64, error) {
	id, err := strconv.ParseInt(c.LastID, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidCursor
	}
	return id, nil
}

// FormatID renders a row id for EncodeCursor.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
