package domain

import "time"

// Checkpoint keys stored in sync_state.
const (
	SyncKeyLastSyncAt = "last_sync_at"
	SyncKeyNextSyncAt = "next_sync_at"
)

// DefaultSyncInterval is the cadence between ingestion passes.
const DefaultSyncInterval = 6 * time.Hour

// SyncStatus is the displayable checkpoint pair.
type SyncStatus struct {
	LastSyncAt *time.Time `json:"last_sync_at"`
	NextSyncAt *time.Time `json:"next_sync_at"`
}

// ResolveSyncStatus fills in a next-run time when none was persisted.
// With only a last run, next is last+interval; with nothing, now+interval.
func ResolveSyncStatus(last, next *time.Time, interval time.Duration, now time.Time) SyncStatus {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	if next == nil {
		var n time.Time
		if last != nil {
			n = last.Add(interval)
		} else {
			n = now.Add(interval)
		}
		next = &n
	}
	return SyncStatus{LastSyncAt: last, NextSyncAt: next}
}

// SyncResult summarizes one ingestion pass.
type SyncResult struct {
	Notion     int        `json:"notion"`
	GitHub     int        `json:"github"`
	Slack      int        `json:"slack"`
	LastSyncAt *time.Time `json:"last_sync_at"`
	NextSyncAt *time.Time `json:"next_sync_at"`
	Sources    []FetchLog `json:"sources,omitempty"`
}

// Total returns the number of items stored across all sources.
func (r *SyncResult) Total() int {
	return r.Notion + r.GitHub + r.Slack
}

// FetchLog records why a source produced the items it did.
type FetchLog struct {
	Source  Source  `json:"source"`
	Outcome Outcome `json:"outcome"`
	Items   int     `json:"items"`
}
