package dto

import "time"

type SyncState string

const (
	StatusSyncing    SyncState = "syncing"
	StatusSynced     SyncState = "synced"
	StatusSyncFailed SyncState = "sync_failed"
)

// SyncStatus describes how the mirror relates to the controller.
type SyncStatus struct {
	Status       SyncState  `json:"status"`
	RemoteETag   string     `json:"remote_etag,omitempty"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	FetchCount   int64      `json:"fetch_count"`
	FailedCount  int64      `json:"failed_count"`
	PollInterval string     `json:"poll_interval"`
}

type HealthResponse struct {
	SyncStatus
	Hostname  string    `json:"hostname,omitempty"`
	Version   string    `json:"version,omitempty"`
	StartTime time.Time `json:"start_time"`
	Uptime    string    `json:"uptime"`
}
