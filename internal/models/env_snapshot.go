package models

import (
	"time"

	"github.com/Alwanly/service-env-state/internal/env"
)

// EnvSnapshot is one persisted environment state, written after every change.
type EnvSnapshot struct {
	ID                     int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Version                int64     `gorm:"column:version;index"`
	ETag                   string    `gorm:"column:etag"`
	ActionType             string    `gorm:"column:action_type"`
	TelegrafSystemInterval string    `gorm:"column:telegraf_system_interval"`
	HostPageDisabled       bool      `gorm:"column:host_page_disabled"`
	CorrelationID          string    `gorm:"column:correlation_id"`
	CreatedAt              time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (EnvSnapshot) TableName() string {
	return "env_snapshots"
}

// State returns the environment snapshot stored in the row.
func (s *EnvSnapshot) State() *env.State {
	return &env.State{
		TelegrafSystemInterval: s.TelegrafSystemInterval,
		HostPageDisabled:       s.HostPageDisabled,
	}
}

// NewEnvSnapshot builds a row for state at version.
func NewEnvSnapshot(state *env.State, version int64, etag, actionType, correlationID string) *EnvSnapshot {
	return &EnvSnapshot{
		Version:                version,
		ETag:                   etag,
		ActionType:             actionType,
		TelegrafSystemInterval: state.TelegrafSystemInterval,
		HostPageDisabled:       state.HostPageDisabled,
		CorrelationID:          correlationID,
	}
}
