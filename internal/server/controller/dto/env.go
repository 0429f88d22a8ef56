package dto

import "encoding/json"

// EnvResponse is the environment snapshot as the UI consumes it.
type EnvResponse struct {
	TelegrafSystemInterval string `json:"telegrafSystemInterval" example:"1m"`
	HostPageDisabled       bool   `json:"hostPageDisabled" example:"false"`
}

// EnvMetaResponse describes the snapshot currently held by the controller.
type EnvMetaResponse struct {
	Version int64       `json:"version" example:"3"`
	ETag    string      `json:"etag" example:"3-9f2c1a7b3e4d5c6b"`
	Env     EnvResponse `json:"env"`
}

// DispatchActionRequest is a wire action.
type DispatchActionRequest struct {
	Type    string          `json:"type" validate:"required" example:"SET_TELEGRAF_SYSTEM_INTERVAL"`
	Payload json.RawMessage `json:"payload,omitempty" swaggertype:"object"`
}

// DispatchActionResponse reports the outcome of a dispatch.
type DispatchActionResponse struct {
	Changed       bool        `json:"changed" example:"true"`
	Version       int64       `json:"version" example:"4"`
	ETag          string      `json:"etag" example:"4-0b1c2d3e4f5a6b7c"`
	CorrelationID string      `json:"correlation_id,omitempty" example:"0190d6a8-5b1e-7c3d-9e2f-1a2b3c4d5e6f"`
	Env           EnvResponse `json:"env"`
}

// SetTelegrafIntervalRequest only requires the field to be present; its
// content is stored as given.
type SetTelegrafIntervalRequest struct {
	TelegrafSystemInterval *string `json:"telegrafSystemInterval" validate:"required" example:"5m"`
}

type SetHostPageDisplayRequest struct {
	HostPageDisabled *bool `json:"hostPageDisabled" validate:"required" example:"true"`
}

// SnapshotResponse is one persisted snapshot.
type SnapshotResponse struct {
	Version       int64       `json:"version"`
	ETag          string      `json:"etag"`
	ActionType    string      `json:"action_type"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	CreatedAt     string      `json:"created_at"`
	Env           EnvResponse `json:"env"`
}

type HistoryResponse struct {
	Snapshots []SnapshotResponse `json:"snapshots"`
	Total     int                `json:"total"`
}
