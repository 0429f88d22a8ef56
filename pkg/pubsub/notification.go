package pubsub

import (
	"encoding/json"
	"fmt"
)

// EnvUpdatesChannel carries a notification for every environment change.
const EnvUpdatesChannel = "env-updates"

// EnvUpdateNotification is published after the controller persisted a new
// environment snapshot. Subscribers fetch the snapshot itself over HTTP.
type EnvUpdateNotification struct {
	Version       int64  `json:"version"`
	ETag          string `json:"etag"`
	ActionType    string `json:"action_type"`
	CorrelationID string `json:"correlation_id"`
}

func (n EnvUpdateNotification) Encode() (string, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("failed to marshal env update notification: %w", err)
	}
	return string(payload), nil
}

func DecodeEnvUpdate(payload string) (EnvUpdateNotification, error) {
	var n EnvUpdateNotification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return EnvUpdateNotification{}, fmt.Errorf("failed to unmarshal env update notification: %w", err)
	}
	return n, nil
}
