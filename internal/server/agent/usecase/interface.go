package usecase

import (
	"context"

	"github.com/Alwanly/service-env-state/internal/server/agent/dto"
)

// IUseCase defines the business logic interface for the agent service
type IUseCase interface {
	// InitialSync fetches the controller snapshot, retrying with backoff
	InitialSync(ctx context.Context) error
	// FetchOnce fetches the controller snapshot and applies any difference locally
	FetchOnce(ctx context.Context) (changed bool, err error)
	// StartPolling starts the env polling process and the optional change subscription
	StartPolling(ctx context.Context) error
	// StopPolling stops the env polling process
	StopPolling() error
	// GetStatus returns the agent sync status
	GetStatus() dto.SyncStatus
	// GetEnv returns the mirrored snapshot
	GetEnv() dto.EnvResponse
}
