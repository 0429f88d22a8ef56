package repository

import (
	"context"
	"errors"

	"github.com/Alwanly/service-env-state/internal/env"
)

// ErrUnauthorized is returned when the controller rejects the agent credentials.
var ErrUnauthorized = errors.New("controller rejected credentials")

// IControllerClient defines the interface for communicating with the controller
type IControllerClient interface {
	// GetEnv fetches the controller snapshot. When ifNoneMatch matches the
	// controller ETag, notModified is true and state is nil.
	GetEnv(ctx context.Context, ifNoneMatch string) (state *env.State, etag string, notModified bool, err error)
}
