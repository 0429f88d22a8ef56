package poll

import (
	"context"
	"time"
)

type PollerConfig struct {
	Interval time.Duration
	// Immediate runs the fetch once as soon as polling starts
	Immediate bool
}

// Poller runs registered fetch functions on independent, adjustable schedules.
type Poller interface {
	// Start begins polling; it returns once every loop is running
	Start(ctx context.Context) error
	// Stop gracefully stops the poller and waits for running fetches
	Stop() error
	// RegisterFetchFunc registers a fetch function; it must be called before Start
	RegisterFetchFunc(name string, fetchFunc FetchFunc, config PollerConfig) error
	// SetInterval changes the schedule of a registered fetch function
	SetInterval(name string, interval time.Duration) error
	// Interval reports the current schedule of a registered fetch function
	Interval(name string) (time.Duration, bool)
	// Trigger requests an immediate fetch outside the schedule
	Trigger(name string) error
}

// FetchFunc fetches once; an error is logged and polling continues
type FetchFunc func(ctx context.Context) error
