package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Alwanly/service-env-state/internal/config"
	"github.com/Alwanly/service-env-state/internal/env"
	"github.com/Alwanly/service-env-state/internal/server/agent/dto"
	"github.com/Alwanly/service-env-state/internal/server/agent/repository"
	"github.com/Alwanly/service-env-state/internal/store"
	"github.com/Alwanly/service-env-state/pkg/logger"
	"github.com/Alwanly/service-env-state/pkg/metrics"
	"github.com/Alwanly/service-env-state/pkg/poll"
	"github.com/Alwanly/service-env-state/pkg/pubsub"
	"github.com/Alwanly/service-env-state/pkg/retry"
	"go.uber.org/zap"
)

// PollName identifies the env fetch function in the poller.
const PollName = "env"

type UseCase struct {
	client     repository.IControllerClient
	store      *store.Store
	poller     poll.Poller
	subscriber pubsub.Subscriber
	cfg        *config.AgentConfig
	logger     *logger.CanonicalLogger
	metrics    *metrics.Recorder

	mu          sync.Mutex
	status      dto.SyncStatus
	unsubscribe func()
	subCancel   context.CancelFunc
	subDone     chan struct{}
}

// NewUseCase wires the agent. subscriber may be nil for poll-only mode.
func NewUseCase(
	client repository.IControllerClient,
	s *store.Store,
	subscriber pubsub.Subscriber,
	cfg *config.AgentConfig,
	log *logger.CanonicalLogger,
	rec *metrics.Recorder,
) *UseCase {
	uc := &UseCase{
		client:     client,
		store:      s,
		subscriber: subscriber,
		cfg:        cfg,
		logger:     log,
		metrics:    rec,
		status:     dto.SyncStatus{Status: dto.StatusSyncing},
	}
	uc.poller = poll.NewPoller(poll.Config{Interval: cfg.PollInterval, MinInterval: time.Second}, log)
	uc.unsubscribe = s.Subscribe(uc.onChange)
	return uc
}

// PollIntervalFor parses the mirrored interval token. Unparsable or
// non-positive tokens fall back to def.
func PollIntervalFor(token string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(token)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func (uc *UseCase) InitialSync(ctx context.Context) error {
	backoffCfg := retry.Config{
		MaxRetries:     uc.cfg.FetchMaxRetries,
		InitialBackoff: uc.cfg.FetchInitialBackoff,
		MaxBackoff:     uc.cfg.FetchMaxBackoff,
		Multiplier:     uc.cfg.FetchBackoffMultiplier,
		Jitter:         true,
		OnRetry: func(attempt int, wait time.Duration, err error) {
			uc.logger.WithError(err).Warn("initial env sync failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
			)
		},
	}

	err := retry.WithExponentialBackoff(ctx, backoffCfg, func(ctx context.Context) error {
		_, err := uc.FetchOnce(ctx)
		if errors.Is(err, repository.ErrUnauthorized) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("initial env sync: %w", err)
	}
	return nil
}

func (uc *UseCase) FetchOnce(ctx context.Context) (bool, error) {
	uc.mu.Lock()
	etag := uc.status.RemoteETag
	uc.mu.Unlock()

	remote, remoteETag, notModified, err := uc.client.GetEnv(ctx, etag)
	if err != nil {
		uc.recordFailure(err)
		return false, err
	}
	if notModified {
		uc.recordSuccess(remoteETag, "not_modified")
		return false, nil
	}

	actions := env.Diff(uc.store.State(), remote)
	changed := false
	for _, action := range actions {
		_, c := uc.store.Dispatch(action)
		changed = changed || c
	}

	result := "not_modified"
	if changed {
		result = "changed"
		uc.logger.Info("mirrored env changed",
			logger.ETag(remoteETag),
			logger.EnvVersion(uc.store.Version()),
			zap.Int("actions", len(actions)),
		)
	}
	uc.recordSuccess(remoteETag, result)
	return changed, nil
}

func (uc *UseCase) StartPolling(ctx context.Context) error {
	if err := uc.poller.RegisterFetchFunc(PollName, func(ctx context.Context) error {
		_, err := uc.FetchOnce(ctx)
		return err
	}, poll.PollerConfig{Interval: PollIntervalFor(uc.store.State().TelegrafSystemInterval, uc.cfg.PollInterval)}); err != nil {
		return fmt.Errorf("register env poller: %w", err)
	}

	if err := uc.poller.Start(ctx); err != nil {
		return fmt.Errorf("start env poller: %w", err)
	}

	if uc.subscriber != nil {
		if err := uc.subscribe(ctx); err != nil {
			// polling alone still converges
			uc.logger.WithError(err).Warn("env update subscription failed, continuing in poll-only mode")
		}
	}
	return nil
}

func (uc *UseCase) StopPolling() error {
	uc.mu.Lock()
	cancel, done := uc.subCancel, uc.subDone
	uc.subCancel, uc.subDone = nil, nil
	uc.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if uc.unsubscribe != nil {
		uc.unsubscribe()
	}
	return uc.poller.Stop()
}

func (uc *UseCase) GetStatus() dto.SyncStatus {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	status := uc.status
	if d, ok := uc.poller.Interval(PollName); ok {
		status.PollInterval = d.String()
	} else {
		status.PollInterval = PollIntervalFor(uc.store.State().TelegrafSystemInterval, uc.cfg.PollInterval).String()
	}
	return status
}

func (uc *UseCase) GetEnv() dto.EnvResponse {
	state, version, etag := uc.store.Snapshot()

	uc.mu.Lock()
	remoteETag := uc.status.RemoteETag
	uc.mu.Unlock()

	return dto.EnvResponse{
		TelegrafSystemInterval: state.TelegrafSystemInterval,
		HostPageDisabled:       state.HostPageDisabled,
		Version:                version,
		ETag:                   etag,
		RemoteETag:             remoteETag,
	}
}

// onChange follows the mirrored interval with the poll cadence.
func (uc *UseCase) onChange(prev, next *env.State, action env.Action) {
	uc.metrics.SetEnv(uc.store.Version(), next.HostPageDisabled)
	if action != nil {
		uc.metrics.IncDispatched(string(action.Type()), true)
	}

	if prev != nil && prev.TelegrafSystemInterval == next.TelegrafSystemInterval {
		return
	}
	interval := PollIntervalFor(next.TelegrafSystemInterval, uc.cfg.PollInterval)
	if err := uc.poller.SetInterval(PollName, interval); err != nil {
		// not registered until StartPolling; the registration picks up the current state
		uc.logger.Debug("poll interval not applied", zap.Error(err))
	}
}

func (uc *UseCase) subscribe(ctx context.Context) error {
	subCtx, cancel := context.WithCancel(ctx)
	msgs, err := uc.subscriber.Subscribe(subCtx, pubsub.EnvUpdatesChannel)
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	uc.mu.Lock()
	uc.subCancel, uc.subDone = cancel, done
	uc.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					uc.logger.Warn("env update subscription closed")
					return
				}
				uc.handleNotification(msg)
			}
		}
	}()

	uc.logger.Info("subscribed to env updates", zap.String("channel", pubsub.EnvUpdatesChannel))
	return nil
}

func (uc *UseCase) handleNotification(msg pubsub.Message) {
	n, err := pubsub.DecodeEnvUpdate(msg.Payload)
	if err != nil {
		uc.logger.WithError(err).Warn("ignoring malformed env update")
		return
	}

	uc.mu.Lock()
	current := uc.status.RemoteETag
	uc.mu.Unlock()
	if n.ETag != "" && n.ETag == current {
		return
	}

	uc.logger.Debug("env update received",
		logger.ETag(n.ETag),
		logger.CorrelationID(n.CorrelationID),
	)
	if err := uc.poller.Trigger(PollName); err != nil {
		uc.logger.WithError(err).Warn("failed to trigger env fetch")
	}
}

func (uc *UseCase) recordSuccess(etag, result string) {
	uc.metrics.IncPoll(result)

	now := time.Now()
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if etag != "" {
		uc.status.RemoteETag = etag
	}
	uc.status.Status = dto.StatusSynced
	uc.status.LastSyncAt = &now
	uc.status.LastError = ""
	uc.status.FetchCount++
}

func (uc *UseCase) recordFailure(err error) {
	uc.metrics.IncPoll("error")

	uc.mu.Lock()
	uc.status.FailedCount++
	uc.status.LastError = err.Error()
	if uc.status.LastSyncAt == nil {
		uc.status.Status = dto.StatusSyncFailed
	}
	fetches, failed := uc.status.FetchCount, uc.status.FailedCount
	uc.mu.Unlock()

	uc.logger.WithError(err).Warn("env fetch failed",
		zap.Int64(logger.FieldFetchCount, fetches),
		zap.Int64(logger.FieldFailedCount, failed),
	)
}
