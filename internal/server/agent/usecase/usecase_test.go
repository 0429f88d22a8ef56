package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alwanly/service-env-state/internal/config"
	"github.com/Alwanly/service-env-state/internal/env"
	"github.com/Alwanly/service-env-state/internal/server/agent/dto"
	"github.com/Alwanly/service-env-state/internal/server/agent/repository"
	"github.com/Alwanly/service-env-state/internal/store"
	"github.com/Alwanly/service-env-state/pkg/logger"
	"github.com/Alwanly/service-env-state/pkg/metrics"
	"github.com/Alwanly/service-env-state/pkg/pubsub"
)

type mockControllerClient struct {
	mu        sync.Mutex
	state     *env.State
	etag      string
	err       error
	calls     int
	lastMatch string
}

func (m *mockControllerClient) GetEnv(ctx context.Context, ifNoneMatch string) (*env.State, string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastMatch = ifNoneMatch
	if m.err != nil {
		return nil, "", false, m.err
	}
	if ifNoneMatch != "" && ifNoneMatch == m.etag {
		return nil, m.etag, true, nil
	}
	s := *m.state
	return &s, m.etag, false, nil
}

func (m *mockControllerClient) set(state *env.State, etag string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state, m.etag, m.err = state, etag, err
}

func (m *mockControllerClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testConfig() *config.AgentConfig {
	return &config.AgentConfig{
		PollInterval:           time.Hour,
		FetchMaxRetries:        2,
		FetchInitialBackoff:    time.Millisecond,
		FetchMaxBackoff:        5 * time.Millisecond,
		FetchBackoffMultiplier: 2,
	}
}

func newTestUseCase(client *mockControllerClient, sub pubsub.Subscriber) (*UseCase, *store.Store) {
	s := store.New(nil)
	return NewUseCase(client, s, sub, testConfig(), logger.NewNop(), metrics.NewRecorder("test", nil)), s
}

func TestFetchOnce_AppliesRemoteSnapshot(t *testing.T) {
	client := &mockControllerClient{}
	client.set(&env.State{TelegrafSystemInterval: "5m", HostPageDisabled: true}, "2-aa", nil)
	uc, s := newTestUseCase(client, nil)

	var seen []env.ActionType
	s.Subscribe(func(prev, next *env.State, action env.Action) {
		seen = append(seen, action.Type())
	})

	changed, err := uc.FetchOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, &env.State{TelegrafSystemInterval: "5m", HostPageDisabled: true}, s.State())
	assert.Equal(t, []env.ActionType{env.ActionSetTelegrafSystemInterval, env.ActionSetHostPageDisplayStatus}, seen)

	status := uc.GetStatus()
	assert.Equal(t, dto.StatusSynced, status.Status)
	assert.Equal(t, "2-aa", status.RemoteETag)
	assert.Equal(t, int64(1), status.FetchCount)
	assert.Equal(t, "5m0s", status.PollInterval)
}

func TestFetchOnce_NotModifiedKeepsStore(t *testing.T) {
	client := &mockControllerClient{}
	client.set(&env.State{TelegrafSystemInterval: "5m"}, "1-aa", nil)
	uc, s := newTestUseCase(client, nil)

	_, err := uc.FetchOnce(context.Background())
	require.NoError(t, err)
	before := s.State()
	version := s.Version()

	changed, err := uc.FetchOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "1-aa", client.lastMatch)
	assert.Same(t, before, s.State())
	assert.Equal(t, version, s.Version())
}

func TestFetchOnce_IdenticalSnapshotIsNoChange(t *testing.T) {
	client := &mockControllerClient{}
	client.set(env.InitialState(), "0-aa", nil)
	uc, s := newTestUseCase(client, nil)

	changed, err := uc.FetchOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, int64(0), s.Version())
}

func TestFetchOnce_ErrorRecordsFailure(t *testing.T) {
	client := &mockControllerClient{}
	client.set(nil, "", errors.New("connection refused"))
	uc, _ := newTestUseCase(client, nil)

	_, err := uc.FetchOnce(context.Background())
	require.Error(t, err)

	status := uc.GetStatus()
	assert.Equal(t, dto.StatusSyncFailed, status.Status)
	assert.Equal(t, int64(1), status.FailedCount)
	assert.Contains(t, status.LastError, "connection refused")
}

func TestInitialSync_RetriesThenFails(t *testing.T) {
	client := &mockControllerClient{}
	client.set(nil, "", errors.New("down"))
	uc, _ := newTestUseCase(client, nil)

	err := uc.InitialSync(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, client.callCount())
}

func TestInitialSync_Succeeds(t *testing.T) {
	client := &mockControllerClient{}
	client.set(&env.State{TelegrafSystemInterval: "30s"}, "1-aa", nil)
	uc, s := newTestUseCase(client, nil)

	require.NoError(t, uc.InitialSync(context.Background()))
	assert.Equal(t, "30s", s.State().TelegrafSystemInterval)
}

func TestPollIntervalFor(t *testing.T) {
	def := 90 * time.Second
	tests := []struct {
		token string
		want  time.Duration
	}{
		{"1m", time.Minute},
		{"10s", 10 * time.Second},
		{"", def},
		{"soon", def},
		{"0s", def},
		{"-5m", def},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, PollIntervalFor(tt.token, def))
		})
	}
}

func TestStartPolling_FollowsMirroredInterval(t *testing.T) {
	client := &mockControllerClient{}
	client.set(&env.State{TelegrafSystemInterval: "1m"}, "1-aa", nil)
	uc, _ := newTestUseCase(client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, uc.StartPolling(ctx))
	defer uc.StopPolling()

	client.set(&env.State{TelegrafSystemInterval: "2m"}, "2-bb", nil)
	_, err := uc.FetchOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2m0s", uc.GetStatus().PollInterval)

	client.set(&env.State{TelegrafSystemInterval: "whenever"}, "3-cc", nil)
	_, err = uc.FetchOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1h0m0s", uc.GetStatus().PollInterval)
	assert.Equal(t, "whenever", uc.GetEnv().TelegrafSystemInterval)
}

func TestSubscription_TriggersFetch(t *testing.T) {
	client := &mockControllerClient{}
	client.set(env.InitialState(), "0-aa", nil)
	ps := pubsub.NewMemoryPubSub()
	defer ps.Close()
	uc, s := newTestUseCase(client, ps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, uc.StartPolling(ctx))
	defer uc.StopPolling()

	client.set(&env.State{TelegrafSystemInterval: "1m", HostPageDisabled: true}, "1-bb", nil)
	payload, err := pubsub.EnvUpdateNotification{Version: 1, ETag: "1-bb", ActionType: string(env.ActionSetHostPageDisplayStatus)}.Encode()
	require.NoError(t, err)
	require.NoError(t, ps.Publish(ctx, pubsub.EnvUpdatesChannel, payload))

	require.Eventually(t, func() bool {
		return s.State().HostPageDisabled
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "1-bb", uc.GetEnv().RemoteETag)
}

func TestInitialSync_UnauthorizedIsNotRetried(t *testing.T) {
	client := &mockControllerClient{}
	client.set(nil, "", fmt.Errorf("get env: %w", repository.ErrUnauthorized))
	uc, _ := newTestUseCase(client, nil)

	err := uc.InitialSync(context.Background())
	require.ErrorIs(t, err, repository.ErrUnauthorized)
	assert.Equal(t, 1, client.callCount())
}
