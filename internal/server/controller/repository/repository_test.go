package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alwanly/service-env-state/internal/env"
	"github.com/Alwanly/service-env-state/internal/models"
	"github.com/Alwanly/service-env-state/pkg/database"
	"github.com/Alwanly/service-env-state/pkg/pubsub"
)

func newTestRepository(t *testing.T, pub pubsub.Publisher) *Repository {
	t.Helper()
	db, err := database.NewSQLiteDB("")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return NewRepository(db, pub)
}

func TestLatestSnapshot_Empty(t *testing.T) {
	repo := newTestRepository(t, nil)

	snap, err := repo.LatestSnapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSaveAndListSnapshots(t *testing.T) {
	repo := newTestRepository(t, nil)
	ctx := context.Background()

	states := []*env.State{
		{TelegrafSystemInterval: "1m"},
		{TelegrafSystemInterval: "5m"},
		{TelegrafSystemInterval: "5m", HostPageDisabled: true},
	}
	for i, s := range states {
		require.NoError(t, repo.SaveSnapshot(ctx, models.NewEnvSnapshot(s, int64(i), "etag", "T", "")))
	}

	latest, err := repo.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(2), latest.Version)
	assert.True(t, latest.State().Equal(states[2]))

	list, err := repo.ListSnapshots(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].Version)
	assert.Equal(t, int64(1), list[1].Version)
}

func TestPublishEnvUpdate(t *testing.T) {
	ps := pubsub.NewMemoryPubSub()
	defer ps.Close()
	repo := newTestRepository(t, ps)

	ch, err := ps.Subscribe(context.Background(), pubsub.EnvUpdatesChannel)
	require.NoError(t, err)

	n := pubsub.EnvUpdateNotification{Version: 1, ETag: "1-x", ActionType: "SET_TELEGRAF_SYSTEM_INTERVAL"}
	require.NoError(t, repo.PublishEnvUpdate(context.Background(), n))

	select {
	case msg := <-ch:
		got, err := pubsub.DecodeEnvUpdate(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	case <-time.After(time.Second):
		t.Fatal("no notification published")
	}
}

func TestPublishEnvUpdate_NoPublisher(t *testing.T) {
	repo := newTestRepository(t, nil)
	assert.NoError(t, repo.PublishEnvUpdate(context.Background(), pubsub.EnvUpdateNotification{}))
}
