package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alwanly/service-env-state/internal/env"
	"github.com/Alwanly/service-env-state/internal/models"
	"github.com/Alwanly/service-env-state/internal/server/controller/dto"
	"github.com/Alwanly/service-env-state/internal/store"
	"github.com/Alwanly/service-env-state/pkg/logger"
	"github.com/Alwanly/service-env-state/pkg/metrics"
	"github.com/Alwanly/service-env-state/pkg/pubsub"
)

type mockRepository struct {
	saved      []*models.EnvSnapshot
	published  []pubsub.EnvUpdateNotification
	latest     *models.EnvSnapshot
	list       []models.EnvSnapshot
	saveErr    error
	publishErr error
	listLimit  int
}

func (m *mockRepository) SaveSnapshot(ctx context.Context, s *models.EnvSnapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, s)
	return nil
}

func (m *mockRepository) LatestSnapshot(ctx context.Context) (*models.EnvSnapshot, error) {
	return m.latest, nil
}

func (m *mockRepository) ListSnapshots(ctx context.Context, limit int) ([]models.EnvSnapshot, error) {
	m.listLimit = limit
	return m.list, nil
}

func (m *mockRepository) PublishEnvUpdate(ctx context.Context, n pubsub.EnvUpdateNotification) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, n)
	return nil
}

func newTestUseCase(repo *mockRepository) *UseCase {
	return NewUseCase(UseCase{
		Repo:    repo,
		Store:   store.New(nil),
		Logger:  logger.NewNop(),
		Metrics: metrics.NewRecorder("test", nil),
	})
}

func TestDispatch_ChangePersistsAndPublishes(t *testing.T) {
	repo := &mockRepository{}
	uc := newTestUseCase(repo)

	res := uc.Dispatch(context.Background(), env.SetTelegrafInterval("5m"))
	require.Equal(t, http.StatusOK, res.Code)

	data, ok := res.Data.(dto.DispatchActionResponse)
	require.True(t, ok)
	assert.True(t, data.Changed)
	assert.Equal(t, int64(1), data.Version)
	assert.Equal(t, dto.EnvResponse{TelegrafSystemInterval: "5m"}, data.Env)
	assert.NotEmpty(t, data.CorrelationID)
	assert.Equal(t, data.ETag, res.ETag)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, "5m", repo.saved[0].TelegrafSystemInterval)
	assert.Equal(t, string(env.ActionSetTelegrafSystemInterval), repo.saved[0].ActionType)

	require.Len(t, repo.published, 1)
	assert.Equal(t, data.CorrelationID, repo.published[0].CorrelationID)
	assert.Equal(t, int64(1), repo.published[0].Version)
}

func TestDispatch_UnrecognizedIsNoop(t *testing.T) {
	repo := &mockRepository{}
	uc := newTestUseCase(repo)

	res := uc.Dispatch(context.Background(), env.Unrecognized{Tag: "SET_AUTOREFRESH"})
	require.Equal(t, http.StatusOK, res.Code)

	data := res.Data.(dto.DispatchActionResponse)
	assert.False(t, data.Changed)
	assert.Equal(t, int64(0), data.Version)
	assert.Empty(t, repo.saved)
	assert.Empty(t, repo.published)
}

func TestDispatch_UsesCorrelationIDFromContext(t *testing.T) {
	repo := &mockRepository{}
	uc := newTestUseCase(repo)

	ctx := logger.WithCorrelationID(context.Background(), "req-42")
	res := uc.Dispatch(ctx, env.SetHostPageDisplay(true))

	assert.Equal(t, "req-42", res.Data.(dto.DispatchActionResponse).CorrelationID)
	assert.Equal(t, "req-42", repo.saved[0].CorrelationID)
}

func TestDispatch_PersistFailureKeepsChange(t *testing.T) {
	repo := &mockRepository{saveErr: errors.New("disk full"), publishErr: errors.New("redis down")}
	uc := newTestUseCase(repo)

	res := uc.Dispatch(context.Background(), env.SetHostPageDisplay(true))
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, uc.Store.State().HostPageDisabled)
}

func TestDispatch_NilAction(t *testing.T) {
	uc := newTestUseCase(&mockRepository{})
	res := uc.Dispatch(context.Background(), nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestGetEnv_ConditionalRequest(t *testing.T) {
	uc := newTestUseCase(&mockRepository{})

	res := uc.GetEnv(context.Background(), "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, dto.EnvResponse{TelegrafSystemInterval: "1m"}, res.Data)
	etag := res.ETag
	require.NotEmpty(t, etag)

	res = uc.GetEnv(context.Background(), `"`+etag+`"`)
	assert.Equal(t, http.StatusNotModified, res.Code)

	uc.Dispatch(context.Background(), env.SetTelegrafInterval("10s"))
	res = uc.GetEnv(context.Background(), etag)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.NotEqual(t, etag, res.ETag)
}

func TestHistory_LimitBounds(t *testing.T) {
	repo := &mockRepository{list: []models.EnvSnapshot{{Version: 2, TelegrafSystemInterval: "5m"}}}
	uc := newTestUseCase(repo)

	res := uc.History(context.Background(), 0)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 20, repo.listLimit)
	assert.Equal(t, 1, res.Data.(dto.HistoryResponse).Total)

	uc.History(context.Background(), 10_000)
	assert.Equal(t, MaxHistoryLimit, repo.listLimit)
}

func TestRestoreStore(t *testing.T) {
	repo := &mockRepository{}
	s, err := RestoreStore(context.Background(), repo, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, *env.InitialState(), *s.State())

	repo.latest = &models.EnvSnapshot{Version: 9, TelegrafSystemInterval: "2m", HostPageDisabled: true}
	s, err = RestoreStore(context.Background(), repo, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int64(9), s.Version())
	assert.Equal(t, "2m", s.State().TelegrafSystemInterval)
	assert.True(t, s.State().HostPageDisabled)
}

func TestEtagMatches(t *testing.T) {
	assert.True(t, etagMatches("abc", "abc"))
	assert.True(t, etagMatches(`"x", W/"abc"`, "abc"))
	assert.True(t, etagMatches("*", "abc"))
	assert.False(t, etagMatches("", "abc"))
	assert.False(t, etagMatches("abd", "abc"))
}
