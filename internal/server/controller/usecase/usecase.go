package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alwanly/service-env-state/internal/config"
	"github.com/Alwanly/service-env-state/internal/env"
	"github.com/Alwanly/service-env-state/internal/models"
	"github.com/Alwanly/service-env-state/internal/server/controller/dto"
	"github.com/Alwanly/service-env-state/internal/server/controller/repository"
	"github.com/Alwanly/service-env-state/internal/store"
	"github.com/Alwanly/service-env-state/pkg/logger"
	"github.com/Alwanly/service-env-state/pkg/metrics"
	"github.com/Alwanly/service-env-state/pkg/pubsub"
	"github.com/Alwanly/service-env-state/pkg/wrapper"
)

// MaxHistoryLimit caps the number of snapshots a history request returns.
const MaxHistoryLimit = 200

type UseCase struct {
	Repo    repository.IRepository
	Store   *store.Store
	Config  *config.ControllerConfig
	Logger  *logger.CanonicalLogger
	Metrics *metrics.Recorder
}

type UseCaseInterface interface {
	GetEnv(ctx context.Context, ifNoneMatch string) wrapper.JSONResult
	GetEnvMeta(ctx context.Context) wrapper.JSONResult
	Dispatch(ctx context.Context, action env.Action) wrapper.JSONResult
	History(ctx context.Context, limit int) wrapper.JSONResult
}

func NewUseCase(uc UseCase) *UseCase {
	return &uc
}

// RestoreStore builds the live store from the newest persisted snapshot,
// falling back to the reducer default when nothing was persisted.
func RestoreStore(ctx context.Context, repo repository.IRepository, log *logger.CanonicalLogger) (*store.Store, error) {
	snapshot, err := repo.LatestSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		log.Info("no persisted environment snapshot; starting from defaults")
		return store.New(nil), nil
	}

	log.Info("environment restored",
		zap.Int64(logger.FieldEnvVersion, snapshot.Version),
		zap.String("telegraf_system_interval", snapshot.TelegrafSystemInterval),
		zap.Bool("host_page_disabled", snapshot.HostPageDisabled),
	)
	return store.New(snapshot.State(), store.WithVersion(snapshot.Version)), nil
}

func (uc *UseCase) GetEnv(ctx context.Context, ifNoneMatch string) wrapper.JSONResult {
	state, version, etag := uc.Store.Snapshot()
	logger.AddToContext(ctx, zap.Int64(logger.FieldEnvVersion, version))

	if etagMatches(ifNoneMatch, etag) {
		logger.AddToContext(ctx, zap.Bool("not_modified", true))
		return wrapper.ResponseNotModified(etag)
	}

	return wrapper.ResponseSuccess(http.StatusOK, toEnvResponse(state)).WithETag(etag)
}

func (uc *UseCase) GetEnvMeta(ctx context.Context) wrapper.JSONResult {
	state, version, etag := uc.Store.Snapshot()
	return wrapper.ResponseSuccess(http.StatusOK, dto.EnvMetaResponse{
		Version: version,
		ETag:    etag,
		Env:     toEnvResponse(state),
	}).WithETag(etag)
}

// Dispatch applies action to the live store. A change is persisted and then
// announced; failures of either are logged and counted but never undo the
// change already visible to readers.
func (uc *UseCase) Dispatch(ctx context.Context, action env.Action) wrapper.JSONResult {
	if action == nil {
		return wrapper.ResponseFailed(http.StatusBadRequest, "missing action", nil)
	}
	actionType := string(action.Type())
	logger.AddToContext(ctx, zap.String(logger.FieldActionType, actionType))

	res := uc.Store.Apply(action)
	if uc.Metrics != nil {
		uc.Metrics.IncDispatched(actionType, res.Changed)
	}
	logger.AddToContext(ctx,
		zap.Bool(logger.FieldChanged, res.Changed),
		logger.EnvVersion(res.Version),
	)

	resp := dto.DispatchActionResponse{
		Changed: res.Changed,
		Version: res.Version,
		ETag:    res.ETag,
		Env:     toEnvResponse(res.State),
	}
	if !res.Changed {
		return wrapper.ResponseSuccess(http.StatusOK, resp).WithETag(res.ETag)
	}

	correlationID := logger.GetCorrelationID(ctx)
	if correlationID == "" {
		correlationID = uuid.Must(uuid.NewV7()).String()
	}
	resp.CorrelationID = correlationID
	logger.AddToContext(ctx, zap.String(logger.FieldCorrelationID, correlationID))

	if uc.Metrics != nil {
		uc.Metrics.SetEnv(res.Version, res.State.HostPageDisabled)
	}

	snapshot := models.NewEnvSnapshot(res.State, res.Version, res.ETag, actionType, correlationID)
	if err := uc.Repo.SaveSnapshot(ctx, snapshot); err != nil {
		uc.Logger.WithError(err).WithActionType(actionType).Error("failed to persist environment snapshot",
			logger.EnvVersion(res.Version),
			logger.CorrelationID(correlationID),
		)
		if uc.Metrics != nil {
			uc.Metrics.IncPersistError()
		}
	}

	n := pubsub.EnvUpdateNotification{
		Version:       res.Version,
		ETag:          res.ETag,
		ActionType:    actionType,
		CorrelationID: correlationID,
	}
	if err := uc.Repo.PublishEnvUpdate(ctx, n); err != nil {
		uc.Logger.WithError(err).WithActionType(actionType).Error("failed to publish environment update",
			logger.EnvVersion(res.Version),
			logger.CorrelationID(correlationID),
		)
		if uc.Metrics != nil {
			uc.Metrics.IncPublishError()
		}
	}

	return wrapper.ResponseSuccess(http.StatusOK, resp).WithETag(res.ETag)
}

func (uc *UseCase) History(ctx context.Context, limit int) wrapper.JSONResult {
	if limit <= 0 {
		limit = uc.defaultHistoryLimit()
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	snapshots, err := uc.Repo.ListSnapshots(ctx, limit)
	if err != nil {
		logger.AddToContext(ctx, zap.Error(err))
		return wrapper.ResponseFailed(http.StatusInternalServerError, "failed to load history", nil)
	}

	out := make([]dto.SnapshotResponse, len(snapshots))
	for i, s := range snapshots {
		out[i] = dto.SnapshotResponse{
			Version:       s.Version,
			ETag:          s.ETag,
			ActionType:    s.ActionType,
			CorrelationID: s.CorrelationID,
			CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
			Env:           toEnvResponse(s.State()),
		}
	}

	return wrapper.ResponseSuccess(http.StatusOK, dto.HistoryResponse{Snapshots: out, Total: len(out)})
}

func (uc *UseCase) defaultHistoryLimit() int {
	if uc.Config != nil && uc.Config.HistoryLimit > 0 {
		return uc.Config.HistoryLimit
	}
	return 20
}

func toEnvResponse(s *env.State) dto.EnvResponse {
	return dto.EnvResponse{
		TelegrafSystemInterval: s.TelegrafSystemInterval,
		HostPageDisabled:       s.HostPageDisabled,
	}
}

// etagMatches implements If-None-Match comparison, including lists and "*".
func etagMatches(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		candidate = strings.Trim(candidate, `"`)
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
