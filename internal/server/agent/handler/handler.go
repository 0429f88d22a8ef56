package handler

import (
	"time"

	"github.com/Alwanly/service-env-state/internal/server/agent/dto"
	"github.com/Alwanly/service-env-state/internal/server/agent/usecase"
	"github.com/Alwanly/service-env-state/pkg/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type Handler struct {
	uc        usecase.IUseCase
	metrics   *metrics.Recorder
	hostname  string
	version   string
	startTime time.Time
}

func NewHandler(uc usecase.IUseCase, rec *metrics.Recorder, hostname, version string, startTime time.Time) *Handler {
	return &Handler{
		uc:        uc,
		metrics:   rec,
		hostname:  hostname,
		version:   version,
		startTime: startTime,
	}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/env", h.GetEnv)
	if h.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(h.metrics.HTTPHandler()))
	}
}

// Health reports 202 until the first sync and 503 while no sync ever succeeded.
func (h *Handler) Health(c *fiber.Ctx) error {
	response := dto.HealthResponse{
		SyncStatus: h.uc.GetStatus(),
		Hostname:   h.hostname,
		Version:    h.version,
		StartTime:  h.startTime,
		Uptime:     time.Since(h.startTime).String(),
	}

	statusCode := fiber.StatusOK
	if response.Status == dto.StatusSyncFailed {
		statusCode = fiber.StatusServiceUnavailable
	} else if response.Status == dto.StatusSyncing {
		statusCode = fiber.StatusAccepted
	}

	return c.Status(statusCode).JSON(response)
}

func (h *Handler) GetEnv(c *fiber.Ctx) error {
	res := h.uc.GetEnv()
	c.Set(fiber.HeaderETag, res.ETag)
	return c.JSON(res)
}
