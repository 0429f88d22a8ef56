package handler

import (
	"errors"

	"github.com/Alwanly/service-env-state/internal/config"
	"github.com/Alwanly/service-env-state/internal/env"
	"github.com/Alwanly/service-env-state/internal/server/controller/dto"
	"github.com/Alwanly/service-env-state/internal/server/controller/repository"
	"github.com/Alwanly/service-env-state/internal/server/controller/usecase"
	"github.com/Alwanly/service-env-state/pkg/deps"
	"github.com/Alwanly/service-env-state/pkg/logger"
	"github.com/Alwanly/service-env-state/pkg/middleware"
	"github.com/Alwanly/service-env-state/pkg/validator"
	"github.com/Alwanly/service-env-state/pkg/wrapper"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"
)

type Handler struct {
	Logger     *logger.CanonicalLogger
	UseCase    usecase.UseCaseInterface
	Config     *config.ControllerConfig
	Middleware *middleware.AuthMiddleware
}

func NewHandler(d deps.App, cfg *config.ControllerConfig) *Handler {
	repo := repository.NewRepository(d.Database, d.Pub)

	uc := usecase.NewUseCase(usecase.UseCase{
		Repo:    repo,
		Store:   d.Store,
		Config:  cfg,
		Logger:  d.Logger,
		Metrics: d.Metrics,
	})

	h := &Handler{
		Logger:     d.Logger,
		UseCase:    uc,
		Config:     cfg,
		Middleware: d.Middleware,
	}
	h.RegisterRoutes(d)
	return h
}

// RegisterRoutes mounts the controller endpoints on d.Fiber.
func (h *Handler) RegisterRoutes(d deps.App) {
	// Health check endpoint (no auth required)
	d.Fiber.Get("/health", h.health)

	if d.Metrics != nil {
		d.Fiber.Get("/metrics", adaptor.HTTPHandler(d.Metrics.HTTPHandler()))
	}

	// Reader endpoints
	d.Fiber.Get("/env", h.Middleware.BasicAuth(), h.getEnv)
	d.Fiber.Get("/env/meta", h.Middleware.BasicAuth(), h.getEnvMeta)

	// Admin-protected endpoints
	admin := h.Middleware.BasicAuthAdmin()
	envRoutes := d.Fiber.Group("/env")
	envRoutes.Post("/actions", admin, h.dispatchAction)
	envRoutes.Put("/telegraf-interval", admin, h.setTelegrafInterval)
	envRoutes.Put("/host-page", admin, h.setHostPageDisplay)
	envRoutes.Get("/history", admin, h.history)
}

// getEnv godoc
// @Summary      Get environment
// @Description  Current environment snapshot. Supports conditional requests through If-None-Match.
// @Tags         env
// @Produce      json
// @Param        If-None-Match header string false "ETag from a previous response"
// @Success      200 {object} dto.EnvResponse "Current environment"
// @Success      304 "Environment unchanged"
// @Failure      401 {object} wrapper.JSONResult "Unauthorized"
// @Router       /env [get]
// @Security     BasicAuth
func (h *Handler) getEnv(c *fiber.Ctx) error {
	logger.SetOperation(c.UserContext(), "get_env")

	res := h.UseCase.GetEnv(c.UserContext(), c.Get(fiber.HeaderIfNoneMatch))
	if res.ETag != "" {
		c.Set(fiber.HeaderETag, res.ETag)
	}
	if res.Code == fiber.StatusNotModified {
		return c.SendStatus(fiber.StatusNotModified)
	}
	return c.Status(res.Code).JSON(res.Data)
}

// getEnvMeta godoc
// @Summary      Get environment metadata
// @Description  Current environment snapshot together with its version and ETag
// @Tags         env
// @Produce      json
// @Success      200 {object} dto.EnvMetaResponse "Environment with metadata"
// @Failure      401 {object} wrapper.JSONResult "Unauthorized"
// @Router       /env/meta [get]
// @Security     BasicAuth
func (h *Handler) getEnvMeta(c *fiber.Ctx) error {
	logger.SetOperation(c.UserContext(), "get_env_meta")

	res := h.UseCase.GetEnvMeta(c.UserContext())
	return respond(c, res)
}

// dispatchAction godoc
// @Summary      Dispatch an action
// @Description  Apply a {type, payload} action to the environment (admin only). Unknown types are accepted and leave the environment unchanged.
// @Tags         env
// @Accept       json
// @Produce      json
// @Param        request body dto.DispatchActionRequest true "Action"
// @Success      200 {object} wrapper.JSONResult{data=dto.DispatchActionResponse} "Dispatch outcome"
// @Failure      400 {object} wrapper.JSONResult "Invalid action"
// @Failure      401 {object} wrapper.JSONResult "Unauthorized"
// @Router       /env/actions [post]
// @Security     BasicAuth
func (h *Handler) dispatchAction(c *fiber.Ctx) error {
	logger.SetOperation(c.UserContext(), "dispatch_action")

	req := new(dto.DispatchActionRequest)
	if err := c.BodyParser(req); err != nil {
		logger.AddToContext(c.UserContext(), zap.Error(err))
		return badRequest(c, "Invalid request body", nil)
	}

	if err := validator.ValidateStruct(req); err != nil {
		logger.AddToContext(c.UserContext(), zap.Error(err))
		return badRequest(c, "validation failed", validator.TranslateError(err))
	}

	action, err := env.Envelope{Type: env.ActionType(req.Type), Payload: req.Payload}.Action()
	if err != nil {
		logger.AddToContext(c.UserContext(), zap.Error(err))
		if errors.Is(err, env.ErrMissingPayload) {
			return badRequest(c, err.Error(), nil)
		}
		return badRequest(c, "invalid action payload", nil)
	}

	return respond(c, h.UseCase.Dispatch(c.UserContext(), action))
}

// setTelegrafInterval godoc
// @Summary      Set telegraf system interval
// @Description  Replace the telegraf system interval (admin only). The value is stored as given.
// @Tags         env
// @Accept       json
// @Produce      json
// @Param        request body dto.SetTelegrafIntervalRequest true "Interval"
// @Success      200 {object} wrapper.JSONResult{data=dto.DispatchActionResponse} "Dispatch outcome"
// @Failure      400 {object} wrapper.JSONResult "Missing field"
// @Router       /env/telegraf-interval [put]
// @Security     BasicAuth
func (h *Handler) setTelegrafInterval(c *fiber.Ctx) error {
	logger.SetOperation(c.UserContext(), "set_telegraf_interval")

	req := new(dto.SetTelegrafIntervalRequest)
	if err := c.BodyParser(req); err != nil {
		logger.AddToContext(c.UserContext(), zap.Error(err))
		return badRequest(c, "Invalid request body", nil)
	}

	if err := validator.ValidateStruct(req); err != nil {
		logger.AddToContext(c.UserContext(), zap.Error(err))
		return badRequest(c, "validation failed", validator.TranslateError(err))
	}

	return respond(c, h.UseCase.Dispatch(c.UserContext(), env.SetTelegrafInterval(*req.TelegrafSystemInterval)))
}

// setHostPageDisplay godoc
// @Summary      Set host page display status
// @Description  Enable or disable the host page (admin only)
// @Tags         env
// @Accept       json
// @Produce      json
// @Param        request body dto.SetHostPageDisplayRequest true "Host page status"
// @Success      200 {object} wrapper.JSONResult{data=dto.DispatchActionResponse} "Dispatch outcome"
// @Failure      400 {object} wrapper.JSONResult "Missing field"
// @Router       /env/host-page [put]
// @Security     BasicAuth
func (h *Handler) setHostPageDisplay(c *fiber.Ctx) error {
	logger.SetOperation(c.UserContext(), "set_host_page_display")

	req := new(dto.SetHostPageDisplayRequest)
	if err := c.BodyParser(req); err != nil {
		logger.AddToContext(c.UserContext(), zap.Error(err))
		return badRequest(c, "Invalid request body", nil)
	}

	if err := validator.ValidateStruct(req); err != nil {
		logger.AddToContext(c.UserContext(), zap.Error(err))
		return badRequest(c, "validation failed", validator.TranslateError(err))
	}

	return respond(c, h.UseCase.Dispatch(c.UserContext(), env.SetHostPageDisplay(*req.HostPageDisabled)))
}

// history godoc
// @Summary      Environment history
// @Description  Persisted environment snapshots, newest first (admin only)
// @Tags         env
// @Produce      json
// @Param        limit query int false "Maximum snapshots to return"
// @Success      200 {object} wrapper.JSONResult{data=dto.HistoryResponse} "Snapshots"
// @Failure      500 {object} wrapper.JSONResult "Internal server error"
// @Router       /env/history [get]
// @Security     BasicAuth
func (h *Handler) history(c *fiber.Ctx) error {
	logger.SetOperation(c.UserContext(), "env_history")

	limit := c.QueryInt("limit", 0)
	return respond(c, h.UseCase.History(c.UserContext(), limit))
}

// health godoc
// @Summary     Health check
// @Description Get controller health status (unauthenticated)
// @Tags        health
// @Produce     json
// @Success     200 {object} map[string]string
// @Router      /health [get]
func (h *Handler) health(c *fiber.Ctx) error {
	logger.SetOperation(c.UserContext(), "health_check")

	return c.JSON(fiber.Map{"status": "healthy"})
}

func respond(c *fiber.Ctx, res wrapper.JSONResult) error {
	if res.ETag != "" {
		c.Set(fiber.HeaderETag, res.ETag)
	}
	return c.Status(res.Code).JSON(res)
}

func badRequest(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusBadRequest).JSON(wrapper.ResponseFailed(fiber.StatusBadRequest, message, data))
}
