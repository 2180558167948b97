package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/studiumhq/studium-api/internal/dto"
	"github.com/studiumhq/studium-api/internal/service"
	"github.com/studiumhq/studium-api/internal/utils"
)

// MaterialHandler wires single-material routes.
type MaterialHandler struct {
	service *service.MaterialService
	logger  zerolog.Logger
}

// NewMaterialHandler constructs the handler.
func NewMaterialHandler(service *service.MaterialService, logger zerolog.Logger) *MaterialHandler {
	return &MaterialHandler{
		service: service,
		logger:  logger.With().Str("component", "material_handler").Logger(),
	}
}

// Register attaches material endpoints to the router group.
func (h *MaterialHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Post("/:id/progress", h.saveProgress)
}

func (h *MaterialHandler) get(c *fiber.Ctx) error {
	material, err := h.service.Detail(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "material retrieved", material)
}

func (h *MaterialHandler) saveProgress(c *fiber.Ctx) error {
	var payload dto.MaterialProgressRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.SaveProgress(c.Context(), userIDFromContext(c), c.Params("id"), payload); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "progress saved", nil)
}

func (h *MaterialHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrMaterialNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "material not found")
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.SendError(c, fiber.StatusForbidden, "not enrolled in this course")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
