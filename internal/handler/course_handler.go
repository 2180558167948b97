package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/studiumhq/studium-api/internal/service"
	"github.com/studiumhq/studium-api/internal/utils"
)

// CourseHandler wires the student's course routes, including the nested
// material, assignment, test, grade and chat-channel listings.
type CourseHandler struct {
	courses     *service.CourseService
	materials   *service.MaterialService
	assignments *service.AssignmentService
	quizzes     *service.QuizService
	grades      *service.GradeService
	chat        *service.ChatService
	logger      zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(
	courses *service.CourseService,
	materials *service.MaterialService,
	assignments *service.AssignmentService,
	quizzes *service.QuizService,
	grades *service.GradeService,
	chat *service.ChatService,
	logger zerolog.Logger,
) *CourseHandler {
	return &CourseHandler{
		courses:     courses,
		materials:   materials,
		assignments: assignments,
		quizzes:     quizzes,
		grades:      grades,
		chat:        chat,
		logger:      logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course endpoints to the router group.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("/:id/overview", h.overview)
	router.Get("/:id/materials", h.listMaterials)
	router.Get("/:id/assignments", h.listAssignments)
	router.Get("/:id/tests", h.listTests)
	router.Get("/:id/grades", h.gradeReport)
	router.Get("/:id/chat/channels", h.listChannels)
}

// RegisterStudent attaches the student-scoped course listing.
func (h *CourseHandler) RegisterStudent(router fiber.Router) {
	router.Get("/courses", h.list)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.courses.List(c.Context(), userIDFromContext(c), c.Query("status"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) overview(c *fiber.Ctx) error {
	overview, err := h.courses.Overview(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "course retrieved", overview)
}

func (h *CourseHandler) listMaterials(c *fiber.Ctx) error {
	tree, err := h.materials.Tree(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "materials retrieved", tree)
}

func (h *CourseHandler) listAssignments(c *fiber.Ctx) error {
	assignments, err := h.assignments.List(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *CourseHandler) listTests(c *fiber.Ctx) error {
	tests, err := h.quizzes.List(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "tests retrieved", tests)
}

func (h *CourseHandler) gradeReport(c *fiber.Ctx) error {
	report, err := h.grades.Report(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "grades retrieved", report)
}

func (h *CourseHandler) listChannels(c *fiber.Ctx) error {
	channels, err := h.chat.Channels(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "channels retrieved", channels)
}

func (h *CourseHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.SendError(c, fiber.StatusForbidden, "not enrolled in this course")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
