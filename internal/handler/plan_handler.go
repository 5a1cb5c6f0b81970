package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ArtlessApps/ruckplan/internal/domain"
	"github.com/ArtlessApps/ruckplan/internal/middleware"
	"github.com/ArtlessApps/ruckplan/internal/service"
	"github.com/ArtlessApps/ruckplan/internal/telemetry"
)

// PlanHandler serves the member plan surface: schedule views, enrollment and
// the completion log.
type PlanHandler struct {
	planService *service.PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

// GetPlan handles GET /v1/me/plan
func (h *PlanHandler) GetPlan(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	plan, err := h.planService.BuildPlan(c.Context(), userID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(plan)
}

// GetTodayView handles GET /v1/me/plan/today
func (h *PlanHandler) GetTodayView(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	view, err := h.planService.TodayView(c.Context(), userID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(view)
}

// GetProgressSummary returns completion stats for the current enrollment.
func (h *PlanHandler) GetProgressSummary(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	summary, err := h.planService.GetProgressSummary(c.Context(), userID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(summary)
}

type enrollRequest struct {
	ProgramID     string    `json:"program_id"`
	StartDate     time.Time `json:"start_date"`
	PreferredDays []int     `json:"preferred_days"`
}

// Enroll handles POST /v1/me/enroll
func (h *PlanHandler) Enroll(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req enrollRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.ProgramID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "program_id is required"})
	}
	if req.StartDate.IsZero() {
		req.StartDate = time.Now()
	}

	cfg, err := h.planService.Enroll(c.Context(), userID, req.ProgramID, req.StartDate, req.PreferredDays)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cfg)
}

// GetScheduleConfig handles GET /v1/me/schedule-config
func (h *PlanHandler) GetScheduleConfig(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	cfg, err := h.planService.GetScheduleConfig(c.Context(), userID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(cfg)
}

type updateScheduleConfigRequest struct {
	PreferredDays []int `json:"preferred_days"`
}

// UpdateScheduleConfig handles PATCH /v1/me/schedule-config
func (h *PlanHandler) UpdateScheduleConfig(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req updateScheduleConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	cfg, err := h.planService.UpdatePreferredDays(c.Context(), userID, req.PreferredDays)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(cfg)
}

// Unenroll handles DELETE /v1/me/schedule-config
func (h *PlanHandler) Unenroll(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	if err := h.planService.Unenroll(c.Context(), userID); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "unenrolled"})
}

// ListCompletions handles GET /v1/me/completions
func (h *PlanHandler) ListCompletions(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	records, err := h.planService.ListCompletions(c.Context(), userID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(records)
}

// LogCompletion handles POST /v1/me/completions
func (h *PlanHandler) LogCompletion(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var record domain.CompletionRecord
	if err := c.BodyParser(&record); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	saved, err := h.planService.LogCompletion(c.Context(), userID, &record)
	if err != nil {
		return mapDomainError(c, err)
	}

	telemetry.AddSpanEvent(c, "completion.logged",
		attribute.String("completion.client_id", saved.ClientID),
		attribute.Int("completion.program_day", saved.ProgramWorkoutDay),
	)

	return c.Status(fiber.StatusCreated).JSON(saved)
}

// DeleteCompletion handles DELETE /v1/me/completions/:id
func (h *PlanHandler) DeleteCompletion(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	if err := h.planService.RemoveCompletion(c.Context(), userID, c.Params("id")); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}
