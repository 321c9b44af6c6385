package plans

import (
	"errors"

	"homeward-backend/internal/middleware"
	"homeward-backend/internal/pkg/response"
	"homeward-backend/internal/progress"
	"homeward-backend/internal/projection"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *Service
}

// CreatePlan POST /api/v1/plans/create-plan — idempotent find-or-create from
// the intake payload. 201 when a plan was created, 200 when it already existed.
func (h *Handlers) CreatePlan(c *fiber.Ctx) error {
	actor := getActor(c)
	if actor == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var in IntakeInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Malformed intake data", fiber.StatusBadRequest, nil)
	}

	plan, created, err := h.Service.FindOrCreate(c.Context(), actor, &in)
	if err != nil {
		return planError(c, err)
	}
	if created {
		return response.SuccessCreated(c, "Plan created", fiber.Map{"plan": plan}, nil)
	}
	return response.Success(c, "Plan already exists", fiber.Map{"plan": plan}, nil)
}

// UpdateSection PATCH /api/v1/plans/update-section — body {section, data}.
func (h *Handlers) UpdateSection(c *fiber.Ctx) error {
	actor := getActor(c)
	if actor == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var body struct {
		Section string          `json:"section"`
		Data    json.RawMessage `json:"data"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Malformed section data", fiber.StatusBadRequest, nil)
	}
	if body.Section == "" {
		return response.Error(c, "Section is required", fiber.StatusBadRequest, nil)
	}

	resp, err := h.Service.UpdateSection(c.Context(), actor, body.Section, body.Data)
	if err != nil {
		return planError(c, err)
	}
	return response.Success(c, "Section saved", resp, nil)
}

// ViewPlan GET /api/v1/plans/view-plan
func (h *Handlers) ViewPlan(c *fiber.Ctx) error {
	actor := getActor(c)
	if actor == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	view, err := h.Service.ViewPlan(c.Context(), actor)
	if err != nil {
		return planError(c, err)
	}
	return response.Success(c, "Plan fetched", view, nil)
}

// ViewProjection GET /api/v1/plans/view-projection
func (h *Handlers) ViewProjection(c *fiber.Ctx) error {
	actor := getActor(c)
	if actor == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	cache, err := h.Service.ViewProjection(c.Context(), actor)
	if err != nil {
		return planError(c, err)
	}
	return response.Success(c, "Projection fetched", cache, nil)
}

// planError translates coordinator errors into the caller-facing taxonomy:
// field-level 400s, indistinguishable 404s for missing/foreign plans, and a
// generic 500 that leaks nothing.
func planError(c *fiber.Ctx, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return response.Error(c, "Validation failed", fiber.StatusBadRequest, ve.Fields)
	}
	var fe *projection.FieldError
	if errors.As(err, &fe) {
		return response.Error(c, fe.Error(), fiber.StatusBadRequest, fiber.Map{fe.Field: fe.Reason})
	}

	switch {
	case errors.Is(err, ErrPlanNotFound):
		return response.Error(c, "Plan not found", fiber.StatusNotFound, nil)
	case errors.Is(err, ErrMalformedSection),
		errors.Is(err, progress.ErrUnknownSection),
		errors.Is(err, progress.ErrSectionLocked),
		errors.Is(err, progress.ErrBackwardsStatus),
		errors.Is(err, projection.ErrHorizonNegative),
		errors.Is(err, projection.ErrHorizonTooLong):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}

	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("plan update failed")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// getActor reads the owning user id from the session user in Locals.
func getActor(c *fiber.Ctx) uuid.UUID {
	u := middleware.GetUser(c)
	if u == nil {
		return uuid.Nil
	}
	m, ok := u.(map[string]interface{})
	if !ok {
		return uuid.Nil
	}
	raw, _ := m["user_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
