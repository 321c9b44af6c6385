package progress

import (
	"errors"

	"homeward-backend/internal/middleware"
	"homeward-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// ViewProgress GET /api/v1/progress/view-progress
func (h *Handlers) ViewProgress(c *fiber.Ctx) error {
	actor := actorID(c)
	if actor == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	view, err := h.Service.ViewProgress(c.Context(), actor)
	if err != nil {
		return progressError(c, err)
	}
	return response.Success(c, "Progress fetched", view, nil)
}

// ResetProgress DELETE /api/v1/progress/reset-progress
func (h *Handlers) ResetProgress(c *fiber.Ctx) error {
	actor := actorID(c)
	if actor == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	view, err := h.Service.ResetProgress(c.Context(), actor)
	if err != nil {
		return progressError(c, err)
	}
	return response.Success(c, "Progress reset", view, nil)
}

func progressError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrProgressNotFound) {
		return response.Error(c, "Plan not found", fiber.StatusNotFound, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

func actorID(c *fiber.Ctx) uuid.UUID {
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
