package metrics

import (
	"errors"

	"impacto-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the public metrics endpoints.
type Handlers struct {
	Service *Service
}

// Landing GET /metrics/landing
func (h *Handlers) Landing(c *fiber.Ctx) error {
	metrics, err := h.Service.Landing(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Métricas da plataforma", metrics, nil)
}

// Org GET /metrics/orgs/:id
func (h *Handlers) Org(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}

	metrics, err := h.Service.Org(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, ErrOrgNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Métricas da ONG", metrics, nil)
}

// Overview GET /metrics/orgs/:id/overview
func (h *Handlers) Overview(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}

	overview, err := h.Service.Overview(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, ErrOrgNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Visão geral da ONG", overview, nil)
}
