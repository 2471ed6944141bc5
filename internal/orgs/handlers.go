package orgs

import (
	"errors"

	"impacto-backend/internal/emails"
	"impacto-backend/internal/middleware"
	"impacto-backend/internal/pkg/response"
	"impacto-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the org HTTP endpoints.
type Handlers struct {
	Service *Service
}

func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrOrgNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrInvalidInvite):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, emails.ErrNotConfigured):
		return response.ServiceUnavailable(c, "Serviço de email não configurado.")
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

func queryBool(c *fiber.Ctx, key string) *bool {
	switch c.Query(key) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

// List GET /orgs
func (h *Handlers) List(c *fiber.Ctx) error {
	filter := ListFilter{
		Verified: queryBool(c, "verified"),
		Approved: queryBool(c, "approved"),
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}

	orgs, total, err := h.Service.List(c.Context(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "ONGs listadas", orgs, fiber.Map{
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// Get GET /orgs/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}
	org, err := h.Service.Get(c.Context(), uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "ONG encontrada", org, nil)
}

type createRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Description *string `json:"description"`
}

func (r *createRequest) validate(c *fiber.Ctx) error {
	if r.Name == "" || r.Email == "" {
		return response.Error(c, "name e email são obrigatórios", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidEmail(r.Email) {
		return response.Error(c, "Email inválido", fiber.StatusBadRequest, nil)
	}
	return nil
}

// Create POST /orgs
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Corpo da requisição inválido", fiber.StatusBadRequest, nil)
	}
	if err := req.validate(c); err != nil {
		return err
	}

	org, err := h.Service.Create(c.Context(), req.Name, req.Email, req.Description)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.SuccessCreated(c, "ONG criada", org, nil)
}

type updateRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Description *string `json:"description"`
}

// Update PUT /orgs/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Corpo da requisição inválido", fiber.StatusBadRequest, nil)
	}
	if req.Email != nil && !validation.IsValidEmail(*req.Email) {
		return response.Error(c, "Email inválido", fiber.StatusBadRequest, nil)
	}

	org, err := h.Service.Update(c.Context(), uint(id), UpdateInput{
		Name:        req.Name,
		Email:       req.Email,
		Description: req.Description,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "ONG atualizada", org, nil)
}

type validateInviteRequest struct {
	InviteCode string `json:"invite_code"`
}

// ValidateInvite POST /orgs/validate-invite (public)
func (h *Handlers) ValidateInvite(c *fiber.Ctx) error {
	var req validateInviteRequest
	if err := c.BodyParser(&req); err != nil || req.InviteCode == "" {
		return response.Error(c, "invite_code é obrigatório", fiber.StatusBadRequest, nil)
	}

	org, err := h.Service.ValidateInvite(c.Context(), req.InviteCode)
	if err != nil {
		if errors.Is(err, ErrInvalidInvite) {
			return response.Success(c, "Código de convite verificado", fiber.Map{"valid": false}, nil)
		}
		return respondServiceError(c, err)
	}
	return response.Success(c, "Código de convite verificado", fiber.Map{
		"valid":    true,
		"org_name": org.Name,
		"org_id":   org.ID,
	}, nil)
}

// RegenerateInvite POST /orgs/:id/regenerate-invite
func (h *Handlers) RegenerateInvite(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}
	org, err := h.Service.RegenerateInvite(c.Context(), uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Código de convite regenerado", org, nil)
}

// VerifyEmail POST /orgs/:id/verify-email
func (h *Handlers) VerifyEmail(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}
	org, err := h.Service.VerifyEmail(c.Context(), uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Email da ONG verificado", org, nil)
}

type resendInviteRequest struct {
	OrgID uint `json:"org_id"`
}

// ResendInvite POST /orgs/resend-invite
func (h *Handlers) ResendInvite(c *fiber.Ctx) error {
	var req resendInviteRequest
	if err := c.BodyParser(&req); err != nil || req.OrgID == 0 {
		return response.Error(c, "org_id é obrigatório", fiber.StatusBadRequest, nil)
	}
	org, err := h.Service.ResendInvite(c.Context(), req.OrgID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Convite reenviado", fiber.Map{"org_id": org.ID, "email": org.Email}, nil)
}

// InviteByEmail POST /orgs/invite-by-email
func (h *Handlers) InviteByEmail(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Corpo da requisição inválido", fiber.StatusBadRequest, nil)
	}
	if err := req.validate(c); err != nil {
		return err
	}

	org, sent, err := h.Service.InviteByEmail(c.Context(), req.Name, req.Email, req.Description)
	if err != nil {
		return respondServiceError(c, err)
	}
	message := "ONG criada e convite enviado"
	if !sent {
		message = "ONG criada, mas o envio do convite falhou"
	}
	return response.SuccessCreated(c, message, org, fiber.Map{"email_sent": sent})
}

type approveRequest struct {
	OrgID    uint   `json:"org_id"`
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

// Approve POST /orgs/approve (admin)
func (h *Handlers) Approve(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)

	var req approveRequest
	if err := c.BodyParser(&req); err != nil || req.OrgID == 0 {
		return response.Error(c, "org_id é obrigatório", fiber.StatusBadRequest, nil)
	}

	result, err := h.Service.Approve(c.Context(), actor, req.OrgID, req.Approved, req.Reason)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, result.Message, result.Org, nil)
}
