package beneficiarios

import (
	"encoding/json"

	"impacto-backend/internal/middleware"
	"impacto-backend/internal/pkg/response"
	"impacto-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Handlers exposes the beneficiário HTTP endpoints.
type Handlers struct {
	Service *Service
}

func respondServiceError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrBeneficiarioNotFound, ErrAssistenteNotFound, ErrOrgNotFound:
		return response.NotFound(c, err.Error())
	case ErrForbiddenAssign, ErrForbiddenScope, ErrForbiddenUnlink:
		return response.Forbidden(c, err.Error())
	case ErrEmailTaken, ErrCPFTaken, ErrInvalidCPF, ErrAlreadyLinked, ErrAssistenteRequired:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// List GET /beneficiarios
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)

	filter := ListFilter{
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}
	if v := c.QueryInt("assistente_id", 0); v > 0 {
		id := uint(v)
		filter.AssistenteID = &id
	}

	users, total, err := h.Service.List(c.Context(), actor, filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Beneficiários listados", users, fiber.Map{
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

type createRequest struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Name         string  `json:"name"`
	SocialName   *string `json:"social_name"`
	Pronoun      *string `json:"pronoun"`
	CPF          *string `json:"cpf"`
	AssistenteID *uint   `json:"assistente_id"`
	OrgID        *uint   `json:"org_id"`
}

// Create POST /beneficiarios
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Corpo da requisição inválido", fiber.StatusBadRequest, nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return response.Error(c, "email, password e name são obrigatórios", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidEmail(req.Email) {
		return response.Error(c, "Email inválido", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidPassword(req.Password) {
		return response.Error(c, "Senha deve ter no mínimo 6 caracteres", fiber.StatusBadRequest, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	user, err := h.Service.Create(c.Context(), actor, CreateInput{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		SocialName:   req.SocialName,
		Pronoun:      req.Pronoun,
		CPF:          req.CPF,
		AssistenteID: req.AssistenteID,
		OrgID:        req.OrgID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.SuccessCreated(c, "Beneficiário criado", user, nil)
}

type updateRequest struct {
	Name         *string `json:"name"`
	SocialName   *string `json:"social_name"`
	Pronoun      *string `json:"pronoun"`
	CPF          *string `json:"cpf"`
	IsActive     *bool   `json:"is_active"`
	AssistenteID *uint   `json:"assistente_id"`
	OrgID        *uint   `json:"org_id"`

	hasAssistente bool
	hasOrg        bool
}

// UnmarshalJSON tracks presence of the link fields so that an explicit
// null means unlink rather than no change.
func (r *updateRequest) UnmarshalJSON(data []byte) error {
	type plain updateRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = updateRequest(p)

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	_, r.hasAssistente = raw["assistente_id"]
	_, r.hasOrg = raw["org_id"]
	return nil
}

// Update PUT /beneficiarios/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Corpo da requisição inválido", fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.Update(c.Context(), actor, uint(id), UpdateInput{
		Name:          req.Name,
		SocialName:    req.SocialName,
		Pronoun:       req.Pronoun,
		CPF:           req.CPF,
		IsActive:      req.IsActive,
		SetAssistente: req.hasAssistente,
		AssistenteID:  req.AssistenteID,
		SetOrg:        req.hasOrg,
		OrgID:         req.OrgID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Beneficiário atualizado", user, nil)
}

type vincularRequest struct {
	BeneficiarioID uint `json:"beneficiario_id"`
	AssistenteID   uint `json:"assistente_id"`
}

// Vincular POST /beneficiarios/vincular
func (h *Handlers) Vincular(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)

	var req vincularRequest
	if err := c.BodyParser(&req); err != nil || req.BeneficiarioID == 0 || req.AssistenteID == 0 {
		return response.Error(c, "beneficiario_id e assistente_id são obrigatórios", fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.Vincular(c.Context(), actor, req.BeneficiarioID, req.AssistenteID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Beneficiário vinculado", user, nil)
}
