package donations

import (
	"errors"

	"impacto-backend/internal/models"
	"impacto-backend/internal/pkg/response"
	"impacto-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the donation HTTP endpoints.
type Handlers struct {
	Service *Service
}

func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrDonationNotFound), errors.Is(err, ErrOrgNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidImpacted):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

type createRequest struct {
	DonorName      string  `json:"donor_name"`
	DonorEmail     *string `json:"donor_email"`
	OrgID          uint    `json:"org_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Message        string  `json:"message"`
	PeopleImpacted int     `json:"people_impacted"`
}

// Create POST /donations (public)
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Corpo da requisição inválido", fiber.StatusBadRequest, nil)
	}
	if req.DonorName == "" || req.OrgID == 0 {
		return response.Error(c, "donor_name e org_id são obrigatórios", fiber.StatusBadRequest, nil)
	}
	if req.DonorEmail != nil && !validation.IsValidEmail(*req.DonorEmail) {
		return response.Error(c, "Email inválido", fiber.StatusBadRequest, nil)
	}

	donation, err := h.Service.Create(c.Context(), CreateInput{
		DonorName:      req.DonorName,
		DonorEmail:     req.DonorEmail,
		OrgID:          req.OrgID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Message:        req.Message,
		PeopleImpacted: req.PeopleImpacted,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.SuccessCreated(c, "Doação registrada", donation, nil)
}

// List GET /donations
func (h *Handlers) List(c *fiber.Ctx) error {
	filter := ListFilter{
		Status:   c.Query("status"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}
	if filter.Status != "" && !models.IsValidDonationStatus(models.DonationStatus(filter.Status)) {
		return response.Error(c, "Status de doação inválido", fiber.StatusBadRequest, nil)
	}
	if v := c.QueryInt("org_id", 0); v > 0 {
		id := uint(v)
		filter.OrgID = &id
	}

	donations, total, totalAmount, err := h.Service.List(c.Context(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Doações listadas", donations, fiber.Map{
		"total":        total,
		"total_amount": totalAmount,
		"page":         filter.Page,
		"page_size":    filter.PageSize,
	})
}

// Get GET /donations/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}

	donation, ledger, err := h.Service.Get(c.Context(), uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Doação encontrada", fiber.Map{
		"donation": donation,
		"ledger":   ledger,
	}, nil)
}

type ledgerRequest struct {
	EntryType   string   `json:"entry_type"`
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
}

// AppendLedger POST /donations/:id/ledger (admin)
func (h *Handlers) AppendLedger(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}

	var req ledgerRequest
	if err := c.BodyParser(&req); err != nil || req.EntryType == "" {
		return response.Error(c, "entry_type é obrigatório", fiber.StatusBadRequest, nil)
	}

	entry, err := h.Service.AppendLedger(c.Context(), uint(id), req.EntryType, req.Description, req.Amount)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.SuccessCreated(c, "Lançamento registrado", entry, nil)
}
