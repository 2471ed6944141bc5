package chat

import (
	"errors"

	"impacto-backend/internal/middleware"
	"impacto-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the chat HTTP endpoints.
type Handlers struct {
	Service *Service
}

func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrChatNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, ErrForbiddenChat):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, ErrInvalidOwner), errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrInvalidRating), errors.Is(err, ErrCommentTooLong),
		errors.Is(err, ErrSessionRequired):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

type createRequest struct {
	SessionID *string `json:"session_id"`
	Title     string  `json:"title"`
}

// Create POST /chats — authenticated users own their chats; anonymous
// callers pass the session id they received.
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Corpo da requisição inválido", fiber.StatusBadRequest, nil)
	}

	in := CreateInput{Title: req.Title}
	if actor != nil {
		id := actor.ID
		in.UserID = &id
	} else {
		in.SessionID = req.SessionID
	}

	chat, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.SuccessCreated(c, "Conversa criada", chat, nil)
}

// List GET /chats
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)

	chats, err := h.Service.List(c.Context(), actor, c.Query("session_id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Conversas listadas", chats, nil)
}

// Get GET /chats/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}

	chat, messages, err := h.Service.Get(c.Context(), actor, uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Conversa encontrada", fiber.Map{
		"chat":     chat,
		"messages": messages,
	}, nil)
}

type updateRequest struct {
	Title    *string `json:"title"`
	Summary  *string `json:"summary"`
	IsActive *bool   `json:"is_active"`
}

// Update PATCH /chats/:id
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

	chat, err := h.Service.Update(c.Context(), actor, uint(id), UpdateInput{
		Title:    req.Title,
		Summary:  req.Summary,
		IsActive: req.IsActive,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Conversa atualizada", chat, nil)
}

// Delete DELETE /chats/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}

	if err := h.Service.Delete(c.Context(), actor, uint(id)); err != nil {
		return respondServiceError(c, err)
	}
	return response.NoContent(c)
}

type messageRequest struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Metadata string `json:"metadata"`
}

// AddMessage POST /chats/:id/messages
func (h *Handlers) AddMessage(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}

	var req messageRequest
	if err := c.BodyParser(&req); err != nil || req.Content == "" {
		return response.Error(c, "role e content são obrigatórios", fiber.StatusBadRequest, nil)
	}

	message, err := h.Service.AddMessage(c.Context(), actor, uint(id), req.Role, req.Content, req.Metadata)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.SuccessCreated(c, "Mensagem registrada", message, nil)
}

// Messages GET /chats/:id/messages
func (h *Handlers) Messages(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}

	messages, err := h.Service.Messages(c.Context(), actor, uint(id), c.QueryInt("limit", 100))
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Mensagens listadas", messages, nil)
}

type ratingRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Rate POST /chats/:id/rating
func (h *Handlers) Rate(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}

	var req ratingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Corpo da requisição inválido", fiber.StatusBadRequest, nil)
	}

	chat, err := h.Service.Rate(c.Context(), actor, uint(id), req.Rating, req.Comment)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Avaliação registrada", chat, nil)
}

// Stats GET /chats/stats/ratings (admin)
func (h *Handlers) Stats(c *fiber.Ctx) error {
	stats, err := h.Service.Stats(c.Context(), nil)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Estatísticas de avaliação", stats, nil)
}

// UserStats GET /chats/user/ratings — the caller's own rating stats.
func (h *Handlers) UserStats(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)
	id := actor.ID
	stats, err := h.Service.Stats(c.Context(), &id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Estatísticas de avaliação", stats, nil)
}
