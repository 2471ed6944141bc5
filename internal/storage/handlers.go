package storage

import (
	"errors"
	"io"
	"time"

	"impacto-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles storage endpoints with the service.
type Handlers struct {
	Service *Service
}

// RespondStorageError maps storage failures to the error taxonomy:
// not configured -> 503, upstream failure -> 502.
func RespondStorageError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return response.ServiceUnavailable(c, "Storage não configurado para upload de arquivos.")
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return response.Error(c, "Falha ao comunicar com o storage.", fiber.StatusBadGateway, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// Upload POST /storage/upload (multipart: destination_path + file)
func (h *Handlers) Upload(c *fiber.Ctx) error {
	destination := c.FormValue("destination_path")
	if destination == "" {
		return response.Error(c, "destination_path é obrigatório", fiber.StatusBadRequest, nil)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, "file é obrigatório", fiber.StatusBadRequest, nil)
	}
	f, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, "Falha ao ler arquivo enviado", fiber.StatusBadRequest, nil)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return response.Error(c, "Falha ao ler arquivo enviado", fiber.StatusBadRequest, nil)
	}

	stored, publicURL, err := h.Service.Upload(c.Context(), destination, data, fileHeader.Header.Get("Content-Type"), true)
	if err != nil {
		return RespondStorageError(c, err)
	}
	return response.SuccessCreated(c, "Arquivo enviado", fiber.Map{
		"path":       stored,
		"public_url": publicURL,
	}, nil)
}

type signRequest struct {
	Path             string `json:"path"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

const maxSignTTLSeconds = 60 * 60 * 24 * 7

// Sign POST /storage/sign
func (h *Handlers) Sign(c *fiber.Ctx) error {
	var req signRequest
	if err := c.BodyParser(&req); err != nil || req.Path == "" {
		return response.Error(c, "path é obrigatório", fiber.StatusBadRequest, nil)
	}
	if req.ExpiresInSeconds == 0 {
		req.ExpiresInSeconds = 3600
	}
	if req.ExpiresInSeconds < 1 || req.ExpiresInSeconds > maxSignTTLSeconds {
		return response.Error(c, "expires_in_seconds fora do intervalo permitido", fiber.StatusBadRequest, nil)
	}

	signed, err := h.Service.SignedURL(c.Context(), req.Path, time.Duration(req.ExpiresInSeconds)*time.Second)
	if err != nil {
		return RespondStorageError(c, err)
	}
	return response.Success(c, "URL assinada gerada", fiber.Map{"signed_url": signed}, nil)
}

// Delete DELETE /storage?destination_path=...
func (h *Handlers) Delete(c *fiber.Ctx) error {
	destination := c.Query("destination_path")
	if destination == "" {
		return response.Error(c, "destination_path é obrigatório", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), destination); err != nil {
		return RespondStorageError(c, err)
	}
	return response.NoContent(c)
}
