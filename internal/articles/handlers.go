package articles

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"impacto-backend/internal/middleware"
	"impacto-backend/internal/models"
	"impacto-backend/internal/pkg/response"
	"impacto-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the article HTTP endpoints.
type Handlers struct {
	Service *Service
	Storage *storage.Service
}

func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrArticleNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, ErrForbiddenEdit):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, ErrTitleTooShort), errors.Is(err, ErrNoTags), errors.Is(err, ErrInvalidStatus):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// uploadAttachment stores an article attachment under articles/<slug>/.
// imageOnly rejects anything without an image/* content type.
func (h *Handlers) uploadAttachment(c *fiber.Ctx, slug string, fh *multipart.FileHeader, imageOnly bool) (string, error) {
	contentType := fh.Header.Get("Content-Type")
	if imageOnly && !strings.HasPrefix(contentType, "image/") {
		return "", errors.New("O arquivo deve ser uma imagem (image/*)")
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	name := filepath.Base(fh.Filename)
	destination := fmt.Sprintf("articles/%s/%s", slug, name)
	_, publicURL, err := h.Storage.Upload(c.Context(), destination, data, contentType, true)
	if err != nil {
		return "", err
	}
	return publicURL, nil
}

func respondStorageError(c *fiber.Ctx, err error) error {
	if errors.Is(err, storage.ErrNotConfigured) {
		return response.ServiceUnavailable(c, "Storage não configurado para upload de arquivos.")
	}
	var upstream *storage.UpstreamError
	if errors.As(err, &upstream) {
		return response.Error(c, "Falha ao enviar arquivo.", fiber.StatusBadGateway, nil)
	}
	return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
}

// List GET /articles (public)
func (h *Handlers) List(c *fiber.Ctx) error {
	filter := ListFilter{
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Tag:      c.Query("tag"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}
	if v := c.QueryInt("author_id", 0); v > 0 {
		id := uint(v)
		filter.AuthorID = &id
	}

	articles, total, err := h.Service.List(c.Context(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Artigos listados", articles, fiber.Map{
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// Get GET /articles/:id — numeric IDs and slugs both resolve.
func (h *Handlers) Get(c *fiber.Ctx) error {
	if id, err := c.ParamsInt("id"); err == nil && id > 0 {
		article, err := h.Service.Get(c.Context(), uint(id))
		if err != nil {
			return respondServiceError(c, err)
		}
		return response.Success(c, "Artigo encontrado", article, nil)
	}

	article, err := h.Service.GetBySlug(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Artigo encontrado", article, nil)
}

func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Create POST /articles (multipart: title, body_md, tags, optional
// file_image and file attachments).
func (h *Handlers) Create(c *fiber.Ctx) error {
	author := middleware.GetUser(c)

	title := c.FormValue("title")
	bodyMD := c.FormValue("body_md")
	tags := parseTags(c.FormValue("tags"))

	article, err := h.Service.Create(c.Context(), author, CreateInput{
		Title:  title,
		BodyMD: bodyMD,
		Tags:   tags,
		Status: models.ArticleStatus(c.FormValue("status")),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	var linkImage, linkDoc *string
	if fh, ferr := c.FormFile("file_image"); ferr == nil && fh != nil {
		publicURL, uerr := h.uploadAttachment(c, article.Slug, fh, true)
		if uerr != nil {
			return respondStorageError(c, uerr)
		}
		linkImage = &publicURL
	}
	if fh, ferr := c.FormFile("file"); ferr == nil && fh != nil {
		publicURL, uerr := h.uploadAttachment(c, article.Slug, fh, false)
		if uerr != nil {
			return respondStorageError(c, uerr)
		}
		linkDoc = &publicURL
	}
	if err := h.Service.SetAttachmentLinks(c.Context(), article, linkImage, linkDoc); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	return response.SuccessCreated(c, "Artigo criado", article, nil)
}

// Update PUT /articles/:id (multipart, partial).
func (h *Handlers) Update(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.Error(c, "ID inválido", fiber.StatusBadRequest, nil)
	}

	in := UpdateInput{}
	if v := c.FormValue("title"); v != "" {
		in.Title = &v
	}
	if v := c.FormValue("body_md"); v != "" {
		in.BodyMD = &v
	}
	if v := c.FormValue("tags"); v != "" {
		in.Tags = parseTags(v)
	}
	if v := c.FormValue("status"); v != "" {
		status := models.ArticleStatus(v)
		in.Status = &status
	}

	// Attachments upload under the current slug and flow through the same
	// Update call, so a file-only edit still bumps the version.
	current, err := h.Service.Get(c.Context(), uint(id))
	if err != nil {
		return respondServiceError(c, err)
	}
	if fh, ferr := c.FormFile("file_image"); ferr == nil && fh != nil {
		publicURL, uerr := h.uploadAttachment(c, current.Slug, fh, true)
		if uerr != nil {
			return respondStorageError(c, uerr)
		}
		in.LinkImage = &publicURL
	}
	if fh, ferr := c.FormFile("file"); ferr == nil && fh != nil {
		publicURL, uerr := h.uploadAttachment(c, current.Slug, fh, false)
		if uerr != nil {
			return respondStorageError(c, uerr)
		}
		in.LinkDoc = &publicURL
	}

	article, err := h.Service.Update(c.Context(), actor, uint(id), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Artigo atualizado", article, nil)
}

type approveRequest struct {
	ArticleID uint   `json:"article_id"`
	Approved  bool   `json:"approved"`
	Reason    string `json:"reason"`
}

// Approve POST /articles/approve (admin)
func (h *Handlers) Approve(c *fiber.Ctx) error {
	actor := middleware.GetUser(c)

	var req approveRequest
	if err := c.BodyParser(&req); err != nil || req.ArticleID == 0 {
		return response.Error(c, "article_id é obrigatório", fiber.StatusBadRequest, nil)
	}

	result, err := h.Service.Approve(c.Context(), actor, req.ArticleID, req.Approved, req.Reason)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, result.Message, result.Article, nil)
}
