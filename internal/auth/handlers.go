package auth

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
	"impacto-backend/internal/pkg/validation"
	"impacto-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles auth endpoints with their services.
type Handlers struct {
	Service *Service
	Storage *storage.Service
}

func optionalForm(c *fiber.Ctx, key string) *string {
	if v := c.FormValue(key); v != "" {
		return &v
	}
	return nil
}

// uploadProfileImage stores the image under users/<id>/profile/ and returns
// its public URL. The filename is replaced wholesale so user input never
// reaches the storage path.
func (h *Handlers) uploadProfileImage(c *fiber.Ctx, userID uint, fh *multipart.FileHeader) (string, error) {
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
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

	ext := filepath.Ext(fh.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	destination := fmt.Sprintf("users/%d/profile/profile_%d%s", userID, userID, ext)
	_, publicURL, err := h.Storage.Upload(c.Context(), destination, data, contentType, true)
	if err != nil {
		return "", err
	}
	return publicURL, nil
}

// Register POST /auth/register (multipart form, optional profile image).
func (h *Handlers) Register(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	name := c.FormValue("name")
	if email == "" || password == "" || name == "" {
		return response.Error(c, "email, password e name são obrigatórios", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidEmail(email) {
		return response.Error(c, "Email inválido", fiber.StatusBadRequest, nil)
	}

	user, pair, err := h.Service.Register(c.Context(), RegisterInput{
		Email:      email,
		Password:   password,
		Name:       name,
		SocialName: optionalForm(c, "social_name"),
		Pronoun:    optionalForm(c, "pronoun"),
		CPF:        optionalForm(c, "cpf"),
	})
	if err != nil {
		switch err {
		case ErrWeakPassword, ErrInvalidCPF, ErrEmailTaken, ErrCPFTaken:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	// Profile image is best-effort during registration: the account is already
	// created, so upload failures must not fail the request.
	if fh, ferr := c.FormFile("profile_image"); ferr == nil && fh != nil {
		if publicURL, uerr := h.uploadProfileImage(c, user.ID, fh); uerr == nil {
			h.Service.DB.WithContext(c.Context()).Model(user).Update("profile_image_url", publicURL)
		} else {
			log.Warn().Err(uerr).Uint("user_id", user.ID).Msg("profile image upload skipped at registration")
		}
	}

	return response.SuccessCreated(c, "Usuário registrado", pair, nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.Error(c, "email e password são obrigatórios", fiber.StatusBadRequest, nil)
	}

	_, pair, err := h.Service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			return response.Unauthorized(c, err.Error())
		case ErrInactiveUser:
			return response.Forbidden(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Login realizado", pair, nil)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh POST /auth/refresh
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return response.Error(c, "refresh_token é obrigatório", fiber.StatusBadRequest, nil)
	}

	access, err := h.Service.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		switch err {
		case ErrInvalidRefreshToken, ErrExpiredRefreshToken:
			return response.Unauthorized(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Token renovado", fiber.Map{
		"access_token": access,
		"token_type":   "bearer",
		"expires_in":   int(h.Service.Tokens.AccessTTL.Seconds()),
	}, nil)
}

// Me GET /auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	return response.Success(c, "Usuário autenticado", user, nil)
}

// UpdateMe PUT /auth/me (multipart, partial update + optional profile image).
func (h *Handlers) UpdateMe(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	db := h.Service.DB.WithContext(c.Context())

	updates := map[string]interface{}{}
	if v := optionalForm(c, "name"); v != nil {
		updates["name"] = *v
	}
	if v := optionalForm(c, "social_name"); v != nil {
		updates["social_name"] = *v
	}
	if v := optionalForm(c, "pronoun"); v != nil {
		updates["pronoun"] = *v
	}
	if v := optionalForm(c, "cpf"); v != nil {
		cpf, ok := validation.NormalizeCPF(*v)
		if !ok {
			return response.Error(c, ErrInvalidCPF.Error(), fiber.StatusBadRequest, nil)
		}
		var existing models.User
		if err := db.Where("cpf = ? AND id <> ?", cpf, user.ID).First(&existing).Error; err == nil {
			return response.Error(c, "CPF já cadastrado para outro usuário", fiber.StatusBadRequest, nil)
		}
		updates["cpf"] = cpf
	}

	if fh, ferr := c.FormFile("profile_image"); ferr == nil && fh != nil {
		publicURL, uerr := h.uploadProfileImage(c, user.ID, fh)
		if uerr != nil {
			if errors.Is(uerr, storage.ErrNotConfigured) {
				return response.ServiceUnavailable(c, "Storage não configurado para upload de arquivos.")
			}
			var upstream *storage.UpstreamError
			if errors.As(uerr, &upstream) {
				return response.Error(c, "Falha ao enviar imagem de perfil.", fiber.StatusBadGateway, nil)
			}
			return response.Error(c, uerr.Error(), fiber.StatusBadRequest, nil)
		}
		updates["profile_image_url"] = publicURL
	}

	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Perfil atualizado", user, nil)
}

// UploadProfileImage POST /auth/upload-profile-image
func (h *Handlers) UploadProfileImage(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	fh, err := c.FormFile("profile_image")
	if err != nil || fh == nil {
		return response.Error(c, "profile_image é obrigatório", fiber.StatusBadRequest, nil)
	}

	publicURL, uerr := h.uploadProfileImage(c, user.ID, fh)
	if uerr != nil {
		if errors.Is(uerr, storage.ErrNotConfigured) {
			return response.ServiceUnavailable(c, "Storage não configurado para upload de arquivos.")
		}
		var upstream *storage.UpstreamError
		if errors.As(uerr, &upstream) {
			return response.Error(c, "Falha ao enviar imagem de perfil.", fiber.StatusBadGateway, nil)
		}
		return response.Error(c, uerr.Error(), fiber.StatusBadRequest, nil)
	}

	if err := h.Service.DB.WithContext(c.Context()).Model(user).Update("profile_image_url", publicURL).Error; err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Imagem de perfil atualizada", user, nil)
}

// AnonymousSession POST /auth/anonymous-session
func (h *Handlers) AnonymousSession(c *fiber.Ctx) error {
	session, err := h.Service.CreateAnonymousSession(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Sessão anônima criada", session, nil)
}

// Logout POST /auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return response.Error(c, "refresh_token é obrigatório", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Logout(c.Context(), req.RefreshToken, user.ID); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.NoContent(c)
}
