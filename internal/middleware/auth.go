package middleware

import (
	"strings"

	"impacto-backend/internal/models"
	"impacto-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const userLocal = "user"

// AccessDecoder resolves a bearer token into the id of its holder. Anything
// that is not a valid access token (refresh tokens, bad signatures, expired
// tokens) returns ok=false.
type AccessDecoder interface {
	DecodeAccess(token string) (userID uint, ok bool)
}

// Authenticate resolves a Bearer access token into the request user. A
// missing or invalid token is not an error here: the request proceeds with no
// identity, and RequireAuth (or a session_id) decides what that means.
func Authenticate(db *gorm.DB, tokens AccessDecoder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Next()
		}
		userID, ok := tokens.DecodeAccess(strings.TrimPrefix(header, "Bearer "))
		if !ok {
			return c.Next()
		}

		var user models.User
		if err := db.WithContext(c.Context()).
			Where("id = ? AND is_active = ?", userID, true).
			First(&user).Error; err != nil {
			return c.Next()
		}
		c.Locals(userLocal, &user)
		return c.Next()
	}
}

// RequireAuth ensures an authenticated user is present. 401 otherwise.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUser(c) == nil {
			return response.Unauthorized(c, "Token inválido ou expirado")
		}
		return c.Next()
	}
}

// GetUser returns the authenticated user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals(userLocal).(*models.User); ok {
		return u
	}
	return nil
}
