package auth

import (
	"context"
	"strconv"
	"time"

	"impacto-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// RefreshTTL is the fixed refresh-token lifetime.
const RefreshTTL = 7 * 24 * time.Hour

// Claims is the JWT payload for both token types.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user id.
func (c *Claims) UserID() (uint, bool) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// TokenService issues and validates HS256 access/refresh tokens. Refresh
// tokens are additionally persisted so they can be revoked.
type TokenService struct {
	DB        *gorm.DB
	Secret    []byte
	AccessTTL time.Duration
}

func (t *TokenService) sign(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

// IssueAccess creates a short-lived access token.
func (t *TokenService) IssueAccess(userID uint) (string, error) {
	return t.sign(userID, TokenTypeAccess, t.AccessTTL)
}

// IssueRefresh creates a 7-day refresh token and persists it as a RefreshToken
// row so logout can revoke it.
func (t *TokenService) IssueRefresh(ctx context.Context, userID uint) (string, error) {
	token, err := t.sign(userID, TokenTypeRefresh, RefreshTTL)
	if err != nil {
		return "", err
	}
	row := &models.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(RefreshTTL),
	}
	if err := t.DB.WithContext(ctx).Create(row).Error; err != nil {
		return "", err
	}
	return token, nil
}

// Decode validates signature and expiry. Returns nil on any failure: callers
// map nil to a 401, never a 500.
func (t *TokenService) Decode(token string) *Claims {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil
	}
	return claims
}

// DecodeAccess validates an access token and returns the holder's user id.
// Refresh tokens and invalid tokens return ok=false, so the authentication
// middleware can consume tokens without importing this package's claim types.
func (t *TokenService) DecodeAccess(token string) (uint, bool) {
	claims := t.Decode(token)
	if claims == nil || claims.Type != TokenTypeAccess {
		return 0, false
	}
	return claims.UserID()
}

// Revoke marks the matching non-revoked refresh row revoked. No-op when no
// row matches, so logout is idempotent.
func (t *TokenService) Revoke(ctx context.Context, token string, userID uint) error {
	now := time.Now()
	return t.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND user_id = ? AND is_revoked = ?", token, userID, false).
		Updates(map[string]interface{}{
			"is_revoked": true,
			"revoked_at": now,
		}).Error
}
