package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"impacto-backend/internal/models"
	"impacto-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service holds auth operations around users and refresh tokens.
type Service struct {
	DB     *gorm.DB
	Tokens *TokenService
}

// TokenPair is the register/login result.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func (s *Service) pairFor(ctx context.Context, userID uint) (*TokenPair, error) {
	access, err := s.Tokens.IssueAccess(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.IssueRefresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.Tokens.AccessTTL.Seconds()),
	}, nil
}

// RegisterInput is the register form payload (profile image handled by the caller).
type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	SocialName *string
	Pronoun    *string
	CPF        *string
}

// Register creates a beneficiário account and issues a token pair. Email and
// CPF uniqueness is checked against all users regardless of role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, *TokenPair, error) {
	if !validation.IsValidPassword(in.Password) {
		return nil, nil, ErrWeakPassword
	}

	var normalizedCPF *string
	if in.CPF != nil && *in.CPF != "" {
		cpf, ok := validation.NormalizeCPF(*in.CPF)
		if !ok {
			return nil, nil, ErrInvalidCPF
		}
		normalizedCPF = &cpf
	}

	var existing models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", in.Email).First(&existing).Error; err == nil {
		return nil, nil, ErrEmailTaken
	}
	if normalizedCPF != nil {
		if err := s.DB.WithContext(ctx).Where("cpf = ?", *normalizedCPF).First(&existing).Error; err == nil {
			return nil, nil, ErrCPFTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Email:        in.Email,
		Name:         in.Name,
		SocialName:   in.SocialName,
		Pronoun:      in.Pronoun,
		CPF:          normalizedCPF,
		PasswordHash: string(hash),
		Role:         models.RoleBeneficiario,
		IsActive:     models.BoolPtr(true),
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, nil, err
	}

	pair, err := s.pairFor(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.Active() {
		return nil, nil, ErrInactiveUser
	}

	pair, err := s.pairFor(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Refresh validates a refresh token (claims + live non-revoked row) and issues
// a new access token. A revoked or expired refresh token never yields one.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims := s.Tokens.Decode(refreshToken)
	if claims == nil || claims.Type != TokenTypeRefresh {
		return "", ErrInvalidRefreshToken
	}
	userID, ok := claims.UserID()
	if !ok {
		return "", ErrInvalidRefreshToken
	}

	var row models.RefreshToken
	err := s.DB.WithContext(ctx).
		Where("token = ? AND is_revoked = ?", refreshToken, false).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}
	if row.ExpiresAt.Before(time.Now()) {
		return "", ErrExpiredRefreshToken
	}

	return s.Tokens.IssueAccess(userID)
}

// Logout revokes the given refresh token for the user. Idempotent.
func (s *Service) Logout(ctx context.Context, refreshToken string, userID uint) error {
	return s.Tokens.Revoke(ctx, refreshToken, userID)
}

// AnonymousSession is the created anonymous chat handle.
type AnonymousSession struct {
	SessionID string `json:"session_id"`
	ChatID    uint   `json:"chat_id"`
	ExpiresIn int    `json:"expires_in"`
}

// CreateAnonymousSession creates an anonymous chat keyed by an unguessable
// session id. Trust is by possession of the id only.
func (s *Service) CreateAnonymousSession(ctx context.Context) (*AnonymousSession, error) {
	sessionID := "anon_" + randomHex(32)
	chat := &models.Chat{
		SessionID: &sessionID,
		IsActive:  true,
	}
	if err := s.DB.WithContext(ctx).Create(chat).Error; err != nil {
		return nil, err
	}
	return &AnonymousSession{
		SessionID: sessionID,
		ChatID:    chat.ID,
		ExpiresIn: 3600 * 24,
	}, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}
