package auth

import (
	"context"
	"testing"
	"time"

	"impacto-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.Chat{}))

	tokens := &TokenService{
		DB:        db,
		Secret:    []byte("test-secret"),
		AccessTTL: time.Hour,
	}
	return &Service{DB: db, Tokens: tokens}
}

func TestRegister_CreatesBeneficiario(t *testing.T) {
	s := setupAuthTest(t)

	user, pair, err := s.Register(context.Background(), RegisterInput{
		Email:    "maria@example.com",
		Password: "segredo1",
		Name:     "Maria Silva",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.RoleBeneficiario, user.Role)
	assert.Equal(t, "Maria Silva", user.Name)
	assert.True(t, user.Active())
	assert.NotEqual(t, "segredo1", user.PasswordHash)

	require.NotNil(t, pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, 3600, pair.ExpiresIn)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := setupAuthTest(t)

	_, _, err := s.Register(context.Background(), RegisterInput{
		Email: "maria@example.com", Password: "segredo1", Name: "Maria",
	})
	require.NoError(t, err)

	_, _, err = s.Register(context.Background(), RegisterInput{
		Email: "maria@example.com", Password: "outrasenha", Name: "Outra Maria",
	})
	assert.Equal(t, ErrEmailTaken, err)
}

func TestRegister_WeakPassword(t *testing.T) {
	s := setupAuthTest(t)
	_, _, err := s.Register(context.Background(), RegisterInput{
		Email: "x@example.com", Password: "12345", Name: "X",
	})
	assert.Equal(t, ErrWeakPassword, err)
}

func TestRegister_InvalidCPF(t *testing.T) {
	s := setupAuthTest(t)
	cpf := "123"
	_, _, err := s.Register(context.Background(), RegisterInput{
		Email: "x@example.com", Password: "segredo1", Name: "X", CPF: &cpf,
	})
	assert.Equal(t, ErrInvalidCPF, err)
}

func TestRegister_CPFNormalizedAndUnique(t *testing.T) {
	s := setupAuthTest(t)

	cpf := "123.456.789-09"
	user, _, err := s.Register(context.Background(), RegisterInput{
		Email: "a@example.com", Password: "segredo1", Name: "A", CPF: &cpf,
	})
	require.NoError(t, err)
	require.NotNil(t, user.CPF)
	assert.Equal(t, "12345678909", *user.CPF)

	other := "12345678909"
	_, _, err = s.Register(context.Background(), RegisterInput{
		Email: "b@example.com", Password: "segredo1", Name: "B", CPF: &other,
	})
	assert.Equal(t, ErrCPFTaken, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := setupAuthTest(t)
	_, _, err := s.Register(context.Background(), RegisterInput{
		Email: "maria@example.com", Password: "segredo1", Name: "Maria",
	})
	require.NoError(t, err)

	_, _, err = s.Login(context.Background(), "maria@example.com", "errada")
	assert.Equal(t, ErrInvalidCredentials, err)

	_, _, err = s.Login(context.Background(), "ninguem@example.com", "segredo1")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestLogin_InactiveUser(t *testing.T) {
	s := setupAuthTest(t)
	user, _, err := s.Register(context.Background(), RegisterInput{
		Email: "maria@example.com", Password: "segredo1", Name: "Maria",
	})
	require.NoError(t, err)
	require.NoError(t, s.DB.Model(user).Update("is_active", false).Error)

	_, _, err = s.Login(context.Background(), "maria@example.com", "segredo1")
	assert.Equal(t, ErrInactiveUser, err)
}

func TestRefresh_IssuesNewAccessToken(t *testing.T) {
	s := setupAuthTest(t)
	_, pair, err := s.Register(context.Background(), RegisterInput{
		Email: "maria@example.com", Password: "segredo1", Name: "Maria",
	})
	require.NoError(t, err)

	access, err := s.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	claims := s.Tokens.Decode(access)
	require.NotNil(t, claims)
	assert.Equal(t, TokenTypeAccess, claims.Type)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	s := setupAuthTest(t)
	_, pair, err := s.Register(context.Background(), RegisterInput{
		Email: "maria@example.com", Password: "segredo1", Name: "Maria",
	})
	require.NoError(t, err)

	_, err = s.Refresh(context.Background(), pair.AccessToken)
	assert.Equal(t, ErrInvalidRefreshToken, err)
}

func TestRefresh_RevokedToken(t *testing.T) {
	s := setupAuthTest(t)
	user, pair, err := s.Register(context.Background(), RegisterInput{
		Email: "maria@example.com", Password: "segredo1", Name: "Maria",
	})
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background(), pair.RefreshToken, user.ID))

	_, err = s.Refresh(context.Background(), pair.RefreshToken)
	assert.Equal(t, ErrInvalidRefreshToken, err)

	// The row is kept, marked revoked, not deleted.
	var row models.RefreshToken
	require.NoError(t, s.DB.Where("token = ?", pair.RefreshToken).First(&row).Error)
	assert.True(t, row.IsRevoked)
	assert.NotNil(t, row.RevokedAt)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	s := setupAuthTest(t)
	_, pair, err := s.Register(context.Background(), RegisterInput{
		Email: "maria@example.com", Password: "segredo1", Name: "Maria",
	})
	require.NoError(t, err)

	require.NoError(t, s.DB.Model(&models.RefreshToken{}).
		Where("token = ?", pair.RefreshToken).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	_, err = s.Refresh(context.Background(), pair.RefreshToken)
	assert.Equal(t, ErrExpiredRefreshToken, err)
}

func TestRefresh_GarbageToken(t *testing.T) {
	s := setupAuthTest(t)
	_, err := s.Refresh(context.Background(), "not-a-jwt")
	assert.Equal(t, ErrInvalidRefreshToken, err)
}

func TestCreateAnonymousSession(t *testing.T) {
	s := setupAuthTest(t)

	session, err := s.CreateAnonymousSession(context.Background())
	require.NoError(t, err)
	assert.Contains(t, session.SessionID, "anon_")
	assert.Equal(t, 86400, session.ExpiresIn)

	var chat models.Chat
	require.NoError(t, s.DB.First(&chat, session.ChatID).Error)
	require.NotNil(t, chat.SessionID)
	assert.Equal(t, session.SessionID, *chat.SessionID)
	assert.Nil(t, chat.UserID)
}

func TestDecode_WrongSecret(t *testing.T) {
	s := setupAuthTest(t)
	_, pair, err := s.Register(context.Background(), RegisterInput{
		Email: "maria@example.com", Password: "segredo1", Name: "Maria",
	})
	require.NoError(t, err)

	other := &TokenService{Secret: []byte("different"), AccessTTL: time.Hour}
	assert.Nil(t, other.Decode(pair.AccessToken))
}
