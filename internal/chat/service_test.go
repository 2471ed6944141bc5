package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"impacto-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupChatTest(t *testing.T) (*Service, *models.User) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Chat{}, &models.ChatMessage{}))

	user := &models.User{Email: "maria@example.com", Name: "Maria", Role: models.RoleBeneficiario, IsActive: models.BoolPtr(true)}
	require.NoError(t, db.Create(user).Error)

	return &Service{DB: db}, user
}

func ownChat(t *testing.T, s *Service, user *models.User) *models.Chat {
	t.Helper()
	id := user.ID
	chat, err := s.Create(context.Background(), CreateInput{UserID: &id})
	require.NoError(t, err)
	return chat
}

func TestCreate_RequiresExactlyOneOwner(t *testing.T) {
	s, user := setupChatTest(t)
	ctx := context.Background()

	_, err := s.Create(ctx, CreateInput{})
	assert.Equal(t, ErrInvalidOwner, err)

	session := "anon_abc"
	id := user.ID
	_, err = s.Create(ctx, CreateInput{UserID: &id, SessionID: &session})
	assert.Equal(t, ErrInvalidOwner, err)

	chat, err := s.Create(ctx, CreateInput{SessionID: &session})
	require.NoError(t, err)
	assert.Nil(t, chat.UserID)
	assert.True(t, chat.IsActive)
}

func TestAccess_OtherUserForbidden(t *testing.T) {
	s, user := setupChatTest(t)
	chat := ownChat(t, s, user)

	other := &models.User{Email: "outro@example.com", Name: "Outro", Role: models.RoleBeneficiario, IsActive: models.BoolPtr(true)}
	require.NoError(t, s.DB.Create(other).Error)

	_, _, err := s.Get(context.Background(), other, chat.ID)
	assert.Equal(t, ErrForbiddenChat, err)

	_, _, err = s.Get(context.Background(), nil, chat.ID)
	assert.Equal(t, ErrForbiddenChat, err)
}

func TestAccess_AdminAllowed(t *testing.T) {
	s, user := setupChatTest(t)
	chat := ownChat(t, s, user)

	admin := &models.User{Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin, IsActive: models.BoolPtr(true)}
	require.NoError(t, s.DB.Create(admin).Error)

	_, _, err := s.Get(context.Background(), admin, chat.ID)
	assert.NoError(t, err)
}

func TestMessages_RoleValidationAndOrder(t *testing.T) {
	s, user := setupChatTest(t)
	ctx := context.Background()
	chat := ownChat(t, s, user)

	_, err := s.AddMessage(ctx, user, chat.ID, "system", "oi", "")
	assert.Equal(t, ErrInvalidRole, err)

	_, err = s.AddMessage(ctx, user, chat.ID, models.MessageRoleUser, "preciso de ajuda", "")
	require.NoError(t, err)
	_, err = s.AddMessage(ctx, user, chat.ID, models.MessageRoleAssistant, "claro, me conte mais", "")
	require.NoError(t, err)

	messages, err := s.Messages(ctx, user, chat.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.MessageRoleUser, messages[0].Role)
	assert.Equal(t, models.MessageRoleAssistant, messages[1].Role)
}

func TestRate_RejectsOutOfRangeBeforeWrite(t *testing.T) {
	s, user := setupChatTest(t)
	ctx := context.Background()
	chat := ownChat(t, s, user)

	_, err := s.Rate(ctx, user, chat.ID, 6, "")
	assert.Equal(t, ErrInvalidRating, err)
	_, err = s.Rate(ctx, user, chat.ID, -1, "")
	assert.Equal(t, ErrInvalidRating, err)
	_, err = s.Rate(ctx, user, chat.ID, 3, strings.Repeat("a", 1001))
	assert.Equal(t, ErrCommentTooLong, err)

	var stored models.Chat
	require.NoError(t, s.DB.First(&stored, chat.ID).Error)
	assert.Nil(t, stored.Rating)
	assert.Nil(t, stored.RatedAt)
}

func TestRate_LastWriteWins(t *testing.T) {
	s, user := setupChatTest(t)
	ctx := context.Background()
	chat := ownChat(t, s, user)

	_, err := s.Rate(ctx, user, chat.ID, 5, "ótimo")
	require.NoError(t, err)

	var first models.Chat
	require.NoError(t, s.DB.First(&first, chat.ID).Error)
	require.NotNil(t, first.RatedAt)
	firstRatedAt := *first.RatedAt

	time.Sleep(5 * time.Millisecond)
	_, err = s.Rate(ctx, user, chat.ID, 2, "mudei de ideia")
	require.NoError(t, err)

	var stored models.Chat
	require.NoError(t, s.DB.First(&stored, chat.ID).Error)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 2, *stored.Rating)
	require.NotNil(t, stored.RatingComment)
	assert.Equal(t, "mudei de ideia", *stored.RatingComment)
	require.NotNil(t, stored.RatedAt)
	assert.True(t, stored.RatedAt.After(firstRatedAt))
}

func TestRate_ZeroIsValid(t *testing.T) {
	s, user := setupChatTest(t)
	chat := ownChat(t, s, user)

	_, err := s.Rate(context.Background(), user, chat.ID, 0, "")
	require.NoError(t, err)

	var stored models.Chat
	require.NoError(t, s.DB.First(&stored, chat.ID).Error)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 0, *stored.Rating)
}

func TestStats_MeanHistogramAndPercentage(t *testing.T) {
	s, user := setupChatTest(t)
	ctx := context.Background()

	for i, rating := range []int{5, 4, 4} {
		chat := ownChat(t, s, user)
		_, err := s.Rate(ctx, user, chat.ID, rating, "")
		require.NoError(t, err, "chat %d", i)
	}
	ownChat(t, s, user) // unrated

	stats, err := s.Stats(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalChats)
	assert.EqualValues(t, 3, stats.TotalRated)
	assert.Equal(t, 4.33, stats.AverageRating)
	assert.Equal(t, 75.00, stats.PercentageRated)
	assert.Equal(t, 1, stats.Histogram[5])
	assert.Equal(t, 2, stats.Histogram[4])
	assert.Equal(t, 0, stats.Histogram[0])
}

func TestStats_ScopedToUser(t *testing.T) {
	s, user := setupChatTest(t)
	ctx := context.Background()

	other := &models.User{Email: "outro@example.com", Name: "Outro", Role: models.RoleBeneficiario, IsActive: models.BoolPtr(true)}
	require.NoError(t, s.DB.Create(other).Error)

	chat := ownChat(t, s, user)
	_, err := s.Rate(ctx, user, chat.ID, 5, "")
	require.NoError(t, err)

	otherChat := ownChat(t, s, other)
	_, err = s.Rate(ctx, other, otherChat.ID, 1, "")
	require.NoError(t, err)

	stats, err := s.Stats(ctx, &user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalChats)
	assert.Equal(t, 5.0, stats.AverageRating)
}

func TestDelete_CascadesMessages(t *testing.T) {
	s, user := setupChatTest(t)
	ctx := context.Background()
	chat := ownChat(t, s, user)

	_, err := s.AddMessage(ctx, user, chat.ID, models.MessageRoleUser, "oi", "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, user, chat.ID))

	var count int64
	require.NoError(t, s.DB.Model(&models.ChatMessage{}).Where("chat_id = ?", chat.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	_, _, err = s.Get(ctx, user, chat.ID)
	assert.Equal(t, ErrChatNotFound, err)
}

func TestList_AnonymousRequiresSession(t *testing.T) {
	s, user := setupChatTest(t)
	ctx := context.Background()

	_, err := s.List(ctx, nil, "")
	assert.Equal(t, ErrSessionRequired, err)

	session := "anon_xyz"
	anon, err := s.Create(ctx, CreateInput{SessionID: &session})
	require.NoError(t, err)
	ownChat(t, s, user)

	chats, err := s.List(ctx, nil, session)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, anon.ID, chats[0].ID)

	mine, err := s.List(ctx, user, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
}
