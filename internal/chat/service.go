package chat

import (
	"context"
	"errors"
	"math"
	"time"

	"impacto-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrChatNotFound    = errors.New("Conversa não encontrada")
	ErrForbiddenChat   = errors.New("Acesso negado a esta conversa")
	ErrInvalidOwner    = errors.New("Informe user_id ou session_id, não ambos")
	ErrInvalidRole     = errors.New("role deve ser user ou assistant")
	ErrInvalidRating   = errors.New("Avaliação deve estar entre 0 e 5")
	ErrCommentTooLong  = errors.New("Comentário deve ter no máximo 1000 caracteres")
	ErrSessionRequired = errors.New("session_id é obrigatório para listar conversas anônimas")
)

const maxRatingComment = 1000

// Service manages support-chat conversations, messages and ratings.
type Service struct {
	DB *gorm.DB
}

// access verifies the actor may touch the chat. Authenticated chats are
// owned by their user; anonymous chats are reachable by whoever holds
// the session id.
func access(chat *models.Chat, actor *models.User) error {
	if chat.UserID != nil {
		if actor == nil || (actor.ID != *chat.UserID && actor.Role != models.RoleAdmin) {
			return ErrForbiddenChat
		}
	}
	return nil
}

// CreateInput identifies the chat owner: exactly one of UserID or
// SessionID must be set.
type CreateInput struct {
	UserID    *uint
	SessionID *string
	Title     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Chat, error) {
	if (in.UserID == nil) == (in.SessionID == nil) {
		return nil, ErrInvalidOwner
	}
	chat := &models.Chat{
		UserID:    in.UserID,
		SessionID: in.SessionID,
		IsActive:  true,
	}
	if in.Title != "" {
		title := in.Title
		chat.Title = &title
	}
	if err := s.DB.WithContext(ctx).Create(chat).Error; err != nil {
		return nil, err
	}
	return chat, nil
}

// List returns the actor's chats, or the anonymous session's chats when
// unauthenticated.
func (s *Service) List(ctx context.Context, actor *models.User, sessionID string) ([]models.Chat, error) {
	query := s.DB.WithContext(ctx).Model(&models.Chat{})
	if actor != nil {
		query = query.Where("user_id = ?", actor.ID)
	} else {
		if sessionID == "" {
			return nil, ErrSessionRequired
		}
		query = query.Where("session_id = ?", sessionID)
	}

	var chats []models.Chat
	if err := query.Order("id DESC").Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *Service) Get(ctx context.Context, actor *models.User, id uint) (*models.Chat, []models.ChatMessage, error) {
	db := s.DB.WithContext(ctx)

	var chat models.Chat
	err := db.First(&chat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrChatNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if err := access(&chat, actor); err != nil {
		return nil, nil, err
	}

	var messages []models.ChatMessage
	if err := db.Where("chat_id = ?", id).Order("id ASC").Find(&messages).Error; err != nil {
		return nil, nil, err
	}
	return &chat, messages, nil
}

// UpdateInput holds the mutable chat fields.
type UpdateInput struct {
	Title    *string
	Summary  *string
	IsActive *bool
}

func (s *Service) Update(ctx context.Context, actor *models.User, id uint, in UpdateInput) (*models.Chat, error) {
	db := s.DB.WithContext(ctx)

	var chat models.Chat
	err := db.First(&chat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := access(&chat, actor); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Summary != nil {
		updates["summary"] = *in.Summary
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) > 0 {
		if err := db.Model(&chat).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &chat, nil
}

// Delete removes the chat and its messages.
func (s *Service) Delete(ctx context.Context, actor *models.User, id uint) error {
	db := s.DB.WithContext(ctx)

	var chat models.Chat
	err := db.First(&chat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrChatNotFound
	}
	if err != nil {
		return err
	}
	if err := access(&chat, actor); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", id).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&chat).Error
	})
}

// AddMessage appends a message to the chat.
func (s *Service) AddMessage(ctx context.Context, actor *models.User, chatID uint, role, content, metadata string) (*models.ChatMessage, error) {
	if role != models.MessageRoleUser && role != models.MessageRoleAssistant {
		return nil, ErrInvalidRole
	}

	db := s.DB.WithContext(ctx)
	var chat models.Chat
	err := db.First(&chat, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := access(&chat, actor); err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		ChatID:  chatID,
		Role:    role,
		Content: content,
	}
	if metadata != "" {
		message.MessageMetadata = &metadata
	}
	if err := db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// Messages lists a chat's messages oldest first, capped at limit.
func (s *Service) Messages(ctx context.Context, actor *models.User, chatID uint, limit int) ([]models.ChatMessage, error) {
	if limit < 1 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	db := s.DB.WithContext(ctx)
	var chat models.Chat
	err := db.First(&chat, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := access(&chat, actor); err != nil {
		return nil, err
	}

	var messages []models.ChatMessage
	if err := db.Where("chat_id = ?", chatID).Order("id ASC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// Rate stores the conversation rating. Values outside [0,5] and
// comments over the limit are rejected before anything is written.
// Re-rating overwrites the previous value.
func (s *Service) Rate(ctx context.Context, actor *models.User, chatID uint, rating int, comment string) (*models.Chat, error) {
	if rating < 0 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if len(comment) > maxRatingComment {
		return nil, ErrCommentTooLong
	}

	db := s.DB.WithContext(ctx)
	var chat models.Chat
	err := db.First(&chat, chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := access(&chat, actor); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"rating":         rating,
		"rating_comment": comment,
		"rated_at":       now,
	}
	if err := db.Model(&chat).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// RatingStats aggregates conversation ratings.
type RatingStats struct {
	TotalChats      int64       `json:"total_chats"`
	TotalRated      int64       `json:"total_rated"`
	AverageRating   float64     `json:"average_rating"`
	Histogram       map[int]int `json:"histogram"`
	PercentageRated float64     `json:"percentage_rated"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Stats computes the mean, the 0..5 histogram and the share of rated
// chats, optionally scoped to one user.
func (s *Service) Stats(ctx context.Context, userID *uint) (*RatingStats, error) {
	query := s.DB.WithContext(ctx).Model(&models.Chat{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var totalChats int64
	if err := query.Session(&gorm.Session{}).Count(&totalChats).Error; err != nil {
		return nil, err
	}

	var ratings []int
	if err := query.Session(&gorm.Session{}).
		Where("rating IS NOT NULL").Pluck("rating", &ratings).Error; err != nil {
		return nil, err
	}

	stats := &RatingStats{
		TotalChats: totalChats,
		TotalRated: int64(len(ratings)),
		Histogram:  map[int]int{0: 0, 1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
			stats.Histogram[r]++
		}
		stats.AverageRating = round2(float64(sum) / float64(len(ratings)))
	}
	if totalChats > 0 {
		stats.PercentageRated = round2(float64(stats.TotalRated) / float64(totalChats) * 100)
	}
	return stats, nil
}
