package orgs

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"impacto-backend/internal/emails"
	"impacto-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrOrgNotFound   = errors.New("ONG não encontrada")
	ErrEmailTaken    = errors.New("Já existe uma ONG cadastrada com este email")
	ErrInvalidInvite = errors.New("Código de convite inválido")
)

const inviteCodeLength = 8

const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Service manages partner organizations, their invite codes and the
// admin approval workflow.
type Service struct {
	DB     *gorm.DB
	Mailer emails.Mailer
}

func randomInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}

// generateInviteCode draws codes until one is free. Comparison is done
// on the uppercased value so stored codes stay unique case-insensitively.
func (s *Service) generateInviteCode(ctx context.Context) (string, error) {
	db := s.DB.WithContext(ctx)
	for {
		code, err := randomInviteCode()
		if err != nil {
			return "", err
		}
		var existing models.Org
		err = db.Where("UPPER(invite_code) = ?", strings.ToUpper(code)).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// ListFilter narrows the org listing.
type ListFilter struct {
	Verified *bool
	Approved *bool
	Search   string
	Page     int
	PageSize int
}

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Org, int64, error) {
	filter.normalize()

	query := s.DB.WithContext(ctx).Model(&models.Org{})
	if filter.Verified != nil {
		query = query.Where("verified = ?", *filter.Verified)
	}
	if filter.Approved != nil {
		query = query.Where("approved = ?", *filter.Approved)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orgs []models.Org
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("id ASC").Offset(offset).Limit(filter.PageSize).Find(&orgs).Error; err != nil {
		return nil, 0, err
	}
	return orgs, total, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Org, error) {
	var org models.Org
	err := s.DB.WithContext(ctx).First(&org, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrgNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Create registers an org with a fresh invite code. Email uniqueness is
// checked case-insensitively.
func (s *Service) Create(ctx context.Context, name, email string, description *string) (*models.Org, error) {
	db := s.DB.WithContext(ctx)

	var existing models.Org
	if err := db.Where("LOWER(email) = ?", strings.ToLower(email)).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := s.generateInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	org := &models.Org{
		Name:        name,
		Email:       email,
		Description: description,
		InviteCode:  code,
	}
	if err := db.Create(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

// UpdateInput holds the mutable org fields.
type UpdateInput struct {
	Name        *string
	Email       *string
	Description *string
}

func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*models.Org, error) {
	db := s.DB.WithContext(ctx)

	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Email != nil && !strings.EqualFold(*in.Email, org.Email) {
		var existing models.Org
		if err := db.Where("LOWER(email) = ? AND id <> ?", strings.ToLower(*in.Email), org.ID).First(&existing).Error; err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		updates["email"] = *in.Email
	}

	if len(updates) > 0 {
		if err := db.Model(org).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return org, nil
}

// ValidateInvite resolves an invite code without mutating anything.
// Lookup is case-insensitive.
func (s *Service) ValidateInvite(ctx context.Context, code string) (*models.Org, error) {
	var org models.Org
	err := s.DB.WithContext(ctx).
		Where("UPPER(invite_code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidInvite
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// RegenerateInvite replaces the org's invite code; the old one stops
// validating immediately.
func (s *Service) RegenerateInvite(ctx context.Context, id uint) (*models.Org, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	code, err := s.generateInviteCode(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(org).Update("invite_code", code).Error; err != nil {
		return nil, err
	}
	return org, nil
}

// VerifyEmail marks the org's contact email as verified.
func (s *Service) VerifyEmail(ctx context.Context, id uint) (*models.Org, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	updates := map[string]interface{}{"verified": true, "verified_at": now}
	if err := s.DB.WithContext(ctx).Model(org).Updates(updates).Error; err != nil {
		return nil, err
	}
	return org, nil
}

// ResendInvite re-sends the current invite code to the org's email.
func (s *Service) ResendInvite(ctx context.Context, id uint) (*models.Org, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := emails.SendOrgInvite(ctx, s.Mailer, org.Email, org.Name, org.InviteCode); err != nil {
		return nil, err
	}
	return org, nil
}

// InviteByEmail creates the org and then tries to email the invite. The
// org survives a failed send; the outcome is reported to the caller.
func (s *Service) InviteByEmail(ctx context.Context, name, email string, description *string) (*models.Org, bool, error) {
	org, err := s.Create(ctx, name, email, description)
	if err != nil {
		return nil, false, err
	}
	if err := emails.SendOrgInvite(ctx, s.Mailer, org.Email, org.Name, org.InviteCode); err != nil {
		log.Warn().Err(err).Uint("org_id", org.ID).Msg("invite email not sent")
		return org, false, nil
	}
	return org, true, nil
}

// ApproveResult carries the updated org and the user-facing outcome line.
type ApproveResult struct {
	Org     *models.Org
	Message string
}

// Approve records the admin decision. Approval forces the verified flag;
// rejection leaves verification untouched. The notification email is
// best effort.
func (s *Service) Approve(ctx context.Context, actor *models.User, id uint, approved bool, reason string) (*ApproveResult, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"approved":       approved,
		"approved_by_id": actor.ID,
		"approved_at":    now,
	}
	if approved {
		updates["verified"] = true
		updates["verified_at"] = now
	}
	if err := s.DB.WithContext(ctx).Model(org).Updates(updates).Error; err != nil {
		return nil, err
	}

	message := "ONG aprovada"
	if !approved {
		if reason == "" {
			reason = "sem motivo informado"
		}
		message = fmt.Sprintf("ONG rejeitada: %s", reason)
	}

	if err := emails.SendOrgValidation(ctx, s.Mailer, org.Email, org.Name, approved, reason); err != nil {
		log.Warn().Err(err).Uint("org_id", org.ID).Msg("approval email not sent")
	}

	return &ApproveResult{Org: org, Message: message}, nil
}
