package donations

import (
	"context"
	"errors"
	"math"
	"time"

	"impacto-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrDonationNotFound = errors.New("Doação não encontrada")
	ErrOrgNotFound      = errors.New("ONG não encontrada")
	ErrInvalidAmount    = errors.New("Valor da doação deve ser maior que zero")
	ErrInvalidImpacted  = errors.New("people_impacted deve ser no mínimo 1")
)

// Service manages donations and their append-only ledger.
type Service struct {
	DB *gorm.DB
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CreateInput carries a new donation.
type CreateInput struct {
	DonorName      string
	DonorEmail     *string
	OrgID          uint
	Amount         float64
	Currency       string
	Message        string
	PeopleImpacted int
}

// Create records a donation through the mock gateway: it lands already
// completed, with the two bookkeeping ledger rows written in the same
// transaction as the donation.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Donation, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.PeopleImpacted == 0 {
		in.PeopleImpacted = 1
	}
	if in.PeopleImpacted < 1 {
		return nil, ErrInvalidImpacted
	}
	if in.Currency == "" {
		in.Currency = "BRL"
	}

	db := s.DB.WithContext(ctx)

	var org models.Org
	if err := db.First(&org, in.OrgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrgNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	amount := round2(in.Amount)
	donation := &models.Donation{
		DonorName:      in.DonorName,
		DonorEmail:     in.DonorEmail,
		OrgID:          in.OrgID,
		Amount:         amount,
		Currency:       in.Currency,
		Status:         models.DonationStatusCompleted,
		PeopleImpacted: in.PeopleImpacted,
		CompletedAt:    &now,
	}
	if in.Message != "" {
		message := in.Message
		donation.Message = &message
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(donation).Error; err != nil {
			return err
		}
		entries := []models.DonationLedger{
			{
				DonationID:  donation.ID,
				EntryType:   "created",
				Description: "Doação criada via mock gateway.",
				Amount:      &amount,
			},
			{
				DonationID:  donation.ID,
				EntryType:   "completed",
				Description: "Doação marcada como concluída automaticamente.",
				Amount:      &amount,
			},
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return nil, err
	}
	return donation, nil
}

// ListFilter narrows the donation listing.
type ListFilter struct {
	OrgID    *uint
	Status   string
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

// List returns donations plus the total amount across all matches.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Donation, int64, float64, error) {
	filter.normalize()

	query := s.DB.WithContext(ctx).Model(&models.Donation{})
	if filter.OrgID != nil {
		query = query.Where("org_id = ?", *filter.OrgID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}

	var totalAmount float64
	if err := query.Session(&gorm.Session{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&totalAmount).Error; err != nil {
		return nil, 0, 0, err
	}

	var donations []models.Donation
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("id DESC").Offset(offset).Limit(filter.PageSize).Find(&donations).Error; err != nil {
		return nil, 0, 0, err
	}
	return donations, total, round2(totalAmount), nil
}

// Get returns a donation with its ledger in insertion order.
func (s *Service) Get(ctx context.Context, id uint) (*models.Donation, []models.DonationLedger, error) {
	db := s.DB.WithContext(ctx)

	var donation models.Donation
	err := db.First(&donation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrDonationNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	var ledger []models.DonationLedger
	if err := db.Where("donation_id = ?", id).Order("id ASC").Find(&ledger).Error; err != nil {
		return nil, nil, err
	}
	return &donation, ledger, nil
}

// AppendLedger adds a manual ledger entry. Entries are never updated or
// deleted afterwards.
func (s *Service) AppendLedger(ctx context.Context, donationID uint, entryType, description string, amount *float64) (*models.DonationLedger, error) {
	db := s.DB.WithContext(ctx)

	var donation models.Donation
	err := db.First(&donation, donationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDonationNotFound
	}
	if err != nil {
		return nil, err
	}

	if amount != nil {
		rounded := round2(*amount)
		amount = &rounded
	}
	entry := &models.DonationLedger{
		DonationID:  donationID,
		EntryType:   entryType,
		Description: description,
		Amount:      amount,
	}
	if err := db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}
