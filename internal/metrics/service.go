package metrics

import (
	"context"
	"errors"
	"math"

	"impacto-backend/internal/models"

	"gorm.io/gorm"
)

var ErrOrgNotFound = errors.New("ONG não encontrada")

// Service computes public impact metrics from completed donations.
type Service struct {
	DB *gorm.DB
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LandingMetrics feeds the public landing page.
type LandingMetrics struct {
	TotalDonated    float64           `json:"total_donated"`
	TotalDonations  int64             `json:"total_donations"`
	PeopleImpacted  int64             `json:"people_impacted"`
	PartnerOrgs     int64             `json:"partner_orgs"`
	RecentDonations []models.Donation `json:"recent_donations"`
}

func (s *Service) completedQuery(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Model(&models.Donation{}).
		Where("status = ?", models.DonationStatusCompleted)
}

// Landing aggregates platform-wide numbers plus the five most recent
// completed donations.
func (s *Service) Landing(ctx context.Context) (*LandingMetrics, error) {
	metrics := &LandingMetrics{}

	if err := s.completedQuery(ctx).Count(&metrics.TotalDonations).Error; err != nil {
		return nil, err
	}
	if err := s.completedQuery(ctx).
		Select("COALESCE(SUM(amount), 0)").Scan(&metrics.TotalDonated).Error; err != nil {
		return nil, err
	}
	metrics.TotalDonated = round2(metrics.TotalDonated)
	if err := s.completedQuery(ctx).
		Select("COALESCE(SUM(people_impacted), 0)").Scan(&metrics.PeopleImpacted).Error; err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(&models.Org{}).
		Where("approved = ?", true).Count(&metrics.PartnerOrgs).Error; err != nil {
		return nil, err
	}

	if err := s.completedQuery(ctx).
		Order("id DESC").Limit(5).Find(&metrics.RecentDonations).Error; err != nil {
		return nil, err
	}
	return metrics, nil
}

// OrgMetrics summarizes one org's donation activity.
type OrgMetrics struct {
	OrgID          uint    `json:"org_id"`
	OrgName        string  `json:"org_name"`
	TotalDonated   float64 `json:"total_donated"`
	TotalDonations int64   `json:"total_donations"`
	PeopleImpacted int64   `json:"people_impacted"`
}

func (s *Service) Org(ctx context.Context, orgID uint) (*OrgMetrics, error) {
	var org models.Org
	err := s.DB.WithContext(ctx).First(&org, orgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrgNotFound
	}
	if err != nil {
		return nil, err
	}

	metrics := &OrgMetrics{OrgID: org.ID, OrgName: org.Name}
	scoped := func() *gorm.DB { return s.completedQuery(ctx).Where("org_id = ?", orgID) }

	if err := scoped().Count(&metrics.TotalDonations).Error; err != nil {
		return nil, err
	}
	if err := scoped().Select("COALESCE(SUM(amount), 0)").Scan(&metrics.TotalDonated).Error; err != nil {
		return nil, err
	}
	metrics.TotalDonated = round2(metrics.TotalDonated)
	if err := scoped().Select("COALESCE(SUM(people_impacted), 0)").Scan(&metrics.PeopleImpacted).Error; err != nil {
		return nil, err
	}
	return metrics, nil
}

// OrgOverview extends the org metrics with the people linked to it.
type OrgOverview struct {
	OrgMetrics
	Beneficiarios int64 `json:"beneficiarios"`
	Assistentes   int64 `json:"assistentes"`
}

func (s *Service) Overview(ctx context.Context, orgID uint) (*OrgOverview, error) {
	base, err := s.Org(ctx, orgID)
	if err != nil {
		return nil, err
	}

	overview := &OrgOverview{OrgMetrics: *base}
	users := func(role models.Role) *gorm.DB {
		return s.DB.WithContext(ctx).Model(&models.User{}).
			Where("org_id = ? AND role = ?", orgID, role)
	}
	if err := users(models.RoleBeneficiario).Count(&overview.Beneficiarios).Error; err != nil {
		return nil, err
	}
	if err := users(models.RoleAssistente).Count(&overview.Assistentes).Error; err != nil {
		return nil, err
	}
	return overview, nil
}
