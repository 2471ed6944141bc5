package metrics

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

func setupMetricsTest(t *testing.T) (*Service, *models.Org) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Org{}, &models.User{}, &models.Donation{}, &models.DonationLedger{}))

	org := &models.Org{Name: "Casa Abrigo", Email: "casa@example.org", InviteCode: "ABCD1234", Approved: true}
	require.NoError(t, db.Create(org).Error)

	return &Service{DB: db}, org
}

func donate(t *testing.T, s *Service, orgID uint, amount float64, people int, status models.DonationStatus) {
	t.Helper()
	now := time.Now().UTC()
	donation := &models.Donation{
		DonorName: "Doador", OrgID: orgID, Amount: amount, Currency: "BRL",
		Status: status, PeopleImpacted: people,
	}
	if status == models.DonationStatusCompleted {
		donation.CompletedAt = &now
	}
	require.NoError(t, s.DB.Create(donation).Error)
}

func TestLanding_OnlyCompletedCounted(t *testing.T) {
	s, org := setupMetricsTest(t)

	pending := &models.Org{Name: "Pendente", Email: "p@example.org", InviteCode: "WXYZ9876"}
	require.NoError(t, s.DB.Create(pending).Error)

	donate(t, s, org.ID, 100, 2, models.DonationStatusCompleted)
	donate(t, s, org.ID, 50.25, 1, models.DonationStatusCompleted)
	donate(t, s, org.ID, 999, 10, models.DonationStatusPending)

	metrics, err := s.Landing(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, metrics.TotalDonations)
	assert.Equal(t, 150.25, metrics.TotalDonated)
	assert.EqualValues(t, 3, metrics.PeopleImpacted)
	assert.EqualValues(t, 1, metrics.PartnerOrgs)
	assert.Len(t, metrics.RecentDonations, 2)
}

func TestLanding_RecentCappedAtFive(t *testing.T) {
	s, org := setupMetricsTest(t)
	for i := 0; i < 7; i++ {
		donate(t, s, org.ID, 10, 1, models.DonationStatusCompleted)
	}

	metrics, err := s.Landing(context.Background())
	require.NoError(t, err)
	assert.Len(t, metrics.RecentDonations, 5)
	assert.EqualValues(t, 7, metrics.TotalDonations)
}

func TestOrg_ScopedTotals(t *testing.T) {
	s, org := setupMetricsTest(t)

	other := &models.Org{Name: "Lar", Email: "lar@example.org", InviteCode: "QRST5678"}
	require.NoError(t, s.DB.Create(other).Error)

	donate(t, s, org.ID, 100, 4, models.DonationStatusCompleted)
	donate(t, s, other.ID, 30, 1, models.DonationStatusCompleted)

	metrics, err := s.Org(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, org.Name, metrics.OrgName)
	assert.EqualValues(t, 1, metrics.TotalDonations)
	assert.Equal(t, 100.00, metrics.TotalDonated)
	assert.EqualValues(t, 4, metrics.PeopleImpacted)

	_, err = s.Org(context.Background(), 999)
	assert.Equal(t, ErrOrgNotFound, err)
}

func TestOverview_CountsLinkedPeople(t *testing.T) {
	s, org := setupMetricsTest(t)

	users := []models.User{
		{Email: "b1@example.com", Name: "B1", Role: models.RoleBeneficiario, IsActive: models.BoolPtr(true), OrgID: &org.ID},
		{Email: "b2@example.com", Name: "B2", Role: models.RoleBeneficiario, IsActive: models.BoolPtr(true), OrgID: &org.ID},
		{Email: "a1@example.com", Name: "A1", Role: models.RoleAssistente, IsActive: models.BoolPtr(true), OrgID: &org.ID},
		{Email: "fora@example.com", Name: "Fora", Role: models.RoleBeneficiario, IsActive: models.BoolPtr(true)},
	}
	for i := range users {
		require.NoError(t, s.DB.Create(&users[i]).Error)
	}

	overview, err := s.Overview(context.Background(), org.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, overview.Beneficiarios)
	assert.EqualValues(t, 1, overview.Assistentes)
}
