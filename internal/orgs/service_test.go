package orgs

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"impacto-backend/internal/emails"
	"impacto-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingMailer captures sends; failErr makes every send fail.
type recordingMailer struct {
	subjects []string
	failErr  error
}

func (m *recordingMailer) Send(ctx context.Context, subject string, recipients []string, textBody, htmlBody string) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.subjects = append(m.subjects, subject)
	return nil
}

func setupOrgTest(t *testing.T) (*Service, *recordingMailer) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Org{}, &models.User{}))

	mailer := &recordingMailer{}
	return &Service{DB: db, Mailer: mailer}, mailer
}

var inviteCodePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func TestCreate_GeneratesInviteCode(t *testing.T) {
	s, _ := setupOrgTest(t)

	org, err := s.Create(context.Background(), "Casa Abrigo", "casa@example.org", nil)
	require.NoError(t, err)
	assert.Regexp(t, inviteCodePattern, org.InviteCode)
	assert.False(t, org.Verified)
	assert.False(t, org.Approved)
}

func TestCreate_DuplicateEmailCaseInsensitive(t *testing.T) {
	s, _ := setupOrgTest(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "Casa Abrigo", "casa@example.org", nil)
	require.NoError(t, err)

	_, err = s.Create(ctx, "Outra Casa", "CASA@EXAMPLE.ORG", nil)
	assert.Equal(t, ErrEmailTaken, err)
}

func TestValidateInvite_CaseInsensitiveNoMutation(t *testing.T) {
	s, _ := setupOrgTest(t)
	ctx := context.Background()

	org, err := s.Create(ctx, "Casa Abrigo", "casa@example.org", nil)
	require.NoError(t, err)

	found, err := s.ValidateInvite(ctx, strings.ToLower(org.InviteCode))
	require.NoError(t, err)
	assert.Equal(t, org.ID, found.ID)

	// Validation never consumes the code.
	again, err := s.ValidateInvite(ctx, org.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, org.ID, again.ID)

	_, err = s.ValidateInvite(ctx, "NOPE1234")
	assert.Equal(t, ErrInvalidInvite, err)
}

func TestRegenerateInvite_OldCodeStopsWorking(t *testing.T) {
	s, _ := setupOrgTest(t)
	ctx := context.Background()

	org, err := s.Create(ctx, "Casa Abrigo", "casa@example.org", nil)
	require.NoError(t, err)
	oldCode := org.InviteCode

	updated, err := s.RegenerateInvite(ctx, org.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldCode, updated.InviteCode)
	assert.Regexp(t, inviteCodePattern, updated.InviteCode)

	_, err = s.ValidateInvite(ctx, oldCode)
	assert.Equal(t, ErrInvalidInvite, err)
}

func TestApprove_ForcesVerified(t *testing.T) {
	s, mailer := setupOrgTest(t)
	ctx := context.Background()

	org, err := s.Create(ctx, "Casa Abrigo", "casa@example.org", nil)
	require.NoError(t, err)

	admin := &models.User{Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin, IsActive: models.BoolPtr(true)}
	require.NoError(t, s.DB.Create(admin).Error)

	result, err := s.Approve(ctx, admin, org.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, "ONG aprovada", result.Message)

	var stored models.Org
	require.NoError(t, s.DB.First(&stored, org.ID).Error)
	assert.True(t, stored.Approved)
	assert.True(t, stored.Verified)
	require.NotNil(t, stored.ApprovedByID)
	assert.Equal(t, admin.ID, *stored.ApprovedByID)
	assert.NotNil(t, stored.ApprovedAt)
	assert.NotNil(t, stored.VerifiedAt)
	assert.Len(t, mailer.subjects, 1)
}

func TestApprove_RejectionLeavesVerificationAlone(t *testing.T) {
	s, _ := setupOrgTest(t)
	ctx := context.Background()

	org, err := s.Create(ctx, "Casa Abrigo", "casa@example.org", nil)
	require.NoError(t, err)

	admin := &models.User{Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin, IsActive: models.BoolPtr(true)}
	require.NoError(t, s.DB.Create(admin).Error)

	result, err := s.Approve(ctx, admin, org.ID, false, "docs incomplete")
	require.NoError(t, err)
	assert.Equal(t, "ONG rejeitada: docs incomplete", result.Message)

	var stored models.Org
	require.NoError(t, s.DB.First(&stored, org.ID).Error)
	assert.False(t, stored.Approved)
	assert.False(t, stored.Verified)

	result, err = s.Approve(ctx, admin, org.ID, false, "")
	require.NoError(t, err)
	assert.Equal(t, "ONG rejeitada: sem motivo informado", result.Message)
}

func TestApprove_EmailFailureIsSwallowed(t *testing.T) {
	s, mailer := setupOrgTest(t)
	ctx := context.Background()

	org, err := s.Create(ctx, "Casa Abrigo", "casa@example.org", nil)
	require.NoError(t, err)
	mailer.failErr = errors.New("smtp down")

	admin := &models.User{Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin, IsActive: models.BoolPtr(true)}
	require.NoError(t, s.DB.Create(admin).Error)

	result, err := s.Approve(ctx, admin, org.ID, true, "")
	require.NoError(t, err)
	assert.True(t, result.Org.Approved)
}

func TestResendInvite_PropagatesNotConfigured(t *testing.T) {
	s, mailer := setupOrgTest(t)
	ctx := context.Background()

	org, err := s.Create(ctx, "Casa Abrigo", "casa@example.org", nil)
	require.NoError(t, err)

	mailer.failErr = emails.ErrNotConfigured
	_, err = s.ResendInvite(ctx, org.ID)
	assert.ErrorIs(t, err, emails.ErrNotConfigured)
}

func TestInviteByEmail_OrgSurvivesSendFailure(t *testing.T) {
	s, mailer := setupOrgTest(t)
	ctx := context.Background()

	mailer.failErr = errors.New("smtp down")
	org, sent, err := s.InviteByEmail(ctx, "Casa Abrigo", "casa@example.org", nil)
	require.NoError(t, err)
	assert.False(t, sent)
	require.NotNil(t, org)

	var stored models.Org
	require.NoError(t, s.DB.First(&stored, org.ID).Error)
	assert.Equal(t, "casa@example.org", stored.Email)
}

func TestList_Filters(t *testing.T) {
	s, _ := setupOrgTest(t)
	ctx := context.Background()

	a, err := s.Create(ctx, "Casa Abrigo", "casa@example.org", nil)
	require.NoError(t, err)
	_, err = s.Create(ctx, "Lar Esperança", "lar@example.org", nil)
	require.NoError(t, err)

	require.NoError(t, s.DB.Model(a).Update("verified", true).Error)

	verified := true
	list, total, err := s.List(ctx, ListFilter{Verified: &verified})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Casa Abrigo", list[0].Name)

	bySearch, _, err := s.List(ctx, ListFilter{Search: "esperan"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "Lar Esperança", bySearch[0].Name)
}
