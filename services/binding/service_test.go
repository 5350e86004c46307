package binding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rankforge/seoportal/interfaces"
	er "github.com/rankforge/seoportal/internal/errors"
	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/repository"
	"github.com/rankforge/seoportal/internal/testutils"
)

func newBindingFixture(t *testing.T) (*bindingService, *repository.Repositories, *models.User) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	service := NewBindingService(testutils.NewTestLogger(), db, repositories)

	user := &models.User{Email: "owner@example.com", DisplayName: "Owner"}
	require.NoError(t, repositories.UserRepository.Create(context.Background(), nil, user))
	return service, repositories, user
}

func TestBindTenant_CreatesTenantCompanyAndIntegration(t *testing.T) {
	service, repositories, user := newBindingFixture(t)
	ctx := context.Background()

	boundTenant, err := service.BindTenant(ctx, interfaces.BindTenantRequest{
		UserID:      user.ID,
		SiteName:    "Acme Blog",
		SiteURL:     "https://blog.acme.test",
		CmsUsername: "acme",
		CmsSecret:   "s3cret",
		Timezone:    "UTC+8",
		PublishTime: "18:00",
		Company: &interfaces.CompanyFields{
			Name:         "Acme Inc",
			ContactEmail: "contact@acme.com",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, boundTenant)
	require.Equal(t, "Acme Blog", boundTenant.Name)
	require.NotNil(t, boundTenant.CompanyID)

	company, err := repositories.CompanyRepository.GetById(ctx, nil, *boundTenant.CompanyID)
	require.NoError(t, err)
	require.Equal(t, "Acme Inc", company.Name)
	require.Equal(t, "contact@acme.com", company.ContactEmail)

	refreshedUser, err := repositories.UserRepository.GetById(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshedUser.CompanyID)
	require.Equal(t, company.ID, *refreshedUser.CompanyID)

	membership, err := repositories.MembershipRepository.GetByTenantAndUser(ctx, boundTenant.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, membership)
	require.Equal(t, models.MembershipRoleAdmin, membership.Role)

	integration, err := repositories.CmsIntegrationRepository.GetByTenantId(ctx, nil, boundTenant.ID)
	require.NoError(t, err)
	require.NotNil(t, integration)
	require.Equal(t, models.CmsConnectionStatusConnected, integration.Status)
	require.True(t, integration.AutoPublish)
	require.Equal(t, "UTC+8", integration.Timezone)
	require.Equal(t, "18:00", integration.PublishTime)
}

func TestBindTenant_EditRequiresAdminRole(t *testing.T) {
	service, repositories, user := newBindingFixture(t)
	ctx := context.Background()

	boundTenant, err := service.BindTenant(ctx, interfaces.BindTenantRequest{
		UserID:   user.ID,
		SiteName: "Site",
	})
	require.NoError(t, err)

	viewer := &models.User{Email: "viewer@example.com"}
	require.NoError(t, repositories.UserRepository.Create(ctx, nil, viewer))
	require.NoError(t, repositories.MembershipRepository.Create(ctx, nil, &models.Membership{
		TenantID: boundTenant.ID, UserID: viewer.ID, Role: models.MembershipRoleMember,
	}))

	_, err = service.BindTenant(ctx, interfaces.BindTenantRequest{
		UserID:   viewer.ID,
		TenantID: boundTenant.ID,
		SiteName: "Hijacked",
	})
	require.ErrorIs(t, err, er.ErrUnauthorized)
}

func TestBindTenant_EditUnknownTenant(t *testing.T) {
	service, _, user := newBindingFixture(t)

	_, err := service.BindTenant(context.Background(), interfaces.BindTenantRequest{
		UserID:   user.ID,
		TenantID: "tnt_missing",
		SiteName: "Site",
	})
	require.ErrorIs(t, err, er.ErrTenantNotFound)
}

func TestBindTenant_WithdrawingCredentialsDisconnects(t *testing.T) {
	service, repositories, user := newBindingFixture(t)
	ctx := context.Background()

	boundTenant, err := service.BindTenant(ctx, interfaces.BindTenantRequest{
		UserID:      user.ID,
		SiteName:    "Site",
		CmsUsername: "acme",
		CmsSecret:   "s3cret",
	})
	require.NoError(t, err)

	integration, err := repositories.CmsIntegrationRepository.GetByTenantId(ctx, nil, boundTenant.ID)
	require.NoError(t, err)
	require.True(t, integration.AutoPublish)

	_, err = service.BindTenant(ctx, interfaces.BindTenantRequest{
		UserID:   user.ID,
		TenantID: boundTenant.ID,
	})
	require.NoError(t, err)

	integration, err = repositories.CmsIntegrationRepository.GetByTenantId(ctx, nil, boundTenant.ID)
	require.NoError(t, err)
	require.Equal(t, models.CmsConnectionStatusDisconnected, integration.Status)
	require.False(t, integration.AutoPublish)
	require.False(t, integration.HasCredentials())
}

func TestBindTenant_RecreatesMissingCompany(t *testing.T) {
	service, repositories, user := newBindingFixture(t)
	ctx := context.Background()

	require.NoError(t, repositories.UserRepository.AttachCompany(ctx, nil, user.ID, "cmp_gone"))

	boundTenant, err := service.BindTenant(ctx, interfaces.BindTenantRequest{
		UserID:   user.ID,
		SiteName: "Site",
		Company:  &interfaces.CompanyFields{Name: "Reborn Inc"},
	})
	require.NoError(t, err)
	require.NotNil(t, boundTenant.CompanyID)
	require.NotEqual(t, "cmp_gone", *boundTenant.CompanyID)

	company, err := repositories.CompanyRepository.GetById(ctx, nil, *boundTenant.CompanyID)
	require.NoError(t, err)
	require.Equal(t, "Reborn Inc", company.Name)
}

func TestBindTenant_RejectsInvalidInput(t *testing.T) {
	service, _, user := newBindingFixture(t)
	ctx := context.Background()

	_, err := service.BindTenant(ctx, interfaces.BindTenantRequest{SiteName: "Site"})
	require.ErrorIs(t, err, er.ErrValidationFailed)

	_, err = service.BindTenant(ctx, interfaces.BindTenantRequest{UserID: user.ID})
	require.ErrorIs(t, err, er.ErrValidationFailed)

	_, err = service.BindTenant(ctx, interfaces.BindTenantRequest{
		UserID: user.ID, SiteName: "Site", PublishTime: "25:99",
	})
	require.ErrorIs(t, err, er.ErrValidationFailed)

	_, err = service.BindTenant(ctx, interfaces.BindTenantRequest{
		UserID: user.ID, SiteName: "Site",
		Company: &interfaces.CompanyFields{Name: "X", ContactEmail: "not-an-email"},
	})
	require.ErrorIs(t, err, er.ErrInvalidEmail)
}
