package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	er "github.com/rankforge/seoportal/internal/errors"
	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/repository"
	"github.com/rankforge/seoportal/internal/testutils"
	"github.com/rankforge/seoportal/internal/utils"
)

func seedCompanyWithTenant(t *testing.T, repositories *repository.Repositories, companyName string) (*models.Company, *models.Tenant, *models.User) {
	t.Helper()
	ctx := context.Background()

	company := &models.Company{Name: companyName}
	require.NoError(t, repositories.CompanyRepository.Create(ctx, nil, company))

	user := &models.User{Email: companyName + "@example.com", CompanyID: &company.ID}
	require.NoError(t, repositories.UserRepository.Create(ctx, nil, user))

	tenant := &models.Tenant{Name: companyName + " site", CompanyID: &company.ID}
	require.NoError(t, repositories.TenantRepository.Create(ctx, nil, tenant))
	require.NoError(t, repositories.MembershipRepository.Create(ctx, nil, &models.Membership{
		TenantID: tenant.ID, UserID: user.ID, Role: models.MembershipRoleAdmin,
	}))
	return company, tenant, user
}

func TestGroupedListing_IsolatesCompanies(t *testing.T) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	service := NewDashboardService(testutils.NewTestLogger(), repositories, nil)
	ctx := context.Background()

	companyA, tenantA, userA := seedCompanyWithTenant(t, repositories, "alpha")
	companyB, tenantB, _ := seedCompanyWithTenant(t, repositories, "beta")

	// a cross-company membership must not leak the other company's tenant
	require.NoError(t, repositories.MembershipRepository.Create(ctx, nil, &models.Membership{
		TenantID: tenantB.ID, UserID: userA.ID, Role: models.MembershipRoleMember,
	}))

	groups, err := service.GroupedListing(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	byCompany := make(map[string][]*models.Tenant)
	for _, group := range groups {
		byCompany[group.Company.ID] = group.Tenants
	}

	require.Len(t, byCompany[companyA.ID], 1)
	require.Equal(t, tenantA.ID, byCompany[companyA.ID][0].ID)
	require.Len(t, byCompany[companyB.ID], 1)
	require.Equal(t, tenantB.ID, byCompany[companyB.ID][0].ID)
}

func TestGroupedListing_CompanyWithoutTenants(t *testing.T) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	service := NewDashboardService(testutils.NewTestLogger(), repositories, nil)
	ctx := context.Background()

	company := &models.Company{Name: "empty"}
	require.NoError(t, repositories.CompanyRepository.Create(ctx, nil, company))

	groups, err := service.GroupedListing(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Empty(t, groups[0].Tenants)
}

func TestOverview_AggregatesTenantData(t *testing.T) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	service := NewDashboardService(testutils.NewTestLogger(), repositories, nil)
	ctx := context.Background()

	_, tenant, _ := seedCompanyWithTenant(t, repositories, "gamma")

	period := utils.StartOfDayInUTC(utils.Now())
	require.NoError(t, repositories.KpiSnapshotRepository.Upsert(ctx, &models.KpiSnapshot{
		TenantID: tenant.ID, MetricType: models.KpiMetricInquiries,
		PeriodStart: period, PeriodEnd: period, Value: 12,
	}))
	require.NoError(t, repositories.TrafficStatRepository.UpsertBatch(ctx, []*models.TrafficStat{
		{TenantID: tenant.ID, Period: period, Clicks: 40, Impressions: 900},
	}))
	require.NoError(t, repositories.KeywordRankingRepository.CreateBatch(ctx, []*models.KeywordRanking{
		{TenantID: tenant.ID, Keyword: "seo", Rank: 4, CapturedAt: utils.Now()},
	}))
	require.NoError(t, repositories.ContentScheduleItemRepo.Create(ctx, nil, &models.ContentScheduleItem{
		TenantID: tenant.ID, Title: "post", PublishDate: period,
	}))
	require.NoError(t, repositories.ReportRepository.Create(ctx, nil, &models.Report{
		TenantID: tenant.ID, Title: "July report", Period: "2026-07", StorageKey: "reports/july.pdf",
	}))

	overview, err := service.Overview(ctx, []string{tenant.ID}, nil)
	require.NoError(t, err)
	require.Len(t, overview.Inquiries, 1)
	require.Len(t, overview.Traffic, 1)
	require.Len(t, overview.Keywords, 1)
	require.Len(t, overview.Content, 1)
	require.NotNil(t, overview.LatestReport)
	require.Equal(t, "July report", overview.LatestReport.Title)

	// data of other tenants stays invisible
	_, otherTenant, _ := seedCompanyWithTenant(t, repositories, "delta")
	otherOverview, err := service.Overview(ctx, []string{otherTenant.ID}, nil)
	require.NoError(t, err)
	require.Empty(t, otherOverview.Inquiries)
	require.Empty(t, otherOverview.Traffic)
	require.Nil(t, otherOverview.LatestReport)
}

type stubReportStorage struct{}

func (stubReportStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}

func (stubReportStorage) Download(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

func (stubReportStorage) Delete(ctx context.Context, key string) error {
	return nil
}

func (stubReportStorage) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func TestOverview_LinksLatestReport(t *testing.T) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	service := NewDashboardService(testutils.NewTestLogger(), repositories, stubReportStorage{})
	ctx := context.Background()

	_, tenant, _ := seedCompanyWithTenant(t, repositories, "zeta")
	require.NoError(t, repositories.ReportRepository.Create(ctx, nil, &models.Report{
		TenantID: tenant.ID, Title: "August report", Period: "2026-08", StorageKey: "reports/august.pdf",
	}))

	overview, err := service.Overview(ctx, []string{tenant.ID}, nil)
	require.NoError(t, err)
	require.NotNil(t, overview.LatestReport)
	require.Equal(t, "https://cdn.example.com/reports/august.pdf", overview.LatestReportURL)

	// without configured storage there is no link
	bare := NewDashboardService(testutils.NewTestLogger(), repositories, nil)
	overview, err = bare.Overview(ctx, []string{tenant.ID}, nil)
	require.NoError(t, err)
	require.Empty(t, overview.LatestReportURL)
}

func TestOverview_HonorsSinceWindow(t *testing.T) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	service := NewDashboardService(testutils.NewTestLogger(), repositories, nil)
	ctx := context.Background()

	_, tenant, _ := seedCompanyWithTenant(t, repositories, "epsilon")

	oldPeriod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repositories.TrafficStatRepository.UpsertBatch(ctx, []*models.TrafficStat{
		{TenantID: tenant.ID, Period: oldPeriod, Clicks: 5},
	}))

	overview, err := service.Overview(ctx, []string{tenant.ID}, nil)
	require.NoError(t, err)
	require.Empty(t, overview.Traffic)

	since := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	overview, err = service.Overview(ctx, []string{tenant.ID}, &since)
	require.NoError(t, err)
	require.Len(t, overview.Traffic, 1)
}

func TestOverview_RequiresTenants(t *testing.T) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	service := NewDashboardService(testutils.NewTestLogger(), repositories, nil)

	_, err := service.Overview(context.Background(), nil, nil)
	require.ErrorIs(t, err, er.ErrTenantMissing)
}
