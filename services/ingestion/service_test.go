package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rankforge/seoportal/interfaces"
	er "github.com/rankforge/seoportal/internal/errors"
	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/repository"
	"github.com/rankforge/seoportal/internal/testutils"
	"github.com/rankforge/seoportal/internal/utils"
	"github.com/rankforge/seoportal/services/tenant"
)

func newIngestionFixture(t *testing.T) (*ingestionService, *repository.Repositories, *models.User) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	log := testutils.NewTestLogger()
	resolver := tenant.NewTenantResolver(log, db, repositories)
	service := NewIngestionService(log, repositories, resolver)

	user := &models.User{Email: "admin@example.com"}
	require.NoError(t, repositories.UserRepository.Create(context.Background(), nil, user))
	return service, repositories, user
}

func TestIngestKpiSnapshots_UpsertConvergesRetries(t *testing.T) {
	service, repositories, user := newIngestionFixture(t)
	ctx := context.Background()

	target := interfaces.IngestTarget{UserID: user.ID}
	inputs := []interfaces.KpiSnapshotInput{
		{MetricType: "inquiries", PeriodStart: "2026-07", Value: 42, Delta: 5},
	}

	first, err := service.IngestKpiSnapshots(ctx, target, inputs)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// a retry with updated numbers overwrites instead of duplicating
	inputs[0].Value = 50
	second, err := service.IngestKpiSnapshots(ctx, target, inputs)
	require.NoError(t, err)
	require.Len(t, second, 1)

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows, err := repositories.KpiSnapshotRepository.GetByTenants(ctx, []string{first[0].TenantID}, models.KpiMetricInquiries, since, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, float64(50), rows[0].Value)
}

func TestIngestKpiSnapshots_RejectsBadInput(t *testing.T) {
	service, _, user := newIngestionFixture(t)
	ctx := context.Background()
	target := interfaces.IngestTarget{UserID: user.ID}

	_, err := service.IngestKpiSnapshots(ctx, target, []interfaces.KpiSnapshotInput{
		{MetricType: "bogus", PeriodStart: "2026-07"},
	})
	require.ErrorIs(t, err, er.ErrValidationFailed)

	_, err = service.IngestKpiSnapshots(ctx, target, []interfaces.KpiSnapshotInput{
		{MetricType: "inquiries", PeriodStart: "not-a-date"},
	})
	require.ErrorIs(t, err, er.ErrValidationFailed)
}

func TestIngestTrafficStats_DropsUnparseablePeriods(t *testing.T) {
	service, repositories, user := newIngestionFixture(t)
	ctx := context.Background()

	written, err := service.IngestTrafficStats(ctx, interfaces.IngestTarget{UserID: user.ID}, []interfaces.TrafficStatInput{
		{Period: "2026-07-01", Clicks: 10, Impressions: 100, Ctr: 0.1, Position: 3.4},
		{Period: "garbage", Clicks: 99},
		{Period: "2026/07/02", Clicks: 20, Impressions: 150},
	})
	require.NoError(t, err)
	require.Len(t, written, 2)

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows, err := repositories.TrafficStatRepository.GetByTenants(ctx, []string{written[0].TenantID}, since, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestIngestTrafficStats_UpsertPerPeriod(t *testing.T) {
	service, repositories, user := newIngestionFixture(t)
	ctx := context.Background()
	target := interfaces.IngestTarget{UserID: user.ID}

	_, err := service.IngestTrafficStats(ctx, target, []interfaces.TrafficStatInput{
		{Period: "2026-07-01", Clicks: 10},
	})
	require.NoError(t, err)

	written, err := service.IngestTrafficStats(ctx, target, []interfaces.TrafficStatInput{
		{Period: "2026-07-01", Clicks: 25, Impressions: 300},
	})
	require.NoError(t, err)

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows, err := repositories.TrafficStatRepository.GetByTenants(ctx, []string{written[0].TenantID}, since, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(25), rows[0].Clicks)
	require.Equal(t, int64(300), rows[0].Impressions)
}

func TestIngestKeywordRankings_AppendsHistory(t *testing.T) {
	service, repositories, user := newIngestionFixture(t)
	ctx := context.Background()
	target := interfaces.IngestTarget{UserID: user.ID}

	explicitDelta := -3
	first, err := service.IngestKeywordRankings(ctx, target, []interfaces.KeywordRankingInput{
		{Keyword: "seo agency", Rank: 8, Trend: "up"},
		{Keyword: "seo audit", Rank: 15, RankDelta: &explicitDelta, Trend: "up"},
		{Keyword: "link building", Rank: 30, Trend: "down"},
	})
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.Equal(t, 1, first[0].RankDelta)
	require.Equal(t, -3, first[1].RankDelta)
	require.Equal(t, -1, first[2].RankDelta)

	// resubmitting the same keyword appends a new row
	_, err = service.IngestKeywordRankings(ctx, target, []interfaces.KeywordRankingInput{
		{Keyword: "seo agency", Rank: 6, Trend: "up"},
	})
	require.NoError(t, err)

	rows, err := repositories.KeywordRankingRepository.GetTopByTenants(ctx, []string{first[0].TenantID}, 20)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, 6, rows[0].Rank)
}

func TestResolveTenant_TargetPriority(t *testing.T) {
	service, repositories, user := newIngestionFixture(t)
	ctx := context.Background()

	other := &models.User{Email: "client@example.com"}
	require.NoError(t, repositories.UserRepository.Create(ctx, nil, other))

	byEmail, err := service.resolveTenant(ctx, interfaces.IngestTarget{UserEmail: other.Email})
	require.NoError(t, err)
	byUserId, err := service.resolveTenant(ctx, interfaces.IngestTarget{UserID: other.ID})
	require.NoError(t, err)
	require.Equal(t, byEmail, byUserId)

	// explicit tenant id wins over the user fields
	ownTenant, err := service.resolveTenant(ctx, interfaces.IngestTarget{UserID: user.ID})
	require.NoError(t, err)
	resolved, err := service.resolveTenant(ctx, interfaces.IngestTarget{TenantID: ownTenant, UserEmail: other.Email})
	require.NoError(t, err)
	require.Equal(t, ownTenant, resolved)

	// acting user from context is the last fallback
	actingCtx := utils.WithCustomContext(ctx, &utils.CustomContext{UserId: user.ID})
	resolved, err = service.resolveTenant(actingCtx, interfaces.IngestTarget{})
	require.NoError(t, err)
	require.Equal(t, ownTenant, resolved)
}

func TestResolveTenant_MissingTarget(t *testing.T) {
	service, _, _ := newIngestionFixture(t)
	ctx := context.Background()

	_, err := service.resolveTenant(ctx, interfaces.IngestTarget{})
	require.ErrorIs(t, err, er.ErrMissingTarget)

	_, err = service.resolveTenant(ctx, interfaces.IngestTarget{TenantID: "tnt_missing"})
	require.ErrorIs(t, err, er.ErrMissingTarget)

	_, err = service.resolveTenant(ctx, interfaces.IngestTarget{UserEmail: "ghost@example.com"})
	require.ErrorIs(t, err, er.ErrMissingTarget)
}

func TestResolveTenant_ExplicitTenantRequiresAdmin(t *testing.T) {
	service, repositories, user := newIngestionFixture(t)
	ctx := context.Background()

	ownTenant, err := service.resolveTenant(ctx, interfaces.IngestTarget{UserID: user.ID})
	require.NoError(t, err)

	outsider := &models.User{Email: "outsider@example.com"}
	require.NoError(t, repositories.UserRepository.Create(ctx, nil, outsider))

	actingCtx := utils.WithCustomContext(ctx, &utils.CustomContext{UserId: outsider.ID})
	_, err = service.resolveTenant(actingCtx, interfaces.IngestTarget{TenantID: ownTenant})
	require.ErrorIs(t, err, er.ErrUnauthorized)
}
