package publication

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/repository"
	"github.com/rankforge/seoportal/internal/testutils"
)

type failingRemote struct {
	failTenantId string
}

func (p *failingRemote) Publish(ctx context.Context, integration *models.CmsIntegration, item *models.ContentScheduleItem) error {
	if item.TenantID == p.failTenantId {
		return errors.New("cms rejected the push")
	}
	return nil
}

func newSweepFixture(t *testing.T) (*publicationService, *repository.Repositories, *clock.Mock) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	log := testutils.NewTestLogger()
	service := NewPublicationService(log, db, repositories, NewNoopRemotePublisher(log), nil)

	mockClock := clock.NewMock()
	service.clock = mockClock
	return service, repositories, mockClock
}

func seedIntegration(t *testing.T, repositories *repository.Repositories, tenantId, timezone, publishTime string) {
	t.Helper()
	require.NoError(t, repositories.CmsIntegrationRepository.Merge(context.Background(), nil, &models.CmsIntegration{
		TenantID:    tenantId,
		SiteURL:     "https://" + tenantId + ".example.com",
		CmsUsername: "bot",
		CmsSecret:   "secret",
		Status:      models.CmsConnectionStatusConnected,
		Timezone:    timezone,
		PublishTime: publishTime,
		AutoPublish: true,
	}))
}

func seedItem(t *testing.T, repositories *repository.Repositories, tenantId string, publishDate time.Time, status models.ContentStatus) *models.ContentScheduleItem {
	t.Helper()
	item := &models.ContentScheduleItem{
		TenantID:    tenantId,
		Title:       "post",
		PublishDate: publishDate,
		Status:      status,
	}
	require.NoError(t, repositories.ContentScheduleItemRepo.Create(context.Background(), nil, item))
	return item
}

func TestRunSweep_RespectsLocalPublishTime(t *testing.T) {
	service, repositories, mockClock := newSweepFixture(t)
	ctx := context.Background()

	seedIntegration(t, repositories, "tnt_east", "UTC+8", "18:00")
	publishDate := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	item := seedItem(t, repositories, "tnt_east", publishDate, models.ContentStatusReady)

	// 09:00 UTC is 17:00 in UTC+8, one hour before the publish time:
	// the item is counted and reported as skipped, nothing changes state
	mockClock.Set(time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC))
	result, err := service.RunSweep(ctx)
	require.NoError(t, err)
	require.Empty(t, result.Published)
	require.Equal(t, []string{item.ID}, result.Skipped)
	require.Equal(t, 1, result.Processed)

	stillReady, err := repositories.ContentScheduleItemRepo.GetById(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ContentStatusReady, stillReady.Status)

	earlyEntries, err := repositories.PublishLogRepository.GetByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Empty(t, earlyEntries)

	// 11:00 UTC is 19:00 local, past the publish time
	mockClock.Set(time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC))
	result, err = service.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{item.ID}, result.Published)

	published, err := repositories.ContentScheduleItemRepo.GetById(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ContentStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)

	entries, err := repositories.PublishLogRepository.GetByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.PublishOutcomeSuccess, entries[0].Outcome)
}

func TestRunSweep_UsesUTCDateForScheduling(t *testing.T) {
	service, repositories, mockClock := newSweepFixture(t)
	ctx := context.Background()

	seedIntegration(t, repositories, "tnt_east", "UTC+8", "18:00")
	publishDate := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	item := seedItem(t, repositories, "tnt_east", publishDate, models.ContentStatusReady)

	// 20:00 UTC is already July 2nd in UTC+8, but the item is dated
	// July 1st UTC and its 18:00 local slot (10:00 UTC) has passed
	mockClock.Set(time.Date(2026, 7, 1, 20, 0, 0, 0, time.UTC))
	result, err := service.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{item.ID}, result.Published)

	published, err := repositories.ContentScheduleItemRepo.GetById(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ContentStatusPublished, published.Status)
}

func TestRunSweep_IsIdempotent(t *testing.T) {
	service, repositories, mockClock := newSweepFixture(t)
	ctx := context.Background()

	seedIntegration(t, repositories, "tnt_a", "UTC", "09:00")
	publishDate := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	item := seedItem(t, repositories, "tnt_a", publishDate, models.ContentStatusReady)

	mockClock.Set(time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC))
	result, err := service.RunSweep(ctx)
	require.NoError(t, err)
	require.Len(t, result.Published, 1)

	result, err = service.RunSweep(ctx)
	require.NoError(t, err)
	require.Empty(t, result.Published)

	entries, err := repositories.PublishLogRepository.GetByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRunSweep_PausedItemsAreSkipped(t *testing.T) {
	service, repositories, mockClock := newSweepFixture(t)
	ctx := context.Background()

	seedIntegration(t, repositories, "tnt_p", "UTC", "09:00")
	publishDate := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	item := seedItem(t, repositories, "tnt_p", publishDate, models.ContentStatusPaused)

	mockClock.Set(time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC))
	result, err := service.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{item.ID}, result.Skipped)
	require.Empty(t, result.Published)

	paused, err := repositories.ContentScheduleItemRepo.GetById(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ContentStatusPaused, paused.Status)
	require.Nil(t, paused.PublishedAt)

	// re-running the same day keeps a single audit entry
	_, err = service.RunSweep(ctx)
	require.NoError(t, err)

	entries, err := repositories.PublishLogRepository.GetByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.PublishOutcomeSkippedPaused, entries[0].Outcome)
}

func TestRunSweep_TenantFailuresAreIsolated(t *testing.T) {
	service, repositories, mockClock := newSweepFixture(t)
	service.remote = &failingRemote{failTenantId: "tnt_bad"}
	ctx := context.Background()

	seedIntegration(t, repositories, "tnt_bad", "UTC", "09:00")
	seedIntegration(t, repositories, "tnt_good", "UTC", "09:00")
	publishDate := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	badItem := seedItem(t, repositories, "tnt_bad", publishDate, models.ContentStatusReady)
	goodItem := seedItem(t, repositories, "tnt_good", publishDate, models.ContentStatusReady)

	mockClock.Set(time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC))
	result, err := service.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{goodItem.ID}, result.Published)
	require.Len(t, result.Errors, 1)

	// the failed item stays ready for the next attempt
	stillReady, err := repositories.ContentScheduleItemRepo.GetById(ctx, badItem.ID)
	require.NoError(t, err)
	require.Equal(t, models.ContentStatusReady, stillReady.Status)

	entries, err := repositories.PublishLogRepository.GetByItem(ctx, badItem.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.PublishOutcomeFailed, entries[0].Outcome)

	// the sweep only reads integrations; the failure never flips its status
	integration, err := repositories.CmsIntegrationRepository.GetByTenantId(ctx, nil, "tnt_bad")
	require.NoError(t, err)
	require.Equal(t, models.CmsConnectionStatusConnected, integration.Status)
}

func TestRunSweep_IgnoresDisabledIntegrations(t *testing.T) {
	service, repositories, mockClock := newSweepFixture(t)
	ctx := context.Background()

	require.NoError(t, repositories.CmsIntegrationRepository.Merge(ctx, nil, &models.CmsIntegration{
		TenantID:    "tnt_off",
		Status:      models.CmsConnectionStatusDisconnected,
		Timezone:    "UTC",
		PublishTime: "09:00",
		AutoPublish: false,
	}))
	publishDate := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	seedItem(t, repositories, "tnt_off", publishDate, models.ContentStatusReady)

	mockClock.Set(time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC))
	result, err := service.RunSweep(ctx)
	require.NoError(t, err)
	require.Zero(t, result.Processed)
	require.Empty(t, result.Published)
}

func TestLocationFor_FallsBackToUTCPlus8(t *testing.T) {
	require.Equal(t, time.UTC, locationFor("UTC"))

	reference := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	for _, tz := range []string{"UTC+8", "Asia/Shanghai", "garbage", ""} {
		_, offset := reference.In(locationFor(tz)).Zone()
		require.Equal(t, 8*3600, offset, "tz %q", tz)
	}
}
