package publication

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/interfaces"
	"github.com/rankforge/seoportal/internal/logger"
	"github.com/rankforge/seoportal/internal/metrics"
	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/repository"
	"github.com/rankforge/seoportal/internal/tracing"
	"github.com/rankforge/seoportal/internal/utils"
)

const (
	defaultPublishHour   = 9
	defaultPublishMinute = 0
)

type publicationService struct {
	log          logger.Logger
	db           *gorm.DB
	repositories *repository.Repositories
	remote       interfaces.RemotePublisher
	events       interfaces.EventPublisher
	clock        clock.Clock
}

func NewPublicationService(log logger.Logger, db *gorm.DB, repositories *repository.Repositories, remote interfaces.RemotePublisher, events interfaces.EventPublisher) *publicationService {
	return &publicationService{
		log:          log,
		db:           db,
		repositories: repositories,
		remote:       remote,
		events:       events,
		clock:        clock.New(),
	}
}

// RunSweep walks every auto-publish tenant and publishes today's ready
// content items once the tenant's local publish time has passed. Items not
// yet due are reported as skipped without a state change. Tenant failures
// are isolated: one broken integration never aborts the rest of the sweep.
func (s *publicationService) RunSweep(ctx context.Context) (*interfaces.SweepResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "PublicationService.RunSweep")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	now := s.clock.Now().UTC()
	result := &interfaces.SweepResult{
		Published: []string{},
		Skipped:   []string{},
		Now:       now,
	}

	integrations, err := s.repositories.CmsIntegrationRepository.GetAll(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	for _, integration := range integrations {
		if !integration.AutoPublish {
			continue
		}
		if err := s.sweepTenant(ctx, integration, now, result); err != nil {
			s.log.Errorf("sweep failed for tenant %s: %v", integration.TenantID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("tenant %s: %v", integration.TenantID, err))
		}
	}

	metrics.RecordSweep(len(result.Published), len(result.Skipped), len(result.Errors))
	s.log.Infof("publication sweep done: %d processed, %d published, %d skipped, %d errors",
		result.Processed, len(result.Published), len(result.Skipped), len(result.Errors))
	return result, nil
}

func (s *publicationService) sweepTenant(ctx context.Context, integration *models.CmsIntegration, now time.Time, result *interfaces.SweepResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during sweep: %v", r)
			tracing.RecoverAndLogToJaeger(s.log)
		}
	}()

	hour, minute, parseErr := utils.ParseClock(integration.PublishTime)
	if parseErr != nil {
		hour, minute = defaultPublishHour, defaultPublishMinute
	}

	// Today's UTC date combined with the tenant's local publish time
	// decides when items become due and which items are in scope.
	loc := locationFor(integration.Timezone)
	scheduledAt := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
	due := !now.Before(scheduledAt)
	today := utils.StartOfDayInUTC(now)

	readyItems, err := s.repositories.ContentScheduleItemRepo.GetReadyForDate(ctx, integration.TenantID, today)
	if err != nil {
		return err
	}
	for _, item := range readyItems {
		result.Processed++
		if !due {
			result.Skipped = append(result.Skipped, item.ID)
			continue
		}
		if publishErr := s.publishItem(ctx, integration, item, now); publishErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("item %s: %v", item.ID, publishErr))
			continue
		}
		result.Published = append(result.Published, item.ID)
	}

	pausedItems, err := s.repositories.ContentScheduleItemRepo.GetPausedForDate(ctx, integration.TenantID, today)
	if err != nil {
		return err
	}
	for _, item := range pausedItems {
		result.Processed++
		result.Skipped = append(result.Skipped, item.ID)
		if err := s.logPausedSkip(ctx, integration, item, now); err != nil {
			return err
		}
	}

	return nil
}

// publishItem pushes the item to the tenant's CMS, then records the state
// flip and the audit entry in one transaction. A failed push leaves the item
// ready so the next sweep retries it.
func (s *publicationService) publishItem(ctx context.Context, integration *models.CmsIntegration, item *models.ContentScheduleItem, now time.Time) error {
	if err := s.remote.Publish(ctx, integration, item); err != nil {
		logErr := s.repositories.PublishLogRepository.Create(ctx, nil, &models.PublishLogEntry{
			TenantID:    item.TenantID,
			ItemID:      item.ID,
			AttemptedAt: now,
			TargetURL:   integration.SiteURL,
			Outcome:     models.PublishOutcomeFailed,
			Message:     err.Error(),
		})
		if logErr != nil {
			s.log.Errorf("failed to record publish failure for item %s: %v", item.ID, logErr)
		}
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repositories.ContentScheduleItemRepo.MarkPublished(ctx, tx, item.ID, now); err != nil {
			return err
		}
		return s.repositories.PublishLogRepository.Create(ctx, tx, &models.PublishLogEntry{
			TenantID:    item.TenantID,
			ItemID:      item.ID,
			AttemptedAt: now,
			TargetURL:   integration.SiteURL,
			Outcome:     models.PublishOutcomeSuccess,
		})
	})
	if err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PublishContentPublished(ctx, item.TenantID, item.ID); err != nil {
			s.log.Warnf("failed to emit published event for item %s: %v", item.ID, err)
		}
	}
	return nil
}

// logPausedSkip writes at most one skipped_paused entry per item and day,
// so a sweep running every few minutes does not flood the audit trail.
func (s *publicationService) logPausedSkip(ctx context.Context, integration *models.CmsIntegration, item *models.ContentScheduleItem, now time.Time) error {
	entries, err := s.repositories.PublishLogRepository.GetByItem(ctx, item.ID)
	if err != nil {
		return err
	}
	today := utils.StartOfDayInUTC(now)
	for _, entry := range entries {
		if entry.Outcome == models.PublishOutcomeSkippedPaused && utils.StartOfDayInUTC(entry.AttemptedAt).Equal(today) {
			return nil
		}
	}

	return s.repositories.PublishLogRepository.Create(ctx, nil, &models.PublishLogEntry{
		TenantID:    item.TenantID,
		ItemID:      item.ID,
		AttemptedAt: now,
		TargetURL:   integration.SiteURL,
		Outcome:     models.PublishOutcomeSkippedPaused,
		Message:     "item is paused",
	})
}

// locationFor maps the stored timezone setting to a location. Only UTC and
// the fixed UTC+8 offset are supported; anything else falls back to UTC+8.
func locationFor(timezone string) *time.Location {
	if timezone == "UTC" {
		return time.UTC
	}
	return time.FixedZone("UTC+8", 8*3600)
}
