package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/tracing"
	"github.com/rankforge/seoportal/internal/utils"
)

type ContentScheduleItemRepository interface {
	GetById(ctx context.Context, id string) (*models.ContentScheduleItem, error)
	GetReadyForDate(ctx context.Context, tenantId string, date time.Time) ([]*models.ContentScheduleItem, error)
	GetPausedForDate(ctx context.Context, tenantId string, date time.Time) ([]*models.ContentScheduleItem, error)
	GetRecentForTenants(ctx context.Context, tenantIds []string, since time.Time, limit int) ([]*models.ContentScheduleItem, error)
	Create(ctx context.Context, tx *gorm.DB, item *models.ContentScheduleItem) error
	Save(ctx context.Context, tx *gorm.DB, item *models.ContentScheduleItem) error
	MarkPublished(ctx context.Context, tx *gorm.DB, itemId string, publishedAt time.Time) error
}

type contentScheduleItemRepository struct {
	db *gorm.DB
}

func NewContentScheduleItemRepository(db *gorm.DB) ContentScheduleItemRepository {
	return &contentScheduleItemRepository{db: db}
}

func (r *contentScheduleItemRepository) GetById(ctx context.Context, id string) (*models.ContentScheduleItem, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ContentScheduleItemRepository.GetById")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	var item models.ContentScheduleItem
	err := r.db.First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &item, nil
}

func (r *contentScheduleItemRepository) GetReadyForDate(ctx context.Context, tenantId string, date time.Time) ([]*models.ContentScheduleItem, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ContentScheduleItemRepository.GetReadyForDate")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagTenant(span, tenantId)

	var items []*models.ContentScheduleItem
	err := r.db.
		Where("tenant_id = ? and publish_date = ? and status = ?",
			tenantId, utils.StartOfDayInUTC(date), models.ContentStatusReady).
		Order("created_at asc").
		Find(&items).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return items, nil
}

func (r *contentScheduleItemRepository) GetPausedForDate(ctx context.Context, tenantId string, date time.Time) ([]*models.ContentScheduleItem, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ContentScheduleItemRepository.GetPausedForDate")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagTenant(span, tenantId)

	var items []*models.ContentScheduleItem
	err := r.db.
		Where("tenant_id = ? and publish_date = ? and status = ?",
			tenantId, utils.StartOfDayInUTC(date), models.ContentStatusPaused).
		Order("created_at asc").
		Find(&items).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return items, nil
}

func (r *contentScheduleItemRepository) GetRecentForTenants(ctx context.Context, tenantIds []string, since time.Time, limit int) ([]*models.ContentScheduleItem, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ContentScheduleItemRepository.GetRecentForTenants")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var items []*models.ContentScheduleItem
	err := r.db.
		Where("tenant_id in ? and publish_date >= ?", tenantIds, utils.StartOfDayInUTC(since)).
		Order("publish_date desc").
		Limit(limit).
		Find(&items).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return items, nil
}

func (r *contentScheduleItemRepository) Create(ctx context.Context, tx *gorm.DB, item *models.ContentScheduleItem) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "ContentScheduleItemRepository.Create")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagTenant(span, item.TenantID)

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.Create(item).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *contentScheduleItemRepository) Save(ctx context.Context, tx *gorm.DB, item *models.ContentScheduleItem) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "ContentScheduleItemRepository.Save")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, item.ID)

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.Save(item).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

// MarkPublished flips a ready item to published. The status guard keeps
// re-runs of the sweep idempotent.
func (r *contentScheduleItemRepository) MarkPublished(ctx context.Context, tx *gorm.DB, itemId string, publishedAt time.Time) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "ContentScheduleItemRepository.MarkPublished")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, itemId)

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.Model(&models.ContentScheduleItem{}).
		Where("id = ? and status = ?", itemId, models.ContentStatusReady).
		Updates(map[string]interface{}{
			"status":       models.ContentStatusPublished,
			"published_at": publishedAt,
			"updated_at":   publishedAt,
		}).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}
