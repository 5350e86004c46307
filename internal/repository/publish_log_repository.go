package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/tracing"
)

type PublishLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.PublishLogEntry) error
	GetByTenant(ctx context.Context, tenantId string, limit int) ([]*models.PublishLogEntry, error)
	GetByItem(ctx context.Context, itemId string) ([]*models.PublishLogEntry, error)
}

type publishLogRepository struct {
	db *gorm.DB
}

func NewPublishLogRepository(db *gorm.DB) PublishLogRepository {
	return &publishLogRepository{db: db}
}

func (r *publishLogRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.PublishLogEntry) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "PublishLogRepository.Create")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagTenant(span, entry.TenantID)

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.Create(entry).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *publishLogRepository) GetByTenant(ctx context.Context, tenantId string, limit int) ([]*models.PublishLogEntry, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "PublishLogRepository.GetByTenant")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagTenant(span, tenantId)

	var entries []*models.PublishLogEntry
	err := r.db.
		Where("tenant_id = ?", tenantId).
		Order("attempted_at desc").
		Limit(limit).
		Find(&entries).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return entries, nil
}

func (r *publishLogRepository) GetByItem(ctx context.Context, itemId string) ([]*models.PublishLogEntry, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "PublishLogRepository.GetByItem")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, itemId)

	var entries []*models.PublishLogEntry
	err := r.db.
		Where("item_id = ?", itemId).
		Order("attempted_at asc").
		Find(&entries).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return entries, nil
}
