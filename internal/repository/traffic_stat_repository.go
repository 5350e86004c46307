package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/tracing"
)

type TrafficStatRepository interface {
	// UpsertBatch overwrites the numeric fields of any existing
	// (tenant, period) row with the incoming values.
	UpsertBatch(ctx context.Context, stats []*models.TrafficStat) error
	GetByTenants(ctx context.Context, tenantIds []string, since time.Time, limit int) ([]*models.TrafficStat, error)
}

type trafficStatRepository struct {
	db *gorm.DB
}

func NewTrafficStatRepository(db *gorm.DB) TrafficStatRepository {
	return &trafficStatRepository{db: db}
}

func (r *trafficStatRepository) UpsertBatch(ctx context.Context, stats []*models.TrafficStat) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "TrafficStatRepository.UpsertBatch")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	if len(stats) == 0 {
		return nil
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tenant_id"},
			{Name: "period"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"clicks", "impressions", "ctr", "position", "updated_at"}),
	}).Create(&stats).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *trafficStatRepository) GetByTenants(ctx context.Context, tenantIds []string, since time.Time, limit int) ([]*models.TrafficStat, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "TrafficStatRepository.GetByTenants")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var stats []*models.TrafficStat
	err := r.db.
		Where("tenant_id in ? and period >= ?", tenantIds, since).
		Order("period desc").
		Limit(limit).
		Find(&stats).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return stats, nil
}
