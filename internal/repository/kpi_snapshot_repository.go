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

type KpiSnapshotRepository interface {
	// Upsert converges retries to a single row per
	// (tenant, type, period start, period end).
	Upsert(ctx context.Context, snapshot *models.KpiSnapshot) error
	GetByTenants(ctx context.Context, tenantIds []string, metricType models.KpiMetricType, since time.Time, limit int) ([]*models.KpiSnapshot, error)
}

type kpiSnapshotRepository struct {
	db *gorm.DB
}

func NewKpiSnapshotRepository(db *gorm.DB) KpiSnapshotRepository {
	return &kpiSnapshotRepository{db: db}
}

func (r *kpiSnapshotRepository) Upsert(ctx context.Context, snapshot *models.KpiSnapshot) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "KpiSnapshotRepository.Upsert")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagTenant(span, snapshot.TenantID)

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tenant_id"},
			{Name: "metric_type"},
			{Name: "period_start"},
			{Name: "period_end"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value", "delta", "updated_at"}),
	}).Create(snapshot).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *kpiSnapshotRepository) GetByTenants(ctx context.Context, tenantIds []string, metricType models.KpiMetricType, since time.Time, limit int) ([]*models.KpiSnapshot, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "KpiSnapshotRepository.GetByTenants")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var snapshots []*models.KpiSnapshot
	err := r.db.
		Where("tenant_id in ? and metric_type = ? and period_start >= ?", tenantIds, metricType, since).
		Order("period_start desc").
		Limit(limit).
		Find(&snapshots).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return snapshots, nil
}
