package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/tracing"
)

type ReportRepository interface {
	Create(ctx context.Context, tx *gorm.DB, report *models.Report) error
	GetLatestByTenants(ctx context.Context, tenantIds []string) (*models.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, tx *gorm.DB, report *models.Report) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "ReportRepository.Create")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagTenant(span, report.TenantID)

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.Create(report).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *reportRepository) GetLatestByTenants(ctx context.Context, tenantIds []string) (*models.Report, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ReportRepository.GetLatestByTenants")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var report models.Report
	err := r.db.
		Where("tenant_id in ?", tenantIds).
		Order("created_at desc").
		First(&report).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &report, nil
}
