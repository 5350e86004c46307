package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/tracing"
	"github.com/rankforge/seoportal/internal/utils"
)

type CmsIntegrationRepository interface {
	GetByTenantId(ctx context.Context, tx *gorm.DB, tenantId string) (*models.CmsIntegration, error)
	GetAll(ctx context.Context) ([]*models.CmsIntegration, error)
	Merge(ctx context.Context, tx *gorm.DB, integration *models.CmsIntegration) error
}

type cmsIntegrationRepository struct {
	db *gorm.DB
}

func NewCmsIntegrationRepository(db *gorm.DB) CmsIntegrationRepository {
	return &cmsIntegrationRepository{db: db}
}

func (r *cmsIntegrationRepository) GetByTenantId(ctx context.Context, tx *gorm.DB, tenantId string) (*models.CmsIntegration, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "CmsIntegrationRepository.GetByTenantId")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagTenant(span, tenantId)

	db := r.db
	if tx != nil {
		db = tx
	}

	var integration models.CmsIntegration
	err := db.First(&integration, "tenant_id = ?", tenantId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &integration, nil
}

func (r *cmsIntegrationRepository) GetAll(ctx context.Context) ([]*models.CmsIntegration, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "CmsIntegrationRepository.GetAll")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var integrations []*models.CmsIntegration
	err := r.db.Order("created_at asc").Find(&integrations).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return integrations, nil
}

// Merge inserts or updates the tenant's single integration row.
func (r *cmsIntegrationRepository) Merge(ctx context.Context, tx *gorm.DB, integration *models.CmsIntegration) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "CmsIntegrationRepository.Merge")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagTenant(span, integration.TenantID)

	db := r.db
	if tx != nil {
		db = tx
	}

	var existing models.CmsIntegration
	err := db.First(&existing, "tenant_id = ?", integration.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if createErr := db.Create(integration).Error; createErr != nil {
				tracing.TraceErr(span, createErr)
				return createErr
			}
			return nil
		}
		tracing.TraceErr(span, err)
		return err
	}

	integration.ID = existing.ID
	integration.CreatedAt = existing.CreatedAt
	integration.UpdatedAt = utils.Now()
	if saveErr := db.Save(integration).Error; saveErr != nil {
		tracing.TraceErr(span, saveErr)
		return saveErr
	}
	return nil
}
