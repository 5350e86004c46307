package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/tracing"
)

type TenantRepository interface {
	GetById(ctx context.Context, id string) (*models.Tenant, error)
	GetByIds(ctx context.Context, ids []string) ([]*models.Tenant, error)
	GetByCompanyId(ctx context.Context, companyId string) ([]*models.Tenant, error)
	GetAll(ctx context.Context) ([]*models.Tenant, error)
	Create(ctx context.Context, tx *gorm.DB, tenant *models.Tenant) error
	Save(ctx context.Context, tx *gorm.DB, tenant *models.Tenant) error
}

type tenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) GetById(ctx context.Context, id string) (*models.Tenant, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "TenantRepository.GetById")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	var tenant models.Tenant
	err := r.db.First(&tenant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) GetByIds(ctx context.Context, ids []string) ([]*models.Tenant, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "TenantRepository.GetByIds")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var tenants []*models.Tenant
	err := r.db.Where("id in ?", ids).Find(&tenants).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return tenants, nil
}

func (r *tenantRepository) GetByCompanyId(ctx context.Context, companyId string) ([]*models.Tenant, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "TenantRepository.GetByCompanyId")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var tenants []*models.Tenant
	err := r.db.Where("company_id = ?", companyId).Order("created_at asc").Find(&tenants).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return tenants, nil
}

func (r *tenantRepository) GetAll(ctx context.Context) ([]*models.Tenant, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "TenantRepository.GetAll")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var tenants []*models.Tenant
	err := r.db.Order("created_at asc").Find(&tenants).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return tenants, nil
}

func (r *tenantRepository) Create(ctx context.Context, tx *gorm.DB, tenant *models.Tenant) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "TenantRepository.Create")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.Create(tenant).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *tenantRepository) Save(ctx context.Context, tx *gorm.DB, tenant *models.Tenant) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "TenantRepository.Save")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, tenant.ID)

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.Save(tenant).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}
