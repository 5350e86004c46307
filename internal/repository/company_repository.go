package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/tracing"
)

type CompanyRepository interface {
	GetById(ctx context.Context, tx *gorm.DB, id string) (*models.Company, error)
	GetAll(ctx context.Context) ([]*models.Company, error)
	Create(ctx context.Context, tx *gorm.DB, company *models.Company) error
	Save(ctx context.Context, tx *gorm.DB, company *models.Company) error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetById(ctx context.Context, tx *gorm.DB, id string) (*models.Company, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "CompanyRepository.GetById")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	db := r.db
	if tx != nil {
		db = tx
	}

	var company models.Company
	err := db.First(&company, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) GetAll(ctx context.Context) ([]*models.Company, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "CompanyRepository.GetAll")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var companies []*models.Company
	err := r.db.Order("created_at asc").Find(&companies).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return companies, nil
}

func (r *companyRepository) Create(ctx context.Context, tx *gorm.DB, company *models.Company) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "CompanyRepository.Create")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.Create(company).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *companyRepository) Save(ctx context.Context, tx *gorm.DB, company *models.Company) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "CompanyRepository.Save")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, company.ID)

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.Save(company).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}
