package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/tracing"
)

type UserRepository interface {
	GetById(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByCompanyId(ctx context.Context, companyId string) ([]*models.User, error)
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	AttachCompany(ctx context.Context, tx *gorm.DB, userId, companyId string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetById(ctx context.Context, id string) (*models.User, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "UserRepository.GetById")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "UserRepository.GetByEmail")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var user models.User
	err := r.db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByCompanyId(ctx context.Context, companyId string) ([]*models.User, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "UserRepository.GetByCompanyId")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var users []*models.User
	err := r.db.Where("company_id = ?", companyId).Find(&users).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "UserRepository.Create")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.Create(user).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *userRepository) AttachCompany(ctx context.Context, tx *gorm.DB, userId, companyId string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "UserRepository.AttachCompany")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, userId)

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.Model(&models.User{}).
		Where("id = ?", userId).
		Update("company_id", companyId).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}
