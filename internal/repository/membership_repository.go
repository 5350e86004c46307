package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/tracing"
)

type MembershipRepository interface {
	// GetPrimaryByUserId returns the user's most recently created
	// membership, or nil when the user has none.
	GetPrimaryByUserId(ctx context.Context, userId string) (*models.Membership, error)
	GetByTenantAndUser(ctx context.Context, tenantId, userId string) (*models.Membership, error)
	GetByUserId(ctx context.Context, userId string) ([]*models.Membership, error)
	Create(ctx context.Context, tx *gorm.DB, membership *models.Membership) error
	HasAdminRole(ctx context.Context, tenantId, userId string) (bool, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) GetPrimaryByUserId(ctx context.Context, userId string) (*models.Membership, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "MembershipRepository.GetPrimaryByUserId")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var membership models.Membership
	err := r.db.
		Where("user_id = ?", userId).
		Order("created_at desc").
		First(&membership).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepository) GetByTenantAndUser(ctx context.Context, tenantId, userId string) (*models.Membership, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "MembershipRepository.GetByTenantAndUser")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var membership models.Membership
	err := r.db.
		Where("tenant_id = ? and user_id = ?", tenantId, userId).
		First(&membership).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepository) GetByUserId(ctx context.Context, userId string) ([]*models.Membership, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "MembershipRepository.GetByUserId")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var memberships []*models.Membership
	err := r.db.
		Where("user_id = ?", userId).
		Order("created_at desc").
		Find(&memberships).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return memberships, nil
}

func (r *membershipRepository) Create(ctx context.Context, tx *gorm.DB, membership *models.Membership) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "MembershipRepository.Create")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.Create(membership).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *membershipRepository) HasAdminRole(ctx context.Context, tenantId, userId string) (bool, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "MembershipRepository.HasAdminRole")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagTenant(span, tenantId)

	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("tenant_id = ? and user_id = ? and role = ?", tenantId, userId, models.MembershipRoleAdmin).
		Count(&count).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}
	return count > 0, nil
}
