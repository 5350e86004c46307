package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/tracing"
)

type KeywordRankingRepository interface {
	// CreateBatch appends rows; rankings keep full history and are never
	// deduplicated here.
	CreateBatch(ctx context.Context, rankings []*models.KeywordRanking) error
	GetTopByTenants(ctx context.Context, tenantIds []string, limit int) ([]*models.KeywordRanking, error)
}

type keywordRankingRepository struct {
	db *gorm.DB
}

func NewKeywordRankingRepository(db *gorm.DB) KeywordRankingRepository {
	return &keywordRankingRepository{db: db}
}

func (r *keywordRankingRepository) CreateBatch(ctx context.Context, rankings []*models.KeywordRanking) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "KeywordRankingRepository.CreateBatch")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	if len(rankings) == 0 {
		return nil
	}

	err := r.db.Create(&rankings).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *keywordRankingRepository) GetTopByTenants(ctx context.Context, tenantIds []string, limit int) ([]*models.KeywordRanking, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "KeywordRankingRepository.GetTopByTenants")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var rankings []*models.KeywordRanking
	err := r.db.
		Where("tenant_id in ?", tenantIds).
		Order("rank asc").
		Limit(limit).
		Find(&rankings).
		Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return rankings, nil
}
