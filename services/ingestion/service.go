package ingestion

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/rankforge/seoportal/interfaces"
	er "github.com/rankforge/seoportal/internal/errors"
	"github.com/rankforge/seoportal/internal/logger"
	"github.com/rankforge/seoportal/internal/metrics"
	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/repository"
	"github.com/rankforge/seoportal/internal/tracing"
	"github.com/rankforge/seoportal/internal/utils"
)

type ingestionService struct {
	log          logger.Logger
	repositories *repository.Repositories
	resolver     interfaces.TenantResolver
}

func NewIngestionService(log logger.Logger, repositories *repository.Repositories, resolver interfaces.TenantResolver) *ingestionService {
	return &ingestionService{
		log:          log,
		repositories: repositories,
		resolver:     resolver,
	}
}

// resolveTenant picks the tenant the rows land in, by target priority:
// explicit tenant id, target user email, target user id, then the acting
// user taken from the request context.
func (s *ingestionService) resolveTenant(ctx context.Context, target interfaces.IngestTarget) (string, error) {
	if target.TenantID != "" {
		tenant, err := s.repositories.TenantRepository.GetById(ctx, target.TenantID)
		if err != nil {
			return "", err
		}
		if tenant == nil {
			return "", errors.Wrapf(er.ErrMissingTarget, "tenant %s", target.TenantID)
		}
		if actingUserId := utils.GetUserIdFromContext(ctx); actingUserId != "" {
			isAdmin, err := s.repositories.MembershipRepository.HasAdminRole(ctx, tenant.ID, actingUserId)
			if err != nil {
				return "", err
			}
			if !isAdmin {
				return "", er.ErrUnauthorized
			}
		}
		return tenant.ID, nil
	}

	if target.UserEmail != "" {
		user, err := s.repositories.UserRepository.GetByEmail(ctx, target.UserEmail)
		if err != nil {
			return "", err
		}
		if user == nil {
			return "", errors.Wrapf(er.ErrMissingTarget, "user email %s", target.UserEmail)
		}
		tenantId, _, err := s.resolver.ResolveOrCreateTenant(ctx, user.ID)
		return tenantId, err
	}

	if target.UserID != "" {
		tenantId, _, err := s.resolver.ResolveOrCreateTenant(ctx, target.UserID)
		return tenantId, err
	}

	if actingUserId := utils.GetUserIdFromContext(ctx); actingUserId != "" {
		tenantId, _, err := s.resolver.ResolveOrCreateTenant(ctx, actingUserId)
		return tenantId, err
	}

	return "", er.ErrMissingTarget
}

func (s *ingestionService) IngestKpiSnapshots(ctx context.Context, target interfaces.IngestTarget, inputs []interfaces.KpiSnapshotInput) ([]*models.KpiSnapshot, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.IngestKpiSnapshots")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	tenantId, err := s.resolveTenant(ctx, target)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	tracing.TagTenant(span, tenantId)

	written := make([]*models.KpiSnapshot, 0, len(inputs))
	for _, input := range inputs {
		metricType := models.KpiMetricType(input.MetricType)
		switch metricType {
		case models.KpiMetricInquiries, models.KpiMetricTraffic, models.KpiMetricRankings:
		default:
			err := errors.Wrapf(er.ErrValidationFailed, "unknown metric type %q", input.MetricType)
			tracing.TraceErr(span, err)
			return nil, err
		}

		periodStart, err := utils.ParsePeriod(input.PeriodStart)
		if err != nil {
			err = errors.Wrap(er.ErrValidationFailed, err.Error())
			tracing.TraceErr(span, err)
			return nil, err
		}
		periodEnd := periodStart
		if input.PeriodEnd != "" {
			periodEnd, err = utils.ParsePeriod(input.PeriodEnd)
			if err != nil {
				err = errors.Wrap(er.ErrValidationFailed, err.Error())
				tracing.TraceErr(span, err)
				return nil, err
			}
		}

		snapshot := &models.KpiSnapshot{
			TenantID:    tenantId,
			MetricType:  metricType,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
			Value:       input.Value,
			Delta:       input.Delta,
		}
		if err := s.repositories.KpiSnapshotRepository.Upsert(ctx, snapshot); err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		written = append(written, snapshot)
	}

	metrics.RecordIngestion("kpi_snapshot", len(written))
	s.log.Infof("ingested %d kpi snapshots for tenant %s", len(written), tenantId)
	return written, nil
}

func (s *ingestionService) IngestTrafficStats(ctx context.Context, target interfaces.IngestTarget, inputs []interfaces.TrafficStatInput) ([]*models.TrafficStat, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.IngestTrafficStats")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	tenantId, err := s.resolveTenant(ctx, target)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	tracing.TagTenant(span, tenantId)

	stats := make([]*models.TrafficStat, 0, len(inputs))
	for _, input := range inputs {
		period, err := utils.ParsePeriod(input.Period)
		if err != nil {
			// feeds occasionally ship malformed periods, drop the row
			s.log.Warnf("dropping traffic row with period %q for tenant %s: %v", input.Period, tenantId, err)
			continue
		}
		stats = append(stats, &models.TrafficStat{
			TenantID:    tenantId,
			Period:      period,
			Clicks:      input.Clicks,
			Impressions: input.Impressions,
			Ctr:         input.Ctr,
			Position:    input.Position,
		})
	}

	if err := s.repositories.TrafficStatRepository.UpsertBatch(ctx, stats); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	metrics.RecordIngestion("traffic_stat", len(stats))
	s.log.Infof("ingested %d traffic rows for tenant %s", len(stats), tenantId)
	return stats, nil
}

func (s *ingestionService) IngestKeywordRankings(ctx context.Context, target interfaces.IngestTarget, inputs []interfaces.KeywordRankingInput) ([]*models.KeywordRanking, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.IngestKeywordRankings")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	tenantId, err := s.resolveTenant(ctx, target)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	tracing.TagTenant(span, tenantId)

	rankings := make([]*models.KeywordRanking, 0, len(inputs))
	for _, input := range inputs {
		if input.Keyword == "" {
			err := errors.Wrap(er.ErrValidationFailed, "keyword is required")
			tracing.TraceErr(span, err)
			return nil, err
		}

		capturedAt := utils.Now()
		if input.CapturedAt != nil {
			capturedAt = input.CapturedAt.UTC()
		}

		rankings = append(rankings, &models.KeywordRanking{
			TenantID:   tenantId,
			Keyword:    input.Keyword,
			Rank:       input.Rank,
			RankDelta:  rankDeltaFor(input),
			SearchURL:  input.SearchURL,
			CapturedAt: capturedAt,
		})
	}

	if err := s.repositories.KeywordRankingRepository.CreateBatch(ctx, rankings); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	metrics.RecordIngestion("keyword_ranking", len(rankings))
	s.log.Infof("ingested %d keyword rankings for tenant %s", len(rankings), tenantId)
	return rankings, nil
}

// rankDeltaFor prefers an explicit delta; otherwise the coarse trend label
// maps to a unit movement.
func rankDeltaFor(input interfaces.KeywordRankingInput) int {
	if input.RankDelta != nil {
		return *input.RankDelta
	}
	switch input.Trend {
	case "up":
		return 1
	case "down":
		return -1
	default:
		return 0
	}
}
