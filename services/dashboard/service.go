package dashboard

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/rankforge/seoportal/interfaces"
	er "github.com/rankforge/seoportal/internal/errors"
	"github.com/rankforge/seoportal/internal/logger"
	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/repository"
	"github.com/rankforge/seoportal/internal/tracing"
	"github.com/rankforge/seoportal/internal/utils"
)

const (
	trafficRowLimit   = 120
	keywordRowLimit   = 30
	contentRowLimit   = 20
	defaultLookbackMo = 6
)

type dashboardService struct {
	log          logger.Logger
	repositories *repository.Repositories
	storage      interfaces.StorageService
}

func NewDashboardService(log logger.Logger, repositories *repository.Repositories, storage interfaces.StorageService) *dashboardService {
	return &dashboardService{
		log:          log,
		repositories: repositories,
		storage:      storage,
	}
}

// Overview aggregates the reporting data for a set of tenants. The default
// window looks back six months.
func (s *dashboardService) Overview(ctx context.Context, tenantIds []string, since *time.Time) (*interfaces.DashboardOverview, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DashboardService.Overview")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if len(tenantIds) == 0 {
		tracing.TraceErr(span, er.ErrTenantMissing)
		return nil, er.ErrTenantMissing
	}

	from := utils.Now().AddDate(0, -defaultLookbackMo, 0)
	if since != nil {
		from = since.UTC()
	}

	inquiries, err := s.repositories.KpiSnapshotRepository.GetByTenants(ctx, tenantIds, models.KpiMetricInquiries, from, trafficRowLimit)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	traffic, err := s.repositories.TrafficStatRepository.GetByTenants(ctx, tenantIds, from, trafficRowLimit)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	keywords, err := s.repositories.KeywordRankingRepository.GetTopByTenants(ctx, tenantIds, keywordRowLimit)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	content, err := s.repositories.ContentScheduleItemRepo.GetRecentForTenants(ctx, tenantIds, from, contentRowLimit)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	latestReport, err := s.repositories.ReportRepository.GetLatestByTenants(ctx, tenantIds)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	latestReportURL := ""
	if latestReport != nil && latestReport.StorageKey != "" && s.storage != nil {
		latestReportURL = s.storage.GetPublicURL(latestReport.StorageKey)
	}

	return &interfaces.DashboardOverview{
		Inquiries:       inquiries,
		Traffic:         traffic,
		Keywords:        keywords,
		Content:         content,
		LatestReport:    latestReport,
		LatestReportURL: latestReportURL,
	}, nil
}

// GroupedListing returns every company with the tenants its members can
// reach. Memberships pointing at tenants of another company are filtered
// out, so one company never sees another's sites.
func (s *dashboardService) GroupedListing(ctx context.Context) ([]*interfaces.CompanyGroup, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DashboardService.GroupedListing")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	companies, err := s.repositories.CompanyRepository.GetAll(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	groups := make([]*interfaces.CompanyGroup, 0, len(companies))
	for _, company := range companies {
		tenants, err := s.tenantsForCompany(ctx, company)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		groups = append(groups, &interfaces.CompanyGroup{
			Company: company,
			Tenants: tenants,
		})
	}
	return groups, nil
}

func (s *dashboardService) tenantsForCompany(ctx context.Context, company *models.Company) ([]*models.Tenant, error) {
	users, err := s.repositories.UserRepository.GetByCompanyId(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	tenantIdSet := make(map[string]struct{})
	var tenantIds []string
	for _, user := range users {
		memberships, err := s.repositories.MembershipRepository.GetByUserId(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		for _, membership := range memberships {
			if _, seen := tenantIdSet[membership.TenantID]; !seen {
				tenantIdSet[membership.TenantID] = struct{}{}
				tenantIds = append(tenantIds, membership.TenantID)
			}
		}
	}
	if len(tenantIds) == 0 {
		return []*models.Tenant{}, nil
	}

	tenants, err := s.repositories.TenantRepository.GetByIds(ctx, tenantIds)
	if err != nil {
		return nil, err
	}

	owned := make([]*models.Tenant, 0, len(tenants))
	for _, tenant := range tenants {
		if tenant.CompanyID != nil && *tenant.CompanyID == company.ID {
			owned = append(owned, tenant)
		}
	}
	return owned, nil
}
