package interfaces

import (
	"context"
	"time"

	"github.com/rankforge/seoportal/internal/models"
)

type DashboardOverview struct {
	Inquiries    []*models.KpiSnapshot         `json:"inquiries"`
	Traffic      []*models.TrafficStat         `json:"traffic"`
	Keywords     []*models.KeywordRanking      `json:"keywords"`
	Content      []*models.ContentScheduleItem `json:"content"`
	LatestReport *models.Report                `json:"latestReport"`
	// LatestReportURL is the public download link for LatestReport when
	// object storage is configured with a CDN domain.
	LatestReportURL string `json:"latestReportUrl,omitempty"`
}

type CompanyGroup struct {
	Company *models.Company  `json:"company"`
	Tenants []*models.Tenant `json:"tenants"`
}

type DashboardService interface {
	Overview(ctx context.Context, tenantIds []string, since *time.Time) (*DashboardOverview, error)
	GroupedListing(ctx context.Context) ([]*CompanyGroup, error)
}
