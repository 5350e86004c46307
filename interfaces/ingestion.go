package interfaces

import (
	"context"
	"time"

	"github.com/rankforge/seoportal/internal/models"
)

// IngestTarget selects the tenant the ingested rows belong to, in
// priority order: explicit tenant id, target user email, target user id.
// When all are empty the acting admin's own tenant is used.
type IngestTarget struct {
	TenantID  string `json:"tenantId"`
	UserEmail string `json:"userEmail"`
	UserID    string `json:"userId"`
}

type KpiSnapshotInput struct {
	MetricType  string  `json:"metricType"`
	PeriodStart string  `json:"periodStart"`
	PeriodEnd   string  `json:"periodEnd"`
	Value       float64 `json:"value"`
	Delta       float64 `json:"delta"`
}

type TrafficStatInput struct {
	Period      string  `json:"period"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	Ctr         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

type KeywordRankingInput struct {
	Keyword    string     `json:"keyword"`
	Rank       int        `json:"rank"`
	RankDelta  *int       `json:"rankDelta"`
	Trend      string     `json:"trend"`
	SearchURL  string     `json:"searchUrl"`
	CapturedAt *time.Time `json:"capturedAt"`
}

type IngestionService interface {
	IngestKpiSnapshots(ctx context.Context, target IngestTarget, inputs []KpiSnapshotInput) ([]*models.KpiSnapshot, error)
	IngestTrafficStats(ctx context.Context, target IngestTarget, inputs []TrafficStatInput) ([]*models.TrafficStat, error)
	IngestKeywordRankings(ctx context.Context, target IngestTarget, inputs []KeywordRankingInput) ([]*models.KeywordRanking, error)
}
