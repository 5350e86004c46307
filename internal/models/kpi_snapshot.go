package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/utils"
)

type KpiMetricType string

const (
	KpiMetricInquiries KpiMetricType = "inquiries"
	KpiMetricTraffic   KpiMetricType = "traffic"
	KpiMetricRankings  KpiMetricType = "rankings"
)

// KpiSnapshot is a generic per-period numeric metric record. The
// composite unique index makes ingestion a true upsert, so retries
// converge to a single row per (tenant, type, period).
type KpiSnapshot struct {
	ID          string        `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	TenantID    string        `gorm:"column:tenant_id;type:varchar(50);not null;uniqueIndex:idx_kpi_tenant_type_period" json:"tenantId"`
	MetricType  KpiMetricType `gorm:"column:metric_type;type:varchar(50);not null;uniqueIndex:idx_kpi_tenant_type_period" json:"metricType"`
	PeriodStart time.Time     `gorm:"column:period_start;type:date;not null;uniqueIndex:idx_kpi_tenant_type_period" json:"periodStart"`
	PeriodEnd   time.Time     `gorm:"column:period_end;type:date;not null;uniqueIndex:idx_kpi_tenant_type_period" json:"periodEnd"`
	Value       float64       `gorm:"column:value;not null" json:"value"`
	Delta       float64       `gorm:"column:delta" json:"delta"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (KpiSnapshot) TableName() string {
	return "kpi_snapshots"
}

func (k *KpiSnapshot) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = utils.GenerateNanoIDWithPrefix("kpi", 16)
	}
	return nil
}
