package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/utils"
)

// TrafficStat is one search-traffic row per (tenant, period); the unique
// constraint backs the ingestion upsert.
type TrafficStat struct {
	ID       string    `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	TenantID string    `gorm:"column:tenant_id;type:varchar(50);not null;uniqueIndex:idx_traffic_tenant_period" json:"tenantId"`
	Period   time.Time `gorm:"column:period;type:date;not null;uniqueIndex:idx_traffic_tenant_period" json:"period"`

	Clicks      int64   `gorm:"column:clicks;not null;default:0" json:"clicks"`
	Impressions int64   `gorm:"column:impressions;not null;default:0" json:"impressions"`
	Ctr         float64 `gorm:"column:ctr" json:"ctr"`
	Position    float64 `gorm:"column:position" json:"position"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (TrafficStat) TableName() string {
	return "traffic_stats"
}

func (t *TrafficStat) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = utils.GenerateNanoIDWithPrefix("trf", 16)
	}
	return nil
}
