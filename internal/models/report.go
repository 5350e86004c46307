package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/utils"
)

// Report references a periodic PDF report stored in object storage.
type Report struct {
	ID       string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	TenantID string `gorm:"column:tenant_id;type:varchar(50);not null;index" json:"tenantId"`

	Title      string `gorm:"column:title;type:varchar(512);not null" json:"title"`
	Period     string `gorm:"column:period;type:varchar(50)" json:"period"`
	StorageKey string `gorm:"column:storage_key;type:varchar(512)" json:"storageKey"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = utils.GenerateNanoIDWithPrefix("rpt", 16)
	}
	return nil
}
