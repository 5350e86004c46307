package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/utils"
)

type PublishOutcome string

const (
	PublishOutcomeSuccess       PublishOutcome = "success"
	PublishOutcomeFailed        PublishOutcome = "failed"
	PublishOutcomeSkippedPaused PublishOutcome = "skipped_paused"
)

// PublishLogEntry is the append-only audit trail of the publication
// sweep. Entries are never updated or deleted.
type PublishLogEntry struct {
	ID          string         `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	TenantID    string         `gorm:"column:tenant_id;type:varchar(50);not null;index" json:"tenantId"`
	ItemID      string         `gorm:"column:item_id;type:varchar(50);not null;index" json:"itemId"`
	AttemptedAt time.Time      `gorm:"column:attempted_at;type:timestamp;not null" json:"attemptedAt"`
	TargetURL   string         `gorm:"column:target_url;type:varchar(512)" json:"targetUrl"`
	Outcome     PublishOutcome `gorm:"column:outcome;type:varchar(50);not null" json:"outcome"`
	Message     string         `gorm:"column:message;type:text" json:"message"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
}

func (PublishLogEntry) TableName() string {
	return "publish_log_entries"
}

func (p *PublishLogEntry) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = utils.GenerateNanoIDWithPrefix("plg", 16)
	}
	return nil
}
