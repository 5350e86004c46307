package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/utils"
)

type ContentStatus string

const (
	ContentStatusReady     ContentStatus = "ready"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusPaused    ContentStatus = "paused"
)

// ContentScheduleItem is a planned piece of content with a date-only
// publish date. Items move strictly forward ready/paused -> published.
type ContentScheduleItem struct {
	ID       string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	TenantID string `gorm:"column:tenant_id;type:varchar(50);not null;index" json:"tenantId"`

	Title      string         `gorm:"column:title;type:varchar(512);not null" json:"title"`
	Summary    string         `gorm:"column:summary;type:text" json:"summary"`
	ContentURL string         `gorm:"column:content_url;type:varchar(512)" json:"contentUrl"`
	Keywords   pq.StringArray `gorm:"column:keywords;type:text[]" json:"keywords"`

	// Date-only; normalized to midnight UTC.
	PublishDate time.Time     `gorm:"column:publish_date;type:date;not null;index" json:"publishDate"`
	Status      ContentStatus `gorm:"column:status;type:varchar(50);not null;default:'ready'" json:"status"`
	PublishedAt *time.Time    `gorm:"column:published_at;type:timestamp" json:"publishedAt"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (ContentScheduleItem) TableName() string {
	return "content_schedule_items"
}

func (c *ContentScheduleItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = utils.GenerateNanoIDWithPrefix("cnt", 16)
	}
	c.PublishDate = utils.StartOfDayInUTC(c.PublishDate)
	return nil
}
