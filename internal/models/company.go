package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/utils"
)

// Company is the billing/ownership entity grouping one or more tenants.
// Companies are created lazily on first binding and never hard-deleted.
type Company struct {
	ID           string     `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Name         string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	ContactEmail string     `gorm:"column:contact_email;type:varchar(255)" json:"contactEmail"`
	CoopStartAt  *time.Time `gorm:"column:coop_start_at;type:timestamp" json:"coopStartAt"`
	ValidUntil   *time.Time `gorm:"column:valid_until;type:timestamp" json:"validUntil"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (Company) TableName() string {
	return "companies"
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = utils.GenerateNanoIDWithPrefix("cmp", 16)
	}
	return nil
}
