package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/utils"
)

// Tenant is one published site/brand surface. A tenant without a company
// is the personal workspace created automatically for a brand-new user.
type Tenant struct {
	ID        string  `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Name      string  `gorm:"column:name;type:varchar(255);not null" json:"name"`
	SiteURL   string  `gorm:"column:site_url;type:varchar(512)" json:"siteUrl"`
	CompanyID *string `gorm:"column:company_id;type:varchar(50);index" json:"companyId"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (Tenant) TableName() string {
	return "tenants"
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = utils.GenerateNanoIDWithPrefix("tnt", 16)
	}
	return nil
}
