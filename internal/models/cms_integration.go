package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/utils"
)

type CmsConnectionStatus string

const (
	CmsConnectionStatusConnected    CmsConnectionStatus = "connected"
	CmsConnectionStatusError        CmsConnectionStatus = "error"
	CmsConnectionStatusDisconnected CmsConnectionStatus = "disconnected"
)

// CmsIntegration holds the per-tenant credentials and schedule settings
// for pushing content to the external CMS. One row per tenant; removing
// credentials disables auto-publish instead of deleting the row.
type CmsIntegration struct {
	ID       string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	TenantID string `gorm:"column:tenant_id;type:varchar(50);not null;uniqueIndex" json:"tenantId"`

	SiteURL      string              `gorm:"column:site_url;type:varchar(512)" json:"siteUrl"`
	CmsUsername  string              `gorm:"column:cms_username;type:varchar(255)" json:"cmsUsername"`
	CmsSecret    string              `gorm:"column:cms_secret;type:varchar(255)" json:"-"`
	Status       CmsConnectionStatus `gorm:"column:status;type:varchar(50);not null;default:'disconnected'" json:"status"`
	Timezone     string              `gorm:"column:timezone;type:varchar(100);not null;default:'UTC'" json:"timezone"`
	PublishTime  string              `gorm:"column:publish_time;type:varchar(5);not null;default:'09:00'" json:"publishTime"`
	AutoPublish  bool                `gorm:"column:auto_publish;not null;default:false" json:"autoPublish"`
	ErrorMessage string              `gorm:"column:error_message;type:text" json:"errorMessage"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (CmsIntegration) TableName() string {
	return "cms_integrations"
}

func (i *CmsIntegration) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = utils.GenerateNanoIDWithPrefix("cms", 16)
	}
	return nil
}

func (i *CmsIntegration) HasCredentials() bool {
	return i.CmsUsername != "" && i.CmsSecret != ""
}
