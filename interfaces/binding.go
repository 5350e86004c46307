package interfaces

import (
	"context"
	"time"

	"github.com/rankforge/seoportal/internal/models"
)

type CompanyFields struct {
	Name         string     `json:"name"`
	ContactEmail string     `json:"contactEmail"`
	CoopStartAt  *time.Time `json:"coopStartAt"`
	ValidUntil   *time.Time `json:"validUntil"`
}

type BindTenantRequest struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	SiteName string `json:"siteName"`
	SiteURL  string `json:"siteUrl"`

	CmsUsername string `json:"cmsUsername"`
	CmsSecret   string `json:"cmsSecret"`
	Timezone    string `json:"timezone"`
	PublishTime string `json:"publishTime"`

	Company *CompanyFields `json:"company"`
}

// BindingService creates or updates a tenant, attaches it to the user's
// company and reconciles the tenant's CMS integration record.
type BindingService interface {
	BindTenant(ctx context.Context, request BindTenantRequest) (*models.Tenant, error)
}
