package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/rankforge/seoportal/internal/utils"
)

type MembershipRole string

const (
	MembershipRoleAdmin  MembershipRole = "admin"
	MembershipRoleMember MembershipRole = "member"
)

// Membership links a user to a tenant with a role. It is the sole
// authorization signal for tenant-scoped writes.
type Membership struct {
	ID       string         `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	TenantID string         `gorm:"column:tenant_id;type:varchar(50);not null;uniqueIndex:idx_membership_tenant_user" json:"tenantId"`
	UserID   string         `gorm:"column:user_id;type:varchar(50);not null;uniqueIndex:idx_membership_tenant_user;index" json:"userId"`
	Role     MembershipRole `gorm:"column:role;type:varchar(50);not null;default:'member'" json:"role"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (Membership) TableName() string {
	return "memberships"
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("mbr", 16)
	}
	return nil
}
