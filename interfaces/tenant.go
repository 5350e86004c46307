package interfaces

import (
	"context"

	"github.com/rankforge/seoportal/internal/models"
)

// TenantResolver maps a user to their authoritative tenant context,
// creating a personal workspace on first use.
type TenantResolver interface {
	ResolveOrCreateTenant(ctx context.Context, userId string) (tenantId string, role models.MembershipRole, err error)
}
