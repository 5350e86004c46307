package tenant

import (
	"context"
	"strings"
	"sync"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	er "github.com/rankforge/seoportal/internal/errors"
	"github.com/rankforge/seoportal/internal/logger"
	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/repository"
	"github.com/rankforge/seoportal/internal/tracing"
)

type tenantResolver struct {
	log          logger.Logger
	db           *gorm.DB
	repositories *repository.Repositories

	userLocks     map[string]*sync.Mutex
	userLocksLock sync.Mutex
}

func NewTenantResolver(log logger.Logger, db *gorm.DB, repositories *repository.Repositories) *tenantResolver {
	return &tenantResolver{
		log:          log,
		db:           db,
		repositories: repositories,
		userLocks:    make(map[string]*sync.Mutex),
	}
}

// ResolveOrCreateTenant returns the tenant the user acts in. When the user has
// memberships the most recently created one wins. A user without any membership
// gets a fresh personal tenant and an admin membership, created atomically.
func (s *tenantResolver) ResolveOrCreateTenant(ctx context.Context, userId string) (string, models.MembershipRole, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantResolver.ResolveOrCreateTenant")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	user, err := s.repositories.UserRepository.GetById(ctx, userId)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", "", err
	}
	if user == nil {
		tracing.TraceErr(span, er.ErrResolutionFailed)
		return "", "", er.ErrResolutionFailed
	}

	membership, err := s.repositories.MembershipRepository.GetPrimaryByUserId(ctx, userId)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", "", err
	}
	if membership != nil {
		tracing.TagTenant(span, membership.TenantID)
		return membership.TenantID, membership.Role, nil
	}

	// Serialize first-touch provisioning per user so concurrent requests
	// cannot create two personal tenants.
	lock := s.lockForUser(userId)
	lock.Lock()
	defer lock.Unlock()

	membership, err = s.repositories.MembershipRepository.GetPrimaryByUserId(ctx, userId)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", "", err
	}
	if membership != nil {
		tracing.TagTenant(span, membership.TenantID)
		return membership.TenantID, membership.Role, nil
	}

	newTenant := &models.Tenant{
		Name: personalTenantName(user),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repositories.TenantRepository.Create(ctx, tx, newTenant); err != nil {
			return err
		}
		return s.repositories.MembershipRepository.Create(ctx, tx, &models.Membership{
			TenantID: newTenant.ID,
			UserID:   user.ID,
			Role:     models.MembershipRoleAdmin,
		})
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return "", "", err
	}

	s.log.Infof("created personal tenant %s for user %s", newTenant.ID, user.ID)
	tracing.TagTenant(span, newTenant.ID)
	return newTenant.ID, models.MembershipRoleAdmin, nil
}

func (s *tenantResolver) lockForUser(userId string) *sync.Mutex {
	s.userLocksLock.Lock()
	defer s.userLocksLock.Unlock()

	lock, ok := s.userLocks[userId]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userId] = lock
	}
	return lock
}

func personalTenantName(user *models.User) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	if at := strings.Index(user.Email, "@"); at > 0 {
		return user.Email[:at]
	}
	return user.Email
}
