package tenant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	er "github.com/rankforge/seoportal/internal/errors"
	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/repository"
	"github.com/rankforge/seoportal/internal/testutils"
	"github.com/rankforge/seoportal/internal/utils"
)

func TestResolveOrCreateTenant_CreatesPersonalTenantOnFirstUse(t *testing.T) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	resolver := NewTenantResolver(testutils.NewTestLogger(), db, repositories)
	ctx := context.Background()

	user := &models.User{Email: "ana@example.com", DisplayName: "Ana"}
	require.NoError(t, repositories.UserRepository.Create(ctx, nil, user))

	tenantId, role, err := resolver.ResolveOrCreateTenant(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, tenantId)
	require.Equal(t, models.MembershipRoleAdmin, role)

	createdTenant, err := repositories.TenantRepository.GetById(ctx, tenantId)
	require.NoError(t, err)
	require.NotNil(t, createdTenant)
	require.Equal(t, "Ana", createdTenant.Name)
	require.Nil(t, createdTenant.CompanyID)

	membership, err := repositories.MembershipRepository.GetByTenantAndUser(ctx, tenantId, user.ID)
	require.NoError(t, err)
	require.NotNil(t, membership)
	require.Equal(t, models.MembershipRoleAdmin, membership.Role)
}

func TestResolveOrCreateTenant_IsStableAcrossCalls(t *testing.T) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	resolver := NewTenantResolver(testutils.NewTestLogger(), db, repositories)
	ctx := context.Background()

	user := &models.User{Email: "bo@example.com"}
	require.NoError(t, repositories.UserRepository.Create(ctx, nil, user))

	firstTenantId, _, err := resolver.ResolveOrCreateTenant(ctx, user.ID)
	require.NoError(t, err)

	secondTenantId, _, err := resolver.ResolveOrCreateTenant(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, firstTenantId, secondTenantId)

	memberships, err := repositories.MembershipRepository.GetByUserId(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
}

func TestResolveOrCreateTenant_PrefersMostRecentMembership(t *testing.T) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	resolver := NewTenantResolver(testutils.NewTestLogger(), db, repositories)
	ctx := context.Background()

	user := &models.User{Email: "cy@example.com"}
	require.NoError(t, repositories.UserRepository.Create(ctx, nil, user))

	older := &models.Tenant{Name: "older"}
	require.NoError(t, repositories.TenantRepository.Create(ctx, nil, older))
	require.NoError(t, repositories.MembershipRepository.Create(ctx, nil, &models.Membership{
		TenantID: older.ID, UserID: user.ID, Role: models.MembershipRoleMember,
	}))

	newer := &models.Tenant{Name: "newer"}
	require.NoError(t, repositories.TenantRepository.Create(ctx, nil, newer))
	newerMembership := &models.Membership{TenantID: newer.ID, UserID: user.ID, Role: models.MembershipRoleAdmin}
	require.NoError(t, repositories.MembershipRepository.Create(ctx, nil, newerMembership))
	// sqlite timestamps have second precision, force a distinct ordering
	require.NoError(t, db.Model(newerMembership).Update("created_at", utils.Now().Add(time.Hour)).Error)

	tenantId, role, err := resolver.ResolveOrCreateTenant(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, newer.ID, tenantId)
	require.Equal(t, models.MembershipRoleAdmin, role)
}

func TestResolveOrCreateTenant_UnknownUser(t *testing.T) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	resolver := NewTenantResolver(testutils.NewTestLogger(), db, repositories)

	_, _, err := resolver.ResolveOrCreateTenant(context.Background(), "usr_missing")
	require.ErrorIs(t, err, er.ErrResolutionFailed)
}

func TestResolveOrCreateTenant_ConcurrentFirstUse(t *testing.T) {
	db := testutils.NewTestDB(t)
	repositories := repository.InitRepositories(db)
	resolver := NewTenantResolver(testutils.NewTestLogger(), db, repositories)
	ctx := context.Background()

	user := &models.User{Email: "race@example.com"}
	require.NoError(t, repositories.UserRepository.Create(ctx, nil, user))

	const workers = 8
	results := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = resolver.ResolveOrCreateTenant(ctx, user.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, results[0], results[i])
	}

	memberships, err := repositories.MembershipRepository.GetByUserId(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
}
