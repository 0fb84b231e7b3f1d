package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

func TestPermissionResolver_ResolvePermissions(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	userID := uuid.Must(uuid.NewV7())

	t.Run("Success_CollectsPermissionsFromResolvedRoles", func(t *testing.T) {
		mockResolver := &mockRoleResolver{}
		mockRoleRepo := &mockRoleRepository{}

		role := authzDomain.Role{ID: uuid.Must(uuid.NewV7()), Name: "analyst"}
		mockResolver.On("ResolveRoles", ctx, userID, now).
			Return(&authzDomain.ResolvedRoles{Roles: []authzDomain.Role{role}}, nil).
			Once()
		mockRoleRepo.On("ListPermissionsForRoles", ctx, []uuid.UUID{role.ID}).
			Return([]string{"transaction:read", "transaction:write"}, nil).
			Once()

		resolver := NewPermissionResolver(mockResolver, mockRoleRepo)
		permissions, err := resolver.ResolvePermissions(ctx, userID, now)

		require.NoError(t, err)
		assert.Equal(t, []string{"transaction:read", "transaction:write"}, permissions)
		mockResolver.AssertExpectations(t)
		mockRoleRepo.AssertExpectations(t)
	})

	t.Run("Success_NoRolesSkipsPermissionQuery", func(t *testing.T) {
		mockResolver := &mockRoleResolver{}
		mockRoleRepo := &mockRoleRepository{}

		mockResolver.On("ResolveRoles", ctx, userID, now).
			Return(&authzDomain.ResolvedRoles{}, nil).
			Once()

		resolver := NewPermissionResolver(mockResolver, mockRoleRepo)
		permissions, err := resolver.ResolvePermissions(ctx, userID, now)

		require.NoError(t, err)
		assert.Empty(t, permissions)
		mockRoleRepo.AssertNotCalled(t, "ListPermissionsForRoles")
	})
}

func TestCachingPermissionResolver_ResolvePermissions(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	userID := uuid.Must(uuid.NewV7())

	t.Run("Success_SecondLookupServedFromCache", func(t *testing.T) {
		mockResolver := &mockRoleResolver{}
		mockRoleRepo := &mockRoleRepository{}

		role := authzDomain.Role{ID: uuid.Must(uuid.NewV7()), Name: "analyst"}
		mockResolver.On("ResolveRoles", ctx, userID, now).
			Return(&authzDomain.ResolvedRoles{Roles: []authzDomain.Role{role}}, nil).
			Twice()
		mockRoleRepo.On("ListPermissionsForRoles", ctx, []uuid.UUID{role.ID}).
			Return([]string{"transaction:read"}, nil).
			Once()

		resolver, err := NewCachingPermissionResolver(mockResolver, mockRoleRepo, 100, time.Minute)
		require.NoError(t, err)

		permissions, err := resolver.ResolvePermissions(ctx, userID, now)
		require.NoError(t, err)
		assert.Equal(t, []string{"transaction:read"}, permissions)

		// Ristretto applies writes asynchronously
		resolver.(*cachingPermissionResolver).cache.Wait()

		permissions, err = resolver.ResolvePermissions(ctx, userID, now)
		require.NoError(t, err)
		assert.Equal(t, []string{"transaction:read"}, permissions)
		mockRoleRepo.AssertExpectations(t)
	})

	t.Run("Success_InvalidateDropsCachedEntries", func(t *testing.T) {
		mockResolver := &mockRoleResolver{}
		mockRoleRepo := &mockRoleRepository{}

		role := authzDomain.Role{ID: uuid.Must(uuid.NewV7()), Name: "analyst"}
		mockResolver.On("ResolveRoles", ctx, userID, now).
			Return(&authzDomain.ResolvedRoles{Roles: []authzDomain.Role{role}}, nil)
		mockRoleRepo.On("ListPermissionsForRoles", ctx, []uuid.UUID{role.ID}).
			Return([]string{"transaction:read"}, nil).
			Twice()

		resolver, err := NewCachingPermissionResolver(mockResolver, mockRoleRepo, 100, time.Minute)
		require.NoError(t, err)

		_, err = resolver.ResolvePermissions(ctx, userID, now)
		require.NoError(t, err)
		resolver.(*cachingPermissionResolver).cache.Wait()

		resolver.(PermissionCacheInvalidator).InvalidatePermissions()

		_, err = resolver.ResolvePermissions(ctx, userID, now)
		require.NoError(t, err)
		mockRoleRepo.AssertExpectations(t)
	})

	t.Run("Success_CallerMutationNeverReachesCache", func(t *testing.T) {
		mockResolver := &mockRoleResolver{}
		mockRoleRepo := &mockRoleRepository{}

		role := authzDomain.Role{ID: uuid.Must(uuid.NewV7()), Name: "analyst"}
		mockResolver.On("ResolveRoles", ctx, userID, now).
			Return(&authzDomain.ResolvedRoles{Roles: []authzDomain.Role{role}}, nil)
		mockRoleRepo.On("ListPermissionsForRoles", ctx, []uuid.UUID{role.ID}).
			Return([]string{"transaction:read", "transaction:write"}, nil).
			Once()

		resolver, err := NewCachingPermissionResolver(mockResolver, mockRoleRepo, 100, time.Minute)
		require.NoError(t, err)

		permissions, err := resolver.ResolvePermissions(ctx, userID, now)
		require.NoError(t, err)
		resolver.(*cachingPermissionResolver).cache.Wait()

		permissions[0] = "tampered:permission"

		cached, err := resolver.ResolvePermissions(ctx, userID, now)
		require.NoError(t, err)
		assert.Equal(t, []string{"transaction:read", "transaction:write"}, cached)

		cached[1] = "tampered:again"

		again, err := resolver.ResolvePermissions(ctx, userID, now)
		require.NoError(t, err)
		assert.Equal(t, []string{"transaction:read", "transaction:write"}, again)
		mockRoleRepo.AssertExpectations(t)
	})

	t.Run("Success_EmptyRoleSetNeverCached", func(t *testing.T) {
		mockResolver := &mockRoleResolver{}
		mockRoleRepo := &mockRoleRepository{}

		mockResolver.On("ResolveRoles", ctx, userID, now).
			Return(&authzDomain.ResolvedRoles{}, nil).
			Once()

		resolver, err := NewCachingPermissionResolver(mockResolver, mockRoleRepo, 100, time.Minute)
		require.NoError(t, err)

		permissions, err := resolver.ResolvePermissions(ctx, userID, now)
		require.NoError(t, err)
		assert.Empty(t, permissions)
		mockRoleRepo.AssertNotCalled(t, "ListPermissionsForRoles")
	})
}
