package usecase

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"

	"github.com/salomax/neotool-authz/internal/errors"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

// permissionResolver implements PermissionResolver by resolving the
// effective role set and collecting the distinct permission names those
// roles grant.
type permissionResolver struct {
	roleResolver RoleResolver
	roleRepo     RoleRepository
}

// ResolvePermissions returns the sorted, duplicate-free permission names a
// user holds at the given instant.
func (r *permissionResolver) ResolvePermissions(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]string, error) {
	resolved, err := r.roleResolver.ResolveRoles(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if len(resolved.Roles) == 0 {
		return []string{}, nil
	}
	return r.roleRepo.ListPermissionsForRoles(ctx, roleIDs(resolved))
}

// NewPermissionResolver creates a PermissionResolver with the provided
// dependencies.
func NewPermissionResolver(
	roleResolver RoleResolver,
	roleRepo RoleRepository,
) PermissionResolver {
	return &permissionResolver{
		roleResolver: roleResolver,
		roleRepo:     roleRepo,
	}
}

// cachingPermissionResolver caches permission lookups in an in-process
// ristretto cache. Entries are keyed by the resolved role ID set, so a role
// grant expiring or taking effect changes the key and never serves a stale
// window. Permission link changes are handled by InvalidatePermissions.
type cachingPermissionResolver struct {
	roleResolver RoleResolver
	roleRepo     RoleRepository
	cache        *ristretto.Cache
	ttl          time.Duration
}

// ResolvePermissions resolves the role set, then serves the permission names
// from cache when the same role set was seen recently.
func (r *cachingPermissionResolver) ResolvePermissions(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]string, error) {
	resolved, err := r.roleResolver.ResolveRoles(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if len(resolved.Roles) == 0 {
		return []string{}, nil
	}

	ids := roleIDs(resolved)
	key := cacheKey(ids)
	if cached, ok := r.cache.Get(key); ok {
		if permissions, ok := cached.([]string); ok {
			return slices.Clone(permissions), nil
		}
	}

	permissions, err := r.roleRepo.ListPermissionsForRoles(ctx, ids)
	if err != nil {
		return nil, err
	}
	r.cache.SetWithTTL(key, slices.Clone(permissions), int64(len(permissions)+1), r.ttl)
	// Callers get their own copy; the cached slice is never aliased.
	return permissions, nil
}

// InvalidatePermissions drops every cached resolution. Called after any
// write that can change which permissions a role grants.
func (r *cachingPermissionResolver) InvalidatePermissions() {
	r.cache.Clear()
}

// NewCachingPermissionResolver creates a PermissionResolver backed by a
// ristretto cache. maxEntries bounds the cache cost budget and ttl bounds
// staleness after permission link changes on other instances.
func NewCachingPermissionResolver(
	roleResolver RoleResolver,
	roleRepo RoleRepository,
	maxEntries int64,
	ttl time.Duration,
) (PermissionResolver, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create permission cache")
	}
	return &cachingPermissionResolver{
		roleResolver: roleResolver,
		roleRepo:     roleRepo,
		cache:        cache,
		ttl:          ttl,
	}, nil
}

func roleIDs(resolved *authzDomain.ResolvedRoles) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(resolved.Roles))
	for _, role := range resolved.Roles {
		ids = append(ids, role.ID)
	}
	return ids
}

// cacheKey builds a stable key from a role ID set, order-independent.
func cacheKey(ids []uuid.UUID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
