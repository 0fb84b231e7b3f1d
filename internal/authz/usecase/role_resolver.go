package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

// roleResolver implements RoleResolver by merging a user's direct role
// assignments with roles inherited through active group memberships.
// Inheritance is one hop: groups hold roles, groups do not nest.
type roleResolver struct {
	assignmentRepo RoleAssignmentRepository
	groupRepo      GroupRepository
}

// ResolveRoles computes the effective role set at the given instant. The
// same instant filters assignments, memberships and group role grants, so a
// single check never observes two different clocks. Unknown users resolve to
// an empty set, not an error.
func (r *roleResolver) ResolveRoles(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*authzDomain.ResolvedRoles, error) {
	// Direct assignments active at this instant
	direct, err := r.assignmentRepo.ListActiveRolesForUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	// Active group memberships
	groups, err := r.groupRepo.ListActiveGroupsForUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	// Roles inherited from those groups
	var inherited []*authzDomain.Role
	if len(groups) > 0 {
		groupIDs := make([]uuid.UUID, 0, len(groups))
		for _, group := range groups {
			groupIDs = append(groupIDs, group.ID)
		}
		inherited, err = r.groupRepo.ListActiveRolesForGroups(ctx, groupIDs, now)
		if err != nil {
			return nil, err
		}
	}

	// Merge and deduplicate by role ID
	seen := make(map[uuid.UUID]struct{}, len(direct)+len(inherited))
	roles := make([]authzDomain.Role, 0, len(direct)+len(inherited))
	for _, role := range append(direct, inherited...) {
		if _, ok := seen[role.ID]; ok {
			continue
		}
		seen[role.ID] = struct{}{}
		roles = append(roles, *role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })

	groupSnapshot := make([]authzDomain.Group, 0, len(groups))
	for _, group := range groups {
		groupSnapshot = append(groupSnapshot, *group)
	}

	return &authzDomain.ResolvedRoles{Roles: roles, Groups: groupSnapshot}, nil
}

// NewRoleResolver creates a RoleResolver with the provided repositories.
func NewRoleResolver(
	assignmentRepo RoleAssignmentRepository,
	groupRepo GroupRepository,
) RoleResolver {
	return &roleResolver{
		assignmentRepo: assignmentRepo,
		groupRepo:      groupRepo,
	}
}
