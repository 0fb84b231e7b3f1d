package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/salomax/neotool-authz/internal/errors"
	appvalidation "github.com/salomax/neotool-authz/internal/validation"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

// groupUseCase implements GroupUseCase. Membership and group role changes
// ripple into users' effective permissions, so those mutations invalidate
// the permission cache.
type groupUseCase struct {
	groupRepo   GroupRepository
	roleRepo    RoleRepository
	invalidator PermissionCacheInvalidator
}

// Create validates and persists a new group with version 1.
func (g *groupUseCase) Create(
	ctx context.Context,
	input *authzDomain.CreateGroupInput,
) (*authzDomain.Group, error) {
	if err := validation.Validate(input.Name, validation.Required, appvalidation.NotBlank, appvalidation.NoWhitespace); err != nil {
		return nil, appvalidation.WrapValidationError(err)
	}

	now := time.Now().UTC()
	group := &authzDomain.Group{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        input.Name,
		Description: input.Description,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := g.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Update modifies a group's name and description under optimistic
// concurrency.
func (g *groupUseCase) Update(
	ctx context.Context,
	groupID uuid.UUID,
	input *authzDomain.UpdateGroupInput,
) (*authzDomain.Group, error) {
	if err := validation.Validate(input.Name, validation.Required, appvalidation.NotBlank, appvalidation.NoWhitespace); err != nil {
		return nil, appvalidation.WrapValidationError(err)
	}

	group, err := g.groupRepo.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	group.Name = input.Name
	group.Description = input.Description
	group.Version = input.Version
	group.UpdatedAt = time.Now().UTC()

	if err := g.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Get retrieves a group by ID.
func (g *groupUseCase) Get(ctx context.Context, groupID uuid.UUID) (*authzDomain.Group, error) {
	return g.groupRepo.Get(ctx, groupID)
}

// List retrieves groups ordered by name with pagination support.
func (g *groupUseCase) List(ctx context.Context, offset, limit int) ([]*authzDomain.Group, error) {
	return g.groupRepo.List(ctx, offset, limit)
}

// Delete removes a group; memberships and role assignments cascade away.
func (g *groupUseCase) Delete(ctx context.Context, groupID uuid.UUID) error {
	if err := g.groupRepo.Delete(ctx, groupID); err != nil {
		return err
	}
	g.invalidate()
	return nil
}

// AddMember adds a user to a group with an optional expiry. The membership
// type is informational and does not affect role inheritance.
func (g *groupUseCase) AddMember(
	ctx context.Context,
	groupID uuid.UUID,
	input *authzDomain.AddMemberInput,
) error {
	if _, err := g.groupRepo.Get(ctx, groupID); err != nil {
		return err
	}

	membershipType := input.MembershipType
	if membershipType == "" {
		membershipType = authzDomain.MemberMembership
	}

	membership := &authzDomain.GroupMembership{
		ID:             uuid.Must(uuid.NewV7()),
		UserID:         input.UserID,
		GroupID:        groupID,
		MembershipType: membershipType,
		ValidUntil:     input.ValidUntil,
		CreatedAt:      time.Now().UTC(),
	}

	if err := g.groupRepo.AddMember(ctx, membership); err != nil {
		return err
	}
	g.invalidate()
	return nil
}

// RemoveMember removes a user from a group.
func (g *groupUseCase) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	if err := g.groupRepo.RemoveMember(ctx, groupID, userID); err != nil {
		return err
	}
	g.invalidate()
	return nil
}

// AssignRole grants a role to every active member of a group, with an
// optional validity window.
func (g *groupUseCase) AssignRole(
	ctx context.Context,
	groupID uuid.UUID,
	input *authzDomain.AssignRoleInput,
) error {
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "valid_until must not precede valid_from")
	}

	if _, err := g.groupRepo.Get(ctx, groupID); err != nil {
		return err
	}
	if _, err := g.roleRepo.Get(ctx, input.RoleID); err != nil {
		return err
	}

	assignment := &authzDomain.GroupRoleAssignment{
		ID:         uuid.Must(uuid.NewV7()),
		GroupID:    groupID,
		RoleID:     input.RoleID,
		ValidFrom:  input.ValidFrom,
		ValidUntil: input.ValidUntil,
		CreatedAt:  time.Now().UTC(),
	}

	if err := g.groupRepo.AssignRole(ctx, assignment); err != nil {
		return err
	}
	g.invalidate()
	return nil
}

// RevokeRole removes a group's assignment of a role.
func (g *groupUseCase) RevokeRole(ctx context.Context, groupID, roleID uuid.UUID) error {
	if err := g.groupRepo.RevokeRole(ctx, groupID, roleID); err != nil {
		return err
	}
	g.invalidate()
	return nil
}

func (g *groupUseCase) invalidate() {
	if g.invalidator != nil {
		g.invalidator.InvalidatePermissions()
	}
}

// NewGroupUseCase creates a GroupUseCase with the provided dependencies. The
// invalidator may be nil when permission caching is disabled.
func NewGroupUseCase(
	groupRepo GroupRepository,
	roleRepo RoleRepository,
	invalidator PermissionCacheInvalidator,
) GroupUseCase {
	return &groupUseCase{
		groupRepo:   groupRepo,
		roleRepo:    roleRepo,
		invalidator: invalidator,
	}
}
