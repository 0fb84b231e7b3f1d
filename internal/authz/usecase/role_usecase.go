package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/salomax/neotool-authz/internal/errors"
	appvalidation "github.com/salomax/neotool-authz/internal/validation"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/database"
)

// roleUseCase implements RoleUseCase. Mutations that can change which
// permissions a user effectively holds invalidate the permission cache.
type roleUseCase struct {
	txManager      database.TxManager
	roleRepo       RoleRepository
	permissionRepo PermissionRepository
	assignmentRepo RoleAssignmentRepository
	invalidator    PermissionCacheInvalidator
}

// Create validates and persists a new role with version 1.
func (r *roleUseCase) Create(
	ctx context.Context,
	input *authzDomain.CreateRoleInput,
) (*authzDomain.Role, error) {
	if err := validation.Validate(input.Name, validation.Required, appvalidation.NotBlank, appvalidation.NoWhitespace); err != nil {
		return nil, appvalidation.WrapValidationError(err)
	}

	now := time.Now().UTC()
	role := &authzDomain.Role{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        input.Name,
		Description: input.Description,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Update modifies a role's name and description. The write carries
// input.Version and fails with ErrVersionMismatch when another writer got
// there first.
func (r *roleUseCase) Update(
	ctx context.Context,
	roleID uuid.UUID,
	input *authzDomain.UpdateRoleInput,
) (*authzDomain.Role, error) {
	if err := validation.Validate(input.Name, validation.Required, appvalidation.NotBlank, appvalidation.NoWhitespace); err != nil {
		return nil, appvalidation.WrapValidationError(err)
	}

	role, err := r.roleRepo.Get(ctx, roleID)
	if err != nil {
		return nil, err
	}

	role.Name = input.Name
	role.Description = input.Description
	role.Version = input.Version
	role.UpdatedAt = time.Now().UTC()

	if err := r.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Get retrieves a role by ID.
func (r *roleUseCase) Get(ctx context.Context, roleID uuid.UUID) (*authzDomain.Role, error) {
	return r.roleRepo.Get(ctx, roleID)
}

// List retrieves roles ordered by name with pagination support.
func (r *roleUseCase) List(ctx context.Context, offset, limit int) ([]*authzDomain.Role, error) {
	return r.roleRepo.List(ctx, offset, limit)
}

// Delete removes a role. Assignments referencing it cascade away, so every
// cached permission resolution is invalidated.
func (r *roleUseCase) Delete(ctx context.Context, roleID uuid.UUID) error {
	if err := r.roleRepo.Delete(ctx, roleID); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

// AddPermission links a permission name to a role, creating the catalog
// entry on first use. Lookup and link run in one transaction so a concurrent
// delete cannot leave a dangling link.
func (r *roleUseCase) AddPermission(ctx context.Context, roleID uuid.UUID, permissionName string) error {
	if err := validation.Validate(permissionName, validation.Required, appvalidation.PermissionName); err != nil {
		return appvalidation.WrapValidationError(err)
	}

	if _, err := r.roleRepo.Get(ctx, roleID); err != nil {
		return err
	}

	err := r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		permission, err := r.permissionRepo.GetByName(txCtx, permissionName)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			permission = &authzDomain.Permission{
				ID:        uuid.Must(uuid.NewV7()),
				Name:      permissionName,
				CreatedAt: time.Now().UTC(),
			}
			if err := r.permissionRepo.Create(txCtx, permission); err != nil {
				return err
			}
		}
		return r.roleRepo.AddPermission(txCtx, roleID, permission.ID)
	})
	if err != nil {
		return err
	}

	r.invalidate()
	return nil
}

// RemovePermission unlinks a permission name from a role. The catalog entry
// stays; other roles may still reference it.
func (r *roleUseCase) RemovePermission(ctx context.Context, roleID uuid.UUID, permissionName string) error {
	permission, err := r.permissionRepo.GetByName(ctx, permissionName)
	if err != nil {
		return err
	}
	if err := r.roleRepo.RemovePermission(ctx, roleID, permission.ID); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

// ListPermissions returns the permissions linked to a role.
func (r *roleUseCase) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*authzDomain.Permission, error) {
	if _, err := r.roleRepo.Get(ctx, roleID); err != nil {
		return nil, err
	}
	return r.roleRepo.ListPermissions(ctx, roleID)
}

// AssignToUser grants a role directly to a user with an optional validity
// window. A window whose end precedes its start is rejected.
func (r *roleUseCase) AssignToUser(
	ctx context.Context,
	userID uuid.UUID,
	input *authzDomain.AssignRoleInput,
) error {
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "valid_until must not precede valid_from")
	}

	if _, err := r.roleRepo.Get(ctx, input.RoleID); err != nil {
		return err
	}

	assignment := &authzDomain.RoleAssignment{
		ID:         uuid.Must(uuid.NewV7()),
		UserID:     userID,
		RoleID:     input.RoleID,
		ValidFrom:  input.ValidFrom,
		ValidUntil: input.ValidUntil,
		CreatedAt:  time.Now().UTC(),
	}

	if err := r.assignmentRepo.Create(ctx, assignment); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

// RevokeFromUser removes a user's direct assignment of a role.
func (r *roleUseCase) RevokeFromUser(ctx context.Context, userID, roleID uuid.UUID) error {
	if err := r.assignmentRepo.Delete(ctx, userID, roleID); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

// ListAssignments returns a user's direct role assignments, active or not.
func (r *roleUseCase) ListAssignments(ctx context.Context, userID uuid.UUID) ([]*authzDomain.RoleAssignment, error) {
	return r.assignmentRepo.ListByUser(ctx, userID)
}

func (r *roleUseCase) invalidate() {
	if r.invalidator != nil {
		r.invalidator.InvalidatePermissions()
	}
}

// NewRoleUseCase creates a RoleUseCase with the provided dependencies. The
// invalidator may be nil when permission caching is disabled.
func NewRoleUseCase(
	txManager database.TxManager,
	roleRepo RoleRepository,
	permissionRepo PermissionRepository,
	assignmentRepo RoleAssignmentRepository,
	invalidator PermissionCacheInvalidator,
) RoleUseCase {
	return &roleUseCase{
		txManager:      txManager,
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
		assignmentRepo: assignmentRepo,
		invalidator:    invalidator,
	}
}
