package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/metrics"
)

// authorizationUseCaseWithMetrics decorates AuthorizationUseCase with
// metrics instrumentation. Decisions record allowed/denied as the status so
// denial rates are visible without parsing logs.
type authorizationUseCaseWithMetrics struct {
	next    AuthorizationUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthorizationUseCaseWithMetrics wraps an AuthorizationUseCase with
// metrics recording.
func NewAuthorizationUseCaseWithMetrics(useCase AuthorizationUseCase, m metrics.BusinessMetrics) AuthorizationUseCase {
	return &authorizationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// CheckPermission records metrics for permission checks.
func (a *authorizationUseCaseWithMetrics) CheckPermission(
	ctx context.Context,
	input *authzDomain.CheckPermissionInput,
) (*authzDomain.AuthorizationResult, error) {
	start := time.Now()
	result, err := a.next.CheckPermission(ctx, input)

	status := "error"
	switch {
	case err != nil:
	case result.Allowed:
		status = "allowed"
	default:
		status = "denied"
	}

	a.metrics.RecordOperation(ctx, "authorization", "check_permission", status)
	a.metrics.RecordDuration(ctx, "authorization", "check_permission", time.Since(start), status)

	return result, err
}

// Require records metrics for guard-clause checks.
func (a *authorizationUseCaseWithMetrics) Require(
	ctx context.Context,
	input *authzDomain.CheckPermissionInput,
) error {
	start := time.Now()
	err := a.next.Require(ctx, input)

	status := "allowed"
	if err != nil {
		status = "denied"
		if !isDenied(err) {
			status = "error"
		}
	}

	a.metrics.RecordOperation(ctx, "authorization", "require", status)
	a.metrics.RecordDuration(ctx, "authorization", "require", time.Since(start), status)

	return err
}

func isDenied(err error) bool {
	var deniedErr *authzDomain.AuthorizationDeniedError
	return errors.As(err, &deniedErr)
}

// roleUseCaseWithMetrics decorates RoleUseCase with metrics instrumentation.
type roleUseCaseWithMetrics struct {
	next    RoleUseCase
	metrics metrics.BusinessMetrics
}

// NewRoleUseCaseWithMetrics wraps a RoleUseCase with metrics recording.
func NewRoleUseCaseWithMetrics(useCase RoleUseCase, m metrics.BusinessMetrics) RoleUseCase {
	return &roleUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *roleUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.metrics.RecordOperation(ctx, "role", operation, status)
	r.metrics.RecordDuration(ctx, "role", operation, time.Since(start), status)
}

func (r *roleUseCaseWithMetrics) Create(
	ctx context.Context,
	input *authzDomain.CreateRoleInput,
) (*authzDomain.Role, error) {
	start := time.Now()
	role, err := r.next.Create(ctx, input)
	r.record(ctx, "role_create", start, err)
	return role, err
}

func (r *roleUseCaseWithMetrics) Update(
	ctx context.Context,
	roleID uuid.UUID,
	input *authzDomain.UpdateRoleInput,
) (*authzDomain.Role, error) {
	start := time.Now()
	role, err := r.next.Update(ctx, roleID, input)
	r.record(ctx, "role_update", start, err)
	return role, err
}

func (r *roleUseCaseWithMetrics) Get(ctx context.Context, roleID uuid.UUID) (*authzDomain.Role, error) {
	start := time.Now()
	role, err := r.next.Get(ctx, roleID)
	r.record(ctx, "role_get", start, err)
	return role, err
}

func (r *roleUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*authzDomain.Role, error) {
	start := time.Now()
	roles, err := r.next.List(ctx, offset, limit)
	r.record(ctx, "role_list", start, err)
	return roles, err
}

func (r *roleUseCaseWithMetrics) Delete(ctx context.Context, roleID uuid.UUID) error {
	start := time.Now()
	err := r.next.Delete(ctx, roleID)
	r.record(ctx, "role_delete", start, err)
	return err
}

func (r *roleUseCaseWithMetrics) AddPermission(ctx context.Context, roleID uuid.UUID, permissionName string) error {
	start := time.Now()
	err := r.next.AddPermission(ctx, roleID, permissionName)
	r.record(ctx, "role_add_permission", start, err)
	return err
}

func (r *roleUseCaseWithMetrics) RemovePermission(ctx context.Context, roleID uuid.UUID, permissionName string) error {
	start := time.Now()
	err := r.next.RemovePermission(ctx, roleID, permissionName)
	r.record(ctx, "role_remove_permission", start, err)
	return err
}

func (r *roleUseCaseWithMetrics) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*authzDomain.Permission, error) {
	start := time.Now()
	permissions, err := r.next.ListPermissions(ctx, roleID)
	r.record(ctx, "role_list_permissions", start, err)
	return permissions, err
}

func (r *roleUseCaseWithMetrics) AssignToUser(
	ctx context.Context,
	userID uuid.UUID,
	input *authzDomain.AssignRoleInput,
) error {
	start := time.Now()
	err := r.next.AssignToUser(ctx, userID, input)
	r.record(ctx, "role_assign", start, err)
	return err
}

func (r *roleUseCaseWithMetrics) RevokeFromUser(ctx context.Context, userID, roleID uuid.UUID) error {
	start := time.Now()
	err := r.next.RevokeFromUser(ctx, userID, roleID)
	r.record(ctx, "role_revoke", start, err)
	return err
}

func (r *roleUseCaseWithMetrics) ListAssignments(ctx context.Context, userID uuid.UUID) ([]*authzDomain.RoleAssignment, error) {
	start := time.Now()
	assignments, err := r.next.ListAssignments(ctx, userID)
	r.record(ctx, "role_list_assignments", start, err)
	return assignments, err
}

// groupUseCaseWithMetrics decorates GroupUseCase with metrics
// instrumentation.
type groupUseCaseWithMetrics struct {
	next    GroupUseCase
	metrics metrics.BusinessMetrics
}

// NewGroupUseCaseWithMetrics wraps a GroupUseCase with metrics recording.
func NewGroupUseCaseWithMetrics(useCase GroupUseCase, m metrics.BusinessMetrics) GroupUseCase {
	return &groupUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (g *groupUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	g.metrics.RecordOperation(ctx, "group", operation, status)
	g.metrics.RecordDuration(ctx, "group", operation, time.Since(start), status)
}

func (g *groupUseCaseWithMetrics) Create(
	ctx context.Context,
	input *authzDomain.CreateGroupInput,
) (*authzDomain.Group, error) {
	start := time.Now()
	group, err := g.next.Create(ctx, input)
	g.record(ctx, "group_create", start, err)
	return group, err
}

func (g *groupUseCaseWithMetrics) Update(
	ctx context.Context,
	groupID uuid.UUID,
	input *authzDomain.UpdateGroupInput,
) (*authzDomain.Group, error) {
	start := time.Now()
	group, err := g.next.Update(ctx, groupID, input)
	g.record(ctx, "group_update", start, err)
	return group, err
}

func (g *groupUseCaseWithMetrics) Get(ctx context.Context, groupID uuid.UUID) (*authzDomain.Group, error) {
	start := time.Now()
	group, err := g.next.Get(ctx, groupID)
	g.record(ctx, "group_get", start, err)
	return group, err
}

func (g *groupUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*authzDomain.Group, error) {
	start := time.Now()
	groups, err := g.next.List(ctx, offset, limit)
	g.record(ctx, "group_list", start, err)
	return groups, err
}

func (g *groupUseCaseWithMetrics) Delete(ctx context.Context, groupID uuid.UUID) error {
	start := time.Now()
	err := g.next.Delete(ctx, groupID)
	g.record(ctx, "group_delete", start, err)
	return err
}

func (g *groupUseCaseWithMetrics) AddMember(
	ctx context.Context,
	groupID uuid.UUID,
	input *authzDomain.AddMemberInput,
) error {
	start := time.Now()
	err := g.next.AddMember(ctx, groupID, input)
	g.record(ctx, "group_add_member", start, err)
	return err
}

func (g *groupUseCaseWithMetrics) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	start := time.Now()
	err := g.next.RemoveMember(ctx, groupID, userID)
	g.record(ctx, "group_remove_member", start, err)
	return err
}

func (g *groupUseCaseWithMetrics) AssignRole(
	ctx context.Context,
	groupID uuid.UUID,
	input *authzDomain.AssignRoleInput,
) error {
	start := time.Now()
	err := g.next.AssignRole(ctx, groupID, input)
	g.record(ctx, "group_assign_role", start, err)
	return err
}

func (g *groupUseCaseWithMetrics) RevokeRole(ctx context.Context, groupID, roleID uuid.UUID) error {
	start := time.Now()
	err := g.next.RevokeRole(ctx, groupID, roleID)
	g.record(ctx, "group_revoke_role", start, err)
	return err
}

// policyUseCaseWithMetrics decorates PolicyUseCase with metrics
// instrumentation.
type policyUseCaseWithMetrics struct {
	next    PolicyUseCase
	metrics metrics.BusinessMetrics
}

// NewPolicyUseCaseWithMetrics wraps a PolicyUseCase with metrics recording.
func NewPolicyUseCaseWithMetrics(useCase PolicyUseCase, m metrics.BusinessMetrics) PolicyUseCase {
	return &policyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (p *policyUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordOperation(ctx, "policy", operation, status)
	p.metrics.RecordDuration(ctx, "policy", operation, time.Since(start), status)
}

func (p *policyUseCaseWithMetrics) Create(
	ctx context.Context,
	input *authzDomain.CreatePolicyInput,
) (*authzDomain.AbacPolicy, error) {
	start := time.Now()
	policy, err := p.next.Create(ctx, input)
	p.record(ctx, "policy_create", start, err)
	return policy, err
}

func (p *policyUseCaseWithMetrics) Update(
	ctx context.Context,
	policyID uuid.UUID,
	input *authzDomain.UpdatePolicyInput,
) (*authzDomain.AbacPolicy, error) {
	start := time.Now()
	policy, err := p.next.Update(ctx, policyID, input)
	p.record(ctx, "policy_update", start, err)
	return policy, err
}

func (p *policyUseCaseWithMetrics) Get(ctx context.Context, policyID uuid.UUID) (*authzDomain.AbacPolicy, error) {
	start := time.Now()
	policy, err := p.next.Get(ctx, policyID)
	p.record(ctx, "policy_get", start, err)
	return policy, err
}

func (p *policyUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*authzDomain.AbacPolicy, error) {
	start := time.Now()
	policies, err := p.next.List(ctx, offset, limit)
	p.record(ctx, "policy_list", start, err)
	return policies, err
}

func (p *policyUseCaseWithMetrics) Delete(ctx context.Context, policyID uuid.UUID) error {
	start := time.Now()
	err := p.next.Delete(ctx, policyID)
	p.record(ctx, "policy_delete", start, err)
	return err
}

// auditLogUseCaseWithMetrics decorates AuditLogUseCase with metrics
// instrumentation.
type auditLogUseCaseWithMetrics struct {
	next    AuditLogUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps an AuditLogUseCase with metrics
// recording.
func NewAuditLogUseCaseWithMetrics(useCase AuditLogUseCase, m metrics.BusinessMetrics) AuditLogUseCase {
	return &auditLogUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *auditLogUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordOperation(ctx, "audit_log", operation, status)
	a.metrics.RecordDuration(ctx, "audit_log", operation, time.Since(start), status)
}

func (a *auditLogUseCaseWithMetrics) Record(
	ctx context.Context,
	entry *authzDomain.AuthorizationAuditLogEntry,
) error {
	start := time.Now()
	err := a.next.Record(ctx, entry)
	a.record(ctx, "audit_log_record", start, err)
	return err
}

func (a *auditLogUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	start := time.Now()
	entries, err := a.next.List(ctx, offset, limit)
	a.record(ctx, "audit_log_list", start, err)
	return entries, err
}

func (a *auditLogUseCaseWithMetrics) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	start := time.Now()
	entries, err := a.next.ListByUser(ctx, userID, offset, limit)
	a.record(ctx, "audit_log_list_by_user", start, err)
	return entries, err
}

func (a *auditLogUseCaseWithMetrics) CleanOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()
	count, err := a.next.CleanOlderThan(ctx, cutoff)
	a.record(ctx, "audit_log_clean", start, err)
	return count, err
}
