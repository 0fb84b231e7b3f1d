package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

// auditLogUseCase implements AuditLogUseCase over the append-only audit
// store.
type auditLogUseCase struct {
	auditLogRepo AuditLogRepository
}

// Record stores one decision entry.
func (a *auditLogUseCase) Record(
	ctx context.Context,
	entry *authzDomain.AuthorizationAuditLogEntry,
) error {
	return a.auditLogRepo.Create(ctx, entry)
}

// List retrieves entries ordered by timestamp descending with pagination
// support.
func (a *auditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	return a.auditLogRepo.List(ctx, offset, limit)
}

// ListByUser retrieves a user's entries ordered by timestamp descending.
func (a *auditLogUseCase) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	return a.auditLogRepo.ListByUser(ctx, userID, offset, limit)
}

// CleanOlderThan removes entries older than the cutoff. This is the only
// delete path over the audit store; the decision path never removes entries.
func (a *auditLogUseCase) CleanOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return a.auditLogRepo.DeleteOlderThan(ctx, cutoff)
}

// NewAuditLogUseCase creates an AuditLogUseCase with the provided repository.
func NewAuditLogUseCase(auditLogRepo AuditLogRepository) AuditLogUseCase {
	return &auditLogUseCase{auditLogRepo: auditLogRepo}
}
