package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/database"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

// PostgreSQLAuditLogRepository implements AuthorizationAuditLogEntry
// persistence for PostgreSQL. Group and role snapshots are stored as text
// arrays, metadata as JSONB. The table is append-only; the only delete path
// is retention.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts a new audit entry into the PostgreSQL database.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, entry *authzDomain.AuthorizationAuditLogEntry) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit metadata")
	}

	query := `INSERT INTO authorization_audit_logs
			  (id, user_id, groups, roles, requested_action, resource_type, resource_id,
			   rbac_result, abac_result, final_decision, timestamp, metadata, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.UserID,
		pq.Array(entry.Groups),
		pq.Array(entry.Roles),
		entry.RequestedAction,
		entry.ResourceType,
		entry.ResourceID,
		entry.RBACResult,
		entry.ABACResult,
		entry.FinalDecision,
		entry.Timestamp,
		metadataJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit log entry")
	}
	return nil
}

// List retrieves entries ordered by timestamp descending with pagination
// support.
func (p *PostgreSQLAuditLogRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, groups, roles, requested_action, resource_type, resource_id,
			  		 rbac_result, abac_result, final_decision, timestamp, metadata, created_at
			  FROM authorization_audit_logs
			  ORDER BY timestamp DESC OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit log entries")
	}
	defer rows.Close()

	return collectAuditEntries(rows)
}

// ListByUser retrieves a user's entries ordered by timestamp descending.
func (p *PostgreSQLAuditLogRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, groups, roles, requested_action, resource_type, resource_id,
			  		 rbac_result, abac_result, final_decision, timestamp, metadata, created_at
			  FROM authorization_audit_logs
			  WHERE user_id = $1
			  ORDER BY timestamp DESC OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit log entries by user")
	}
	defer rows.Close()

	return collectAuditEntries(rows)
}

// DeleteOlderThan removes entries with a timestamp before the cutoff and
// reports how many were removed.
func (p *PostgreSQLAuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM authorization_audit_logs WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit log entries")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit log entries")
	}
	return rows, nil
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL audit log
// repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

func collectAuditEntries(rows *sql.Rows) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	entries := []*authzDomain.AuthorizationAuditLogEntry{}
	for rows.Next() {
		var entry authzDomain.AuthorizationAuditLogEntry
		var metadataJSON []byte

		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			pq.Array(&entry.Groups),
			pq.Array(&entry.Roles),
			&entry.RequestedAction,
			&entry.ResourceType,
			&entry.ResourceID,
			&entry.RBACResult,
			&entry.ABACResult,
			&entry.FinalDecision,
			&entry.Timestamp,
			&metadataJSON,
			&entry.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit log entry")
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit metadata")
			}
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit log entries")
	}
	return entries, nil
}
