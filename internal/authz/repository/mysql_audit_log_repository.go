package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/database"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

// MySQLAuditLogRepository implements AuthorizationAuditLogEntry persistence
// for MySQL. Group and role snapshots and metadata are stored as JSON, UUIDs
// as BINARY(16). The table is append-only; the only delete path is
// retention.
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts a new audit entry into the MySQL database.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, entry *authzDomain.AuthorizationAuditLogEntry) error {
	querier := database.GetTx(ctx, m.db)

	groupsJSON, err := json.Marshal(entry.Groups)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit groups")
	}
	rolesJSON, err := json.Marshal(entry.Roles)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit roles")
	}
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit metadata")
	}

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry id")
	}
	userID, err := entry.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO authorization_audit_logs
			  (id, user_id, ` + "`groups`" + `, roles, requested_action, resource_type, resource_id,
			   rbac_result, abac_result, final_decision, timestamp, metadata, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
		groupsJSON,
		rolesJSON,
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
func (m *MySQLAuditLogRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, ` + "`groups`" + `, roles, requested_action, resource_type, resource_id,
			  		 rbac_result, abac_result, final_decision, timestamp, metadata, created_at
			  FROM authorization_audit_logs
			  ORDER BY timestamp DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit log entries")
	}
	defer rows.Close()

	return collectBinaryAuditEntries(rows)
}

// ListByUser retrieves a user's entries ordered by timestamp descending.
func (m *MySQLAuditLogRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, ` + "`groups`" + `, roles, requested_action, resource_type, resource_id,
			  		 rbac_result, abac_result, final_decision, timestamp, metadata, created_at
			  FROM authorization_audit_logs
			  WHERE user_id = ?
			  ORDER BY timestamp DESC LIMIT ? OFFSET ?`

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	rows, err := querier.QueryContext(ctx, query, userIDBytes, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit log entries by user")
	}
	defer rows.Close()

	return collectBinaryAuditEntries(rows)
}

// DeleteOlderThan removes entries with a timestamp before the cutoff and
// reports how many were removed.
func (m *MySQLAuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM authorization_audit_logs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit log entries")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit log entries")
	}
	return rows, nil
}

// NewMySQLAuditLogRepository creates a new MySQL audit log repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}

func collectBinaryAuditEntries(rows *sql.Rows) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	entries := []*authzDomain.AuthorizationAuditLogEntry{}
	for rows.Next() {
		var entry authzDomain.AuthorizationAuditLogEntry
		var idBytes, userIDBytes []byte
		var groupsJSON, rolesJSON, metadataJSON []byte

		if err := rows.Scan(
			&idBytes,
			&userIDBytes,
			&groupsJSON,
			&rolesJSON,
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

		if err := entry.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit entry id")
		}
		if err := entry.UserID.UnmarshalBinary(userIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal user id")
		}
		if err := json.Unmarshal(groupsJSON, &entry.Groups); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit groups")
		}
		if err := json.Unmarshal(rolesJSON, &entry.Roles); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit roles")
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
