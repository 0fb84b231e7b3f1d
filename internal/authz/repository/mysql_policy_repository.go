package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/database"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

// MySQLPolicyRepository implements AbacPolicy persistence for MySQL.
// Condition trees are stored as JSON, UUIDs as BINARY(16).
type MySQLPolicyRepository struct {
	db *sql.DB
}

// Create inserts a new AbacPolicy into the MySQL database.
func (m *MySQLPolicyRepository) Create(ctx context.Context, policy *authzDomain.AbacPolicy) error {
	querier := database.GetTx(ctx, m.db)

	conditionJSON, err := json.Marshal(policy.Condition)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal policy condition")
	}

	id, err := policy.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal policy id")
	}

	query := `INSERT INTO abac_policies (id, name, effect, ` + "`condition`" + `, is_active, resource_type, action, version, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		policy.Name,
		policy.Effect,
		conditionJSON,
		policy.IsActive,
		policy.ResourceType,
		policy.Action,
		policy.Version,
		policy.CreatedAt,
		policy.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "policy name already taken")
		}
		return apperrors.Wrap(err, "failed to create policy")
	}
	return nil
}

// Update modifies an existing AbacPolicy under optimistic concurrency.
func (m *MySQLPolicyRepository) Update(ctx context.Context, policy *authzDomain.AbacPolicy) error {
	querier := database.GetTx(ctx, m.db)

	conditionJSON, err := json.Marshal(policy.Condition)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal policy condition")
	}

	id, err := policy.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal policy id")
	}

	query := `UPDATE abac_policies
			  SET name = ?,
			  	  effect = ?,
				  ` + "`condition`" + ` = ?,
				  is_active = ?,
				  resource_type = ?,
				  action = ?,
				  version = version + 1,
				  updated_at = ?
			  WHERE id = ? AND version = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		policy.Name,
		policy.Effect,
		conditionJSON,
		policy.IsActive,
		policy.ResourceType,
		policy.Action,
		policy.UpdatedAt,
		id,
		policy.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "policy name already taken")
		}
		return apperrors.Wrap(err, "failed to update policy")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update policy")
	}
	if rows == 0 {
		return authzDomain.ErrVersionMismatch
	}

	policy.Version++
	return nil
}

// Get retrieves an AbacPolicy by ID from the MySQL database.
func (m *MySQLPolicyRepository) Get(ctx context.Context, policyID uuid.UUID) (*authzDomain.AbacPolicy, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, effect, ` + "`condition`" + `, is_active, resource_type, action, version, created_at, updated_at
			  FROM abac_policies WHERE id = ?`

	id, err := policyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal policy id")
	}

	policy, err := scanBinaryPolicy(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrPolicyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get policy")
	}
	return policy, nil
}

// List retrieves policies ordered by name with pagination support, inactive
// ones included.
func (m *MySQLPolicyRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.AbacPolicy, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, effect, ` + "`condition`" + `, is_active, resource_type, action, version, created_at, updated_at
			  FROM abac_policies ORDER BY name LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list policies")
	}
	defer rows.Close()

	return collectBinaryPolicies(rows)
}

// Delete removes an AbacPolicy.
func (m *MySQLPolicyRepository) Delete(ctx context.Context, policyID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := policyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal policy id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM abac_policies WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete policy")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete policy")
	}
	if rows == 0 {
		return authzDomain.ErrPolicyNotFound
	}
	return nil
}

// ListActiveForScope retrieves the active policies whose scope covers the
// requested action and resource type. Empty and wildcard scope columns match
// anything; everything else matches exactly.
func (m *MySQLPolicyRepository) ListActiveForScope(
	ctx context.Context,
	action, resourceType string,
) ([]*authzDomain.AbacPolicy, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, effect, ` + "`condition`" + `, is_active, resource_type, action, version, created_at, updated_at
			  FROM abac_policies
			  WHERE is_active = TRUE
			  	AND (action = '' OR action = '*' OR action = ?)
				AND (resource_type = '' OR resource_type = '*' OR resource_type = ?)
			  ORDER BY name`

	rows, err := querier.QueryContext(ctx, query, action, resourceType)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active policies")
	}
	defer rows.Close()

	return collectBinaryPolicies(rows)
}

// NewMySQLPolicyRepository creates a new MySQL AbacPolicy repository.
func NewMySQLPolicyRepository(db *sql.DB) *MySQLPolicyRepository {
	return &MySQLPolicyRepository{db: db}
}

func scanBinaryPolicy(row rowScanner) (*authzDomain.AbacPolicy, error) {
	var policy authzDomain.AbacPolicy
	var idBytes []byte
	var conditionJSON []byte

	if err := row.Scan(
		&idBytes,
		&policy.Name,
		&policy.Effect,
		&conditionJSON,
		&policy.IsActive,
		&policy.ResourceType,
		&policy.Action,
		&policy.Version,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := policy.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal policy id")
	}
	if err := json.Unmarshal(conditionJSON, &policy.Condition); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal policy condition")
	}
	return &policy, nil
}

func collectBinaryPolicies(rows *sql.Rows) ([]*authzDomain.AbacPolicy, error) {
	policies := []*authzDomain.AbacPolicy{}
	for rows.Next() {
		policy, err := scanBinaryPolicy(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan policy")
		}
		policies = append(policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list policies")
	}
	return policies, nil
}
