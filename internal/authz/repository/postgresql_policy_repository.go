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

// PostgreSQLPolicyRepository implements AbacPolicy persistence for
// PostgreSQL. Condition trees are stored as JSONB.
type PostgreSQLPolicyRepository struct {
	db *sql.DB
}

// Create inserts a new AbacPolicy into the PostgreSQL database.
func (p *PostgreSQLPolicyRepository) Create(ctx context.Context, policy *authzDomain.AbacPolicy) error {
	querier := database.GetTx(ctx, p.db)

	conditionJSON, err := json.Marshal(policy.Condition)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal policy condition")
	}

	query := `INSERT INTO abac_policies (id, name, effect, condition, is_active, resource_type, action, version, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = querier.ExecContext(
		ctx,
		query,
		policy.ID,
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
func (p *PostgreSQLPolicyRepository) Update(ctx context.Context, policy *authzDomain.AbacPolicy) error {
	querier := database.GetTx(ctx, p.db)

	conditionJSON, err := json.Marshal(policy.Condition)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal policy condition")
	}

	query := `UPDATE abac_policies
			  SET name = $1,
			  	  effect = $2,
				  condition = $3,
				  is_active = $4,
				  resource_type = $5,
				  action = $6,
				  version = version + 1,
				  updated_at = $7
			  WHERE id = $8 AND version = $9`

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
		policy.ID,
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

// Get retrieves an AbacPolicy by ID from the PostgreSQL database.
func (p *PostgreSQLPolicyRepository) Get(ctx context.Context, policyID uuid.UUID) (*authzDomain.AbacPolicy, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, effect, condition, is_active, resource_type, action, version, created_at, updated_at
			  FROM abac_policies WHERE id = $1`

	policy, err := scanPolicy(querier.QueryRowContext(ctx, query, policyID))
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
func (p *PostgreSQLPolicyRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.AbacPolicy, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, effect, condition, is_active, resource_type, action, version, created_at, updated_at
			  FROM abac_policies ORDER BY name OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list policies")
	}
	defer rows.Close()

	return collectPolicies(rows)
}

// Delete removes an AbacPolicy.
func (p *PostgreSQLPolicyRepository) Delete(ctx context.Context, policyID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM abac_policies WHERE id = $1`, policyID)
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
func (p *PostgreSQLPolicyRepository) ListActiveForScope(
	ctx context.Context,
	action, resourceType string,
) ([]*authzDomain.AbacPolicy, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, effect, condition, is_active, resource_type, action, version, created_at, updated_at
			  FROM abac_policies
			  WHERE is_active = TRUE
			  	AND (action = '' OR action = '*' OR action = $1)
				AND (resource_type = '' OR resource_type = '*' OR resource_type = $2)
			  ORDER BY name`

	rows, err := querier.QueryContext(ctx, query, action, resourceType)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active policies")
	}
	defer rows.Close()

	return collectPolicies(rows)
}

// NewPostgreSQLPolicyRepository creates a new PostgreSQL AbacPolicy
// repository.
func NewPostgreSQLPolicyRepository(db *sql.DB) *PostgreSQLPolicyRepository {
	return &PostgreSQLPolicyRepository{db: db}
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (*authzDomain.AbacPolicy, error) {
	var policy authzDomain.AbacPolicy
	var conditionJSON []byte

	if err := row.Scan(
		&policy.ID,
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

	if err := json.Unmarshal(conditionJSON, &policy.Condition); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal policy condition")
	}
	return &policy, nil
}

func collectPolicies(rows *sql.Rows) ([]*authzDomain.AbacPolicy, error) {
	policies := []*authzDomain.AbacPolicy{}
	for rows.Next() {
		policy, err := scanPolicy(rows)
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
