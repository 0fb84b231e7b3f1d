package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

func TestParsePrincipalType(t *testing.T) {
	t.Run("user", func(t *testing.T) {
		parsed, err := parsePrincipalType("USER")
		require.NoError(t, err)
		require.Equal(t, authzDomain.UserPrincipal, parsed)
	})

	t.Run("service", func(t *testing.T) {
		parsed, err := parsePrincipalType("SERVICE")
		require.NoError(t, err)
		require.Equal(t, authzDomain.ServicePrincipal, parsed)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := parsePrincipalType("ROBOT")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid principal type")
	})
}

func TestParseEffect(t *testing.T) {
	t.Run("allow", func(t *testing.T) {
		parsed, err := parseEffect("ALLOW")
		require.NoError(t, err)
		require.Equal(t, authzDomain.AllowEffect, parsed)
	})

	t.Run("deny", func(t *testing.T) {
		parsed, err := parseEffect("DENY")
		require.NoError(t, err)
		require.Equal(t, authzDomain.DenyEffect, parsed)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := parseEffect("MAYBE")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid effect")
	})
}

func TestParseAttributes(t *testing.T) {
	t.Run("empty-yields-nil", func(t *testing.T) {
		attrs, err := parseAttributes("subject", "")
		require.NoError(t, err)
		require.Nil(t, attrs)
	})

	t.Run("object", func(t *testing.T) {
		attrs, err := parseAttributes("subject", `{"department":"engineering","level":3}`)
		require.NoError(t, err)
		require.Equal(t, "engineering", attrs["department"])
	})

	t.Run("invalid-json", func(t *testing.T) {
		_, err := parseAttributes("resource", "not-json")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid resource attributes JSON")
	})
}

func TestParseOptionalTime(t *testing.T) {
	t.Run("empty-yields-nil", func(t *testing.T) {
		parsed, err := parseOptionalTime("valid-from", "")
		require.NoError(t, err)
		require.Nil(t, parsed)
	})

	t.Run("rfc3339", func(t *testing.T) {
		parsed, err := parseOptionalTime("valid-until", "2026-12-31T23:59:59Z")
		require.NoError(t, err)
		require.Equal(t, time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC), parsed.UTC())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := parseOptionalTime("valid-until", "tomorrow")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid valid-until timestamp")
	})
}

func TestRunCleanAuditLogs(t *testing.T) {
	t.Run("invalid-days", func(t *testing.T) {
		err := RunCleanAuditLogs(context.Background(), -1, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "days must be a positive number")
	})
}

func TestRunCheckPermission(t *testing.T) {
	t.Run("invalid-user-id", func(t *testing.T) {
		err := RunCheckPermission(
			context.Background(),
			"not-a-uuid", "USER", "transaction:read", "", "", "", "", "", "text",
		)
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid user id")
	})

	t.Run("invalid-principal-type", func(t *testing.T) {
		err := RunCheckPermission(
			context.Background(),
			"0190b6a5-07af-7d81-a104-a57e93e22d77", "ROBOT", "transaction:read", "", "", "", "", "", "text",
		)
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid principal type")
	})
}

func TestRunAssignRole(t *testing.T) {
	t.Run("invalid-user-id", func(t *testing.T) {
		err := RunAssignRole(context.Background(), "not-a-uuid", "admin", "", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid user id")
	})

	t.Run("invalid-valid-from", func(t *testing.T) {
		err := RunAssignRole(
			context.Background(),
			"0190b6a5-07af-7d81-a104-a57e93e22d77", "admin", "yesterday", "",
		)
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid valid-from timestamp")
	})
}
