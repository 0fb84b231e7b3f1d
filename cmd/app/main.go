// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/salomax/neotool-authz/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "Authorization decision service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "check",
				Usage: "Run a one-off authorization check and print the decision",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user-id",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "Principal user ID (UUID)",
					},
					&cli.StringFlag{
						Name:    "principal-type",
						Aliases: []string{"t"},
						Value:   "USER",
						Usage:   "Principal type: USER or SERVICE",
					},
					&cli.StringFlag{
						Name:     "permission",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Permission name (e.g., transaction:read)",
					},
					&cli.StringFlag{
						Name:  "resource-type",
						Usage: "Resource type the check targets",
					},
					&cli.StringFlag{
						Name:  "resource-id",
						Usage: "Resource ID the check targets",
					},
					&cli.StringFlag{
						Name:  "subject-attrs",
						Usage: "JSON object of subject attributes",
					},
					&cli.StringFlag{
						Name:  "resource-attrs",
						Usage: "JSON object of resource attributes",
					},
					&cli.StringFlag{
						Name:  "context-attrs",
						Usage: "JSON object of request context attributes",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCheckPermission(
						ctx,
						cmd.String("user-id"),
						cmd.String("principal-type"),
						cmd.String("permission"),
						cmd.String("resource-type"),
						cmd.String("resource-id"),
						cmd.String("subject-attrs"),
						cmd.String("resource-attrs"),
						cmd.String("context-attrs"),
						cmd.String("format"),
					)
				},
			},
			{
				Name:  "create-role",
				Usage: "Create a role and optionally link permissions to it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Unique role name",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Human-readable role description",
					},
					&cli.StringFlag{
						Name:    "permissions",
						Aliases: []string{"p"},
						Usage:   "Comma-separated permission names to link",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateRole(
						ctx,
						cmd.String("name"),
						cmd.String("description"),
						cmd.String("permissions"),
						cmd.String("format"),
					)
				},
			},
			{
				Name:  "assign-role",
				Usage: "Assign a role to a user with an optional validity window",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user-id",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "User ID (UUID)",
					},
					&cli.StringFlag{
						Name:     "role",
						Aliases:  []string{"r"},
						Required: true,
						Usage:    "Role name",
					},
					&cli.StringFlag{
						Name:  "valid-from",
						Usage: "Assignment start (RFC 3339, omit for immediate)",
					},
					&cli.StringFlag{
						Name:  "valid-until",
						Usage: "Assignment expiry (RFC 3339, omit for no expiry)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunAssignRole(
						ctx,
						cmd.String("user-id"),
						cmd.String("role"),
						cmd.String("valid-from"),
						cmd.String("valid-until"),
					)
				},
			},
			{
				Name:  "create-policy",
				Usage: "Create an ABAC policy from a JSON condition tree",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Unique policy name",
					},
					&cli.StringFlag{
						Name:    "effect",
						Aliases: []string{"e"},
						Value:   "ALLOW",
						Usage:   "Policy effect: ALLOW or DENY",
					},
					&cli.StringFlag{
						Name:    "condition",
						Aliases: []string{"c"},
						Usage:   "JSON condition tree (omit to read from stdin)",
					},
					&cli.StringFlag{
						Name:  "resource-type",
						Usage: "Resource type scope (omit for wildcard)",
					},
					&cli.StringFlag{
						Name:  "action",
						Usage: "Action scope (omit for wildcard)",
					},
					&cli.BoolFlag{
						Name:    "active",
						Aliases: []string{"a"},
						Value:   true,
						Usage:   "Whether the policy is evaluated immediately",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreatePolicy(
						ctx,
						cmd.String("name"),
						cmd.String("effect"),
						cmd.String("condition"),
						cmd.String("resource-type"),
						cmd.String("action"),
						cmd.Bool("active"),
						cmd.String("format"),
					)
				},
			},
			{
				Name:  "clean-audit-logs",
				Usage: "Delete authorization audit logs older than specified days",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "days",
						Aliases:  []string{"d"},
						Required: true,
						Usage:    "Delete audit logs older than this many days",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCleanAuditLogs(
						ctx,
						cmd.Int("days"),
						cmd.String("format"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
