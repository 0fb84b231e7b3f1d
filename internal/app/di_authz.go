package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	authzHttp "github.com/salomax/neotool-authz/internal/authz/http"
	"github.com/salomax/neotool-authz/internal/authz/repository"
	authzService "github.com/salomax/neotool-authz/internal/authz/service"
	authzUseCase "github.com/salomax/neotool-authz/internal/authz/usecase"
	"github.com/salomax/neotool-authz/internal/http"
	"github.com/salomax/neotool-authz/internal/metrics"
)

// RoleRepository returns the role repository for the configured database
// driver.
func (c *Container) RoleRepository() (authzUseCase.RoleRepository, error) {
	c.roleRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["roleRepo"] = err
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.roleRepo = repository.NewMySQLRoleRepository(db)
		case "postgres":
			c.roleRepo = repository.NewPostgreSQLRoleRepository(db)
		default:
			c.initErrors["roleRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["roleRepo"]; exists {
		return nil, storedErr
	}
	return c.roleRepo, nil
}

// PermissionRepository returns the permission repository for the configured
// database driver.
func (c *Container) PermissionRepository() (authzUseCase.PermissionRepository, error) {
	c.permissionRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["permissionRepo"] = err
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.permissionRepo = repository.NewMySQLPermissionRepository(db)
		case "postgres":
			c.permissionRepo = repository.NewPostgreSQLPermissionRepository(db)
		default:
			c.initErrors["permissionRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["permissionRepo"]; exists {
		return nil, storedErr
	}
	return c.permissionRepo, nil
}

// RoleAssignmentRepository returns the role assignment repository for the
// configured database driver.
func (c *Container) RoleAssignmentRepository() (authzUseCase.RoleAssignmentRepository, error) {
	c.assignmentRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["assignmentRepo"] = err
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.assignmentRepo = repository.NewMySQLRoleAssignmentRepository(db)
		case "postgres":
			c.assignmentRepo = repository.NewPostgreSQLRoleAssignmentRepository(db)
		default:
			c.initErrors["assignmentRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["assignmentRepo"]; exists {
		return nil, storedErr
	}
	return c.assignmentRepo, nil
}

// GroupRepository returns the group repository for the configured database
// driver.
func (c *Container) GroupRepository() (authzUseCase.GroupRepository, error) {
	c.groupRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["groupRepo"] = err
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.groupRepo = repository.NewMySQLGroupRepository(db)
		case "postgres":
			c.groupRepo = repository.NewPostgreSQLGroupRepository(db)
		default:
			c.initErrors["groupRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["groupRepo"]; exists {
		return nil, storedErr
	}
	return c.groupRepo, nil
}

// PolicyRepository returns the policy repository for the configured database
// driver.
func (c *Container) PolicyRepository() (authzUseCase.PolicyRepository, error) {
	c.policyRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["policyRepo"] = err
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.policyRepo = repository.NewMySQLPolicyRepository(db)
		case "postgres":
			c.policyRepo = repository.NewPostgreSQLPolicyRepository(db)
		default:
			c.initErrors["policyRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["policyRepo"]; exists {
		return nil, storedErr
	}
	return c.policyRepo, nil
}

// AuditLogRepository returns the audit log repository for the configured
// database driver.
func (c *Container) AuditLogRepository() (authzUseCase.AuditLogRepository, error) {
	c.auditLogRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["auditLogRepo"] = err
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.auditLogRepo = repository.NewMySQLAuditLogRepository(db)
		case "postgres":
			c.auditLogRepo = repository.NewPostgreSQLAuditLogRepository(db)
		default:
			c.initErrors["auditLogRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["auditLogRepo"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepo, nil
}

// RoleResolver returns the role resolver.
func (c *Container) RoleResolver() (authzUseCase.RoleResolver, error) {
	c.roleResolverInit.Do(func() {
		assignmentRepo, err := c.RoleAssignmentRepository()
		if err != nil {
			c.initErrors["roleResolver"] = err
			return
		}
		groupRepo, err := c.GroupRepository()
		if err != nil {
			c.initErrors["roleResolver"] = err
			return
		}

		c.roleResolver = authzUseCase.NewRoleResolver(assignmentRepo, groupRepo)
	})
	if storedErr, exists := c.initErrors["roleResolver"]; exists {
		return nil, storedErr
	}
	return c.roleResolver, nil
}

// PermissionResolver returns the permission resolver. A read-through caching
// resolver is used when the permission cache is enabled.
func (c *Container) PermissionResolver() (authzUseCase.PermissionResolver, error) {
	c.permissionResolverInit.Do(func() {
		roleResolver, err := c.RoleResolver()
		if err != nil {
			c.initErrors["permissionResolver"] = err
			return
		}
		roleRepo, err := c.RoleRepository()
		if err != nil {
			c.initErrors["permissionResolver"] = err
			return
		}

		if !c.config.PermissionCacheEnabled {
			c.permissionResolver = authzUseCase.NewPermissionResolver(roleResolver, roleRepo)
			return
		}

		c.permissionResolver, err = authzUseCase.NewCachingPermissionResolver(
			roleResolver,
			roleRepo,
			int64(c.config.PermissionCacheMaxEntries),
			c.config.PermissionCacheTTL,
		)
		if err != nil {
			c.initErrors["permissionResolver"] = fmt.Errorf("failed to create caching permission resolver: %w", err)
		}
	})
	if storedErr, exists := c.initErrors["permissionResolver"]; exists {
		return nil, storedErr
	}
	return c.permissionResolver, nil
}

// permissionCacheInvalidator returns the cache invalidator backing the
// permission resolver, or nil when caching is disabled.
func (c *Container) permissionCacheInvalidator() (authzUseCase.PermissionCacheInvalidator, error) {
	resolver, err := c.PermissionResolver()
	if err != nil {
		return nil, err
	}
	if invalidator, ok := resolver.(authzUseCase.PermissionCacheInvalidator); ok {
		return invalidator, nil
	}
	return nil, nil
}

// PolicyEngine returns the ABAC policy engine.
func (c *Container) PolicyEngine() (authzUseCase.PolicyEngine, error) {
	c.policyEngineInit.Do(func() {
		policyRepo, err := c.PolicyRepository()
		if err != nil {
			c.initErrors["policyEngine"] = err
			return
		}

		c.policyEngine = authzUseCase.NewPolicyEngine(
			policyRepo,
			authzService.NewConditionEvaluator(),
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["policyEngine"]; exists {
		return nil, storedErr
	}
	return c.policyEngine, nil
}

// AuditLogUseCase returns the audit log use case.
func (c *Container) AuditLogUseCase() (authzUseCase.AuditLogUseCase, error) {
	c.auditLogUseCaseInit.Do(func() {
		auditLogRepo, err := c.AuditLogRepository()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
			return
		}

		useCase := authzUseCase.NewAuditLogUseCase(auditLogRepo)
		c.auditLogUseCase = authzUseCase.NewAuditLogUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// AuthorizationUseCase returns the authorization decision use case.
func (c *Container) AuthorizationUseCase() (authzUseCase.AuthorizationUseCase, error) {
	c.authorizationUseCaseInit.Do(func() {
		roleResolver, err := c.RoleResolver()
		if err != nil {
			c.initErrors["authorizationUseCase"] = err
			return
		}
		permissionResolver, err := c.PermissionResolver()
		if err != nil {
			c.initErrors["authorizationUseCase"] = err
			return
		}
		policyEngine, err := c.PolicyEngine()
		if err != nil {
			c.initErrors["authorizationUseCase"] = err
			return
		}
		auditLogUseCase, err := c.AuditLogUseCase()
		if err != nil {
			c.initErrors["authorizationUseCase"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["authorizationUseCase"] = err
			return
		}

		useCase := authzUseCase.NewAuthorizationUseCase(
			roleResolver,
			permissionResolver,
			policyEngine,
			auditLogUseCase,
			c.Logger(),
		)
		c.authorizationUseCase = authzUseCase.NewAuthorizationUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["authorizationUseCase"]; exists {
		return nil, storedErr
	}
	return c.authorizationUseCase, nil
}

// RoleUseCase returns the role management use case.
func (c *Container) RoleUseCase() (authzUseCase.RoleUseCase, error) {
	c.roleUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["roleUseCase"] = err
			return
		}
		roleRepo, err := c.RoleRepository()
		if err != nil {
			c.initErrors["roleUseCase"] = err
			return
		}
		permissionRepo, err := c.PermissionRepository()
		if err != nil {
			c.initErrors["roleUseCase"] = err
			return
		}
		assignmentRepo, err := c.RoleAssignmentRepository()
		if err != nil {
			c.initErrors["roleUseCase"] = err
			return
		}
		invalidator, err := c.permissionCacheInvalidator()
		if err != nil {
			c.initErrors["roleUseCase"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["roleUseCase"] = err
			return
		}

		useCase := authzUseCase.NewRoleUseCase(txManager, roleRepo, permissionRepo, assignmentRepo, invalidator)
		c.roleUseCase = authzUseCase.NewRoleUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["roleUseCase"]; exists {
		return nil, storedErr
	}
	return c.roleUseCase, nil
}

// GroupUseCase returns the group management use case.
func (c *Container) GroupUseCase() (authzUseCase.GroupUseCase, error) {
	c.groupUseCaseInit.Do(func() {
		groupRepo, err := c.GroupRepository()
		if err != nil {
			c.initErrors["groupUseCase"] = err
			return
		}
		roleRepo, err := c.RoleRepository()
		if err != nil {
			c.initErrors["groupUseCase"] = err
			return
		}
		invalidator, err := c.permissionCacheInvalidator()
		if err != nil {
			c.initErrors["groupUseCase"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["groupUseCase"] = err
			return
		}

		useCase := authzUseCase.NewGroupUseCase(groupRepo, roleRepo, invalidator)
		c.groupUseCase = authzUseCase.NewGroupUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["groupUseCase"]; exists {
		return nil, storedErr
	}
	return c.groupUseCase, nil
}

// PolicyUseCase returns the ABAC policy management use case.
func (c *Container) PolicyUseCase() (authzUseCase.PolicyUseCase, error) {
	c.policyUseCaseInit.Do(func() {
		policyRepo, err := c.PolicyRepository()
		if err != nil {
			c.initErrors["policyUseCase"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["policyUseCase"] = err
			return
		}

		useCase := authzUseCase.NewPolicyUseCase(policyRepo, authzService.NewConditionEvaluator())
		c.policyUseCase = authzUseCase.NewPolicyUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["policyUseCase"]; exists {
		return nil, storedErr
	}
	return c.policyUseCase, nil
}

// initHTTPServer assembles the handlers and creates the API server.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	authorizationUseCase, err := c.AuthorizationUseCase()
	if err != nil {
		return nil, err
	}
	roleUseCase, err := c.RoleUseCase()
	if err != nil {
		return nil, err
	}
	groupUseCase, err := c.GroupUseCase()
	if err != nil {
		return nil, err
	}
	policyUseCase, err := c.PolicyUseCase()
	if err != nil {
		return nil, err
	}
	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, err
	}

	handlers := http.Handlers{
		Authorization: authzHttp.NewAuthorizationHandler(authorizationUseCase, logger),
		Role:          authzHttp.NewRoleHandler(roleUseCase, logger),
		Group:         authzHttp.NewGroupHandler(groupUseCase, logger),
		Policy:        authzHttp.NewPolicyHandler(policyUseCase, logger),
		AuditLog:      authzHttp.NewAuditLogHandler(auditLogUseCase, logger),
	}

	var metricsMiddleware gin.HandlerFunc
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider != nil {
		metricsMiddleware = metrics.HTTPMetricsMiddleware(provider.MeterProvider(), c.config.MetricsNamespace)
	}

	return http.NewServer(
		c.config,
		logger,
		authorizationUseCase,
		handlers,
		metricsMiddleware,
		db.PingContext,
	), nil
}
