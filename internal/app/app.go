// Package app assembles the service graph shared by the HTTP server, the
// Lambda entrypoint and the worker.
package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"backoffice-api/internal/access"
	adaptermiddleware "backoffice-api/internal/adapters/http/middleware"
	"backoffice-api/internal/application"
	"backoffice-api/internal/catalog"
	"backoffice-api/internal/config"
	"backoffice-api/internal/infrastructure/auth"
	"backoffice-api/internal/infrastructure/dynamodb"
	"backoffice-api/internal/infrastructure/postgres"
	httpiface "backoffice-api/internal/interfaces/http"
	"backoffice-api/internal/ports"
)

const serviceName = "backoffice-api"

type Core struct {
	cfg    *config.Config
	logger ports.Logger

	Pool      *pgxpool.Pool
	Catalog   *postgres.CatalogRepository
	Users     *postgres.UserRepository
	Contracts *postgres.ContractRepository
	Leaves    *postgres.LeaveRepository
	Snapshots *application.SnapshotService
}

// Open connects to Postgres, applies pending migrations when configured and
// attaches the DynamoDB snapshot archive when a table is set.
func Open(ctx context.Context, cfg *config.Config, logger ports.Logger) (*Core, error) {
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, err
	}
	if cfg.MigrateOnStart {
		if err := postgres.ApplyMigrations(pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info(ctx, "migrations applied")
	}

	var archive ports.SnapshotArchive
	if cfg.ArchiveEnabled() {
		client, err := dynamodb.NewClient(ctx, cfg.AWSRegion, cfg.SnapshotTable)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init snapshot archive: %w", err)
		}
		archive = dynamodb.NewSnapshotArchive(client)
		logger.Info(ctx, "snapshot archive enabled", "table", cfg.SnapshotTable)
	}

	return &Core{
		cfg:       cfg,
		logger:    logger,
		Pool:      pool,
		Catalog:   postgres.NewCatalogRepository(pool),
		Users:     postgres.NewUserRepository(pool),
		Contracts: postgres.NewContractRepository(pool),
		Leaves:    postgres.NewLeaveRepository(pool),
		Snapshots: application.NewSnapshotService(postgres.NewSnapshotRepository(pool), archive, logger),
	}, nil
}

func (c *Core) Close() {
	c.Pool.Close()
}

// Seed inserts the missing catalog entries and the bootstrap administrator.
func (c *Core) Seed(ctx context.Context) error {
	return inSegment(ctx, "catalog-seed", func(ctx context.Context) error {
		if err := catalog.Seed(ctx, catalog.Default(), c.Catalog, c.logger); err != nil {
			return err
		}
		users := application.NewUserService(c.Users, c.Catalog, auth.NewBcryptHasher(0), c.logger)
		return users.EnsureBootstrapAdmin(ctx, c.cfg.BootstrapAdminEmail, c.cfg.BootstrapAdminPassword)
	})
}

// inSegment runs fn under a fresh X-Ray segment so the traced pgx calls made
// outside a request have a parent.
func inSegment(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	ctx, seg := xray.BeginSegment(ctx, name)
	defer func() { seg.Close(err) }()
	return fn(ctx)
}

// Router builds the HTTP surface over the core. ipExtractor overrides how the
// client address is resolved; nil derives it from TRUSTED_PROXIES.
func (c *Core) Router(ctx context.Context, ipExtractor echo.IPExtractor) (*echo.Echo, error) {
	issuer, err := auth.NewJWTIssuer(c.cfg.JWTSecret, c.cfg.JWTIssuer, c.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	if ipExtractor == nil {
		ipExtractor, err = adaptermiddleware.ClientIPExtractor(c.cfg.TrustedProxies)
		if err != nil {
			return nil, err
		}
	}
	hasher := auth.NewBcryptHasher(0)
	cat := catalog.Default()

	authz := c.authorizer(cat)
	if authz.ExpandsHierarchy() {
		c.logger.Warn(ctx, "role hierarchy expansion enabled for route guards")
	}

	handlers := httpiface.Handlers{
		Auth:      httpiface.NewAuthHandler(application.NewAuthService(c.Users, c.Catalog, hasher, issuer, c.logger), c.logger),
		Catalog:   httpiface.NewCatalogHandler(application.NewCatalogService(c.Catalog, cat.Hierarchy(), c.logger), c.logger),
		Users:     httpiface.NewUsersHandler(application.NewUserService(c.Users, c.Catalog, hasher, c.logger), c.logger),
		Contracts: httpiface.NewContractsHandler(application.NewContractService(c.Contracts, c.Users, c.logger), c.logger),
		Leave:     httpiface.NewLeaveHandler(application.NewLeaveService(c.Leaves, c.logger), c.logger),
		Payroll:   httpiface.NewPayrollHandler(c.Snapshots, c.logger),
		Health:    httpiface.NewHealthHandler(c.Pool, c.logger),
	}
	mw := httpiface.Middleware{
		IPExtractor:   ipExtractor,
		XRay:          adaptermiddleware.XRayMiddleware(serviceName),
		RequestLogger: adaptermiddleware.RequestLogger(c.logger),
		Secure:        adaptermiddleware.SecureHeaders(c.cfg.IsDevelopment()),
		Auth:          adaptermiddleware.Authenticate(issuer, c.logger),
		LoginLimiter:  adaptermiddleware.LoginRateLimiter(c.cfg.LoginRateLimit),
	}
	return httpiface.NewRouter(handlers, mw, authz, c.logger), nil
}

func (c *Core) authorizer(cat catalog.Catalog) access.Authorizer {
	if c.cfg.AuthzExpandHierarchy {
		return access.NewAuthorizer(access.WithHierarchy(cat.Hierarchy()))
	}
	return access.NewAuthorizer()
}
