package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-zaaknotify/apigroup"
	"github.com/goliatone/go-zaaknotify/auth"
	"github.com/goliatone/go-zaaknotify/core"
	"github.com/goliatone/go-zaaknotify/delivery"
	"github.com/goliatone/go-zaaknotify/identity"
	"github.com/goliatone/go-zaaknotify/migrations"
	"github.com/goliatone/go-zaaknotify/policy"
	"github.com/goliatone/go-zaaknotify/query"
	sqlstore "github.com/goliatone/go-zaaknotify/store/sql"
	"github.com/goliatone/go-zaaknotify/webhook"
	"github.com/goliatone/go-zaaknotify/zgw"
)

type persistenceConfig struct {
	driver string
	server string
}

func (c persistenceConfig) GetDebug() bool                { return false }
func (c persistenceConfig) GetDriver() string             { return c.driver }
func (c persistenceConfig) GetServer() string             { return c.server }
func (c persistenceConfig) GetPingTimeout() time.Duration { return 5 * time.Second }
func (c persistenceConfig) GetOtelIdentifier() string     { return "zaaknotify" }

func openPersistence(env environment) (*persistence.Client, error) {
	var dialect schema.Dialect
	switch env.DBDriver {
	case "postgres":
		dialect = pgdialect.New()
	case "sqlite3":
		dialect = sqlitedialect.New()
	default:
		return nil, fmt.Errorf("unsupported database driver %q", env.DBDriver)
	}

	sqlDB, err := sql.Open(env.DBDriver, env.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if env.DBDriver == "sqlite3" {
		sqlDB.SetMaxOpenConns(1)
	}

	cfg := persistenceConfig{driver: env.DBDriver, server: env.DBDSN}
	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("new persistence client: %w", err)
	}
	return client, nil
}

func registerMigrations(ctx context.Context, client *persistence.Client, driver string) error {
	target := migrations.DialectPostgres
	if driver == "sqlite3" {
		target = migrations.DialectSQLite
	}
	return migrations.Register(ctx, func(_ context.Context, _ string, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	}, target)
}

type app struct {
	config    core.Config
	auditor   *core.Auditor
	client    *persistence.Client
	processor *webhook.Processor
	feed      *query.ListCaseActivityQuery
}

func buildApp(ctx context.Context, env environment, runtime core.Config) (*app, error) {
	defaults := core.DefaultConfig()
	provider := core.NewCfgxConfigProvider(envRawConfigLoader{env: env})
	loaded, err := provider.Load(ctx, defaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	config, err := (core.GoOptionsResolver{}).Resolve(defaults, loaded, runtime)
	if err != nil {
		return nil, fmt.Errorf("resolve config: %w", err)
	}

	auditor := core.NewAuditor(nil)

	client, err := openPersistence(env)
	if err != nil {
		return nil, err
	}
	if err := registerMigrations(ctx, client, env.DBDriver); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("register migrations: %w", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("build stores: %w", err)
	}

	renderer, err := delivery.NewRenderer(config.PortalBaseURL)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("build renderer: %w", err)
	}

	cacheConfig := repositorycache.DefaultConfig()
	cacheConfig.TTL = 5 * time.Minute
	cacheService, err := repositorycache.NewCacheService(cacheConfig)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("new cache service: %w", err)
	}
	caseTypeConfigs, err := sqlstore.NewCachedCaseTypeConfigStore(factory.CaseTypeConfigStore(), cacheService)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cached case type config store: %w", err)
	}

	clients := zgw.NewFactory(
		http.DefaultClient,
		time.Duration(config.UpstreamTimeoutSeconds)*time.Second,
	)
	engine := policy.NewEngine(
		config,
		apigroup.New(factory.APIGroupStore()),
		clients,
		identity.New(factory.UserDirectory(), config.CompanyIDScheme),
		caseTypeConfigs,
		factory.DocumentTypeConfigStore(),
	)
	dispatcher := delivery.NewDispatcher(
		factory.StatusLedgerStore(),
		factory.DocumentLedgerStore(),
		factory.ActivityStore(),
		delivery.NewSMTPMailer(config.Mail),
		renderer,
		auditor,
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
	)
	processor := webhook.NewProcessor(
		config,
		auth.New(factory.SubscriptionStore()),
		engine,
		dispatcher,
		auditor,
	)

	return &app{
		config:    config,
		auditor:   auditor,
		client:    client,
		processor: processor,
		feed:      query.NewListCaseActivityQuery(factory.ActivityStore()),
	}, nil
}

func (a *app) close() {
	if a != nil && a.client != nil {
		_ = a.client.Close()
	}
}
