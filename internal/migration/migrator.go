package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
)

//go:embed sql
var migrationsFS embed.FS

const migrationsRoot = "sql"

// Module provides the migrator to Fx.
var Module = fx.Provide(New)

// AutoMigrate applies pending migrations on start when DB_AUTO_MIGRATE is set.
var AutoMigrate = fx.Options(
	Module,
	fx.Invoke(registerAutoMigrate),
)

// Migrator applies the embedded SQL migrations for the configured dialect.
type Migrator struct {
	db     *bun.DB
	dir    string
	logger *zap.Logger
}

// New selects the migration directory matching the database driver.
func New(cfg config.Config, conns *database.Connections, logger *zap.Logger) (*Migrator, error) {
	dialect, err := gooseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	if err := goose.SetDialect(dialect); err != nil {
		return nil, err
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{logger: logger})

	return &Migrator{
		db:     conns.Writer,
		dir:    path.Join(migrationsRoot, dialect),
		logger: logger,
	}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	err := goose.UpContext(ctx, m.db.DB, m.dir)
	if isNoMigrationErr(err) {
		m.logger.Info("no migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	m.logger.Info("migrations applied", zap.String("dir", m.dir))
	return nil
}

// Down rolls back steps migrations, at least one, or every migration when all is set.
func (m *Migrator) Down(ctx context.Context, steps int, all bool) error {
	var err error
	switch {
	case all:
		err = goose.DownToContext(ctx, m.db.DB, m.dir, 0)
	default:
		steps = max(steps, 1)
		for range steps {
			if err = goose.DownContext(ctx, m.db.DB, m.dir); err != nil {
				break
			}
		}
	}

	if isNoMigrationErr(err) {
		m.logger.Info("no migrations to rollback")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	m.logger.Info("migrations rolled back", zap.Int("steps", steps), zap.Bool("all", all))
	return nil
}

// Version returns the schema version recorded by goose, 0 for an empty database.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	v, err := goose.GetDBVersionContext(ctx, m.db.DB)
	if err != nil {
		return 0, fmt.Errorf("migration version: %w", err)
	}
	return v, nil
}

func registerAutoMigrate(lc fx.Lifecycle, cfg config.Config, m *Migrator) {
	if !cfg.Database.AutoMigrate {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := m.Up(ctx); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			return nil
		},
	})
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case "postgres", "pg":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported goose dialect for driver %s", driver)
	}
}

func isNoMigrationErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, goose.ErrNoNextVersion) || errors.Is(err, goose.ErrNoMigrationFiles) {
		return true
	}

	return strings.Contains(err.Error(), "no migrations")
}

type gooseLogger struct {
	logger *zap.Logger
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.logger.Sugar().Fatalf(strings.TrimSpace(format), v...)
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.logger.Sugar().Debugf(strings.TrimSpace(format), v...)
}
