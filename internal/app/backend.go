package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"umzugsbuero/backend/internal/app/config"
	"umzugsbuero/backend/internal/infra/counter"
	"umzugsbuero/backend/internal/infra/db/local"
	"umzugsbuero/backend/internal/infra/db/postgres"
	"umzugsbuero/backend/internal/service"
)

// Backend is the storage selected by STORE_DRIVER and COUNTER_BACKEND.
type Backend struct {
	Store service.Store
	// Migrated lists the migrations applied while opening.
	Migrated []string

	pings   []func(ctx context.Context) error
	closers []func() error
}

// OpenBackend connects the configured store. The SQLite schema is always
// brought up to date; Postgres migrations run only when migrate is set.
func OpenBackend(ctx context.Context, cfg config.Config, migrate bool, logger *zap.Logger) (*Backend, error) {
	b := &Backend{}
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL, postgres.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnIdleTime: cfg.DBMaxConnIdle,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		b.closers = append(b.closers, func() error { db.Close(); return nil })
		b.pings = append(b.pings, db.Ping)
		if migrate {
			if b.Migrated, err = db.Migrate(ctx); err != nil {
				b.Close()
				return nil, fmt.Errorf("migrating postgres: %w", err)
			}
		}
		b.Store = service.Store{
			Customers: postgres.NewCustomerRepository(db),
			Quotes:    postgres.NewQuoteRepository(db),
			Invoices:  postgres.NewInvoiceRepository(db),
			Tokens:    postgres.NewTokenRepository(db),
			Counter:   postgres.NewCounter(db),
		}
	case config.StoreSQLite:
		db, err := local.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		if err := db.Migrate(); err != nil {
			b.Close()
			return nil, fmt.Errorf("migrating sqlite: %w", err)
		}
		b.pings = append(b.pings, func(ctx context.Context) error {
			sqlDB, err := db.Gorm.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
		b.Store = service.Store{
			Customers: local.NewCustomerRepository(db),
			Quotes:    local.NewQuoteRepository(db),
			Invoices:  local.NewInvoiceRepository(db),
			Tokens:    local.NewTokenRepository(db),
			Counter:   local.NewCounter(db),
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.CounterBackend == config.CounterRedis {
		rc := counter.NewRedis(counter.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		b.closers = append(b.closers, rc.Close)
		if err := rc.Ping(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("connecting to redis %s: %w", cfg.RedisAddr, err)
		}
		b.pings = append(b.pings, rc.Ping)
		b.Store.Counter = rc
	}

	logger.Info("backend ready",
		zap.String("store", cfg.StoreDriver),
		zap.String("counter", cfg.CounterBackend),
		zap.Strings("migrated", b.Migrated),
	)
	return b, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	for _, p := range b.pings {
		if err := p(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the connections in reverse order of opening.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
