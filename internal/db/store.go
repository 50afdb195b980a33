package db

import (
	"context"
	"fmt"

	"foreverhome/internal/config"
	"foreverhome/internal/store"
	"foreverhome/internal/store/memstore"
	"foreverhome/internal/store/mongostore"
	"foreverhome/internal/store/sqlstore"
)

// OpenStore connects the document store selected by cfg.StoreDriver and
// checks that it answers. The caller owns the returned handle and must Close it.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	var s store.Store
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := NewMongo(ctx, MongoOptions{
			URI:      cfg.MongoURI,
			Username: cfg.MongoUser,
			Password: cfg.MongoPassword,
		})
		if err != nil {
			return nil, err
		}
		s = mongostore.New(client, cfg.MongoDatabase)
	case config.DriverMySQL:
		gormDB, err := NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		sql := sqlstore.New(gormDB)
		if err := sql.Migrate(); err != nil {
			_ = sql.Close(ctx)
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		s = sql
	case config.DriverMemory:
		s = memstore.New()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if err := s.Ping(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, fmt.Errorf("ping %s store: %w", cfg.StoreDriver, err)
	}
	return s, nil
}
