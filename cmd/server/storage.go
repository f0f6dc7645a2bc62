package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/todo-api/internal/config"
	boltInfra "github.com/fastygo/todo-api/internal/infrastructure/bolt"
	mongoInfra "github.com/fastygo/todo-api/internal/infrastructure/mongo"
	pgInfra "github.com/fastygo/todo-api/internal/infrastructure/postgres"
	"github.com/fastygo/todo-api/internal/services/lifecycle"
	"github.com/fastygo/todo-api/repository"
	boltRepo "github.com/fastygo/todo-api/repository/bolt"
	"github.com/fastygo/todo-api/repository/memory"
	mongoRepo "github.com/fastygo/todo-api/repository/mongo"
	"github.com/fastygo/todo-api/repository/postgres"
)

// storage is the opened user store plus an optional statistics snapshot for
// the health endpoint.
type storage struct {
	users repository.UserRepository
	stats func() interface{}
}

// openStorage connects the configured document store and registers its
// shutdown hook.
func openStorage(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return storage{}, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return storage{}, err
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
		return storage{
			users: postgres.NewUserRepository(pool),
			stats: func() interface{} {
				st := pool.Stat()
				return map[string]int32{
					"total_conns":    st.TotalConns(),
					"idle_conns":     st.IdleConns(),
					"acquired_conns": st.AcquiredConns(),
				}
			},
		}, nil

	case config.StorageMongo:
		client, collection, err := mongoInfra.NewClient(ctx, cfg.Mongo, logger)
		if err != nil {
			return storage{}, err
		}
		manager.Register("mongo", client.Disconnect)
		return storage{users: mongoRepo.NewUserRepository(collection)}, nil

	case config.StorageBolt:
		store, err := boltInfra.Open(cfg.Bolt.Path, boltRepo.Buckets...)
		if err != nil {
			return storage{}, err
		}
		manager.Register("bolt", func(ctx context.Context) error {
			return store.Close()
		})
		logger.Info("opened bolt store", zap.String("path", cfg.Bolt.Path))
		return storage{
			users: boltRepo.NewUserRepository(store),
			stats: func() interface{} {
				users, _ := store.Size(boltRepo.UsersBucket)
				st := store.Stats()
				return map[string]int{
					"users":      users,
					"open_tx":    st.OpenTxN,
					"free_pages": st.FreePageN,
				}
			},
		}, nil

	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return storage{users: memory.NewUserRepository()}, nil

	default:
		return storage{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
