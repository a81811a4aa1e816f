package store

import (
	"context"

	"go.uber.org/zap"

	"minimalistnotes/internal/config"
	"minimalistnotes/internal/db"
	"minimalistnotes/internal/logger"
	"minimalistnotes/internal/model"
	"minimalistnotes/internal/repository"
)

// Stores bundles the repositories of the configured driver.
type Stores struct {
	Users  repository.UserRepository
	Notes  repository.RecordRepository[*model.Note]
	Todos  repository.RecordRepository[*model.Todo]
	Timers repository.RecordRepository[*model.Timer]

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks the database connection.
func (s *Stores) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the database connection.
func (s *Stores) Close(ctx context.Context) error {
	return s.close(ctx)
}

// Open connects to the store selected by cfg.StoreDriver and prepares its
// schema: tables on MySQL, the unique email index on MongoDB. With
// cfg.ResetDB set, existing data is dropped first.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.StoreDriver == config.StoreMongo {
		return openMongo(ctx, cfg)
	}
	return openMySQL(cfg)
}

func openMongo(ctx context.Context, cfg *config.Config) (*Stores, error) {
	client, database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping database", zap.String("database", cfg.MongoDB))
		if err := db.ResetMongo(ctx, database); err != nil {
			return nil, err
		}
	}
	if err := repository.EnsureUserIndexes(ctx, database); err != nil {
		return nil, err
	}
	return &Stores{
		Users:  repository.NewMongoUserRepository(database),
		Notes:  repository.NewMongoNoteRepository(database),
		Todos:  repository.NewMongoTodoRepository(database),
		Timers: repository.NewMongoTimerRepository(database),
		ping:   func(ctx context.Context) error { return db.PingMongo(ctx, client) },
		close:  client.Disconnect,
	}, nil
}

func openMySQL(cfg *config.Config) (*Stores, error) {
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return nil, err
	}
	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
	}
	if err := db.MigrateMySQL(gormDB, cfg.ResetDB); err != nil {
		return nil, err
	}
	return &Stores{
		Users:  repository.NewUserRepository(gormDB),
		Notes:  repository.NewNoteRepository(gormDB),
		Todos:  repository.NewTodoRepository(gormDB),
		Timers: repository.NewTimerRepository(gormDB),
		ping:   func(ctx context.Context) error { return db.PingMySQL(ctx, gormDB) },
		close: func(context.Context) error {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}
