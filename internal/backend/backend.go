// Package backend opens the persistence backend selected by configuration.
package backend

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/gym"
	"github.com/myrjola/gymcrm/internal/mongostore"
	"github.com/myrjola/gymcrm/internal/sqlite"
)

const (
	SQLite = "sqlite"
	Mongo  = "mongo"

	closeTimeout = 5 * time.Second
)

// ErrUnknownStore is returned for a Store other than SQLite or Mongo.
var ErrUnknownStore = errors.NewSentinel("unknown store")

// Config selects and locates the backend. Populate it with envstruct.
type Config struct {
	// Store selects the persistence backend, either "sqlite" or "mongo".
	Store string `env:"GYMCRM_STORE" envDefault:"sqlite"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL     string `env:"GYMCRM_SQLITE_URL" envDefault:"./gymcrm.sqlite3"`
	MongoURI      string `env:"GYMCRM_MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"GYMCRM_MONGO_DATABASE" envDefault:"gymcrm"`
}

// Open connects to the configured backend and makes sure the exercise catalog is present.
// The returned function releases the backend.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (gym.Repositories, func(), error) {
	switch cfg.Store {
	case SQLite:
		db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
		if err != nil {
			return gym.Repositories{}, nil, errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
		}
		logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")
		return gym.NewSQLiteRepositories(db, logger), func() { _ = db.Close() }, nil
	case Mongo:
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return gym.Repositories{}, nil, errors.Wrap(err, "connect to mongodb")
		}
		closeStore := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			_ = store.Close(closeCtx)
		}
		if err = store.SeedExercises(ctx); err != nil {
			closeStore()
			return gym.Repositories{}, nil, errors.Wrap(err, "seed exercises")
		}
		return store.Repositories(), closeStore, nil
	default:
		return gym.Repositories{}, nil, errors.Wrap(ErrUnknownStore, "select store", slog.String("store", cfg.Store))
	}
}
