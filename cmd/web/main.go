package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/myrjola/gymcrm/internal/backend"
	"github.com/myrjola/gymcrm/internal/cache"
	"github.com/myrjola/gymcrm/internal/envstruct"
	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/flightrecorder"
	"github.com/myrjola/gymcrm/internal/gym"
	"github.com/myrjola/gymcrm/internal/logging"
	"github.com/myrjola/gymcrm/internal/recommendation"
)

type application struct {
	logger         *slog.Logger
	gym            *gym.Service
	recommendation *recommendation.Service
	cache          cache.Store
	cacheTTL       time.Duration
	flightRecorder *flightrecorder.Recorder
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"GYMCRM_ADDR" envDefault:"localhost:8081"`
	// RedisAddr enables the report cache when set.
	RedisAddr string        `env:"GYMCRM_REDIS_ADDR" envDefault:""`
	CacheTTL  time.Duration `env:"GYMCRM_CACHE_TTL" envDefault:"5m"`
	// FetchTimeout bounds the data fetches behind one recommendation report.
	FetchTimeout time.Duration `env:"GYMCRM_FETCH_TIMEOUT" envDefault:"1s"`
	// Timezone is the IANA time zone in which optimal workout hours are reported.
	Timezone string `env:"GYMCRM_TIMEZONE" envDefault:"UTC"`
	// TracesDirectory enables capturing runtime traces of timed out requests when set.
	TracesDirectory string `env:"GYMCRM_TRACES_DIRECTORY" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dotenvPath, ok := lookupEnv("GYMCRM_DOTENV_PATH")
	if !ok {
		dotenvPath = ".env"
	}
	if lookupEnv, err = envstruct.WithDotenv(dotenvPath, lookupEnv); err != nil {
		return errors.Wrap(err, "load dotenv")
	}

	var (
		cfg        config
		backendCfg backend.Config
	)
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	if err = envstruct.Populate(&backendCfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate backend config")
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return errors.Wrap(err, "load timezone", slog.String("timezone", cfg.Timezone))
	}

	repos, closeBackend, err := backend.Open(ctx, backendCfg, logger)
	if err != nil {
		return errors.Wrap(err, "open backend")
	}
	defer closeBackend()

	app := application{
		logger:         logger,
		gym:            nil,
		recommendation: nil,
		cache:          nil,
		cacheTTL:       cfg.CacheTTL,
		flightRecorder: nil,
	}
	app.gym = gym.NewService(repos, logger)
	app.recommendation = recommendation.NewService(app.gym, app.gym, logger, recommendation.Config{
		Location:     location,
		FetchTimeout: cfg.FetchTimeout,
	})

	if cfg.RedisAddr != "" {
		var redis *cache.Redis
		if redis, err = cache.NewRedis(ctx, cfg.RedisAddr, logger); err != nil {
			return errors.Wrap(err, "connect to redis", slog.String("addr", cfg.RedisAddr))
		}
		defer func() {
			_ = redis.Close()
		}()
		app.cache = redis
	}

	if cfg.TracesDirectory != "" {
		if app.flightRecorder, err = flightrecorder.New(logger, cfg.TracesDirectory); err != nil {
			return errors.Wrap(err, "new flight recorder")
		}
		if err = app.flightRecorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer app.flightRecorder.Stop(ctx)
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	level := slog.LevelDebug
	if name, ok := os.LookupEnv("GYMCRM_LOG_LEVEL"); ok {
		level = logging.ParseLevel(name)
	}
	logger := logging.NewLogger(os.Stdout, level, nil)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
