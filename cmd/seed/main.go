// Command seed loads users and their workout history from a JSON file into the configured backend.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/myrjola/gymcrm/internal/backend"
	"github.com/myrjola/gymcrm/internal/envstruct"
	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/gym"
	"github.com/myrjola/gymcrm/internal/logging"
)

type seedUser struct {
	Registration gym.Registration `json:"registration"`
	Profile      *gym.Profile     `json:"profile"`
	WorkoutLogs  []gym.WorkoutLog `json:"workout_logs"`
}

type seedFile struct {
	Exercises []gym.Exercise `json:"exercises"`
	Users     []seedUser     `json:"users"`
}

type summary struct {
	exercises int
	users     int
	logs      int
}

// load stores the contents of r through svc. Users that are already registered get their logs appended again, so
// seed a fresh database.
func load(ctx context.Context, svc *gym.Service, r io.Reader, logger *slog.Logger) (summary, error) {
	var (
		data seedFile
		sum  summary
	)
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return sum, fmt.Errorf("decode seed file: %w", err)
	}

	for _, exercise := range data.Exercises {
		if _, err := svc.CreateExercise(ctx, exercise); err != nil {
			if errors.Is(err, gym.ErrConflict) {
				logger.LogAttrs(ctx, slog.LevelDebug, "exercise exists", slog.String("exercise_id", exercise.ID))
				continue
			}
			return sum, errors.Wrap(err, "create exercise", slog.String("name", exercise.Name))
		}
		sum.exercises++
	}

	for _, u := range data.Users {
		user, created, err := svc.RegisterUser(ctx, u.Registration)
		if err != nil {
			return sum, errors.Wrap(err, "register user", slog.String("email", u.Registration.Email))
		}
		if created {
			sum.users++
		}
		if u.Profile != nil {
			if _, err = svc.UpdateProfile(ctx, user.ID, *u.Profile); err != nil {
				return sum, errors.Wrap(err, "update profile", slog.String("user_id", user.ID))
			}
		}
		for _, log := range u.WorkoutLogs {
			log.UserID = user.ID
			if _, err = svc.RecordWorkoutLog(ctx, log); err != nil {
				return sum, errors.Wrap(err, "record workout log", slog.String("user_id", user.ID))
			}
			sum.logs++
		}
	}
	return sum, nil
}

func run(ctx context.Context, logger *slog.Logger, args []string, lookupEnv func(string) (string, bool)) error {
	if len(args) != 2 { //nolint:mnd // program name and seed file
		return errors.New("usage: seed <file.json>")
	}
	var cfg backend.Config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	repos, closeBackend, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "open backend")
	}
	defer closeBackend()

	f, err := os.Open(args[1])
	if err != nil {
		return errors.Wrap(err, "open seed file")
	}
	defer func() {
		_ = f.Close()
	}()

	sum, err := load(ctx, gym.NewService(repos, logger), f, logger)
	if err != nil {
		return err
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "seed completed",
		slog.String("store", cfg.Store),
		slog.Int("exercises", sum.exercises),
		slog.Int("users", sum.users),
		slog.Int("workout_logs", sum.logs))
	return nil
}

func main() {
	ctx := context.Background()
	logger := logging.NewLogger(os.Stdout, slog.LevelInfo, nil)
	if err := run(ctx, logger, os.Args, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "seed failed", errors.SlogError(err))
		os.Exit(1)
	}
}
