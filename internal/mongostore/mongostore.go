// Package mongostore implements the gym repositories on MongoDB.
package mongostore

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/gym"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection       = "users"
	exercisesCollection   = "exercises"
	workoutLogsCollection = "workout_logs"
)

//go:embed exercises.json
var exerciseCatalog []byte

// Store is a MongoDB database holding users, the exercise catalog and workout logs.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// Connect connects to the MongoDB deployment at uri, verifies the connection and ensures the indexes of database.
func Connect(ctx context.Context, uri string, database string, logger *slog.Logger) (*Store, error) {
	start := time.Now()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Join(fmt.Errorf("ping mongodb: %w", err), client.Disconnect(ctx))
	}

	s := &Store{
		client: client,
		db:     client.Database(database),
		logger: logger,
	}
	if err = s.ensureIndexes(ctx); err != nil {
		return nil, errors.Join(err, client.Disconnect(ctx))
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "connected to mongodb",
		slog.String("database", database),
		slog.Duration("duration", time.Since(start)))
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "google_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "business_id", Value: 1}}, Options: options.Index()},
		},
		workoutLogsCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "start_time", Value: -1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index(),
			},
			{
				Keys:    bson.D{{Key: "business_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index(),
			},
		},
	}
	for collection, models := range indexes {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// Repositories returns the MongoDB-backed gym repositories.
func (s *Store) Repositories() gym.Repositories {
	exercises := &exerciseRepository{coll: s.db.Collection(exercisesCollection)}
	return gym.Repositories{
		Users:     &userRepository{coll: s.db.Collection(usersCollection)},
		Exercises: exercises,
		Logs:      &workoutLogRepository{coll: s.db.Collection(workoutLogsCollection), exercises: exercises},
	}
}

// SeedExercises inserts the built-in exercise catalog. Existing exercises are left untouched.
func (s *Store) SeedExercises(ctx context.Context) error {
	var catalog []gym.Exercise
	if err := json.Unmarshal(exerciseCatalog, &catalog); err != nil {
		return fmt.Errorf("unmarshal exercise catalog: %w", err)
	}

	coll := s.db.Collection(exercisesCollection)
	var inserted int64
	for _, exercise := range catalog {
		res, err := coll.UpdateOne(ctx,
			bson.M{"_id": exercise.ID},
			bson.M{"$setOnInsert": toExerciseDoc(exercise)},
			options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("seed exercise %s: %w", exercise.ID, err)
		}
		inserted += res.UpsertedCount
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "seeded exercise catalog",
		slog.Int("catalog", len(catalog)), slog.Int64("inserted", inserted))
	return nil
}

// Drop deletes the whole database.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.db.Drop(ctx); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	return nil
}
