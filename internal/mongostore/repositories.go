package mongostore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/gym"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userRepository implements gym.UserRepository.
type userRepository struct {
	coll *mongo.Collection
}

func (r *userRepository) Create(ctx context.Context, user gym.User) (gym.User, error) {
	doc := toUserDoc(user)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return gym.User{}, errors.Wrap(gym.ErrConflict, "user already exists", slog.String("email", user.Email))
		}
		return gym.User{}, fmt.Errorf("insert user: %w", err)
	}
	return doc.toUser(), nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (gym.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return gym.User{}, gym.ErrNotFound
	}
	if err != nil {
		return gym.User{}, fmt.Errorf("find user: %w", err)
	}
	return doc.toUser(), nil
}

func (r *userRepository) Get(ctx context.Context, id string) (gym.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return gym.User{}, gym.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (gym.User, error) {
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *userRepository) List(ctx context.Context, businessID string) ([]gym.User, error) {
	filter := bson.M{}
	if businessID != "" {
		filter["business_id"] = businessID
	}
	cur, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]gym.User, len(docs))
	for i, doc := range docs {
		users[i] = doc.toUser()
	}
	return users, nil
}

// Update replaces the stored document with the result of updateFn. Concurrent updates of the same user are last
// writer wins.
func (r *userRepository) Update(ctx context.Context, id string, updateFn func(user *gym.User) (bool, error)) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return gym.ErrNotFound
	}
	user, err := r.findOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}

	var updated bool
	if updated, err = updateFn(&user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if !updated {
		return nil
	}

	doc := toUserDoc(user)
	doc.ID = oid
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(gym.ErrConflict, "email already taken", slog.String("email", user.Email))
	}
	if err != nil {
		return fmt.Errorf("replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		return gym.ErrNotFound
	}
	return nil
}

// exerciseRepository implements gym.ExerciseRepository.
type exerciseRepository struct {
	coll *mongo.Collection
}

func (r *exerciseRepository) Create(ctx context.Context, exercise gym.Exercise) (gym.Exercise, error) {
	if exercise.ID == "" {
		exercise.ID = primitive.NewObjectID().Hex()
	}
	doc := toExerciseDoc(exercise)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return gym.Exercise{}, errors.Wrap(gym.ErrConflict, "exercise already exists",
				slog.String("exercise_id", exercise.ID))
		}
		return gym.Exercise{}, fmt.Errorf("insert exercise: %w", err)
	}
	return doc.toExercise(), nil
}

func (r *exerciseRepository) Get(ctx context.Context, id string) (gym.Exercise, error) {
	var doc exerciseDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return gym.Exercise{}, gym.ErrNotFound
	}
	if err != nil {
		return gym.Exercise{}, fmt.Errorf("find exercise: %w", err)
	}
	return doc.toExercise(), nil
}

func (r *exerciseRepository) List(ctx context.Context) ([]gym.Exercise, error) {
	cur, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find exercises: %w", err)
	}
	var docs []exerciseDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}
	exercises := make([]gym.Exercise, len(docs))
	for i, doc := range docs {
		exercises[i] = doc.toExercise()
	}
	return exercises, nil
}

// getMany retrieves the exercises with the given IDs keyed by ID in one query.
func (r *exerciseRepository) getMany(ctx context.Context, ids []string) (map[string]gym.Exercise, error) {
	result := make(map[string]gym.Exercise, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find exercises: %w", err)
	}
	var docs []exerciseDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}
	for _, doc := range docs {
		result[doc.ID] = doc.toExercise()
	}
	return result, nil
}

// workoutLogRepository implements gym.WorkoutLogRepository.
type workoutLogRepository struct {
	coll      *mongo.Collection
	exercises *exerciseRepository
}

func (r *workoutLogRepository) Create(ctx context.Context, log gym.WorkoutLog) (gym.WorkoutLog, error) {
	userID, err := primitive.ObjectIDFromHex(log.UserID)
	if err != nil {
		return gym.WorkoutLog{}, errors.Wrap(gym.ErrInvalid, "malformed user id", slog.String("user_id", log.UserID))
	}
	doc := toWorkoutLogDoc(userID, log)
	doc.ID = primitive.NewObjectID()
	if _, err = r.coll.InsertOne(ctx, doc); err != nil {
		return gym.WorkoutLog{}, fmt.Errorf("insert workout log: %w", err)
	}
	log.ID = doc.ID.Hex()
	return log, nil
}

func (r *workoutLogRepository) ListRecent(ctx context.Context, userID string, limit int) ([]gym.WorkoutLog, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []gym.WorkoutLog{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"user_id": oid},
		options.Find().
			SetSort(bson.D{{Key: "start_time", Value: -1}, {Key: "created_at", Value: -1}}).
			SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("find workout logs: %w", err)
	}
	var docs []workoutLogDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode workout logs: %w", err)
	}

	var ids []string
	seen := map[string]bool{}
	for _, doc := range docs {
		for _, ex := range doc.Exercises {
			if !seen[ex.ExerciseID] {
				seen[ex.ExerciseID] = true
				ids = append(ids, ex.ExerciseID)
			}
		}
	}
	definitions, err := r.exercises.getMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve exercises: %w", err)
	}

	logs := make([]gym.WorkoutLog, len(docs))
	for i, doc := range docs {
		logs[i] = doc.toWorkoutLog(definitions)
	}
	return logs, nil
}
