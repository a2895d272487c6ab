package mongostore

import (
	"time"

	"github.com/myrjola/gymcrm/internal/gym"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	GoogleID     string             `bson:"google_id"`
	Email        string             `bson:"email"`
	Name         string             `bson:"name"`
	PhotoURL     string             `bson:"photo_url"`
	Role         string             `bson:"role"`
	BusinessID   string             `bson:"business_id"`
	FitnessLevel string             `bson:"fitness_level"`
	FitnessGoals []string           `bson:"fitness_goals"`
	DateOfBirth  *time.Time         `bson:"date_of_birth,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func toUserDoc(u gym.User) userDoc {
	goals := u.FitnessGoals
	if goals == nil {
		goals = []string{}
	}
	return userDoc{
		ID:           primitive.NilObjectID,
		GoogleID:     u.GoogleID,
		Email:        u.Email,
		Name:         u.Name,
		PhotoURL:     u.PhotoURL,
		Role:         string(u.Role),
		BusinessID:   u.BusinessID,
		FitnessLevel: string(u.FitnessLevel),
		FitnessGoals: goals,
		DateOfBirth:  utcPtr(u.DateOfBirth),
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

func (d userDoc) toUser() gym.User {
	goals := d.FitnessGoals
	if goals == nil {
		goals = []string{}
	}
	return gym.User{
		ID:           d.ID.Hex(),
		GoogleID:     d.GoogleID,
		Name:         d.Name,
		Email:        d.Email,
		PhotoURL:     d.PhotoURL,
		Role:         gym.Role(d.Role),
		BusinessID:   d.BusinessID,
		FitnessLevel: gym.FitnessLevel(d.FitnessLevel),
		FitnessGoals: goals,
		DateOfBirth:  utcPtr(d.DateOfBirth),
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// exerciseDoc is keyed by the catalog slug so that seeded logs reference the same IDs on every backend.
type exerciseDoc struct {
	ID           string   `bson:"_id"`
	Name         string   `bson:"name"`
	Category     string   `bson:"category"`
	MuscleGroups []string `bson:"muscle_groups"`
	Difficulty   string   `bson:"difficulty"`
}

func toExerciseDoc(e gym.Exercise) exerciseDoc {
	groups := e.MuscleGroups
	if groups == nil {
		groups = []string{}
	}
	return exerciseDoc{
		ID:           e.ID,
		Name:         e.Name,
		Category:     string(e.Category),
		MuscleGroups: groups,
		Difficulty:   string(e.Difficulty),
	}
}

func (d exerciseDoc) toExercise() gym.Exercise {
	groups := d.MuscleGroups
	if groups == nil {
		groups = []string{}
	}
	return gym.Exercise{
		ID:           d.ID,
		Name:         d.Name,
		Category:     gym.Category(d.Category),
		MuscleGroups: groups,
		Difficulty:   gym.FitnessLevel(d.Difficulty),
	}
}

type setDoc struct {
	Reps            *int     `bson:"reps,omitempty"`
	WeightKg        *float64 `bson:"weight_kg,omitempty"`
	DurationSeconds *int     `bson:"duration_seconds,omitempty"`
	DistanceMeters  *float64 `bson:"distance_meters,omitempty"`
	Completed       bool     `bson:"completed"`
}

type performedDoc struct {
	ExerciseID string   `bson:"exercise_id"`
	Sets       []setDoc `bson:"sets"`
	Completed  bool     `bson:"completed"`
}

type workoutLogDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         primitive.ObjectID `bson:"user_id"`
	WorkoutID      string             `bson:"workout_id"`
	BusinessID     string             `bson:"business_id"`
	StartTime      time.Time          `bson:"start_time"`
	EndTime        *time.Time         `bson:"end_time,omitempty"`
	Exercises      []performedDoc     `bson:"exercises"`
	TotalDuration  float64            `bson:"total_duration"`
	CaloriesBurned float64            `bson:"calories_burned"`
	Rating         *int               `bson:"rating,omitempty"`
	Notes          string             `bson:"notes"`
	Status         string             `bson:"status"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func toWorkoutLogDoc(userID primitive.ObjectID, l gym.WorkoutLog) workoutLogDoc {
	exercises := make([]performedDoc, len(l.Exercises))
	for i, ex := range l.Exercises {
		sets := make([]setDoc, len(ex.Sets))
		for j, set := range ex.Sets {
			sets[j] = setDoc(set)
		}
		exercises[i] = performedDoc{ExerciseID: ex.ExerciseID, Sets: sets, Completed: ex.Completed}
	}
	return workoutLogDoc{
		ID:             primitive.NilObjectID,
		UserID:         userID,
		WorkoutID:      l.WorkoutID,
		BusinessID:     l.BusinessID,
		StartTime:      l.StartTime.UTC(),
		EndTime:        utcPtr(l.EndTime),
		Exercises:      exercises,
		TotalDuration:  l.TotalDurationMinutes,
		CaloriesBurned: l.CaloriesBurned,
		Rating:         l.Rating,
		Notes:          l.Notes,
		Status:         string(l.Status),
		CreatedAt:      l.CreatedAt.UTC(),
	}
}

// toWorkoutLog converts the document. Exercise definitions are resolved from definitions when present.
func (d workoutLogDoc) toWorkoutLog(definitions map[string]gym.Exercise) gym.WorkoutLog {
	exercises := make([]gym.PerformedExercise, len(d.Exercises))
	for i, ex := range d.Exercises {
		sets := make([]gym.PerformedSet, len(ex.Sets))
		for j, set := range ex.Sets {
			sets[j] = gym.PerformedSet(set)
		}
		var def *gym.Exercise
		if e, ok := definitions[ex.ExerciseID]; ok {
			def = &e
		}
		exercises[i] = gym.PerformedExercise{ExerciseID: ex.ExerciseID, Exercise: def, Sets: sets, Completed: ex.Completed}
	}
	return gym.WorkoutLog{
		ID:                   d.ID.Hex(),
		UserID:               d.UserID.Hex(),
		WorkoutID:            d.WorkoutID,
		BusinessID:           d.BusinessID,
		StartTime:            d.StartTime.UTC(),
		EndTime:              utcPtr(d.EndTime),
		Exercises:            exercises,
		TotalDurationMinutes: d.TotalDuration,
		CaloriesBurned:       d.CaloriesBurned,
		Rating:               d.Rating,
		Notes:                d.Notes,
		Status:               gym.LogStatus(d.Status),
		CreatedAt:            d.CreatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
