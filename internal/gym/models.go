package gym

import (
	"time"
)

// Role is the role of a user within a business.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleGymAdmin   Role = "gymadmin"
	RoleTrainer    Role = "trainer"
	RoleMember     Role = "member"
)

// FitnessLevel is the self-reported fitness level of a member. Exercises use the same scale for difficulty.
type FitnessLevel string

const (
	FitnessLevelBeginner     FitnessLevel = "beginner"
	FitnessLevelIntermediate FitnessLevel = "intermediate"
	FitnessLevelAdvanced     FitnessLevel = "advanced"
)

// Category represents the type of exercise.
type Category string

const (
	CategoryCardio      Category = "cardio"
	CategoryStrength    Category = "strength"
	CategoryFlexibility Category = "flexibility"
	CategoryBalance     Category = "balance"
	CategorySports      Category = "sports"
)

// LogStatus is the lifecycle state of a workout log.
type LogStatus string

const (
	LogStatusInProgress LogStatus = "in_progress"
	LogStatusCompleted  LogStatus = "completed"
	LogStatusPaused     LogStatus = "paused"
	LogStatusCancelled  LogStatus = "cancelled"
)

// User is a person registered to a business. Members carry the fitness profile used for recommendations.
type User struct {
	ID           string       `json:"id"`
	GoogleID     string       `json:"google_id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PhotoURL     string       `json:"photo_url"`
	Role         Role         `json:"role"`
	BusinessID   string       `json:"business_id,omitempty"`
	FitnessLevel FitnessLevel `json:"fitness_level,omitempty"`
	FitnessGoals []string     `json:"fitness_goals"`
	DateOfBirth  *time.Time   `json:"date_of_birth,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Exercise is a read-only exercise definition from the catalog, e.g. Push-ups or Deadlift.
type Exercise struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Category     Category     `json:"category"`
	MuscleGroups []string     `json:"muscle_groups"`
	Difficulty   FitnessLevel `json:"difficulty"`
}

// PerformedSet is a single set of a performed exercise. Every measure is optional because it depends on the
// exercise type.
type PerformedSet struct {
	Reps            *int     `json:"reps,omitempty"`
	WeightKg        *float64 `json:"weight_kg,omitempty"`
	DurationSeconds *int     `json:"duration_seconds,omitempty"`
	DistanceMeters  *float64 `json:"distance_meters,omitempty"`
	Completed       bool     `json:"completed"`
}

// PerformedExercise is an exercise performed during a workout.
//
// Exercise is resolved from ExerciseID when the log is read and is nil if the definition no longer exists.
type PerformedExercise struct {
	ExerciseID string         `json:"exercise_id"`
	Exercise   *Exercise      `json:"exercise,omitempty"`
	Sets       []PerformedSet `json:"sets"`
	Completed  bool           `json:"completed"`
}

// WorkoutLog records one completed or attempted training session.
type WorkoutLog struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	WorkoutID  string              `json:"workout_id"`
	BusinessID string              `json:"business_id,omitempty"`
	StartTime  time.Time           `json:"start_time"`
	EndTime    *time.Time          `json:"end_time,omitempty"`
	Exercises  []PerformedExercise `json:"exercises"`

	// TotalDurationMinutes is the actual duration of the session. Zero means unknown.
	TotalDurationMinutes float64 `json:"total_duration"`

	CaloriesBurned float64   `json:"calories_burned,omitempty"`
	Rating         *int      `json:"rating,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Status         LogStatus `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Registration holds the identity provider data used to register a user.
type Registration struct {
	GoogleID   string `json:"google_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	PhotoURL   string `json:"photo_url"`
	Role       Role   `json:"role"`
	BusinessID string `json:"business_id"`
}

// Profile is the part of the user that members edit themselves.
type Profile struct {
	FitnessLevel FitnessLevel `json:"fitness_level"`
	FitnessGoals []string     `json:"fitness_goals"`
	DateOfBirth  *time.Time   `json:"date_of_birth"`
}
