package recommendation

import "time"

// History windows.
const (
	// RecommendationLogLimit is the number of recent logs analysed by GenerateWorkoutRecommendations.
	RecommendationLogLimit = 30
	// OptimalTimeLogLimit is the number of recent logs analysed by PredictOptimalWorkoutTimes.
	OptimalTimeLogLimit = 50
	// FrequencyWindow is how far back workouts count towards the current weekly frequency.
	FrequencyWindow = 7 * 24 * time.Hour
	// InjuryWindowLogs is the number of most recent logs checked for repeated exercises.
	InjuryWindowLogs = 7
)

// Workout frequency.
const (
	MinWeeklyWorkouts = 2
	MaxWeeklyWorkouts = 6
	OptimalRange      = "3-5 times per week"
)

// Muscle group balance. Shares are percentages of all muscle group tallies.
const (
	UnderworkedShare       = 10.0
	OverworkedShare        = 30.0
	BalanceVariancePenalty = 20.0
	MaxBalanceScore        = 100.0
)

// Rest days. Intensity is total duration in minutes times exercise count divided by IntensityDivisor.
const (
	IntensityDivisor  = 100.0
	ModerateIntensity = 80.0
	HighIntensity     = 120.0
	BaseRestDays      = 1
	ModerateRestDays  = 2
	HighRestDays      = 3
)

// Injury prevention.
const (
	MaxExerciseRepeats = 5
	MobilityAge        = 40
	// JulianYear is the average year length used to derive age from date of birth.
	JulianYear = time.Duration(365.25 * 24 * float64(time.Hour))
)

// Workout performance score weights. The weights sum to one and the score is scaled to 0-100.
const (
	CompletionWeight     = 0.4
	RatingWeight         = 0.4
	DurationWeight       = 0.2
	DefaultRating        = 3
	MaxRating            = 5
	FullDurationMinutes  = 60.0
	UnknownDurationScore = 0.5
	TopHours             = 3
)
