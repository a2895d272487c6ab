package recommendation

// Bundle is the result of GenerateWorkoutRecommendations.
type Bundle struct {
	WorkoutFrequency      FrequencyAssessment   `json:"workout_frequency"`
	MuscleGroupBalance    BalanceAssessment     `json:"muscle_group_balance"`
	PersonalizedWorkout   WorkoutTemplate       `json:"personalized_workout"`
	RestDayRecommendation RestDayRecommendation `json:"rest_day_recommendation"`
	InjuryPreventionTips  []string              `json:"injury_prevention_tips"`
}

// FrequencyAssessment classifies the number of workouts in the last week.
type FrequencyAssessment struct {
	CurrentFrequency int    `json:"current_frequency"`
	OptimalRange     string `json:"optimal_range"`
	Recommendation   string `json:"recommendation"`
}

// BalanceAssessment describes how evenly the muscle groups have been trained.
type BalanceAssessment struct {
	// MuscleGroupDistribution maps muscle group to the number of performed exercises that targeted it.
	MuscleGroupDistribution map[string]int `json:"muscle_group_distribution"`
	// BalanceScore is between 0 and 100. Higher is more balanced.
	BalanceScore float64 `json:"balance_score"`
	// Recommendations follow the order in which the muscle groups first appear in the history.
	Recommendations []string `json:"recommendations"`
}

// WorkoutTemplate is a static workout suggestion for a fitness level.
type WorkoutTemplate struct {
	DurationMinutes int      `json:"duration"`
	Exercises       []string `json:"exercises"`
	WeeklyFrequency int      `json:"frequency"`
}

// RestDayRecommendation suggests rest days between intense sessions.
type RestDayRecommendation struct {
	RecommendedRestDays int    `json:"recommended_rest_days"`
	Reason              string `json:"reason"`
}

// TimePerformanceReport is the result of PredictOptimalWorkoutTimes.
type TimePerformanceReport struct {
	// OptimalWorkoutHours holds at most TopHours hours of day, best first.
	OptimalWorkoutHours []int `json:"optimal_workout_hours"`
	// PerformanceData maps hour of day to the average performance score of workouts started then.
	PerformanceData map[int]float64 `json:"performance_data"`
	Recommendation  string          `json:"recommendation"`
}
