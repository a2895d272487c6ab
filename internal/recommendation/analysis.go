package recommendation

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/gymcrm/internal/gym"
)

// unknownExercise names performed exercises whose definition could not be resolved.
const unknownExercise = "unknown"

// notEnoughHistory is the recommendation when there are no workouts to learn from.
const notEnoughHistory = "Not enough workout history to predict your optimal workout times yet."

// tally counts occurrences and remembers the order in which keys were first seen.
type tally struct {
	keys   []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{keys: []string{}, counts: map[string]int{}}
}

func (t *tally) add(key string) {
	if _, ok := t.counts[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.counts[key]++
}

func (t *tally) total() int {
	var sum int
	for _, c := range t.counts {
		sum += c
	}
	return sum
}

// workoutTime is when the workout took place. Logs without a start time fall back to their creation time.
func workoutTime(log gym.WorkoutLog) time.Time {
	if log.StartTime.IsZero() {
		return log.CreatedAt
	}
	return log.StartTime
}

func analyzeWorkoutFrequency(logs []gym.WorkoutLog, now time.Time) FrequencyAssessment {
	since := now.Add(-FrequencyWindow)
	var frequency int
	for _, log := range logs {
		if !workoutTime(log).Before(since) {
			frequency++
		}
	}

	var recommendation string
	switch {
	case frequency < MinWeeklyWorkouts:
		recommendation = "Try to increase workout frequency to at least 2-3 times per week for better results."
	case frequency > MaxWeeklyWorkouts:
		recommendation = "Consider taking more rest days to prevent overtraining and injury."
	default:
		recommendation = "Great workout frequency! You're maintaining a good balance."
	}

	return FrequencyAssessment{
		CurrentFrequency: frequency,
		OptimalRange:     OptimalRange,
		Recommendation:   recommendation,
	}
}

func analyzeMuscleGroupBalance(logs []gym.WorkoutLog) BalanceAssessment {
	groups := newTally()
	for _, log := range logs {
		for _, performed := range log.Exercises {
			if performed.Exercise == nil {
				continue
			}
			for _, group := range performed.Exercise.MuscleGroups {
				groups.add(group)
			}
		}
	}

	return BalanceAssessment{
		MuscleGroupDistribution: groups.counts,
		BalanceScore:            balanceScore(groups),
		Recommendations:         balanceRecommendations(groups),
	}
}

// balanceScore penalises the variance-to-mean ratio of the muscle group tallies. No tallies scores 0.
func balanceScore(groups *tally) float64 {
	if len(groups.counts) == 0 {
		return 0
	}
	n := float64(len(groups.counts))
	mean := float64(groups.total()) / n

	var sumSquares float64
	for _, c := range groups.counts {
		d := float64(c) - mean
		sumSquares += d * d
	}
	variance := sumSquares / n

	return math.Max(0, MaxBalanceScore-(variance/mean)*BalanceVariancePenalty)
}

func balanceRecommendations(groups *tally) []string {
	recommendations := []string{}
	total := float64(groups.total())
	for _, group := range groups.keys {
		share := float64(groups.counts[group]) / total * 100 //nolint:mnd // percent
		switch {
		case share < UnderworkedShare:
			recommendations = append(recommendations,
				fmt.Sprintf("Consider adding more %s exercises to your routine.", group))
		case share > OverworkedShare:
			recommendations = append(recommendations,
				fmt.Sprintf("You might be overworking %s. Consider balancing with other muscle groups.", group))
		}
	}
	return recommendations
}

// workoutTemplates holds the static template of each fitness level.
var workoutTemplates = map[gym.FitnessLevel]WorkoutTemplate{
	gym.FitnessLevelBeginner: {
		DurationMinutes: 30,
		Exercises:       []string{"bodyweight squats", "push-ups", "planks", "walking"},
		WeeklyFrequency: 3,
	},
	gym.FitnessLevelIntermediate: {
		DurationMinutes: 45,
		Exercises:       []string{"weighted squats", "bench press", "deadlifts", "rowing"},
		WeeklyFrequency: 4,
	},
	gym.FitnessLevelAdvanced: {
		DurationMinutes: 60,
		Exercises:       []string{"olympic lifts", "advanced bodyweight", "plyometrics"},
		WeeklyFrequency: 5,
	},
}

// personalizedWorkout returns the template for the fitness level. Unset or unknown levels get the beginner template.
func personalizedWorkout(level gym.FitnessLevel) WorkoutTemplate {
	template, ok := workoutTemplates[level]
	if !ok {
		template = workoutTemplates[gym.FitnessLevelBeginner]
	}
	template.Exercises = slices.Clone(template.Exercises)
	return template
}

// workoutIntensity is 0 when the duration is unknown or no exercises were performed.
func workoutIntensity(log gym.WorkoutLog) float64 {
	if log.TotalDurationMinutes <= 0 || len(log.Exercises) == 0 {
		return 0
	}
	return log.TotalDurationMinutes * float64(len(log.Exercises)) / IntensityDivisor
}

func optimalRestDays(logs []gym.WorkoutLog) RestDayRecommendation {
	var average float64
	if len(logs) > 0 {
		var sum float64
		for _, log := range logs {
			sum += workoutIntensity(log)
		}
		average = sum / float64(len(logs))
	}

	restDays := BaseRestDays
	switch {
	case average > HighIntensity:
		restDays = HighRestDays
	case average > ModerateIntensity:
		restDays = ModerateRestDays
	}

	return RestDayRecommendation{
		RecommendedRestDays: restDays,
		Reason: fmt.Sprintf(
			"Based on your workout intensity (%d), you should take %d rest day(s) between intense sessions.",
			int(math.Round(average)), restDays),
	}
}

// age returns the completed years since dateOfBirth and false when the date of birth is unknown.
func age(dateOfBirth *time.Time, now time.Time) (int, bool) {
	if dateOfBirth == nil || dateOfBirth.IsZero() {
		return 0, false
	}
	return int(math.Floor(float64(now.Sub(*dateOfBirth)) / float64(JulianYear))), true
}

func injuryPreventionTips(user gym.User, logs []gym.WorkoutLog, now time.Time) []string {
	tips := []string{}

	exercises := newTally()
	for _, log := range logs[:min(InjuryWindowLogs, len(logs))] {
		for _, performed := range log.Exercises {
			name := unknownExercise
			if performed.Exercise != nil && performed.Exercise.Name != "" {
				name = performed.Exercise.Name
			}
			exercises.add(name)
		}
	}
	for _, name := range exercises.keys {
		if count := exercises.counts[name]; count > MaxExerciseRepeats {
			tips = append(tips,
				fmt.Sprintf("Consider varying your routine - you've done %s %d times this week.", name, count))
		}
	}

	if years, ok := age(user.DateOfBirth, now); ok && years > MobilityAge {
		tips = append(tips,
			"Include more mobility and flexibility work in your routine.",
			"Consider longer warm-up periods before intense exercises.")
	}

	return tips
}

// WorkoutPerformance scores a workout between 0 and 100 from its completion rate, rating and duration.
//
// A missing rating counts as DefaultRating, an unknown duration scores UnknownDurationScore and a workout without
// exercises has a completion rate of 0.
func WorkoutPerformance(log gym.WorkoutLog) float64 {
	var completionRate float64
	if len(log.Exercises) > 0 {
		var completed int
		for _, performed := range log.Exercises {
			if performed.Completed {
				completed++
			}
		}
		completionRate = float64(completed) / float64(len(log.Exercises))
	}

	rating := DefaultRating
	if log.Rating != nil && *log.Rating != 0 {
		rating = *log.Rating
	}

	durationScore := UnknownDurationScore
	if log.TotalDurationMinutes > 0 {
		durationScore = math.Min(log.TotalDurationMinutes/FullDurationMinutes, 1)
	}

	return (completionRate*CompletionWeight +
		float64(rating)/MaxRating*RatingWeight +
		durationScore*DurationWeight) * 100 //nolint:mnd // percent
}

func optimalWorkoutTimes(logs []gym.WorkoutLog, loc *time.Location) TimePerformanceReport {
	report := TimePerformanceReport{
		OptimalWorkoutHours: []int{},
		PerformanceData:     map[int]float64{},
		Recommendation:      notEnoughHistory,
	}
	if len(logs) == 0 {
		return report
	}

	sums := map[int]float64{}
	counts := map[int]int{}
	for _, log := range logs {
		hour := workoutTime(log).In(loc).Hour()
		sums[hour] += WorkoutPerformance(log)
		counts[hour]++
	}

	hours := make([]int, 0, len(sums))
	for hour, sum := range sums {
		report.PerformanceData[hour] = sum / float64(counts[hour])
		hours = append(hours, hour)
	}
	slices.SortFunc(hours, func(a, b int) int {
		if c := cmp.Compare(report.PerformanceData[b], report.PerformanceData[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	report.OptimalWorkoutHours = hours[:min(TopHours, len(hours))]

	formatted := make([]string, len(report.OptimalWorkoutHours))
	for i, hour := range report.OptimalWorkoutHours {
		formatted[i] = strconv.Itoa(hour)
	}
	report.Recommendation = fmt.Sprintf("Your best performance times are around %s o'clock.",
		strings.Join(formatted, ", "))

	return report
}
