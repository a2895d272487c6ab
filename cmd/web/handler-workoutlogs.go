package main

import (
	"net/http"

	"github.com/myrjola/gymcrm/internal/cache"
	"github.com/myrjola/gymcrm/internal/gym"
)

// workoutLogPOST records a workout of the user in the path and drops the user's cached reports.
func (app *application) workoutLogPOST(w http.ResponseWriter, r *http.Request) {
	var log gym.WorkoutLog
	if err := decodeJSON(r, &log); err != nil {
		app.handleError(w, r, err)
		return
	}
	log.ID = ""
	log.UserID = r.PathValue("userID")

	created, err := app.gym.RecordWorkoutLog(r.Context(), log)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.invalidateReports(r, created.UserID)
	app.writeJSON(w, r, http.StatusCreated, created)
}

func (app *application) workoutLogsGET(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	logs, err := app.gym.ListRecentWorkoutLogs(r.Context(), r.PathValue("userID"), limit)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, logs)
}

func (app *application) invalidateReports(r *http.Request, userID string) {
	cache.InvalidateUser(r.Context(), app.cache, app.logger, userID)
}
