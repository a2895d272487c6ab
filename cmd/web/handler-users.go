package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/gymcrm/internal/gym"
)

// registerUserPOST registers the user identified by the Google account or returns the existing registration.
func (app *application) registerUserPOST(w http.ResponseWriter, r *http.Request) {
	var reg gym.Registration
	if err := decodeJSON(r, &reg); err != nil {
		app.handleError(w, r, err)
		return
	}
	user, created, err := app.gym.RegisterUser(r.Context(), reg)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "user registration handled",
		slog.String("user_id", user.ID), slog.Bool("created", created))
	app.writeJSON(w, r, status, user)
}

func (app *application) usersGET(w http.ResponseWriter, r *http.Request) {
	users, err := app.gym.ListUsers(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, users)
}

func (app *application) businessUsersGET(w http.ResponseWriter, r *http.Request) {
	users, err := app.gym.ListUsersByBusiness(r.Context(), r.PathValue("businessID"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, users)
}

func (app *application) userGET(w http.ResponseWriter, r *http.Request) {
	user, err := app.gym.GetUser(r.Context(), r.PathValue("userID"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, user)
}

// profilePUT replaces the fitness profile of the user. Profile changes affect the recommendations.
func (app *application) profilePUT(w http.ResponseWriter, r *http.Request) {
	var profile gym.Profile
	if err := decodeJSON(r, &profile); err != nil {
		app.handleError(w, r, err)
		return
	}
	userID := r.PathValue("userID")
	user, err := app.gym.UpdateProfile(r.Context(), userID, profile)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.invalidateReports(r, userID)
	app.writeJSON(w, r, http.StatusOK, user)
}
