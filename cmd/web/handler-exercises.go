package main

import (
	"net/http"

	"github.com/myrjola/gymcrm/internal/gym"
)

func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.gym.ListExercises(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, exercises)
}

func (app *application) exercisePOST(w http.ResponseWriter, r *http.Request) {
	var exercise gym.Exercise
	if err := decodeJSON(r, &exercise); err != nil {
		app.handleError(w, r, err)
		return
	}
	created, err := app.gym.CreateExercise(r.Context(), exercise)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, created)
}
