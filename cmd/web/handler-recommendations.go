package main

import (
	"context"
	"net/http"

	"github.com/myrjola/gymcrm/internal/cache"
	"github.com/myrjola/gymcrm/internal/recommendation"
)

func (app *application) recommendationsGET(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	bundle, err := cache.GetOrCompute(r.Context(), app.cache, app.logger, cache.RecommendationsKey(userID), app.cacheTTL,
		func(ctx context.Context) (recommendation.Bundle, error) {
			return app.recommendation.GenerateWorkoutRecommendations(ctx, userID)
		})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, bundle)
}

func (app *application) optimalWorkoutTimesGET(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	report, err := cache.GetOrCompute(r.Context(), app.cache, app.logger, cache.OptimalTimesKey(userID), app.cacheTTL,
		func(ctx context.Context) (recommendation.TimePerformanceReport, error) {
			return app.recommendation.PredictOptimalWorkoutTimes(ctx, userID)
		})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, report)
}
