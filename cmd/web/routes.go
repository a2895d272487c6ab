package main

import (
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(secureHeaders(noCache(app.timeout(next)))))
		}
		user = func(next http.HandlerFunc) http.Handler {
			return shared(userContext(next))
		}
	)

	mux.Handle("GET /api/healthy", shared(http.HandlerFunc(app.healthy)))

	mux.Handle("POST /api/users/register", shared(http.HandlerFunc(app.registerUserPOST)))
	mux.Handle("GET /api/users", shared(http.HandlerFunc(app.usersGET)))
	mux.Handle("GET /api/business/{businessID}/users", shared(http.HandlerFunc(app.businessUsersGET)))
	mux.Handle("GET /api/users/{userID}", user(app.userGET))
	mux.Handle("PUT /api/users/{userID}/profile", user(app.profilePUT))

	mux.Handle("GET /api/exercises", shared(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("POST /api/exercises", shared(http.HandlerFunc(app.exercisePOST)))

	mux.Handle("POST /api/users/{userID}/workout-logs", user(app.workoutLogPOST))
	mux.Handle("GET /api/users/{userID}/workout-logs", user(app.workoutLogsGET))

	mux.Handle("GET /api/users/{userID}/recommendations", user(app.recommendationsGET))
	mux.Handle("GET /api/users/{userID}/optimal-workout-times", user(app.optimalWorkoutTimesGET))

	mux.Handle("/", shared(http.HandlerFunc(app.notFound)))

	return mux
}
