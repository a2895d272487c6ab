package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/myrjola/gymcrm/internal/contexthelpers"
	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/myrjola/gymcrm/internal/gym"
	"github.com/myrjola/gymcrm/internal/recommendation"
)

const maxRequestBodyBytes = 1 << 20

var errMalformedBody = errors.NewSentinel("malformed request body")

type errorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("encode response: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(append(body, '\n')); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "write response failed", errors.SlogError(err))
	}
}

// decodeJSON decodes the request body into v. Unknown fields and trailing data are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errMalformedBody, err.Error())
	}
	if dec.More() {
		return errors.Wrap(errMalformedBody, "unexpected data after JSON value")
	}
	return nil
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	app.writeJSON(w, r, status, errorResponse{Error: msg, TraceID: contexthelpers.TraceID(r.Context())})
}

// serverError logs err with its annotations and responds with a generic message so that internals don't leak.
func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.clientError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// handleError maps domain errors to HTTP responses.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, gym.ErrNotFound), errors.Is(err, recommendation.ErrNotFound):
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "not found", errors.SlogError(err))
		app.notFound(w, r)
	case errors.Is(err, gym.ErrInvalid), errors.Is(err, errMalformedBody):
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "bad request", errors.SlogError(err))
		app.clientError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, gym.ErrConflict):
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "conflict", errors.SlogError(err))
		app.clientError(w, r, http.StatusConflict, err.Error())
	default:
		app.serverError(w, r, err)
	}
}

// parseLimit parses the optional "limit" query parameter. Zero means the service default.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.Wrap(gym.ErrInvalid, "limit must be a non-negative integer", slog.String("limit", raw))
	}
	return limit, nil
}
