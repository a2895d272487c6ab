package contexthelpers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myrjola/gymcrm/internal/contexthelpers"
)

func TestTraceID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := contexthelpers.TraceID(r.Context()); got != "" {
		t.Errorf("TraceID() before set = %q, want empty", got)
	}
	r = contexthelpers.SetTraceID(r, "abc")
	if got := contexthelpers.TraceID(r.Context()); got != "abc" {
		t.Errorf("TraceID() = %q, want %q", got, "abc")
	}
}
