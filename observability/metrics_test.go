package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("GET", "/api/sessions", 200, 12*time.Millisecond)
	RecordRoverDeployed()
	SetActiveSessions(3)

	if got := testutil.ToFloat64(activeSessions); got != 3 {
		t.Errorf("Expected 3 active sessions, got %v", got)
	}
}

func TestRecordCommandSequence(t *testing.T) {
	before := testutil.ToFloat64(rollbacks.WithLabelValues("out_of_bounds"))
	successBefore := testutil.ToFloat64(commandSequences.WithLabelValues("success"))

	RecordCommandSequence("", false)
	RecordCommandSequence("out_of_bounds", true)
	RecordCommandSequence("invalid_operation", false)

	if got := testutil.ToFloat64(rollbacks.WithLabelValues("out_of_bounds")); got != before+1 {
		t.Errorf("Expected rollbacks to increase by 1, got %v -> %v", before, got)
	}
	if got := testutil.ToFloat64(commandSequences.WithLabelValues("success")); got != successBefore+1 {
		t.Errorf("Expected successes to increase by 1, got %v -> %v", successBefore, got)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerTo(&buf, "test", false)

	router := mux.NewRouter()
	router.Use(RequestLogger(logger))
	router.Use(RequestMetricsMiddleware)
	router.HandleFunc("/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("nope"))
	})

	req := httptest.NewRequest("GET", "/api/sessions/abcd", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}

	out := buf.String()
	if !strings.Contains(out, "http_request") {
		t.Errorf("Expected request log line, got %q", out)
	}
	if !strings.Contains(out, "/api/sessions/{id}") {
		t.Errorf("Expected route template in log, got %q", out)
	}
}
