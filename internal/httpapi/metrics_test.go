package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsMiddleware_UsesRoutePattern ensures the metrics middleware labels
// by the chi route pattern instead of the raw URL path.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Post("/runs/{id}/frames", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := http.Handler(r)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/runs/abc123/frames", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := mrr.Body.Bytes()
	if !bytes.Contains(body, []byte("trackd_http_requests_total")) || !bytes.Contains(body, []byte("/runs/{id}/frames")) {
		preview := body
		if len(preview) > 400 {
			preview = preview[:400]
		}
		t.Fatalf("expected trackd_http_requests_total with the route pattern; got: %q", string(preview))
	}
	if bytes.Contains(body, []byte("abc123")) {
		t.Fatalf("run id leaked into metric labels")
	}
}

func TestIncrementRejected(t *testing.T) {
	baseline := testutil.ToFloat64(rejectedTotal.WithLabelValues("batch_mismatch"))
	IncrementRejected("batch_mismatch")
	IncrementRejected("batch_mismatch")
	if got := testutil.ToFloat64(rejectedTotal.WithLabelValues("batch_mismatch")); got < baseline+2 {
		t.Fatalf("expected counter >= %v, got %v", baseline+2, got)
	}
	before := testutil.ToFloat64(rejectedTotal.WithLabelValues("unspecified"))
	IncrementRejected("")
	if after := testutil.ToFloat64(rejectedTotal.WithLabelValues("unspecified")); after < before+1 {
		t.Fatalf("expected unspecified reason to increment: before=%v after=%v", before, after)
	}
}
