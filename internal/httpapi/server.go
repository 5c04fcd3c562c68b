package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trackd/pkg/types"
)

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/profiles", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ProfilesResponse{Profiles: svc.ListProfiles()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Route("/runs", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			var req types.CreateRunRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			st, err := svc.CreateRun(req)
			if err != nil {
				logOutcome(r, "run create", "", writeServiceError(w, err), start, err)
				return
			}
			writeJSON(w, http.StatusCreated, st)
			logOutcome(r, "run create", st.ID, http.StatusCreated, start, nil)
		})

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			st, err := svc.GetRun(chi.URLParam(r, "id"))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, st)
		})

		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := chi.URLParam(r, "id")
			if err := svc.CloseRun(id); err != nil {
				logOutcome(r, "run close", id, writeServiceError(w, err), start, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			logOutcome(r, "run close", id, http.StatusNoContent, start, nil)
		})

		r.Post("/{id}/init", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := chi.URLParam(r, "id")
			var req types.ReinitRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			st, err := svc.ReinitRun(id, req)
			if err != nil {
				logOutcome(r, "run init", id, writeServiceError(w, err), start, err)
				return
			}
			writeJSON(w, http.StatusOK, st)
			logOutcome(r, "run init", id, http.StatusOK, start, nil)
		})

		r.Post("/{id}/frames", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := chi.URLParam(r, "id")
			var req types.TrackRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			if len(req.Frames) == 0 {
				IncrementRejected("bad_request")
				writeJSONError(w, http.StatusBadRequest, "frames are required")
				return
			}
			if len(req.Frames) > maxFrames {
				IncrementRejected("too_many_frames")
				writeJSONError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("batch of %d frames exceeds limit %d", len(req.Frames), maxFrames))
				return
			}
			batchFrames.Observe(float64(len(req.Frames)))
			// Join server base context with request context so shutdown cancels work too.
			ctx, cancel := joinContexts(serverBaseCtx, r.Context())
			defer cancel()
			resp, err := svc.Track(ctx, id, req)
			if err != nil {
				if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
					return
				}
				logOutcome(r, "track", id, writeServiceError(w, err), start, err)
				return
			}
			writeJSON(w, http.StatusOK, resp)
			logOutcome(r, "track", id, http.StatusOK, start, nil)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no tracker profile"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// decodeJSON enforces a JSON content type and the body size limit, and
// writes a 4xx response when the body cannot be decoded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		IncrementRejected("media_type")
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		IncrementRejected("bad_request")
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
