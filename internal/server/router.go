package server

import (
	"context"
	"net/http"

	"flaromlab/internal/handlers"
	applog "flaromlab/internal/log"
	"flaromlab/internal/metrics"
)

type route struct {
	pattern string
	handler http.HandlerFunc
}

var routes = []route{
	{"GET /healthz", handlers.Health},
	{"GET /api/oils", handlers.ListOils},
	{"GET /api/molecules", handlers.ListMolecules},
	{"GET /api/formulas", handlers.ListFormulas},
	{"GET /api/formulas/saved", handlers.SavedFormulas},
	{"GET /api/synthesis", handlers.ListSynthesis},
	{"GET /api/filters/{entity}", handlers.FilterOptions},
	{"GET /api/compare/{entity}", handlers.GetComparison},
	{"POST /api/compare/{entity}/toggle", handlers.ToggleComparison},
	{"GET /api/composer", handlers.GetComposer},
	{"PUT /api/composer", handlers.UpdateComposer},
	{"POST /api/composer/components", handlers.AddComponent},
	{"DELETE /api/composer/components/{index}", handlers.RemoveComponent},
	{"POST /api/composer/save", handlers.SaveComposer},
	{"POST /api/composer/reset", handlers.ResetComposer},
	{"GET /api/analytics", handlers.Analytics},
	{"GET /{$}", handlers.Home},
}

func newRouter(recorder *metrics.Recorder) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	for _, rt := range routes {
		mux.HandleFunc(rt.pattern, rt.handler)
		applog.Debug(context.Background(), "route registered", "pattern", rt.pattern)
	}
	if recorder != nil {
		mux.Handle("GET /metrics", recorder.Handler())
		applog.Debug(context.Background(), "route registered", "pattern", "GET /metrics")
	}
	return mux
}

// statusRecorder remembers the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// instrument counts requests by matched route pattern and status code. It
// must wrap the mux directly so the pattern is visible after routing.
func instrument(recorder *metrics.Recorder, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		applog.Debug(r.Context(), "request served", "method", r.Method, "path", r.URL.Path, "route", pattern, "status", sw.status)
		if recorder != nil {
			recorder.ObserveRequest(pattern, sw.status)
		}
	})
}
