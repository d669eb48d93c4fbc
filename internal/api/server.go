// ABOUTME: HTTP JSON API over the diary Tracker.
// ABOUTME: chi router with CORS, request logging and panic recovery.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/harperreed/fitness/internal/diary"
)

// Server serves the fitness API.
type Server struct {
	tracker *diary.Tracker
	log     *log.Logger
	router  chi.Router
}

// Options configures the API server.
type Options struct {
	Logger *log.Logger
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
}

// NewServer builds the router for tracker.
func NewServer(tracker *diary.Tracker, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{tracker: tracker, log: logger.With("component", "api")}
	s.router = s.routes(opts.AllowedOrigins)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(origins []string) chi.Router {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/users/{userID}", func(r chi.Router) {
		r.Post("/meals", s.logMeal)
		r.Get("/meals", s.mealRange)
		r.Get("/meals/{date}", s.getMeals)
		r.Delete("/meals/{date}/{mealType}/{index}", s.deleteMeal)

		r.Post("/exercise", s.logExercise)
		r.Get("/exercise", s.exerciseRange)
		r.Get("/exercise/{date}", s.getExercise)
		r.Delete("/exercise/{date}/{index}", s.deleteExercise)

		r.Post("/weight", s.logWeight)
		r.Get("/weight", s.weightHistory)
		r.Get("/weight/{date}", s.getWeight)
		r.Delete("/weight/{date}/{index}", s.deleteWeight)

		r.Get("/summary/nutrition", s.weeklyNutrition)
		r.Get("/summary/exercise", s.weeklyExercise)
		r.Get("/balance/{date}", s.caloricBalance)
		r.Get("/goals", s.nutritionGoals)
	})
	return r
}

// requestLogger logs one line per request through the server's logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
