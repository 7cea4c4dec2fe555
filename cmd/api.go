package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ranksignal/accuracy-cli/internal/input"
	"github.com/ranksignal/accuracy-cli/internal/mlscore"
	"github.com/ranksignal/accuracy-cli/internal/model"
	"github.com/ranksignal/accuracy-cli/internal/scoring"
)

// apiServer exposes the scoring engine and ML scorer over REST.
type apiServer struct {
	engine *scoring.Engine
	scorer *mlscore.Scorer
}

// newRouter builds the HTTP API routes with CORS for dashboard access.
func newRouter(api *apiServer, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(requestLogger)

	r.Get("/health", api.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/score", api.handleScore)
		r.Post("/discrepancies", api.handleDiscrepancies)
		r.Post("/reports", api.handleCreateReport)
		r.Get("/reports", api.handleListReports)
		r.Get("/projects/{projectID}/status", api.handleProjectStatus)
		r.Post("/ml/score", api.handleMLScore)
		r.Post("/ml/score/batch", api.handleMLScoreBatch)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}

// errStatus maps engine errors onto response codes: bad input is the
// caller's problem, anything else is ours.
func errStatus(err error) int {
	if errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrArithmetic) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleScore(w http.ResponseWriter, r *http.Request) {
	var obs input.Observation
	if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := obs.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	score, err := s.engine.CalculateConfidenceScore(r.Context(), obs.ProjectID, obs.Metric, obs.Primary, obs.Compare)
	if err != nil {
		respondError(w, errStatus(err), err.Error())
		return
	}
	respond(w, http.StatusOK, score)
}

func (s *apiServer) handleDiscrepancies(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Primary model.DataPoint   `json:"primary"`
		Compare []model.DataPoint `json:"compare"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	found, err := s.engine.DetectDiscrepancies(req.Primary, req.Compare)
	if err != nil {
		respondError(w, errStatus(err), err.Error())
		return
	}
	if found == nil {
		found = []model.Discrepancy{}
	}
	respond(w, http.StatusOK, map[string][]model.Discrepancy{"discrepancies": found})
}

func (s *apiServer) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var obs input.Observation
	if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := obs.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	report, err := s.engine.GenerateAccuracyReport(r.Context(), obs.ProjectID, obs.Metric, obs.Primary, obs.Compare)
	if err != nil {
		respondError(w, errStatus(err), err.Error())
		return
	}
	respond(w, http.StatusCreated, report)
}

func (s *apiServer) handleListReports(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		respondError(w, http.StatusUnprocessableEntity, "project_id is required")
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusUnprocessableEntity, "days must be a non-negative integer")
			return
		}
		days = parsed
	}

	reports, err := s.engine.AccuracyHistory(r.Context(), projectID, r.URL.Query().Get("metric"), days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reports == nil {
		reports = []model.AccuracyReport{}
	}
	respond(w, http.StatusOK, reports)
}

func (s *apiServer) handleProjectStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.engine.ProjectStatus(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, status)
}

func (s *apiServer) handleMLScore(w http.ResponseWriter, r *http.Request) {
	var in model.MLInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.scorer.Calculate(r.Context(), in)
	if err != nil {
		respondError(w, errStatus(err), err.Error())
		return
	}
	respond(w, http.StatusOK, result)
}

func (s *apiServer) handleMLScoreBatch(w http.ResponseWriter, r *http.Request) {
	var inputs []model.MLInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(inputs) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "at least one ranking document is required")
		return
	}

	results, err := s.scorer.CalculateBatch(r.Context(), inputs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, results)
}
