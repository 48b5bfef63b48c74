// Package server implements the gallery HTTP API, its websocket Q&A stream
// and the admin API.
package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/internal/types"
	"github.com/xhad/museum/pkg/compare"
	"github.com/xhad/museum/pkg/hotspot"
	"github.com/xhad/museum/pkg/llm"
	"github.com/xhad/museum/pkg/logging"
	"github.com/xhad/museum/pkg/store"
)

const (
	defaultSimilarLimit = 5
	askContextLimit     = 3
)

var fallbackExamples = []string{
	"What is the Anuradhapura Kingdom?",
	"Tell me about Sigiriya",
	"When did Sri Lanka get independence?",
}

type Config struct {
	Store     types.ArtifactStore
	Explainer types.Explainer
	// Cache may be nil, in which case explanations are regenerated each time.
	Cache types.ExplanationCache

	// StoreName is reported by /api/health.
	StoreName      string
	Model          models.ModelStatus
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
	Logger         *zap.Logger
}

// Server is the gallery API.
type Server struct {
	config  Config
	limiter *rate.Limiter
	logger  *zap.Logger
	handler http.Handler
}

func New(config Config) (*Server, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("server requires an artifact store")
	}
	if config.Explainer == nil {
		return nil, fmt.Errorf("server requires an explainer")
	}
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = []string{"*"}
	}
	if config.StoreName == "" {
		config.StoreName = "memory"
	}

	s := &Server{
		config:  config,
		limiter: newLimiter(config.RateLimit, config.RateBurst),
		logger:  logging.OrNop(config.Logger).Named("server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/artifacts", s.handleListArtifacts)
	mux.HandleFunc("GET /api/artifacts/{id}", s.handleGetArtifact)
	mux.HandleFunc("GET /api/artifacts/{id}/similar", s.handleSimilar)
	mux.HandleFunc("GET /api/artifacts/{id}/explain", limited(s.limiter, s.handleExplain))
	mux.HandleFunc("POST /api/compare", limited(s.limiter, s.handleCompare))
	mux.HandleFunc("GET /api/hotspots/{id}", s.handleHotspots)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/model/status", s.handleModelStatus)
	mux.HandleFunc("GET /api/cache/stats", s.handleCacheStats)
	mux.HandleFunc("POST /api/cache/clear", s.handleCacheClear)
	mux.HandleFunc("POST /api/ask", limited(s.limiter, s.handleAsk))
	mux.HandleFunc("GET /api/example-questions", s.handleExampleQuestions)
	mux.HandleFunc("GET /ws", limited(s.limiter, s.handleWebSocket))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	s.handler = chain(mux,
		requestID,
		accessLog(s.logger),
		recoverer(s.logger),
		cors(config.AllowedOrigins),
	)
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	return serve(ctx, addr, s.handler, s.logger)
}

func serve(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	records, err := s.config.Store.List(r.Context())
	if err != nil {
		s.internal(w, r, "list artifacts", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	limit := defaultSimilarLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	similar, err := s.config.Store.Similar(r.Context(), r.PathValue("id"), limit)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Artifact not found")
		return
	}
	if err != nil {
		s.internal(w, r, "similar artifacts", err)
		return
	}
	writeJSON(w, http.StatusOK, similar)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	ctx := r.Context()

	if s.config.Cache != nil {
		if text, hit := s.config.Cache.Get(ctx, rec.ID); hit {
			writeJSON(w, http.StatusOK, models.Explanation{Explanation: text, Cached: true})
			return
		}
	}

	text, source := s.config.Explainer.Explain(ctx, *rec)
	s.logger.Debug("generated explanation",
		zap.String("artifact_id", rec.ID), zap.String("source", source), zap.Int("length", len(text)))

	if s.config.Cache != nil {
		if err := s.config.Cache.Set(ctx, rec.ID, text); err != nil {
			s.logger.Warn("failed to cache explanation", zap.String("artifact_id", rec.ID), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, models.Explanation{Explanation: text, Cached: false})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Artifact1ID == "" || req.Artifact2ID == "" {
		writeError(w, http.StatusBadRequest, "artifact1_id and artifact2_id are required")
		return
	}

	ctx := r.Context()
	a, errA := s.config.Store.Get(ctx, req.Artifact1ID)
	b, errB := s.config.Store.Get(ctx, req.Artifact2ID)
	for _, err := range []error{errA, errB} {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "One or both artifacts not found")
			return
		}
		if err != nil {
			s.internal(w, r, "compare lookup", err)
			return
		}
	}

	na, nb := models.Normalize(*a), models.Normalize(*b)
	result, err := compare.Compare(&na, &nb)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	narrative, source := s.config.Explainer.CompareNarrative(ctx, *a, *b)
	resp := models.CompareResponse{
		Artifact1:    *a,
		Artifact2:    *b,
		Similarities: result.Similarities,
		Differences:  result.Differences,
		Comparison:   narrative,
		Source:       source,
	}
	if sim, ok := s.config.Store.(types.Similarity); ok {
		if score, ok := sim.Score(ctx, a.ID, b.ID); ok {
			pct := math.Round(score * 100)
			resp.SimilarityScore = &pct
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHotspots(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, hotspot.Generate(models.Normalize(*rec)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	records, err := s.config.Store.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, models.Health{
			Status:  "error",
			Message: err.Error(),
			Store:   s.config.StoreName,
		})
		return
	}
	writeJSON(w, http.StatusOK, models.Health{
		Status:          "ok",
		Message:         "Server is running",
		ArtifactsLoaded: len(records),
		Store:           s.config.StoreName,
		LLMEnabled:      s.config.Model.Enabled,
	})
}

func (s *Server) handleModelStatus(w http.ResponseWriter, r *http.Request) {
	status := s.config.Model
	status.ComparisonSource = llm.SourceTemplate
	if status.Enabled {
		status.ComparisonSource = llm.SourceLLM
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.config.Cache == nil {
		writeJSON(w, http.StatusOK, types.CacheStats{})
		return
	}
	stats, err := s.config.Cache.Stats(r.Context())
	if err != nil {
		s.internal(w, r, "cache stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type clearCacheResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Stats   types.CacheStats `json:"stats"`
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	var req models.ClearCacheRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	resp := clearCacheResponse{Success: true, Message: "All cache cleared"}
	if req.ArtifactID != "" {
		resp.Message = "Cache cleared for artifact " + req.ArtifactID
	}
	if s.config.Cache != nil {
		ctx := r.Context()
		if err := s.config.Cache.Clear(ctx, req.ArtifactID); err != nil {
			s.internal(w, r, "cache clear", err)
			return
		}
		stats, err := s.config.Cache.Stats(ctx)
		if err != nil {
			s.internal(w, r, "cache stats", err)
			return
		}
		resp.Stats = stats
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	ctx := r.Context()
	docs := s.retrieve(ctx, req.Question)

	answer := models.Answer{
		Question: req.Question,
		Info:     models.AnswerInfo{Sources: llm.Sources(docs), Source: llm.SourceLLM},
		Success:  true,
	}
	text, err := s.config.Explainer.Ask(ctx, req.Question, docs)
	if err != nil {
		if !errors.Is(err, llm.ErrDisabled) {
			s.logger.Warn("answer fell back to template", zap.Error(err))
		}
		text = llm.TemplateAnswer(req.Question, docs)
		answer.Info.Source = llm.SourceTemplate
	}
	answer.Answer = text
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleExampleQuestions(w http.ResponseWriter, r *http.Request) {
	records, err := s.config.Store.List(r.Context())
	if err != nil || len(records) == 0 {
		writeJSON(w, http.StatusOK, models.ExampleQuestions{Examples: fallbackExamples})
		return
	}

	examples := make([]string, 0, len(fallbackExamples))
	for _, rec := range records[:min(len(records), len(fallbackExamples))] {
		examples = append(examples, "Tell me about the "+rec.Name)
	}
	writeJSON(w, http.StatusOK, models.ExampleQuestions{Examples: examples})
}

// retrieve finds the records a question is most likely about. Search
// failures leave the answer ungrounded rather than failing it.
func (s *Server) retrieve(ctx context.Context, question string) []models.Record {
	docs, err := s.config.Store.Search(ctx, question, askContextLimit)
	if err != nil {
		s.logger.Warn("artifact search failed", zap.Error(err))
		return []models.Record{}
	}
	return docs
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request, id string) (*models.Record, bool) {
	rec, err := s.config.Store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Artifact not found")
		return nil, false
	}
	if err != nil {
		s.internal(w, r, "get artifact", err)
		return nil, false
	}
	return rec, true
}

func (s *Server) internal(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.Error(op+" failed", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}
