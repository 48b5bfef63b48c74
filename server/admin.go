package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/internal/types"
	"github.com/xhad/museum/pkg/logging"
	"github.com/xhad/museum/pkg/richtext"
	"github.com/xhad/museum/pkg/store"
)

const (
	msgMissingFields = "Missing required fields"
	msgNotFound      = "Artifact not found"
)

type AdminConfig struct {
	Store          types.AdminStore
	AllowedOrigins []string
	Logger         *zap.Logger
}

// AdminServer is the admin console API for bilingual artifact records.
type AdminServer struct {
	config  AdminConfig
	logger  *zap.Logger
	handler http.Handler
}

func NewAdminServer(config AdminConfig) (*AdminServer, error) {
	if config.Store == nil {
		return nil, errors.New("admin server requires a store")
	}
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = []string{"*"}
	}

	s := &AdminServer{
		config: config,
		logger: logging.OrNop(config.Logger).Named("admin"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/artifacts", s.handleList)
	mux.HandleFunc("GET /api/artifacts/{id}", s.handleGet)
	mux.HandleFunc("GET /api/artifacts/by-artifact-id/{artifact_id}", s.handleGetByArtifactID)
	mux.HandleFunc("POST /api/artifacts", s.handleCreate)
	mux.HandleFunc("PUT /api/artifacts/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/artifacts/{id}", s.handleDelete)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Message: "Endpoint not found"})
	})

	s.handler = chain(mux,
		requestID,
		accessLog(s.logger),
		recoverer(s.logger),
		cors(config.AllowedOrigins),
	)
	return s, nil
}

func (s *AdminServer) Handler() http.Handler { return s.handler }

func (s *AdminServer) ListenAndServe(ctx context.Context, addr string) error {
	return serve(ctx, addr, s.handler, s.logger)
}

// MissingRequired reports whether any required field is absent. Rich-text
// fields count as absent when they render to no visible text.
func MissingRequired(in models.AdminInput) bool {
	plain := []string{in.TitleEN, in.TitleSI, in.OriginEN, in.OriginSI, in.Year, in.CategoryEN, in.CategorySI}
	for _, v := range plain {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	for _, v := range []string{in.DescriptionEN, in.DescriptionSI} {
		if richtext.IsBlank(v) {
			return true
		}
	}
	return len(in.ImageURLs) == 0
}

// matches reports whether q occurs in the plain text of a record's titles or
// descriptions, ignoring case.
func matches(a models.AdminArtifact, q string) bool {
	q = strings.ToLower(q)
	for _, field := range []string{a.TitleEN, a.TitleSI, a.DescriptionEN, a.DescriptionSI} {
		if strings.Contains(strings.ToLower(richtext.PlainText(field)), q) {
			return true
		}
	}
	return false
}

func (s *AdminServer) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.config.Store.List(r.Context())
	if err != nil {
		s.fail(w, r, "Error fetching artifacts", err)
		return
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		filtered := make([]models.AdminArtifact, 0, len(records))
		for _, a := range records {
			if matches(a, q) {
				filtered = append(filtered, a)
			}
		}
		records = filtered
	}
	if records == nil {
		records = []models.AdminArtifact{}
	}

	total := len(records)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: records, Total: &total})
}

func (s *AdminServer) handleGet(w http.ResponseWriter, r *http.Request) {
	a, err := s.config.Store.Get(r.Context(), r.PathValue("id"))
	s.respondOne(w, r, a, err, "", "Error fetching artifact")
}

func (s *AdminServer) handleGetByArtifactID(w http.ResponseWriter, r *http.Request) {
	a, err := s.config.Store.GetByArtifactID(r.Context(), r.PathValue("artifact_id"))
	s.respondOne(w, r, a, err, "", "Error fetching artifact")
}

func (s *AdminServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in models.AdminInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Invalid request body"})
		return
	}
	if MissingRequired(in) {
		writeJSON(w, http.StatusBadRequest, envelope{Message: msgMissingFields})
		return
	}

	a, err := s.config.Store.Create(r.Context(), models.NewAdminArtifact(in))
	if err != nil {
		s.fail(w, r, "Error creating artifact", err)
		return
	}
	s.logger.Info("artifact created", zap.String("artifact_id", a.ArtifactID))
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Artifact created successfully", Data: a})
}

func (s *AdminServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in models.AdminInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Invalid request body"})
		return
	}
	// Blank rich text keeps the stored value, like any other blank required field.
	if richtext.IsBlank(in.DescriptionEN) {
		in.DescriptionEN = ""
	}
	if richtext.IsBlank(in.DescriptionSI) {
		in.DescriptionSI = ""
	}

	a, err := s.config.Store.Update(r.Context(), r.PathValue("id"), in)
	s.respondOne(w, r, a, err, "Artifact updated successfully", "Error updating artifact")
}

func (s *AdminServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	a, err := s.config.Store.Delete(r.Context(), r.PathValue("id"))
	s.respondOne(w, r, a, err, "Artifact deleted successfully", "Error deleting artifact")
}

type adminHealth struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *AdminServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, adminHealth{
		Status:    "OK",
		Message:   "Server is running",
		Timestamp: time.Now().UTC(),
	})
}

func (s *AdminServer) respondOne(w http.ResponseWriter, r *http.Request, a *models.AdminArtifact, err error, okMsg, failMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, envelope{Message: msgNotFound})
		return
	}
	if err != nil {
		s.fail(w, r, failMsg, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: okMsg, Data: a})
}

func (s *AdminServer) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg, zap.String("request_id", RequestID(r.Context())), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, envelope{Message: msg, Error: err.Error()})
}
