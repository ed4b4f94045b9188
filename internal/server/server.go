package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/config"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
)

// UserHeader carries the caller's user id. Authentication happens upstream.
const UserHeader = "X-User-ID"

// Server is the aikinote HTTP API server.
type Server struct {
	svc    *trainlog.Service
	router *chi.Mux
	config config.Config
	logger *zap.Logger
}

// New creates a new Server with the given service and config.
func New(svc *trainlog.Service, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		svc:    svc,
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the server. Uses TLS if configured.
func (s *Server) ListenAndServe() error {
	addr := s.config.Addr()

	if s.config.HasTLS() {
		s.logger.Info("aikinote server listening", zap.String("url", "https://"+addr))
		return http.ListenAndServeTLS(addr, s.config.TLSCert, s.config.TLSKey, s.router)
	}

	s.logger.Info("aikinote server listening", zap.String("url", "http://"+addr))
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", UserHeader, "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(requireUser)

		r.Route("/pages", func(r chi.Router) {
			r.Post("/", s.handleCreatePage)
			r.Get("/", s.handleListPages)
			r.Get("/{id}", s.handleGetPage)
			r.Put("/{id}", s.handleUpdatePage)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleListTags)
			r.Post("/", s.handleCreateTag)
			r.Get("/duplicate", s.handleCheckDuplicateTag)
		})
	})
}

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Pages ---

type pageRequest struct {
	Title   string                  `json:"title"`
	Content string                  `json:"content"`
	Comment *string                 `json:"comment,omitempty"`
	Tags    trainlog.TagsByCategory `json:"tags"`
}

func (req pageRequest) input(id, userID string) trainlog.PageInput {
	return trainlog.PageInput{
		ID:      id,
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
		Comment: req.Comment,
	}
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := s.svc.CreatePage(r.Context(), req.input("", userID(r)), req.Tags)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, page)
}

func (s *Server) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := s.svc.UpdateTrainingPage(r.Context(), req.input(chi.URLParam(r, "id"), userID(r)), req.Tags)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.GetTrainingPageByID(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := trainlog.PagesQuery{
		UserID: userID(r),
		Limit:  s.config.PageLimit,
		Query:  params.Get("query"),
		Tags:   params.Get("tags"),
		Date:   params.Get("date"),
	}

	var err error
	if v := params.Get("limit"); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
	}
	if v := params.Get("offset"); v != "" {
		if q.Offset, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid offset %q", v))
			return
		}
	}

	pages, err := s.svc.GetTrainingPages(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pages": pages,
		"count": len(pages),
	})
}

// --- Tags ---

type createTagRequest struct {
	Name     string      `json:"name"`
	Category db.Category `json:"category"`
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.svc.GetUserTags(r.Context(), userID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tag, err := s.svc.CreateUserTag(r.Context(), userID(r), req.Name, req.Category)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleCheckDuplicateTag(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	tag, err := s.svc.CheckDuplicateTag(r.Context(), userID(r), params.Get("name"), db.Category(params.Get("category")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"exists": tag != nil,
		"tag":    tag,
	})
}

// --- Helpers ---

// writeServiceError answers with the status of the error's kind. Server-side
// failures are logged and carry the full error chain in "cause".
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := trainlog.KindOf(err)
	status := kind.HTTPStatus()

	msg := http.StatusText(status)
	var e *trainlog.Error
	if errors.As(err, &e) {
		msg = e.Message
	}

	body := map[string]any{"error": msg, "code": kind}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		body["cause"] = err.Error()
	} else if e != nil && e.Details != nil {
		body["details"] = e.Details
	}

	writeJSON(w, status, body)
}

func readJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Errorf("empty request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "code": string(trainlog.KindValidation)})
}
