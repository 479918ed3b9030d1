package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/app/conversation"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/app/journal"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/observability"
)

// DefaultMaxUploadBytes bounds one POST /documents request body.
const DefaultMaxUploadBytes int64 = 32 << 20

type Server struct {
	svc            *conversation.Service
	journal        *journal.Service
	maxUploadBytes int64
}

func NewServer(svc *conversation.Service, journalSvc *journal.Service, maxUploadBytes int64) http.Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	s := &Server{svc: svc, journal: journalSvc, maxUploadBytes: maxUploadBytes}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// /sessions → list (GET), create (POST)
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}          → GET: session state
	// /sessions/{id}/messages → POST: run one turn
	// /sessions/{id}/actions  → GET: recent action log
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	// /documents → GET: current index, POST: replace it (multipart "files")
	mux.HandleFunc("/documents", s.handleDocuments)

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	Title string `json:"title,omitempty"`
}

type sessionResponse struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Stage      string            `json:"stage"`
	StageLabel string            `json:"stage_label"`
	Board      string            `json:"board"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Messages   []messageResponse `json:"messages"`
}

type messageResponse struct {
	Kind     string `json:"kind"`
	AuthorID string `json:"author_id,omitempty"`
	Content  string `json:"content"`
}

type sendMessageRequest struct {
	AuthorID string `json:"author_id"`
	Content  string `json:"content"`
	Stage    string `json:"stage,omitempty"`
}

type sendMessageResponse struct {
	Reply   string          `json:"reply"`
	Session sessionResponse `json:"session"`
}

type actionResponse struct {
	AuthorID  string `json:"author_id"`
	Action    string `json:"action"`
	Message   string `json:"message"`
	Stage     string `json:"stage"`
	Timestamp string `json:"timestamp"`
}

type indexResponse struct {
	IndexID   string    `json:"index_id"`
	Documents int       `json:"documents"`
	Chunks    int       `json:"chunks"`
	BuiltAt   time.Time `json:"built_at"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListSessions(w, r)
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id}, /sessions/{id}/messages or /sessions/{id}/actions
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	parts := strings.Split(path, "/")
	id := parts[0]

	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleGetSession(w, r, domain.SessionID(id))

	case len(parts) == 2 && parts[1] == "messages":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleSendMessage(w, r, domain.SessionID(id))

	case len(parts) == 2 && parts[1] == "actions":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleListActions(w, r, domain.SessionID(id))

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetIndex(w, r)
	case http.MethodPost:
		s.handleUploadDocuments(w, r)
	default:
		methodNotAllowed(w)
	}
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(w, "invalid JSON body")
			return
		}
	}

	out, err := s.svc.StartSession(r.Context(), conversation.StartSessionInput{Title: req.Title})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(out.Session))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	sessions, err := s.svc.ListSessions(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	session, err := s.svc.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, sessionID domain.SessionID) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	out, err := s.svc.SendMessage(
		r.Context(),
		conversation.SendMessageInput{
			SessionID: sessionID,
			AuthorID:  req.AuthorID,
			Text:      req.Content,
			Stage:     req.Stage,
		},
	)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		Reply:   out.Reply,
		Session: toSessionResponse(out.Session),
	})
}

func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request, sessionID domain.SessionID) {
	limit, err := queryLimit(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	entries, err := s.journal.RecentActions(r.Context(), sessionID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]actionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, actionResponse{
			AuthorID:  e.AuthorID,
			Action:    e.Action,
			Message:   e.Message,
			Stage:     string(e.Stage),
			Timestamp: e.Timestamp,
		})
	}
	authors, err := s.journal.AuthorCounts(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"actions": out, "authors": authors})
}

func (s *Server) handleGetIndex(w http.ResponseWriter, r *http.Request) {
	h := s.svc.CurrentIndex()
	if h == nil {
		writeJSON(w, http.StatusOK, map[string]any{"index": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"index": toIndexResponse(h)})
}

func (s *Server) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		badRequest(w, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		badRequest(w, "at least one file is required in field \"files\"")
		return
	}

	docs := make([]domain.Document, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, r, err)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, r, err)
			return
		}
		docs = append(docs, domain.Document{Name: fh.Filename, Data: data})
	}

	h, err := s.svc.IngestDocuments(r.Context(), docs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"index": toIndexResponse(h)})
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	msgs := make([]messageResponse, 0, len(s.State.Messages))
	for _, m := range s.State.Messages {
		msgs = append(msgs, messageResponse{
			Kind:     string(m.Kind),
			AuthorID: m.AuthorID,
			Content:  m.Content,
		})
	}

	return sessionResponse{
		ID:         string(s.ID),
		Title:      s.Title,
		Stage:      string(s.State.Stage),
		StageLabel: s.State.Stage.Label(),
		Board:      s.State.Board,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		Messages:   msgs,
	}
}

func toIndexResponse(h domain.IndexHandle) indexResponse {
	return indexResponse{
		IndexID:   h.IndexID(),
		Documents: h.DocumentCount(),
		Chunks:    h.ChunkCount(),
		BuiltAt:   h.BuiltAt(),
	}
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer")
	}
	return n, nil
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ce *domain.CompletionError
		ie *domain.IngestionError
	)

	switch {
	case errors.Is(err, domain.ErrInvalidStage),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrTooManyDocuments):
		badRequest(w, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &ie):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":    ie.Error(),
			"document": ie.Document,
		})
	case errors.As(err, &ce):
		observability.LoggerFromContext(r.Context()).Error("completion failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "completion backend failed"})
	default:
		internalError(w, r, err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
