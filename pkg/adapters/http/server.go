package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/cuepoint"
	"github.com/aretw0/cuepoint/internal/logging"
	"github.com/aretw0/cuepoint/internal/presentation/graph"
	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/observability"
	"github.com/aretw0/cuepoint/pkg/ports"
	"github.com/aretw0/cuepoint/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// EngineFactory builds a fresh, initialized engine for one request.
type EngineFactory func() (*cuepoint.Engine, error)

// Server exposes content unit sessions over HTTP.
type Server struct {
	NewEngine EngineFactory
	Sessions  *session.Manager
	Streams   *StreamManager

	metrics *observability.Metrics
	watcher ports.Watchable
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts /metrics and keeps the session gauge current.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithWatcher enables the reload stream on GET /events.
func WithWatcher(w ports.Watchable) Option {
	return func(s *Server) {
		s.watcher = w
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// SessionState is the body returned for a session.
type SessionState struct {
	SessionID string               `json:"session_id"`
	State     *domain.Snapshot     `json:"state"`
	Diff      *domain.SnapshotDiff `json:"diff,omitempty"`
}

// Decision is the body returned by an evaluation.
type Decision struct {
	SessionID string `json:"session_id"`
	Point     string `json:"point"`
	Target    string `json:"target,omitempty"`
	Matched   bool   `json:"matched"`
}

// NewServer creates a Server. Call Handler to obtain the routes.
func NewServer(factory EngineFactory, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		NewEngine: factory,
		Sessions:  sessions,
		Streams:   NewStreamManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates the HTTP handler for the given engine factory and sessions.
func NewHandler(factory EngineFactory, sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(factory, sessions, opts...).Handler()
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Get("/events", s.SubscribeReload)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/events", s.Dispatch)
			r.Get("/events", s.SubscribeSession)
			r.Post("/evaluate/{point}", s.Evaluate)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "cuepoint-http",
		"version": strings.TrimSpace(cuepoint.Version),
	})
}

// GetGraph handles GET /graph. With ?session=<id> the session's path is
// highlighted.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(w)
	if !ok {
		return
	}
	defer eng.Destroy()

	var overlay *graph.Overlay
	if id := r.URL.Query().Get("session"); id != "" {
		snap, err := s.Sessions.Load(r.Context(), id)
		if err != nil {
			s.fail(w, "GetGraph", err)
			return
		}
		overlay = &graph.Overlay{Path: snap.Paths}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(RulesOf(eng), overlay))
}

// RulesOf collects every decision point of the engine.
func RulesOf(eng *cuepoint.Engine) map[string][]domain.BranchRule {
	rules := make(map[string][]domain.BranchRule)
	for _, id := range eng.Branching().DecisionPoints() {
		rules[id] = eng.Branching().Rules(id)
	}
	return rules
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles POST /sessions. The new session starts from the
// engine's initial state.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(w)
	if !ok {
		return
	}
	defer eng.Destroy()

	id := uuid.NewString()
	if err := s.Sessions.Save(r.Context(), id, eng.Snapshot()); err != nil {
		s.fail(w, "CreateSession", err)
		return
	}
	s.logger.Info("session created", "session_id", id)
	s.refreshGauge(r)

	s.writeJSON(w, http.StatusCreated, SessionState{SessionID: id, State: eng.Snapshot()})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionState{SessionID: id, State: snap})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	s.refreshGauge(r)
	w.WriteHeader(http.StatusNoContent)
}

// Dispatch handles POST /sessions/{id}/events. The body is an input event;
// the resulting state change is returned and broadcast to subscribers.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var ev domain.InputEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Dispatch: invalid request body", "err", err)
		return
	}

	s.apply(w, r, id, "Dispatch", func(eng *cuepoint.Engine) error {
		return eng.Dispatch(ev)
	}, func(eng *cuepoint.Engine, diff *domain.SnapshotDiff) {
		s.writeJSON(w, http.StatusOK, SessionState{SessionID: id, State: eng.Snapshot(), Diff: diff})
	})
}

// Evaluate handles POST /sessions/{id}/evaluate/{point}. The taken path is
// recorded in the session.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	point := chi.URLParam(r, "point")

	var decision Decision
	s.apply(w, r, id, "Evaluate", func(eng *cuepoint.Engine) error {
		target, matched := eng.Evaluate(point)
		decision = Decision{SessionID: id, Point: point, Target: target, Matched: matched}
		return nil
	}, func(*cuepoint.Engine, *domain.SnapshotDiff) {
		s.writeJSON(w, http.StatusOK, decision)
	})
}

// apply runs fn against a fresh engine restored from the session, persists
// the result, and broadcasts the diff.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, id, op string,
	fn func(*cuepoint.Engine) error, respond func(*cuepoint.Engine, *domain.SnapshotDiff)) {
	if _, err := s.Sessions.Load(r.Context(), id); err != nil {
		s.fail(w, op, err)
		return
	}

	eng, ok := s.engine(w)
	if !ok {
		return
	}
	defer eng.Destroy()

	var before *domain.Snapshot
	err := s.Sessions.Apply(r.Context(), id, eng, func() error {
		before = eng.Snapshot()
		return fn(eng)
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}

	diff := domain.Diff(before, eng.Snapshot())
	if diff != nil {
		s.logger.Debug(op+": diff calculated", "session_id", id, "diff", diff)
		if data, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(data))
		}
	}
	respond(eng, diff)
}

func (s *Server) engine(w http.ResponseWriter) (*cuepoint.Engine, bool) {
	eng, err := s.NewEngine()
	if err != nil {
		http.Error(w, fmt.Sprintf("Engine error: %v", err), http.StatusInternalServerError)
		s.logger.Error("failed to build engine", "err", err)
		return nil, false
	}
	return eng, true
}

func (s *Server) refreshGauge(r *http.Request) {
	if s.metrics == nil {
		return
	}
	if ids, err := s.Sessions.List(r.Context()); err == nil {
		s.metrics.SetSessions(len(ids))
	}
}

// fail maps engine and store errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownEvent), errors.Is(err, cuepoint.ErrNotInbound):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
