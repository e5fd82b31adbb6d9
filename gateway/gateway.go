// Package gateway exposes the PayLater engine over a single action-RPC
// HTTP endpoint. Clients POST `{action, token, role, data}` and receive
// `{success: true, data}` or `{success: false, error_code}`.
package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xraph/paylater"
)

// Authorizer decides whether a caller may invoke an action. The token and
// role come straight from the request envelope; implementations typically
// verify the token and check the role against the action.
type Authorizer interface {
	Authorize(r *http.Request, action, token, role string) error
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(r *http.Request, action, token, role string) error

func (f AuthorizerFunc) Authorize(r *http.Request, action, token, role string) error {
	return f(r, action, token, role)
}

// AllowAll authorizes every request. Only suitable behind a trusted proxy.
var AllowAll = AuthorizerFunc(func(*http.Request, string, string, string) error { return nil })

// Server is the PayLater action-RPC server.
type Server struct {
	engine *paylater.Engine
	auth   Authorizer
	logger *slog.Logger
}

// NewServer creates a gateway over the engine.
func NewServer(engine *paylater.Engine, opts ...ServerOption) *Server {
	s := &Server{
		engine: engine,
		auth:   AllowAll,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAuthorizer sets the authorizer.
func WithAuthorizer(a Authorizer) ServerOption {
	return func(s *Server) { s.auth = a }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Post("/paylater", s.handleAction)

	return r
}

// envelope is the wire shape of every request.
type envelope struct {
	Action string          `json:"action"`
	Token  string          `json:"token"`
	Role   string          `json:"role"`
	Data   json.RawMessage `json:"data"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var env envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeFailure(w, http.StatusBadRequest, codeInvalidInput)
		return
	}
	if env.Action == "" {
		writeFailure(w, http.StatusBadRequest, codeInvalidInput)
		return
	}

	handler, ok := s.actions()[env.Action]
	if !ok {
		writeFailure(w, http.StatusNotFound, codeUnknownAction)
		return
	}

	if err := s.auth.Authorize(r, env.Action, env.Token, env.Role); err != nil {
		writeFailure(w, http.StatusForbidden, codeForbidden)
		return
	}

	data, err := handler(r, env.Data)
	if err != nil {
		status, code := errorCode(err)
		s.logger.Warn("action failed", "action", env.Action, "error_code", code, "error", err)
		writeFailure(w, status, code)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}

func writeFailure(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]any{
		"success":    false,
		"error_code": code,
	})
}
