package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qapish/qapish/internal/common"
	"github.com/qapish/qapish/internal/model"
)

// maxBodySize limits request bodies.
const maxBodySize = 1 << 20

// Tokens handed out until real authentication exists.
const (
	DemoSignupToken = "demo-signup-token"
	DemoLoginToken  = "demo-login-token"
)

func (s *Server) routes(registry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/packages", s.handleListPackages)
	mux.HandleFunc("GET /api/packages/{sku}", s.handleGetPackage)
	mux.HandleFunc("GET /api/orders", s.handleListOrders)
	mux.HandleFunc("POST /api/orders", s.handleCreateOrder)
	mux.HandleFunc("/api/", s.handleAPINotFound)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", spa(s.cfg.StaticDir))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.AuthSignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := requireCredentials(req.Email, req.Password); err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, model.AuthTokenResponse{Token: DemoSignupToken})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.AuthLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := requireCredentials(req.Email, req.Password); err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, model.AuthTokenResponse{Token: DemoLoginToken})
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := s.source.Packages(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if pkgs == nil {
		pkgs = []model.Package{}
	}
	s.writeJSON(w, http.StatusOK, pkgs)
}

func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	sku := r.PathValue("sku")
	pkg, err := s.source.PackageBySKU(r.Context(), sku)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if pkg == nil {
		s.writeError(w, http.StatusNotFound, "Package not found")
		return
	}
	s.writeJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.source.Orders(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if orders == nil {
		orders = []model.OrderSummary{}
	}
	s.writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}

	resp, err := s.source.CreateOrder(r.Context(), req)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.metrics.OrdersCreated.WithLabelValues(string(req.Plan.GPU)).Inc()
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPINotFound(w http.ResponseWriter, _ *http.Request) {
	s.writeError(w, http.StatusNotFound, "not found")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return common.NewUserError("expected application/json body", nil)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.NewUserError("invalid request body", err)
	}
	return nil
}

func requireCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return common.NewUserError("email and password are required", nil)
	}
	return nil
}

// writeErr maps err onto a status: user errors are 400, not-found is 404 and
// anything else is logged and reported as 500.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	if msg, ok := common.IsUserError(err); ok {
		s.writeError(w, http.StatusBadRequest, msg)
		return
	}
	if errors.Is(err, common.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.logger.ErrorContext(r.Context(), "Request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
	s.writeError(w, http.StatusInternalServerError, "internal server error")
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("Failed to write JSON response", "error", err)
	}
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
