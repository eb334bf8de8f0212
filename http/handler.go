package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sagarc03/dbmanager"
)

// maxBodySize bounds request bodies, which only ever hold a name or a DSN.
const maxBodySize = 64 << 10

// Service is the registry surface served over HTTP. *dbmanager.Manager
// implements it.
type Service interface {
	Drivers() map[string]string
	RegisterDriver(protocol, driver string) error
	UnregisterDriver(protocol string) error

	Connections() map[string]dbmanager.DSN
	RegisterConnection(name string, dsn dbmanager.DSN) error
	UnregisterConnection(name string) error

	DefaultConnection() string
	SetDefaultConnection(name string) error

	HasDefiner(protocol string) (bool, error)
}

// Saver persists the state after a successful mutation.
type Saver interface {
	Save(ctx context.Context) error
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// Token, when set, is required as a bearer token on every request.
	Token string
	CORS  CORSConfig
	// Saver, when set, is called after every successful mutation.
	Saver  Saver
	Logger *slog.Logger
}

// Handler serves the admin API for a Service. Requests are serialized, so
// the Service needs no locking of its own.
//
// A mutation is applied before it is saved and is not rolled back when the
// save fails. The response is then 500 "not_saved", and retrying the same
// change may report a conflict even though the store never saw it.
type Handler struct {
	config  HandlerConfig
	service Service
	mu      sync.Mutex
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	h := &Handler{
		config:  *config,
		service: service,
	}
	if h.config.Logger == nil {
		h.config.Logger = slog.Default()
	}
	return h
}

// Router returns an http.Handler with all admin routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(h.config.Logger))

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(writeNotFound)
	r.MethodNotAllowed(writeMethodNotAllowed)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.Token))

		r.Get("/drivers", h.handleListDrivers)
		r.Put("/drivers/{protocol}", h.handlePutDriver)
		r.Delete("/drivers/{protocol}", h.handleDeleteDriver)

		r.Get("/connections", h.handleListConnections)
		r.Put("/connections/{name}", h.handlePutConnection)
		r.Delete("/connections/{name}", h.handleDeleteConnection)

		r.Get("/default", h.handleGetDefault)
		r.Put("/default", h.handlePutDefault)

		r.Get("/definers/{protocol}", h.handleGetDefiner)
	})

	return r
}

// DriversResponse is the body of GET /drivers.
type DriversResponse struct {
	Drivers map[string]string `json:"drivers"`
}

// ConnectionsResponse is the body of GET /connections. Passwords are
// redacted.
type ConnectionsResponse struct {
	Default     string            `json:"default"`
	Connections map[string]string `json:"connections"`
}

// DriverRequest is the body of PUT /drivers/{protocol}.
type DriverRequest struct {
	Driver string `json:"driver"`
}

// ConnectionRequest is the body of PUT /connections/{name}.
type ConnectionRequest struct {
	DSN string `json:"dsn"`
}

// DefaultConnection is the body of GET and PUT /default.
type DefaultConnection struct {
	Name string `json:"name"`
}

// DefinerResponse is the body of GET /definers/{protocol}.
type DefinerResponse struct {
	Protocol  string `json:"protocol"`
	Available bool   `json:"available"`
}

// mutate runs fn and, when it succeeds, persists the result. A failed save
// leaves the change applied in memory.
func (h *Handler) mutate(ctx context.Context, fn func() error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := fn(); err != nil {
		return err
	}

	if h.config.Saver == nil {
		return nil
	}

	if err := h.config.Saver.Save(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBody, err.Error())
	}
	return nil
}

func (h *Handler) handleListDrivers(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	drivers := h.service.Drivers()
	h.mu.Unlock()

	_ = WriteJSON(w, http.StatusOK, DriversResponse{Drivers: drivers})
}

func (h *Handler) handlePutDriver(w http.ResponseWriter, r *http.Request) {
	protocol := chi.URLParam(r, "protocol")

	var req DriverRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	err := h.mutate(r.Context(), func() error {
		return h.service.RegisterDriver(protocol, req.Driver)
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteDriver(w http.ResponseWriter, r *http.Request) {
	protocol := chi.URLParam(r, "protocol")

	err := h.mutate(r.Context(), func() error {
		return h.service.UnregisterDriver(protocol)
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListConnections(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	connections := h.service.Connections()
	defaultName := h.service.DefaultConnection()
	h.mu.Unlock()

	resp := ConnectionsResponse{
		Default:     defaultName,
		Connections: make(map[string]string, len(connections)),
	}
	for name, dsn := range connections {
		resp.Connections[name] = dsn.Redacted()
	}

	_ = WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutConnection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req ConnectionRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	dsn, err := dbmanager.ParseDSN(req.DSN)
	if err != nil {
		HandleError(w, err)
		return
	}

	err = h.mutate(r.Context(), func() error {
		return h.service.RegisterConnection(name, dsn)
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	w.Header().Set("Location", "/connections/"+name)
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleDeleteConnection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := h.mutate(r.Context(), func() error {
		return h.service.UnregisterConnection(name)
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetDefault(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	name := h.service.DefaultConnection()
	h.mu.Unlock()

	if name == "" {
		WriteError(w, http.StatusNotFound, "not_found", "No default connection")
		return
	}

	_ = WriteJSON(w, http.StatusOK, DefaultConnection{Name: name})
}

func (h *Handler) handlePutDefault(w http.ResponseWriter, r *http.Request) {
	var req DefaultConnection
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	err := h.mutate(r.Context(), func() error {
		return h.service.SetDefaultConnection(req.Name)
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetDefiner(w http.ResponseWriter, r *http.Request) {
	protocol := chi.URLParam(r, "protocol")

	h.mu.Lock()
	ok, err := h.service.HasDefiner(protocol)
	h.mu.Unlock()

	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, DefinerResponse{Protocol: protocol, Available: ok})
}
