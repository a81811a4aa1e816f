package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// APIVersion is reported by the root descriptor.
const APIVersion = "1.0.0"

const healthTimeout = 2 * time.Second

// Pinger checks one backing dependency.
type Pinger func(ctx context.Context) error

// SystemHandler serves the API descriptor and health endpoints.
type SystemHandler struct {
	database Pinger
	cache    Pinger
	now      func() time.Time
}

// NewSystemHandler creates a new system handler. cache may be nil.
func NewSystemHandler(database, cache Pinger) *SystemHandler {
	return &SystemHandler{database: database, cache: cache, now: time.Now}
}

// DescriptorResponse lists the API surface.
type DescriptorResponse struct {
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

// HealthResponse reports dependency status.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Cache     string    `json:"cache,omitempty"`
}

var endpoints = []string{
	"GET /health - Health check",
	"POST /auth/signin - Sign in with email and password",
	"POST /auth/google - Sign in with Google",
	"POST /auth/verify - Resolve a session token",
	"GET /api/notes - Get all notes",
	"POST /api/notes - Create a note",
	"PUT /api/notes/:id - Update a note",
	"DELETE /api/notes/:id - Delete a note",
	"GET /api/todos - Get all todos",
	"POST /api/todos - Create a todo",
	"PUT /api/todos/:id - Update a todo",
	"DELETE /api/todos/:id - Delete a todo",
	"GET /api/timers - Get all timers",
	"POST /api/timers - Create a timer",
	"PUT /api/timers/:id - Update a timer",
	"DELETE /api/timers/:id - Delete a timer",
}

// Root godoc
// @Summary API descriptor
// @Tags system
// @Produce json
// @Success 200 {object} DescriptorResponse
// @Router / [get]
func (h *SystemHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, DescriptorResponse{
		Message:   "MinimalistNotes API is running!",
		Version:   APIVersion,
		Endpoints: endpoints,
	})
}

// Health godoc
// @Summary Health check
// @Description Reports 503 when the database is unreachable. The cache is optional and never fails the check.
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *SystemHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
		Database:  status(ctx, h.database),
	}
	if h.cache != nil {
		resp.Cache = status(ctx, h.cache)
	}

	code := http.StatusOK
	if resp.Database != "connected" {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

func status(ctx context.Context, ping Pinger) string {
	if ping == nil || ping(ctx) != nil {
		return "disconnected"
	}
	return "connected"
}
