package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"minimalistnotes/internal/model"
	"minimalistnotes/internal/service"
)

// TimerHandler handles timer endpoints.
type TimerHandler struct {
	timers service.RecordService[*model.Timer]
	scope  Scope
}

// NewTimerHandler creates a new timer handler.
func NewTimerHandler(timers service.RecordService[*model.Timer], scope Scope) *TimerHandler {
	return &TimerHandler{timers: timers, scope: scope}
}

// CreateTimerRequest represents a timer creation request.
// ElapsedTime is in milliseconds.
type CreateTimerRequest struct {
	Title       string  `json:"title" validate:"required"`
	ElapsedTime int64   `json:"elapsedTime" validate:"min=0"`
	UserID      *string `json:"userId"`
}

// UpdateTimerRequest represents a partial timer update.
type UpdateTimerRequest struct {
	Title       *string `json:"title"`
	ElapsedTime *int64  `json:"elapsedTime" validate:"omitempty,min=0"`
}

// List godoc
// @Summary List timers
// @Tags timers
// @Produce json
// @Param userId query string false "Owner filter"
// @Success 200 {array} model.Timer
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/timers [get]
func (h *TimerHandler) List(c echo.Context) error {
	owner, err := h.scope.Owner(c, queryOwner(c))
	if err != nil {
		return respondError(c, err)
	}

	timers, err := h.timers.List(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, timers)
}

// Create godoc
// @Summary Create a timer
// @Description Timers are always stored stopped.
// @Tags timers
// @Accept json
// @Produce json
// @Param request body CreateTimerRequest true "Timer"
// @Success 201 {object} model.Timer
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/timers [post]
func (h *TimerHandler) Create(c echo.Context) error {
	var req CreateTimerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, invalidBody())
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	owner, err := h.scope.Owner(c, req.UserID)
	if err != nil {
		return respondError(c, err)
	}

	timer, err := h.timers.Create(c.Request().Context(), &model.Timer{
		Title:       req.Title,
		ElapsedTime: req.ElapsedTime,
		IsRunning:   false,
		UserID:      owner,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, timer)
}

// Update godoc
// @Summary Update a timer
// @Tags timers
// @Accept json
// @Produce json
// @Param id path string true "Timer ID"
// @Param request body UpdateTimerRequest true "Fields to change"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/timers/{id} [put]
func (h *TimerHandler) Update(c echo.Context) error {
	id, err := parseRecordID(c, "timer")
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateTimerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, invalidBody())
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	caller, err := h.scope.Caller(c)
	if err != nil {
		return respondError(c, err)
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.ElapsedTime != nil {
		fields["elapsed_time"] = *req.ElapsedTime
	}

	if err := h.timers.Update(c.Request().Context(), id, fields, caller); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Timer updated successfully"})
}

// Delete godoc
// @Summary Delete a timer
// @Tags timers
// @Produce json
// @Param id path string true "Timer ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/timers/{id} [delete]
func (h *TimerHandler) Delete(c echo.Context) error {
	id, err := parseRecordID(c, "timer")
	if err != nil {
		return respondError(c, err)
	}

	caller, err := h.scope.Caller(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.timers.Delete(c.Request().Context(), id, caller); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Timer deleted successfully"})
}
