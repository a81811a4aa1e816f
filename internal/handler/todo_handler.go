package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"minimalistnotes/internal/model"
	"minimalistnotes/internal/service"
)

// TodoHandler handles todo endpoints.
type TodoHandler struct {
	todos service.RecordService[*model.Todo]
	scope Scope
}

// NewTodoHandler creates a new todo handler.
func NewTodoHandler(todos service.RecordService[*model.Todo], scope Scope) *TodoHandler {
	return &TodoHandler{todos: todos, scope: scope}
}

// CreateTodoRequest represents a todo creation request.
type CreateTodoRequest struct {
	Text      string  `json:"text" validate:"required"`
	Completed bool    `json:"completed"`
	UserID    *string `json:"userId"`
}

// UpdateTodoRequest represents a partial todo update.
type UpdateTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// List godoc
// @Summary List todos
// @Tags todos
// @Produce json
// @Param userId query string false "Owner filter"
// @Success 200 {array} model.Todo
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/todos [get]
func (h *TodoHandler) List(c echo.Context) error {
	owner, err := h.scope.Owner(c, queryOwner(c))
	if err != nil {
		return respondError(c, err)
	}

	todos, err := h.todos.List(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, todos)
}

// Create godoc
// @Summary Create a todo
// @Tags todos
// @Accept json
// @Produce json
// @Param request body CreateTodoRequest true "Todo"
// @Success 201 {object} model.Todo
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/todos [post]
func (h *TodoHandler) Create(c echo.Context) error {
	var req CreateTodoRequest
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

	todo, err := h.todos.Create(c.Request().Context(), &model.Todo{
		Text:      req.Text,
		Completed: req.Completed,
		UserID:    owner,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, todo)
}

// Update godoc
// @Summary Update a todo
// @Tags todos
// @Accept json
// @Produce json
// @Param id path string true "Todo ID"
// @Param request body UpdateTodoRequest true "Fields to change"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/todos/{id} [put]
func (h *TodoHandler) Update(c echo.Context) error {
	id, err := parseRecordID(c, "todo")
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateTodoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, invalidBody())
	}

	caller, err := h.scope.Caller(c)
	if err != nil {
		return respondError(c, err)
	}

	fields := map[string]interface{}{}
	if req.Text != nil {
		fields["text"] = *req.Text
	}
	if req.Completed != nil {
		fields["completed"] = *req.Completed
	}

	if err := h.todos.Update(c.Request().Context(), id, fields, caller); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Todo updated successfully"})
}

// Delete godoc
// @Summary Delete a todo
// @Tags todos
// @Produce json
// @Param id path string true "Todo ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/todos/{id} [delete]
func (h *TodoHandler) Delete(c echo.Context) error {
	id, err := parseRecordID(c, "todo")
	if err != nil {
		return respondError(c, err)
	}

	caller, err := h.scope.Caller(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.todos.Delete(c.Request().Context(), id, caller); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Todo deleted successfully"})
}
