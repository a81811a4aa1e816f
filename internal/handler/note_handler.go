package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"minimalistnotes/internal/model"
	"minimalistnotes/internal/service"
)

const defaultNoteTitle = "Note"

// NoteHandler handles note endpoints.
type NoteHandler struct {
	notes service.RecordService[*model.Note]
	scope Scope
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(notes service.RecordService[*model.Note], scope Scope) *NoteHandler {
	return &NoteHandler{notes: notes, scope: scope}
}

// CreateNoteRequest represents a note creation request.
type CreateNoteRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content" validate:"required"`
	UserID  *string `json:"userId"`
}

// UpdateNoteRequest represents a partial note update. Empty strings are ignored.
type UpdateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// List godoc
// @Summary List notes
// @Tags notes
// @Produce json
// @Param userId query string false "Owner filter"
// @Success 200 {array} model.Note
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/notes [get]
func (h *NoteHandler) List(c echo.Context) error {
	owner, err := h.scope.Owner(c, queryOwner(c))
	if err != nil {
		return respondError(c, err)
	}

	notes, err := h.notes.List(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, notes)
}

// Create godoc
// @Summary Create a note
// @Tags notes
// @Accept json
// @Produce json
// @Param request body CreateNoteRequest true "Note"
// @Success 201 {object} model.Note
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/notes [post]
func (h *NoteHandler) Create(c echo.Context) error {
	var req CreateNoteRequest
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

	title := req.Title
	if title == "" {
		title = defaultNoteTitle
	}

	note, err := h.notes.Create(c.Request().Context(), &model.Note{
		Title:   title,
		Content: req.Content,
		UserID:  owner,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, note)
}

// Update godoc
// @Summary Update a note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body UpdateNoteRequest true "Fields to change"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/notes/{id} [put]
func (h *NoteHandler) Update(c echo.Context) error {
	id, err := parseRecordID(c, "note")
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, invalidBody())
	}

	caller, err := h.scope.Caller(c)
	if err != nil {
		return respondError(c, err)
	}

	fields := map[string]interface{}{}
	if req.Title != nil && *req.Title != "" {
		fields["title"] = *req.Title
	}
	if req.Content != nil && *req.Content != "" {
		fields["content"] = *req.Content
	}

	if err := h.notes.Update(c.Request().Context(), id, fields, caller); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Note updated successfully"})
}

// Delete godoc
// @Summary Delete a note
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c echo.Context) error {
	id, err := parseRecordID(c, "note")
	if err != nil {
		return respondError(c, err)
	}

	caller, err := h.scope.Caller(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.notes.Delete(c.Request().Context(), id, caller); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Note deleted successfully"})
}
