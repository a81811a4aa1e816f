package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"minimalistnotes/internal/errors"
)

// Scope decides whose records a request may touch.
//
// Without enforcement the userId supplied by the caller is trusted as-is. With
// enforcement the session token subject is the only owner a request can name.
type Scope struct {
	enforce bool
}

// NewScope creates a Scope.
func NewScope(enforceOwnership bool) Scope {
	return Scope{enforce: enforceOwnership}
}

// Enforced reports whether ownership is checked against the session token.
func (s Scope) Enforced() bool {
	return s.enforce
}

// Owner resolves the owner a list or create request is about. A nil result
// means "no owner": every record on list, an unowned record on create.
func (s Scope) Owner(c echo.Context, requested *string) (*string, error) {
	if requested != nil && *requested == "" {
		requested = nil
	}
	if !s.enforce {
		return requested, nil
	}
	claims, ok := ClaimsFrom(c)
	if !ok {
		return nil, errors.ErrMissingToken
	}
	if requested != nil && *requested != claims.UserID {
		return nil, errors.ErrForbidden
	}
	owner := claims.UserID
	return &owner, nil
}

// Caller returns the user whose ownership is checked on update and delete,
// or nil when ownership is advisory.
func (s Scope) Caller(c echo.Context) (*string, error) {
	if !s.enforce {
		return nil, nil
	}
	claims, ok := ClaimsFrom(c)
	if !ok {
		return nil, errors.ErrMissingToken
	}
	caller := claims.UserID
	return &caller, nil
}

// queryOwner reads the optional ?userId= filter.
func queryOwner(c echo.Context) *string {
	if v := c.QueryParam("userId"); v != "" {
		return &v
	}
	return nil
}

// parseRecordID checks the :id path parameter.
func parseRecordID(c echo.Context, kind string) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", errors.NewValidationError("id", "invalid "+kind+" ID")
	}
	return id, nil
}

// MessageResponse acknowledges an update or delete.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
