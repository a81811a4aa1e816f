package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"minimalistnotes/internal/auth"
	"minimalistnotes/internal/errors"
	"minimalistnotes/internal/logger"
	"minimalistnotes/internal/model"
	"minimalistnotes/internal/service"
)

// ClaimsContextKey is where the JWT middleware stores verified *auth.Claims.
const ClaimsContextKey = "claims"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignInRequest represents an email/password sign-in request.
// Validation happens in the service so that it applies to every caller.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleSignInRequest carries a Google ID token.
type GoogleSignInRequest struct {
	IDToken string `json:"idToken"`
}

// SignInResponse represents a successful sign-in.
type SignInResponse struct {
	Success   bool        `json:"success"`
	IsNewUser bool        `json:"isNewUser"`
	Token     string      `json:"token"`
	User      *model.User `json:"user"`
}

// UserResponse wraps the resolved user of a session token.
type UserResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
}

// SignIn godoc
// @Summary Sign in with email and password
// @Description Registers the email on first use. An email registered with Google is refused with 409.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Credentials"
// @Success 200 {object} SignInResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, invalidBody())
	}

	result, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, SignInResponse{
		Success:   true,
		IsNewUser: result.IsNewUser,
		Token:     result.Token,
		User:      result.User,
	})
}

// GoogleSignIn godoc
// @Summary Sign in with a Google ID token
// @Description Registers the email on first use. An email registered with a password is refused with 409.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleSignInRequest true "Google credential"
// @Success 200 {object} SignInResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/google [post]
func (h *AuthHandler) GoogleSignIn(c echo.Context) error {
	var req GoogleSignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, invalidBody())
	}

	result, err := h.authService.SignInWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, SignInResponse{
		Success:   true,
		IsNewUser: result.IsNewUser,
		Token:     result.Token,
		User:      result.User,
	})
}

// Verify godoc
// @Summary Resolve the user of a session token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/verify [post]
func (h *AuthHandler) Verify(c echo.Context) error {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return respondError(c, errors.ErrMissingToken)
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, UserResponse{Success: true, User: user})
}

// ClaimsFrom returns the claims the JWT middleware attached to the request.
func ClaimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// respondError maps err onto the standard error body. Internal failures are
// logged with their cause and reported opaquely.
func respondError(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err),
		)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func invalidBody() errors.ErrorResponse {
	return errors.ErrorResponse{Message: "invalid request body", Code: errors.CodeValidation}
}
