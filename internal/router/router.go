package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"minimalistnotes/internal/auth"
	"minimalistnotes/internal/config"
	apperrors "minimalistnotes/internal/errors"
	"minimalistnotes/internal/handler"
	"minimalistnotes/internal/logger"
	"minimalistnotes/internal/validation"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	noteHandler *handler.NoteHandler,
	todoHandler *handler.TodoHandler,
	timerHandler *handler.TimerHandler,
	systemHandler *handler.SystemHandler,
) {
	e.HTTPErrorHandler = ErrorHandler
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig()))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.Secure())

	// Add validator
	e.Validator = &CustomValidator{validator: validation.New()}

	requireToken := JWTMiddleware(jwtService)

	e.GET("/", systemHandler.Root)
	e.GET("/health", systemHandler.Health)
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authGroup := e.Group("/auth")
	authGroup.POST("/signin", authHandler.SignIn)
	authGroup.POST("/google", authHandler.GoogleSignIn)
	authGroup.POST("/verify", authHandler.Verify, requireToken)

	// Record routes trust the caller's userId unless ownership is enforced.
	api := e.Group("/api")
	if cfg.EnforceOwnership {
		api.Use(requireToken)
	}

	api.GET("/notes", noteHandler.List)
	api.POST("/notes", noteHandler.Create)
	api.PUT("/notes/:id", noteHandler.Update)
	api.DELETE("/notes/:id", noteHandler.Delete)

	api.GET("/todos", todoHandler.List)
	api.POST("/todos", todoHandler.Create)
	api.PUT("/todos/:id", todoHandler.Update)
	api.DELETE("/todos/:id", todoHandler.Delete)

	api.GET("/timers", timerHandler.List)
	api.POST("/timers", timerHandler.Create)
	api.PUT("/timers/:id", timerHandler.Update)
	api.DELETE("/timers/:id", timerHandler.Delete)
}

// JWTMiddleware requires a valid bearer session token and stores its claims
// under handler.ClaimsContextKey.
func JWTMiddleware(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  handler.ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.Verify(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var extractErr *echojwt.TokenExtractionError
			var parseErr *echojwt.TokenParsingError
			switch {
			case errors.As(err, &extractErr), errors.Is(err, echojwt.ErrJWTMissing):
				err = apperrors.ErrMissingToken
			case errors.As(err, &parseErr):
				err = parseErr.Err
			}
			httpErr := apperrors.MapErrorToHTTP(err)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}

// ErrorHandler renders every error with the standard error body.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var status int
	var body apperrors.ErrorResponse

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch msg := he.Message.(type) {
		case apperrors.ErrorResponse:
			body = msg
		case string:
			body = apperrors.ErrorResponse{Message: msg, Code: codeForStatus(status)}
		default:
			body = apperrors.ErrorResponse{Message: http.StatusText(status), Code: codeForStatus(status)}
		}
		if status == http.StatusNotFound && body.Code == codeForStatus(http.StatusNotFound) {
			body.Message = "Route not found"
		}
	} else {
		httpErr := apperrors.MapErrorToHTTP(err)
		if httpErr.StatusCode == http.StatusInternalServerError {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}
		status = httpErr.StatusCode
		body = httpErr.ToErrorResponse()
	}
	body.Success = false

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Warn("write error response", zap.Error(err))
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperrors.CodeValidation
	case http.StatusInternalServerError:
		return apperrors.CodeInternal
	}
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

func requestLoggerConfig() middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return validation.Struct(cv.validator, i)
}
