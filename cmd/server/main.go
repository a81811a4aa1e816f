package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"minimalistnotes/docs" // swagger docs
	"minimalistnotes/internal/auth"
	"minimalistnotes/internal/cache"
	"minimalistnotes/internal/config"
	"minimalistnotes/internal/handler"
	"minimalistnotes/internal/logger"
	"minimalistnotes/internal/router"
	"minimalistnotes/internal/service"
	"minimalistnotes/internal/store"
)

const shutdownTimeout = 10 * time.Second

// @title Minimalist Notes API
// @version 1.0
// @description Notes, todos and timers with password or Google sign-in and stateless session tokens.
// @host localhost:3000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("database init", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	var google auth.IdentityVerifier
	if cfg.GoogleClientID != "" {
		google = auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, Google sign-in is disabled")
	}

	// Initialize services
	userService := service.NewUserService(st.Users, cacheClient)
	authService := service.NewAuthService(st.Users, userService, hasher, jwtService, google)
	noteService := service.NewRecordService(st.Notes, "note")
	todoService := service.NewRecordService(st.Todos, "todo")
	timerService := service.NewRecordService(st.Timers, "timer")

	// Initialize handlers
	scope := handler.NewScope(cfg.EnforceOwnership)
	authHandler := handler.NewAuthHandler(authService)
	noteHandler := handler.NewNoteHandler(noteService, scope)
	todoHandler := handler.NewTodoHandler(todoService, scope)
	timerHandler := handler.NewTimerHandler(timerService, scope)
	systemHandler := handler.NewSystemHandler(st.Ping, cacheClient.Ping)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, jwtService, authHandler, noteHandler, todoHandler, timerHandler, systemHandler)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info("swagger documentation available",
		zap.String("url", swaggerURL(cfg.SwaggerHost, cfg.ServerPort)))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server listening", zap.String("addr", addr), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.Error("close store", zap.Error(err))
	}
	if err := cacheClient.Close(); err != nil {
		logger.Error("close cache", zap.Error(err))
	}
}

// swaggerURL builds the docs URL; host may already carry a scheme.
func swaggerURL(host, port string) string {
	switch {
	case host == "":
		return "http://localhost:" + port + "/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}
