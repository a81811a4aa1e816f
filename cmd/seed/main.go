package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"minimalistnotes/internal/auth"
	"minimalistnotes/internal/config"
	"minimalistnotes/internal/logger"
	"minimalistnotes/internal/model"
	"minimalistnotes/internal/service"
	"minimalistnotes/internal/store"
)

func main() {
	email := flag.String("email", "demo@example.com", "demo account email")
	password := flag.String("password", "demo-password", "demo account password")
	flag.Parse()

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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = st.Close(context.Background()) }()
	logger.Info("Connected to database", zap.String("driver", cfg.StoreDriver))

	authService := service.NewAuthService(
		st.Users,
		service.NewUserService(st.Users, nil),
		auth.NewPasswordHasher(cfg.BcryptCost),
		auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL),
		nil,
	)

	result, err := authService.SignIn(ctx, *email, *password)
	if err != nil {
		logger.Fatal("Failed to sign in demo account", zap.String("email", *email), zap.Error(err))
	}
	if !result.IsNewUser {
		logger.Info("Demo account already exists, skipping records", zap.String("user_id", result.User.ID))
		fmt.Println(result.Token)
		return
	}

	owner := result.User.ID
	if err := seedRecords(ctx, st, &owner); err != nil {
		logger.Fatal("Failed to seed records", zap.Error(err))
	}

	logger.Info("Seed completed",
		zap.String("user_id", owner),
		zap.String("email", result.User.Email))
	// The token lets scripts call protected routes right away.
	fmt.Println(result.Token)
}

func seedRecords(ctx context.Context, st *store.Stores, owner *string) error {
	notes := service.NewRecordService(st.Notes, "note")
	todos := service.NewRecordService(st.Todos, "todo")
	timers := service.NewRecordService(st.Timers, "timer")

	sampleNotes := []*model.Note{
		{Title: "Welcome", Content: "Notes are saved per account.", UserID: owner},
		{Title: "Note", Content: "Titles default to \"Note\".", UserID: owner},
	}
	for _, n := range sampleNotes {
		if _, err := notes.Create(ctx, n); err != nil {
			return err
		}
	}

	sampleTodos := []*model.Todo{
		{Text: "Try signing in with Google", UserID: owner},
		{Text: "Create a first note", Completed: true, UserID: owner},
	}
	for _, td := range sampleTodos {
		if _, err := todos.Create(ctx, td); err != nil {
			return err
		}
	}

	if _, err := timers.Create(ctx, &model.Timer{Title: "Focus", ElapsedTime: 1500, UserID: owner}); err != nil {
		return err
	}

	logger.Info("Seeded records",
		zap.Int("notes", len(sampleNotes)),
		zap.Int("todos", len(sampleTodos)),
		zap.Int("timers", 1))
	return nil
}
