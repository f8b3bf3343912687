package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/panoguess/bot/panoguess"
	"github.com/panoguess/bot/panoguess/database"
	"github.com/panoguess/bot/panoguess/database/repositories"
	"github.com/panoguess/bot/panoguess/logger"
	"github.com/panoguess/bot/panoguess/scheduler"
	"github.com/panoguess/bot/panoguess/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting PanoGuess backend",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := panoguess.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConfig := database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	}

	db, err := database.New(ctx, dbConfig)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		slog.Error("Database ping failed",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	app := panoguess.New(*cfg, version, commit)
	app.DB = db

	// Repositories
	app.UserRepository = repositories.NewUserRepository(db.BunDB())
	app.LocationRepository = repositories.NewLocationRepository(db.BunDB())
	app.GuessRepository = repositories.NewGuessRepository(db.BunDB())
	app.RatingRepository = repositories.NewRatingRepository(db.BunDB())
	app.FeedbackRepository = repositories.NewFeedbackRepository(db.BunDB())

	// External collaborators
	geocoder, err := services.NewGoogleGeocoder(cfg.Geocoding.APIKey)
	if err != nil {
		slog.Error("Failed to initialize geocoder", slog.Any("error", err))
		os.Exit(-1)
	}
	app.Geocoder = geocoder

	messenger, err := services.NewTelegramMessenger(cfg.Bot.Token)
	if err != nil {
		slog.Error("Failed to initialize telegram messenger", slog.Any("error", err))
		os.Exit(-1)
	}
	app.Messenger = messenger

	// Services
	app.UserService = services.NewUserService(app.UserRepository, cfg.Game.DailyMovesLimit)
	app.GuessService = services.NewGuessService(app.GuessRepository, app.UserRepository)
	app.LocationService = services.NewLocationService(app.LocationRepository, app.Geocoder)
	app.RatingService = services.NewRatingService(app.RatingRepository, app.UserRepository)
	app.FeedbackService = services.NewFeedbackService(app.FeedbackRepository, app.Messenger)

	// Background jobs
	jobs := scheduler.New(app.UserRepository, app.FeedbackService, cfg.Game.DailyMovesLimit)
	jobs.Start(ctx)

	slog.Info("PanoGuess backend is now running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-s

	slog.Info("Shutting down...")
}
