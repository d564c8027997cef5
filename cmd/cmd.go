package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pawfeed-backend/internal/blob"
	"pawfeed-backend/internal/config"
	"pawfeed-backend/internal/contest"
	"pawfeed-backend/internal/feed"
	"pawfeed-backend/internal/handlers"
	"pawfeed-backend/internal/jobs"
	"pawfeed-backend/internal/middleware"
	"pawfeed-backend/internal/services"
	"pawfeed-backend/internal/store"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize adapters
	records := store.NewPostgresStore(db)
	if err := records.Setup(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up record store")
	}

	blobs, err := blob.NewS3Store(context.Background(), blob.S3Options{
		Region:    cfg.AWS.Region,
		Bucket:    cfg.AWS.S3Bucket,
		AccessKey: cfg.AWS.AccessKey,
		SecretKey: cfg.AWS.SecretKey,
		Endpoint:  cfg.AWS.Endpoint,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create blob store")
	}

	// Initialize feed core
	resolver := feed.NewResolver(records)
	assembler := feed.NewAssembler(records, resolver, feed.RandomJitter())
	rotation := contest.NewController(records, cfg.Contest.Window(), cfg.Contest.Themes)

	if err := rotation.Initialize(context.Background(), time.Now()); err != nil {
		log.Error().Err(err).Msg("Failed to initialize contest rotation")
	}

	// Initialize services
	userService := services.NewUserService(records, cfg.JWT.Secret)
	petService := services.NewPetService(records)
	photoService := services.NewPhotoService(records, blobs)
	connectionService := services.NewConnectionService(records)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	petHandler := handlers.NewPetHandler(petService)
	photoHandler := handlers.NewPhotoHandler(photoService)
	connectionHandler := handlers.NewConnectionHandler(connectionService)
	feedHandler := handlers.NewFeedHandler(assembler, rotation)

	// Start rotation scheduler
	scheduler := jobs.NewScheduler(rotation)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.CreateUser)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(userService))

			r.Get("/users/me", userHandler.GetProfile)
			r.Patch("/users/me", userHandler.UpdateProfile)

			r.Post("/pets", petHandler.CreatePet)
			r.Get("/pets", petHandler.ListPets)
			r.Patch("/pets/{pet_id}", petHandler.UpdatePet)
			r.Delete("/pets/{pet_id}", petHandler.DeletePet)

			r.Post("/pets/{pet_id}/photos", photoHandler.UploadPhoto)
			r.Get("/images/{pet_id}/{file}", photoHandler.GetImage)
			r.Delete("/photos/{photo_id}", photoHandler.DeletePhoto)
			r.Post("/photos/{photo_id}/vote", photoHandler.VotePhoto)
			r.Post("/photos/{photo_id}/submit", photoHandler.SubmitToContest)
			r.Post("/submissions/{submission_id}/vote", photoHandler.VoteSubmission)

			r.Post("/connections", connectionHandler.SendRequest)
			r.Post("/connections/{connection_id}/respond", connectionHandler.Respond)
			r.Get("/connections/pending", connectionHandler.ListPending)

			r.Get("/feed/friends", feedHandler.FriendsFeed)
			r.Get("/feed/global", feedHandler.GlobalFeed)
			r.Get("/feed/contest", feedHandler.ContestFeed)
			r.Get("/contests/active", feedHandler.ActiveContest)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	scheduler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
