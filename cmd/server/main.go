package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/dailymoji-backend/internal/config"
	"github.com/AnshRaj112/dailymoji-backend/internal/database"
	"github.com/AnshRaj112/dailymoji-backend/internal/handlers"
	"github.com/AnshRaj112/dailymoji-backend/internal/middleware"
	"github.com/AnshRaj112/dailymoji-backend/internal/routes"
	"github.com/AnshRaj112/dailymoji-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AuthProviderSecret == "" {
		log.Println("⚠️  WARNING: AUTH_PROVIDER_SECRET not set. Sign-in will be rejected.")
	}

	if cfg.NeedsRedis() {
		log.Printf("Connecting to Redis...")
		if err := database.ConnectRedis(cfg.RedisURI); err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer database.DisconnectRedis()
	}

	store := openEntryStore(ctx, cfg)
	defer database.Disconnect()
	defer database.DisconnectPostgres()

	var feed services.ChangeFeed
	if cfg.FeedBackend == "redis" {
		redisFeed := services.NewRedisFeed(database.RedisClient)
		redisFeed.Start(ctx)
		feed = redisFeed
	} else {
		feed = services.NewLocalFeed()
		log.Println("Using in-process entry feed (single instance only)")
	}

	var sessions services.SessionStore
	if cfg.SessionBackend == "redis" {
		sessions = services.NewRedisSessionStore(database.RedisClient)
	} else {
		sessions = services.NewMemorySessionStore(nil)
		log.Println("Using in-memory sessions; they will not survive a restart")
	}

	subscriptions := services.NewSubscriptionRegistry()
	defer subscriptions.Close()

	h := &handlers.Handler{
		Entries:       services.NewEntryController(store, feed, services.NewIDGenerator(cfg.EntryIDMode, nil)),
		Sessions:      sessions,
		Identity:      services.NewIdentityVerifier(cfg.AuthProviderSecret, cfg.AuthProviderIssuer),
		Subscriptions: subscriptions,
		Props:         services.NewPagePropsClient(cfg.Host),
		LoginURL:      cfg.LoginURL,
		FavoriteColor: cfg.FavoriteColor,
	}

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP rate limiting)")
	}
	r.Use(middleware.EntryWriteRateLimit)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		subscriptions.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
	}()

	log.Printf("🚀 Dailymoji backend running on :%s (store=%s, feed=%s, sessions=%s, ids=%s)",
		cfg.Port, cfg.StoreBackend, cfg.FeedBackend, cfg.SessionBackend, cfg.EntryIDMode)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Failed to start server:", err)
	}
}

// openEntryStore connects the configured backend and prepares its schema.
func openEntryStore(ctx context.Context, cfg *config.Config) services.EntryStore {
	switch cfg.StoreBackend {
	case "postgres":
		log.Printf("Connecting to PostgreSQL...")
		if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
			log.Fatal("Failed to connect to PostgreSQL:", err)
		}
		return services.NewPostgresEntryStore(database.PostgresDB)

	case "memory":
		log.Println("Using in-memory entry store; entries will not survive a restart")
		return services.NewMemoryEntryStore(nil)

	default:
		log.Printf("Connecting to MongoDB...")
		if err := database.Connect(cfg.MongoURI); err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		store := services.NewMongoEntryStore(database.DB)

		indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := store.EnsureIndexes(indexCtx); err != nil {
			log.Printf("⚠️  WARNING: failed to ensure MongoDB entry indexes: %v", err)
		} else {
			log.Println("✅ MongoDB entry indexes ensured")
		}
		return store
	}
}
