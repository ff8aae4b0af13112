package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ayush/research-workspace/backend/internal/ai"
	"github.com/ayush/research-workspace/backend/internal/auth"
	"github.com/ayush/research-workspace/backend/internal/config"
	"github.com/ayush/research-workspace/backend/internal/documents"
	"github.com/ayush/research-workspace/backend/internal/logger"
	"github.com/ayush/research-workspace/backend/internal/middleware"
	"github.com/ayush/research-workspace/backend/internal/ownership"
	"github.com/ayush/research-workspace/backend/internal/pdftext"
	"github.com/ayush/research-workspace/backend/internal/projects"
	"github.com/ayush/research-workspace/backend/internal/reports"
	"github.com/ayush/research-workspace/backend/internal/research"
	"github.com/ayush/research-workspace/backend/internal/respond"
	"github.com/ayush/research-workspace/backend/internal/store"
	"github.com/ayush/research-workspace/backend/internal/store/memory"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	zl, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	zl.Info("starting",
		zap.String("port", cfg.Port),
		zap.String("record_store", cfg.RecordStore),
		zap.String("gemini_model", cfg.GeminiModel),
		logger.Redact("gemini_api_key", cfg.GeminiAPIKey),
		logger.Redact("jwt_secret", cfg.JWTSecret),
	)

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		zl.Fatal("postgres connect", zap.Error(err))
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		zl.Fatal("postgres migrate", zap.Error(err))
	}

	// ── Records (MongoDB or in-memory) ───────────────────────
	var records store.RecordStore
	switch cfg.RecordStore {
	case "memory":
		zl.Warn("using in-memory record store; data is lost on restart")
		records = memory.New()
	default:
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			zl.Fatal("mongo connect", zap.Error(err))
		}
		defer mongoClient.Disconnect(ctx)
		mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			zl.Fatal("mongo indexes", zap.Error(err))
		}
		records = mongoStore
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		zl.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb)

	var tokens auth.Verifier
	if cfg.JWTSecret != "" {
		tokens = auth.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	}
	verifier := auth.NewChain(sessions, tokens)

	// ── MinIO ────────────────────────────────────────────────
	minioStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		zl.Fatal("minio connect", zap.Error(err))
	}

	// ── Gemini ───────────────────────────────────────────────
	gen := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, zl.Named("gemini"))

	// ── Services & handlers ──────────────────────────────────
	guard := ownership.NewGuard(records)

	projectSvc := projects.NewService(records, minioStore, guard, zl.Named("projects"))
	researchSvc := research.NewService(records, guard, gen, zl.Named("research"))
	documentSvc := documents.NewService(records, minioStore, guard, gen, pdftext.New(),
		documents.Options{UploadDir: cfg.UploadDir, MaxBytes: cfg.MaxUploadBytes}, zl.Named("documents"))
	reportSvc := reports.NewService(records, guard, gen, zl.Named("reports"))

	authHandler := auth.NewHandler(pgStore, sessions, projectSvc, zl.Named("auth"))
	projectHandler := projects.NewHandler(projectSvc, zl.Named("projects"))
	researchHandler := research.NewHandler(researchSvc, zl.Named("research"))
	documentHandler := documents.NewHandler(documentSvc, zl.Named("documents"))
	reportHandler := reports.NewHandler(reportSvc, zl.Named("reports"))

	requireAuth := middleware.RequireAuth(verifier, zl.Named("auth"))

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(zl.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
	r.Get("/health", health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
				r.Get("/verify", authHandler.Verify)
				r.Delete("/delete-account", authHandler.DeleteAccount)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Route("/projects", projectHandler.Routes)
			r.Route("/research", researchHandler.Routes)
			r.Route("/documents", documentHandler.Routes)
			r.Route("/reports", reportHandler.Routes)
		})
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		zl.Info("backend listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
