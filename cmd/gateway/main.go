package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/quizforge/quizforge/internal/api/http"
	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/config"
	"github.com/quizforge/quizforge/internal/db"
	"github.com/quizforge/quizforge/internal/genai"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/rbac"
	"github.com/quizforge/quizforge/internal/storage"
	syncx "github.com/quizforge/quizforge/internal/sync"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- Durable storage ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var records storage.RecordStore
	var events *syncx.EventRepo
	if cfg.DBDriver == "memory" {
		records = storage.NewMemRecords()
	} else {
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		records = storage.NewSQLRecords(dbh)
		events = syncx.NewEventRepo(dbh)
	}

	// --- Core services ---
	roster, err := auth.NewRoster(auth.DefaultSeeds())
	if err != nil {
		log.Fatalf("roster: %v", err)
	}
	sessions := auth.NewSessionManager(roster, records)
	tokens := auth.NewTokenService(cfg.AuthSecret)

	classes := quiz.NewClassRepo(records)
	ledger := quiz.NewAttemptLedger(records, sessions)
	gen := genai.NewClient(cfg.GeneratorURL)

	blobs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", api.LoginHandler(sessions, tokens))
	r.Post("/auth/logout", api.LogoutHandler(sessions))

	// navigation works for anonymous and authenticated clients alike
	r.With(auth.OptionalJWT(tokens)).Get("/nav/{target}", api.NavHandler())

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(tokens))

		// Instructor: author classes and quizzes
		pr.With(rbac.Require("class:create")).
			Post("/classes", api.CreateClassHandler(classes, events))
		pr.With(rbac.Require("class:delete")).
			Delete("/classes/{classID}", api.DeleteClassHandler(classes, events))
		pr.With(rbac.Require("quiz:ingest")).
			Post("/classes/{classID}/quizzes", api.IngestQuizHandler(classes))
		pr.With(rbac.Require("quiz:ingest")).
			Post("/classes/{classID}/quizzes/generate", api.GenerateFromFileHandler(classes, gen, blobs))
		pr.With(rbac.Require("quiz:ingest")).
			Post("/classes/{classID}/quizzes/generate-youtube", api.GenerateFromYouTubeHandler(classes, gen))

		// Both roles: browse
		pr.With(rbac.Require("class:view")).
			Get("/classes", api.ListClassesHandler(classes))
		pr.With(rbac.Require("class:view")).
			Get("/classes/{classID}", api.GetClassHandler(classes))
		pr.With(rbac.Require("class:view")).
			Get("/classes/{classID}/quizzes/{quizKey}", api.GetQuizHandler(classes))

		// Learner flow
		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", api.SubmitAttemptHandler(classes, ledger, events))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(ledger))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/summary", api.AttemptSummaryHandler(ledger))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, generator=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.GeneratorURL)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
