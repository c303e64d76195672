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

	api "github.com/studyhall/studyhall/internal/api/http"
	account "github.com/studyhall/studyhall/internal/auth"
	authmw "github.com/studyhall/studyhall/internal/auth/middleware"
	"github.com/studyhall/studyhall/internal/catalog"
	"github.com/studyhall/studyhall/internal/config"
	"github.com/studyhall/studyhall/internal/db"
	"github.com/studyhall/studyhall/internal/progress"
	"github.com/studyhall/studyhall/internal/quiz"
	"github.com/studyhall/studyhall/internal/rbac"
	"github.com/studyhall/studyhall/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env")
	}
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	catalogStore := catalog.NewSQLStore(dbh)
	attemptStore := quiz.NewSQLStore(dbh)
	quizSvc := quiz.NewService(catalogStore, attemptStore)
	progSvc := progress.NewService(dbh)
	accounts := account.NewAccounts(dbh)
	authSvc := authmw.NewAuthService(cfg.JWTSecret)

	blobs, err := storage.NewFSStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public auth surface
	r.Post("/auth/login", authmw.LoginHandler(authSvc, accounts))
	if cfg.EnableRegistration {
		r.Post("/auth/register", authmw.RegisterHandler(accounts))
	}

	// Authenticated surface (JWT → subject+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))

		pr.With(rbac.Require("catalog:view")).Get("/dashboard", api.DashboardHandler(catalogStore, progSvc, quizSvc))
		pr.With(rbac.Require("catalog:view")).Get("/search", api.SearchHandler(catalogStore))

		pr.With(rbac.Require("catalog:view")).Get("/disciplines", api.ListDisciplinesHandler(catalogStore))
		pr.With(rbac.Require("catalog:view")).Get("/disciplines/{disciplineID}", api.GetDisciplineHandler(catalogStore))
		pr.With(rbac.Require("catalog:view")).Get("/modules/{moduleID}", api.GetModuleHandler(catalogStore, quizSvc))

		pr.With(rbac.Require("catalog:view")).Get("/videos/{videoID}", api.WatchVideoHandler(catalogStore, progSvc))
		pr.With(rbac.Require("progress:toggle")).Post("/videos/{videoID}/progress", api.ToggleProgressHandler(progSvc))

		pr.With(rbac.Require("catalog:view")).Get("/materials/{materialID}", api.ViewMaterialHandler(catalogStore))
		pr.With(rbac.Require("material:download")).Get("/materials/{materialID}/download", api.DownloadMaterialHandler(catalogStore, blobs))

		// Quiz attempt flow
		pr.With(rbac.Require("quiz:attempt")).Get("/quizzes/{quizID}", api.PreStartHandler(quizSvc, catalogStore))
		pr.With(rbac.Require("quiz:attempt")).Get("/quizzes/{quizID}/summary", api.QuizSummaryHandler(quizSvc))
		pr.With(rbac.Require("quiz:attempt")).Post("/quizzes/{quizID}/attempts", api.StartAttemptHandler(quizSvc))
		pr.With(rbac.Require("quiz:attempt")).Post("/quizzes/attempts/{attemptID}/submit", api.SubmitAttemptHandler(quizSvc))
		pr.With(rbac.Require("quiz:attempt")).Get("/quizzes/attempts/{attemptID}/result", api.GetResultHandler(quizSvc))
		pr.With(rbac.Require("quiz:attempt")).Get("/quizzes/history", api.HistoryHandler(quizSvc))

		pr.With(rbac.Require("user:change_password")).Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// Admin surface
		pr.With(rbac.Require("users:manage")).Get("/admin/users", api.ListUsersHandler(accounts))
		pr.With(rbac.Require("users:manage")).Post("/admin/users/{userID}/approve", api.ApproveUserHandler(accounts))
		pr.With(rbac.Require("users:manage")).Post("/admin/users/{userID}/active", api.SetUserActiveHandler(accounts))

		pr.With(rbac.Require("catalog:edit")).Post("/admin/disciplines", api.CreateDisciplineHandler(catalogStore))
		pr.With(rbac.Require("catalog:edit")).Put("/admin/disciplines/{disciplineID}", api.UpdateDisciplineHandler(catalogStore))
		pr.With(rbac.Require("catalog:edit")).Delete("/admin/disciplines/{disciplineID}", api.DeleteDisciplineHandler(catalogStore))

		pr.With(rbac.Require("catalog:edit")).Post("/admin/modules", api.CreateModuleHandler(catalogStore))
		pr.With(rbac.Require("catalog:edit")).Put("/admin/modules/{moduleID}", api.UpdateModuleHandler(catalogStore))
		pr.With(rbac.Require("catalog:edit")).Delete("/admin/modules/{moduleID}", api.DeleteModuleHandler(catalogStore))

		pr.With(rbac.Require("catalog:edit")).Post("/admin/videos", api.CreateVideoHandler(catalogStore))
		pr.With(rbac.Require("catalog:edit")).Put("/admin/videos/{videoID}", api.UpdateVideoHandler(catalogStore))
		pr.With(rbac.Require("catalog:edit")).Delete("/admin/videos/{videoID}", api.DeleteVideoHandler(catalogStore))

		pr.With(rbac.Require("catalog:edit")).Post("/admin/materials", api.UploadMaterialHandler(catalogStore, blobs))
		pr.With(rbac.Require("catalog:edit")).Delete("/admin/materials/{materialID}", api.DeleteMaterialHandler(catalogStore, blobs))

		pr.With(rbac.Require("catalog:edit")).Post("/admin/quizzes", api.CreateQuizHandler(catalogStore))
		pr.With(rbac.Require("catalog:edit")).Put("/admin/quizzes/{quizID}", api.UpdateQuizHandler(catalogStore))
		pr.With(rbac.Require("catalog:edit")).Delete("/admin/quizzes/{quizID}", api.DeleteQuizHandler(catalogStore))
		pr.With(rbac.Require("catalog:edit")).Get("/admin/quizzes/{quizID}/questions", api.ListQuestionsHandler(catalogStore))
		pr.With(rbac.Require("catalog:edit")).Post("/admin/quizzes/{quizID}/questions", api.CreateQuestionHandler(catalogStore))
		pr.With(rbac.Require("catalog:edit")).Put("/admin/questions/{questionID}", api.UpdateQuestionHandler(catalogStore))
		pr.With(rbac.Require("catalog:edit")).Delete("/admin/questions/{questionID}", api.DeleteQuestionHandler(catalogStore))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
