package handlers

import (
	"Lura/internal/config"
	"Lura/internal/middleware"
	"Lura/internal/model"
	"Lura/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// Services — зависимости хендлеров.
type Services struct {
	Auth      *service.AuthService
	MagicLink *service.MagicLinkService
	Tokens    *service.TokenIssuer
	Workspace *service.WorkspaceService
	Case      *service.CaseService
	CaseTag   *service.CaseTagService
	Tag       *service.TagService
	Document  *service.DocumentService
	Comment   *service.CommentService
	Calendar  *service.CalendarService
	Activity  *service.ActivityService
}

// NewHandler разводящий для хендлеров
func NewHandler(svc Services, logger *zap.SugaredLogger, cfg *config.Config) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithMetrics)
	r.Use(middleware.WithAuth(svc.Tokens, svc.Auth))

	// Handlers
	authHandler := NewAuthHandler(svc.Auth, svc.MagicLink, logger, cfg)
	workspaceHandler := NewWorkspaceHandler(svc.Workspace, logger)
	caseHandler := NewCaseHandler(svc.Case, svc.CaseTag, logger)
	tagHandler := NewTagHandler(svc.Tag, logger)
	documentHandler := NewDocumentHandler(svc.Document, svc.Comment, logger, cfg)
	calendarHandler := NewCalendarHandler(svc.Calendar, logger)
	activityHandler := NewActivityHandler(svc.Activity, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public auth routes
	r.Post("/auth/request-magic-link", authHandler.RequestMagicLink)
	r.Get("/auth/verify-magic-link", authHandler.VerifyMagicLink)
	r.Get("/auth/google/login", authHandler.GoogleLogin)
	r.Get("/auth/google/callback", authHandler.GoogleCallback)
	r.Post("/auth/refresh", authHandler.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Post("/auth/signout", authHandler.SignOut)
		r.With(middleware.RequireRole(model.UserRoleAdmin, model.UserRoleEditor, model.UserRoleUser)).
			Get("/auth/protected", authHandler.Protected)

		r.Route("/workspaces", func(r chi.Router) {
			r.Post("/", workspaceHandler.Create)
			r.Get("/", workspaceHandler.List)

			r.Route("/{workspaceId}", func(r chi.Router) {
				r.Get("/", workspaceHandler.Get)
				r.Patch("/", workspaceHandler.Update)
				r.Delete("/", workspaceHandler.Delete)
				r.Post("/users", workspaceHandler.AddUser)
				r.Get("/users", workspaceHandler.ListUsers)
				r.Delete("/users/{userId}", workspaceHandler.RemoveUser)

				r.Get("/tags", tagHandler.List)
				r.Post("/tags", tagHandler.Create)

				r.Route("/cases", func(r chi.Router) {
					r.Post("/", caseHandler.Create)
					r.Get("/", caseHandler.List)

					r.Route("/{caseId}", func(r chi.Router) {
						r.Get("/", caseHandler.Get)
						r.Patch("/", caseHandler.Update)
						r.Delete("/", caseHandler.Delete)

						r.Get("/tags", caseHandler.ListTags)
						r.Post("/tags/{tagId}", caseHandler.AddTag)
						r.Delete("/tags/{tagId}", caseHandler.RemoveTag)

						r.Route("/documents", func(r chi.Router) {
							r.Get("/", documentHandler.List)
							r.Post("/upload", documentHandler.Upload)
							r.Post("/bulk", documentHandler.Bulk)

							r.Route("/{documentId}", func(r chi.Router) {
								r.Get("/", documentHandler.Get)
								r.Get("/download", documentHandler.Download)
								r.Patch("/", documentHandler.Update)
								r.Delete("/", documentHandler.Delete)

								r.Post("/comments", documentHandler.CreateComment)
								r.Get("/comments", documentHandler.ListComments)
								r.Patch("/comments/{commentId}", documentHandler.UpdateComment)
								r.Delete("/comments/{commentId}", documentHandler.DeleteComment)
							})
						})
					})
				})
			})
		})

		r.Get("/calendar", calendarHandler.List)
		r.Post("/calendar", calendarHandler.Create)
		r.Put("/calendar/{eventId}", calendarHandler.Update)
		r.Delete("/calendar/{eventId}", calendarHandler.Delete)

		r.Get("/activity", activityHandler.Recent)
	})

	return &Handler{Router: r}
}

// userID достаёт id; маршрут уже защищён RequireUser.
func userID(r *http.Request) int64 {
	id, _ := middleware.GetUserIDFromContext(r.Context())
	return id
}
