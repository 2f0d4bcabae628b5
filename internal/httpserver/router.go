package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mockapi/internal/audit"
	"mockapi/internal/auth"
	"mockapi/internal/httpserver/handlers"
	"mockapi/internal/mockserve"
	"mockapi/internal/registry"
)

// NewRouter wires the management plane under /v1 and hands every other path
// to the mock dispatcher. /v1 and /healthz are the reserved prefixes; a
// registered endpoint whose path collides with them is unreachable.
func NewRouter(db *gorm.DB, lg *zap.SugaredLogger) http.Handler {
	rec := audit.NewRecorder(db, lg)
	store := registry.NewStore(db, rec)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	r.Post("/v1/auth/login", handlers.Login(db, rec, lg))
	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(db))
		protected.Get("/v1/me", handlers.Me(db, lg))
		protected.Post("/v1/auth/logout", handlers.Logout(db, rec))
		protected.Post("/v1/auth/password", handlers.ChangePassword(db, lg))

		protected.Get("/v1/endpoints", handlers.ListEndpoints(store, lg))
		protected.Post("/v1/endpoints", handlers.CreateEndpoint(store, lg))
		protected.Get("/v1/endpoints/{id}", handlers.GetEndpoint(store, lg))
		protected.Patch("/v1/endpoints/{id}", handlers.UpdateEndpoint(store, lg))
		protected.Delete("/v1/endpoints/{id}", handlers.DeleteEndpoint(store, lg))
		protected.Post("/v1/endpoints/{id}/handlers", handlers.CreateHandler(store, lg))
		protected.Patch("/v1/handlers/{id}", handlers.UpdateHandler(store, lg))
		protected.Delete("/v1/handlers/{id}", handlers.DeleteHandler(store, lg))

		protected.Get("/v1/auth-profiles", handlers.ListAuthProfiles(store, lg))
		protected.Post("/v1/auth-profiles", handlers.CreateAuthProfile(store, lg))
		protected.Get("/v1/auth-profiles/{id}", handlers.GetAuthProfile(store, lg))
		protected.Patch("/v1/auth-profiles/{id}", handlers.UpdateAuthProfile(store, lg))
		protected.Delete("/v1/auth-profiles/{id}", handlers.DeleteAuthProfile(store, lg))

		protected.Get("/v1/logs", handlers.Logs(db, lg))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole(auth.AdminRole))
			admin.Get("/v1/admin/users", handlers.ListUsers(db, lg))
			admin.Post("/v1/admin/users", handlers.CreateUser(db, rec, lg))
			admin.Patch("/v1/admin/users/{id}", handlers.UpdateUser(db, rec, lg))
			admin.Delete("/v1/admin/users/{id}", handlers.DeleteUser(db, rec, lg))
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Handle("/*", mockserve.NewDispatcher(store, rec, lg))
	return r
}
