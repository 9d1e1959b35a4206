package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kaddachi/tasktrack-be/internal/api/handlers"
	"github.com/kaddachi/tasktrack-be/internal/auth"
	"github.com/kaddachi/tasktrack-be/internal/services"
)

// NewRouter creates and configures a new Chi router. The route paths mirror
// the legacy API exactly, trailing slashes included.
func NewRouter(
	allowedOrigins []string,
	userService services.UserServiceProvider,
	tokenService services.TokenServiceProvider,
	taskService services.TaskServiceProvider,
	eventService services.EventServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(userService, tokenService, eventService)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService, eventService)

	// Credential endpoints, no access token required
	r.Post("/register/", authHandler.Register)
	r.Post("/login/", authHandler.Login)
	r.Post("/token/refresh/", authHandler.Refresh)

	// Everything else requires a valid bearer access token
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenService))

		r.Post("/logout/", authHandler.Logout)
		r.Get("/user/", userHandler.List)

		r.Get("/tasks/", taskHandler.List)
		r.Post("/tasks/", taskHandler.Create)

		// Legacy listing route; the path id is accepted but scoping is
		// always by the caller.
		r.Get("/{id}/tasks_detail/", taskHandler.List)

		r.Get("/{id}/tasks_detail_modif/", taskHandler.Get)
		r.Put("/{id}/tasks_detail_modif/", taskHandler.Update)
		r.Patch("/{id}/tasks_detail_modif/", taskHandler.Update)
		r.Delete("/{id}/tasks_detail_modif/", taskHandler.Delete)
	})

	return r
}
