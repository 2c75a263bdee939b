package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventrsvp/internal/delivery/http/controllers"
	"eventrsvp/internal/delivery/http/middleware"
)

// NewRouter initializes the HTTP router with all application routes.
// Admin routes are wrapped with the bearer-token check.
func NewRouter(
	registration *controllers.RegistrationController,
	admin *controllers.AdminController,
	adminSecret string,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAdmin := middleware.RequireAdmin(adminSecret)

	mux.HandleFunc("POST /register", registration.Register)

	mux.HandleFunc("GET /admin/registrations", requireAdmin(admin.ListRegistrations))
	mux.HandleFunc("POST /admin/resend", requireAdmin(admin.Resend))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
