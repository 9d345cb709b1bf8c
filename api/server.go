/*
server.go - Router and middleware setup

PURPOSE:
  Wires the handlers into a chi router with request logging, panic
  recovery and CORS. The browser frontend is served from a different
  origin, so CORS stays wide open and X-User-Id is an allowed header.

SEE ALSO:
  - handlers.go: the handlers this router dispatches to
  - cmd/server/main.go: server lifecycle around this router
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP router with all routes and middleware.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", UserIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)

	r.Route("/departments", func(r chi.Router) {
		r.Get("/", h.ListDepartments)
		r.Post("/", h.CreateDepartment)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Put("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
			r.Get("/vacation-dates", h.GetVacationDates)
			r.Route("/calendar/{year}/{month}", func(r chi.Router) {
				r.Get("/", h.GetUserCalendar)
				r.Put("/", h.UpdateUserCalendar)
				r.Put("/{date}/note", h.SetDayNote)
			})
		})
	})

	r.Route("/months/{year}/{month}", func(r chi.Router) {
		r.Get("/", h.GetMonth)
		r.Post("/lock", h.LockMonth)
		r.Post("/unlock", h.UnlockMonth)
		r.Put("/days/{date}/holiday", h.SetDayHoliday)
		r.Put("/days/{date}/workday", h.SetDayWorkday)
	})

	r.Get("/calendar/{year}/{month}", h.GetTeamCalendar)
	r.Get("/who-is-in-office", h.WhoIsInOffice)

	r.Get("/me/remote-counter", h.GetRemoteCounter)
	r.Get("/me/vacation-counter", h.GetVacationCounter)

	return r
}
