package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bookcircle/bookcircle-api/internal/api/middleware"
)

// setupRouter builds the HTTP route tree. Auth endpoints are public;
// everything else requires a valid bearer token.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", app.authHandler.SignUp)
		r.Post("/auth/signin", app.authHandler.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(app.authMiddleware.Authenticate)

			r.Get("/user", app.userHandler.GetProfile)
			r.Put("/user", app.userHandler.UpdateDetails)

			r.Get("/posts", app.postHandler.GetPosts)
			r.Post("/book-review", app.postHandler.AddBookAndReview)

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", app.groupHandler.CreateGroup)
				r.Get("/", app.groupHandler.ListMyGroups)

				r.Route("/{groupID}", func(r chi.Router) {
					r.Get("/", app.groupHandler.GetGroup)
					r.Get("/members", app.groupHandler.ListMembers)

					r.Route("/requests", func(r chi.Router) {
						r.Get("/", app.groupHandler.ListRequests)
						r.Post("/", app.groupHandler.SendJoinRequest)
						r.Delete("/", app.groupHandler.WithdrawJoinRequest)
						r.Post("/{userID}/accept", app.groupHandler.AcceptJoinRequest)
						r.Post("/{userID}/reject", app.groupHandler.RejectJoinRequest)
					})
				})
			})
		})
	})

	return r
}
