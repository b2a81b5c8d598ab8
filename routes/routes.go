package routes

import (
	"github.com/courtside/matchday/handlers"
	"github.com/courtside/matchday/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	scheduleHandler *handlers.ScheduleHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/schedule", func(r chi.Router) {
		r.Get("/matches", scheduleHandler.ListMatches)
		r.Get("/standings", scheduleHandler.Standings)

		// Generation rewrites the whole schedule; organizers only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize("organizer"))

			r.Post("/pool-play", scheduleHandler.GeneratePoolPlay)
			r.Post("/brackets", scheduleHandler.GenerateBrackets)
		})
	})

	router.Route("/matches/{id}", func(r chi.Router) {
		r.Post("/start", matchHandler.Start)
		r.Post("/points", matchHandler.ApplyPoint)
		r.Put("/score", matchHandler.ApplyManualScore)
	})

	router.Get("/ws/{room}", webSocketHandler.Serve)
}
