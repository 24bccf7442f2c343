package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/lbeckmann/team-registration/handlers"
	"github.com/lbeckmann/team-registration/middleware"
)

// SetupRoutes wires every handler into the router. All mutating routes sit
// behind the JWT middleware; captain-only rules are enforced again in the
// service layer, the UI gating is a convenience only.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	eventHandler *handlers.EventHandler,
	teamHandler *handlers.TeamHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/google/login", authHandler.GoogleLogin)
		r.Get("/google/callback", authHandler.GoogleCallback)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/session", authHandler.Session)
			r.Post("/logout", authHandler.Logout)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/me", userHandler.GetMe)
		r.Put("/me/avatar", userHandler.UploadAvatar)
	})

	router.Route("/events", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", eventHandler.ListEvents)
		r.Post("/", eventHandler.CreateEvent)
		r.Get("/{eventID}", eventHandler.GetEventByID)
		r.Get("/{eventID}/teams", teamHandler.ListTeams)
		r.Post("/{eventID}/teams", teamHandler.CreateTeam)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/{teamID}", teamHandler.GetTeamByID)
		r.Put("/{teamID}", teamHandler.UpdateTeam)
		r.Delete("/{teamID}", teamHandler.DeleteTeam)
	})

	// Websocket auth runs off a query-parameter token inside the handler.
	router.Get("/ws", webSocketHandler.ServeWs)
}
