package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/prediction-league/handlers"
	"github.com/Dosada05/prediction-league/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	fixtureHandler *handlers.FixtureHandler,
	predictionHandler *handlers.PredictionHandler,
	chipHandler *handlers.ChipHandler,
	leagueHandler *handlers.LeagueHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(opts.JWTSecret)

	router.Route("/api/v1", func(r chi.Router) {
		// JSON-эндпоинты ограничены по времени; websocket живет долго и идет отдельно
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(30 * time.Second))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})

			// Публичные маршруты
			r.Get("/fixtures", fixtureHandler.ListFixtures)
			r.Get("/fixtures/{fixtureID}", fixtureHandler.GetFixture)
			r.Get("/gameweeks/current", fixtureHandler.CurrentGameweek)
			r.Get("/chips", chipHandler.ListCatalog)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)

				r.Route("/users/me", func(r chi.Router) {
					r.Get("/", userHandler.GetMe)
					r.Put("/avatar", userHandler.UploadAvatar)
				})

				r.Route("/predictions", func(r chi.Router) {
					r.Get("/", predictionHandler.ListPredictions)
					r.Post("/", predictionHandler.SubmitPrediction)
					r.Get("/{predictionID}", predictionHandler.GetPrediction)
					r.Put("/{predictionID}", predictionHandler.UpdatePrediction)
				})

				r.Get("/chips/active", chipHandler.ListActive)
				r.Route("/gameweeks/{gameweek}", func(r chi.Router) {
					r.Post("/chips", chipHandler.Activate)
					r.Delete("/chips/{chipID}", chipHandler.Deactivate)
					r.Get("/chip-validation", chipHandler.Validation)
					r.Post("/chip-validation/dismiss", chipHandler.Dismiss)
					r.Post("/chip-sync", chipHandler.Sync)
				})

				r.Route("/leagues", func(r chi.Router) {
					r.Get("/", leagueHandler.ListLeagues)
					r.Post("/", leagueHandler.CreateLeague)
					r.Post("/join", leagueHandler.JoinLeague)
					r.Get("/{leagueID}/standings", leagueHandler.Standings)
				})

				// Только для админов
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/fixtures", fixtureHandler.CreateFixture)
					r.Put("/fixtures/{fixtureID}/result", fixtureHandler.RecordResult)
				})
			})
		})

		r.Route("/ws", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/users/{userID}", webSocketHandler.ServeUser)
			r.Get("/gameweeks/{gameweek}", webSocketHandler.ServeGameweek)
		})
	})
}
