package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mealbridge/mealbridge-backend/api/controllers"
	"github.com/mealbridge/mealbridge-backend/api/middleware"
	"github.com/mealbridge/mealbridge-backend/internal/activity"
	"github.com/mealbridge/mealbridge-backend/internal/auth"
	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/internal/ngos"
	"github.com/mealbridge/mealbridge-backend/internal/stats"
	"github.com/mealbridge/mealbridge-backend/pkg/auth/session"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	"github.com/mealbridge/mealbridge-backend/pkg/db"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.Checker,
	registry *prometheus.Registry,
	authService auth.Service,
	donationsService donations.Service,
	ngosService ngos.Service,
	statsService stats.Service,
	activityService activity.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.Register(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.Logout(authService, logg))
			r.Get("/me", controllers.Me(authService, logg))
			r.Put("/me", controllers.UpdateMe(authService, logg))
			r.Patch("/me", controllers.UpdateMe(authService, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/donations", func(r chi.Router) {
			r.With(middleware.RequireRole(string(enums.UserRoleDonor), logg)).Post("/", controllers.DonationCreate(donationsService, logg))
			r.Get("/", controllers.DonationList(donationsService, logg))
			r.With(middleware.RequireAnyRole(logg, string(enums.UserRoleStaff), string(enums.UserRoleAdmin))).Get("/map", controllers.DonationMap(donationsService, logg))
			r.Get("/{donationID}", controllers.DonationGet(donationsService, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleStaff), logg)).Patch("/{donationID}/status", controllers.DonationTransition(donationsService, logg))
		})

		r.Route("/ngos", func(r chi.Router) {
			r.Get("/", controllers.NGOList(ngosService, logg))
			r.Get("/{ngoID}", controllers.NGOGet(ngosService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
				r.Post("/", controllers.NGOCreate(ngosService, logg))
				r.Put("/{ngoID}", controllers.NGOUpdate(ngosService, logg))
				r.Patch("/{ngoID}", controllers.NGOUpdate(ngosService, logg))
				r.Delete("/{ngoID}", controllers.NGODelete(ngosService, logg))
			})
		})

		r.With(middleware.RequireAnyRole(logg, string(enums.UserRoleDonor), string(enums.UserRoleAdmin))).Get("/leaderboard", controllers.Leaderboard(statsService, logg))
		r.With(middleware.RequireRole(string(enums.UserRoleDonor), logg)).Get("/users/me/stats", controllers.MyStats(statsService, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
			r.Get("/stats", controllers.PlatformStats(statsService, logg))
			r.Get("/activity", controllers.ActivityList(activityService, logg))
		})
	})

	return r
}
