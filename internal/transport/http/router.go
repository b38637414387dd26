package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/sirupsen/logrus"
)

// Services collects everything the router mounts.
type Services struct {
	Fare      TapAuthorizer
	Purchase  ProductPurchaser
	Summary   CardSummarizer
	Support   SupportSearcher
	Auth      Authenticator
	Analytics AnalyticsReporter
}

// tapRateLimit caps taps per source IP per minute.
const tapRateLimit = 30

// NewRouter wires all routes and middleware.
func NewRouter(svcs Services, corsOrigins []string, log *logrus.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/ga/cards/{card_number}", func(r chi.Router) {
			r.Get("/", HandleCardSummary(svcs.Summary))
			r.Post("/purchase", HandlePurchase(svcs.Purchase))
			r.With(httprate.LimitByIP(tapRateLimit, time.Minute)).
				Post("/tap", HandleTap(svcs.Fare))
		})

		r.Post("/support/search", HandleSupportSearch(svcs.Support))
		r.Post("/portal/auth/login", HandleLogin(svcs.Auth))
		r.Get("/analytics", HandleAnalytics(svcs.Analytics))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	return r
}
