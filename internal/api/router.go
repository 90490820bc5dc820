package api

import (
	"net/http"

	_ "fxconvert/docs"
	"fxconvert/internal/platform/metrics"
	"fxconvert/internal/rate/handler"
	"fxconvert/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swagger "github.com/swaggo/http-swagger"
)

type RouterDeps struct {
	Web            *web.Handler
	Rates          *handler.Handler // nil disables /rates and /convert
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

func NewRouter(deps RouterDeps) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware)
	}
	if deps.Rates != nil {
		// Preflight requests never match a GET route, so CORS wraps the whole mux.
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)
	router.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	endpoints := []string{"/", "/health", "/healthz", "/metrics", "/swagger/index.html"}
	if deps.Rates != nil {
		router.Get("/rates", deps.Rates.GetRates)
		router.Get("/convert", deps.Rates.Convert)
		endpoints = append(endpoints, "/rates", "/convert")
	}
	router.Get("/health", healthHandler(endpoints))

	if deps.Web != nil {
		deps.Web.Routes(router)
	}
	return router
}
