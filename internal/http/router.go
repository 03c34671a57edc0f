package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/botmanage/internal/app"
	"github.com/dropDatabas3/botmanage/internal/jwt"
)

// RouterDeps agrupa las dependencias del router. Todo inyectado.
type RouterDeps struct {
	State  *app.State
	Rest   OAuthAPI
	Issuer *jwt.Issuer

	CORSAllowedOrigins []string
	MetricsRegistry    prometheus.Registerer
}

// NewRouter arma el router chi con middlewares y rutas.
func NewRouter(deps RouterDeps) http.Handler {
	configH := &ConfigHandlers{State: deps.State}
	oauthH := &OAuthHandlers{Rest: deps.Rest, Issuer: deps.Issuer}

	metricsHandler := RegisterMetrics(deps.MetricsRegistry)

	r := chi.NewRouter()
	r.Use(WithRequestID)
	r.Use(WithRecover)
	r.Use(WithMetrics(chiRoutePattern))
	r.Use(WithLogging)
	if len(deps.CORSAllowedOrigins) > 0 {
		r.Use(WithCORS(deps.CORSAllowedOrigins))
	}

	// Health + metrics
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// OAuth
	r.Get("/oauth/discord", oauthH.Discord)
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(deps.Issuer))
		r.Get("/oauth/refresh", oauthH.Refresh)
	})

	// Config API (requiere sesión)
	r.Route("/api/config", func(r chi.Router) {
		r.Use(RequireAuth(deps.Issuer))
		r.Get("/{id}", configH.GetConfig)
		r.Post("/{id}", configH.PostConfig)
	})

	return r
}

// chiRoutePattern devuelve el patrón de ruta matcheado (para métricas
// con cardinalidad acotada), o el path crudo si no hubo match.
func chiRoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
