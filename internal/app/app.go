// Package app wires the connector's components together
package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"iot-connector/internal/common/logging"
	"iot-connector/internal/config"
	"iot-connector/internal/connector"
	"iot-connector/internal/handlers"
	"iot-connector/internal/middleware"
	"iot-connector/internal/oauth2"
	"iot-connector/internal/server"
	"iot-connector/internal/upstream"
)

// App holds all the application dependencies
type App struct {
	Config *config.Config
	Tokens *oauth2.Cache
	Facade *connector.Facade
	Logger logging.Logger
}

// New creates a new application instance with all dependencies. Backend
// selection happens here, once, driven by UPSTREAM_ENABLED.
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "app"}),
	}

	var backend connector.Backend
	if cfg.UpstreamEnabled {
		authClient := oauth2.NewClient(cfg.OAuthClientID, cfg.OAuthClientSecret)
		app.Tokens = oauth2.NewCache(authClient)

		backend = upstream.NewClient(
			cfg.UpstreamBaseURL,
			cfg.UpstreamAppKey,
			cfg.Environment,
			app.Tokens,
			upstream.WithLogger(app.Logger),
		)
		app.Logger.Info("Using upstream platform backend",
			logging.Field{Key: "environment", Value: cfg.Environment},
		)
	} else {
		backend = connector.NewMockBackend()
		app.Logger.Info("Upstream disabled, serving mock data")
	}

	app.Facade = connector.NewFacade(backend, app.Logger)
	return app, nil
}

// Router builds the HTTP routing table with middleware applied
func (a *App) Router() http.Handler {
	h := handlers.New(a.Facade, a.Config, a.Logger)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/locations", h.LocationsList).Methods(http.MethodGet)
	r.HandleFunc("/locations/{location_id}", h.LocationGet).Methods(http.MethodGet)
	r.HandleFunc("/locations/{location_id}/measures", h.MeasuresGet).Methods(http.MethodGet)
	r.HandleFunc("/activations", h.ActivationsList).Methods(http.MethodGet)
	r.HandleFunc("/activations", h.ActivationsCreate).Methods(http.MethodPost)
	r.HandleFunc("/locations/{thing_id}/properties/{property_name}", h.PropertyPut).Methods(http.MethodPut)

	var handler http.Handler = r
	handler = middleware.AuthMiddleware(a.Config.AuthEnabled)(handler)
	handler = middleware.CORSMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.TimeoutMiddleware(a.Config.RequestTimeout)(handler)
	return handler
}

// RunServer builds the HTTP server around the routing table
func (a *App) RunServer() *server.Server {
	return server.New(a.Router(), a.Config.Port)
}
