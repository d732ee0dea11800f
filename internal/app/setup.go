// Package app contains the application setup for the sweet shop service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rmehra/sweetshop/internal/config"
	"github.com/rmehra/sweetshop/internal/service"
	"github.com/rmehra/sweetshop/internal/store"
	"github.com/rmehra/sweetshop/internal/transport/rest"
	"github.com/rmehra/sweetshop/pkg/server"
)

type Dependencies struct {
	SweetService service.SweetService
	Store        store.SweetStore
	Logger       *slog.Logger
}

func SetupDependencies(logger *slog.Logger) *Dependencies {
	sweetStore := store.NewInMemoryStore()

	return &Dependencies{
		SweetService: service.NewService(sweetStore),
		Store:        sweetStore,
		Logger:       logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the sweet shop service.
// Used by handler-level tests to set up the full router.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the sweet shop service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	sweetHandler := rest.NewHandler(deps.SweetService, deps.Logger)
	sweetHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the sweet shop service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
