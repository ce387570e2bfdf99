// Package app contains the application setup for the catalog service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gocatalog/catalog/internal/catalog/service"
	"github.com/gocatalog/catalog/internal/catalog/store"
	"github.com/gocatalog/catalog/internal/catalog/transport/rest"
	"github.com/gocatalog/catalog/internal/catalog/upload"
	"github.com/gocatalog/catalog/internal/config"
	"github.com/gocatalog/catalog/pkg/server"
)

type Dependencies struct {
	CatalogService service.CatalogService
	UploadsDir     string
	Logger         *slog.Logger
}

// SetupDependencies wires the service over the given store, with the uploads
// directory injected explicitly.
func SetupDependencies(st store.Store, uploadsDir string, logger *slog.Logger) *Dependencies {
	cService := service.NewService(st, upload.NewSaver(uploadsDir))

	return &Dependencies{
		CatalogService: cService,
		UploadsDir:     uploadsDir,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the router and routes for the catalog service.
// Also used by tests to exercise the full HTTP surface in-process.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the catalog service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	catalogHandler := rest.NewHandler(deps.CatalogService, deps.Logger)
	catalogHandler.RegisterRoutes(mux)

	// Stored photos are served back by their exact stored filename.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadsDir)))
	mux.Get("/uploads/*", fileServer.ServeHTTP)
}

// SetupHttpServer creates and configures an HTTP server for the catalog service.
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
