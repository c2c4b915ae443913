package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ptcli/internal/features/tracking"
	"ptcli/internal/web/handlers"
)

// CatalogRoutes is the route listing the demo server publishes at its root,
// in the placeholder spelling the client parses. It must stay in lockstep
// with the mounts in NewRouter.
func CatalogRoutes() []handlers.Route {
	return []handlers.Route{
		{Method: "GET", Path: "/health", Description: "Health check"},
		{Method: "GET", Path: "/projects", Description: "List all tracked projects"},
		{Method: "GET", Path: "/project", Description: "List all tracked projects"},
		{Method: "GET", Path: "/project/<name>", Description: "Show one project"},
		{Method: "GET", Path: "/project/<name>/readsets", Description: "List the readsets of a project"},
		{Method: "GET", Path: "/admin/create_project/<name>", Description: "Create a new project"},
		{Method: "POST", Path: "/ingest/readsets", Description: "Ingest readsets from a JSON payload"},
	}
}

// requestLogger logs one line per request to stderr so stdout stays a clean
// payload pipe when the server runs in a pipeline.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		t1 := time.Now()

		defer func() {
			log.Printf("\"%s %s %s\" from %s - %d %dB in %s",
				r.Method,
				r.RequestURI,
				r.Proto,
				r.RemoteAddr,
				ww.Status(),
				ww.BytesWritten(),
				time.Since(t1),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// NewRouter wires the demo tracking routes. Tests build this router into an
// httptest server to exercise the client end to end.
func NewRouter(service *tracking.Service) chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", handlers.Catalog("pt-server", CatalogRoutes()))
	r.Get("/health", handlers.Health())
	r.Get("/projects", handlers.Projects(service))
	r.Get("/project", handlers.Projects(service))
	r.Get("/project/{name}", handlers.Project(service))
	r.Get("/project/{name}/readsets", handlers.Readsets(service))
	r.Get("/admin/create_project/{name}", handlers.CreateProject(service))
	r.Post("/ingest/readsets", handlers.IngestReadsets(service))

	return r
}

// StartHTTPServer starts the HTTP side of the demo server and blocks until
// the context is cancelled or the listener fails.
func StartHTTPServer(ctx context.Context, host, port string, service *tracking.Service) error {
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", host, port),
		Handler: NewRouter(service),
	}

	fmt.Printf("🌐 HTTP server starting on http://%s:%s\r\n", host, port)
	fmt.Printf("📡 Routes:\r\n")
	for _, route := range CatalogRoutes() {
		fmt.Printf("   %-6s %s\r\n", route.Method, route.Path)
	}
	fmt.Printf("   The listing at / is what pt-cli discovers.\r\n")

	go func() {
		<-ctx.Done()
		fmt.Printf("🌐 Shutting down HTTP server...\r\n")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("HTTP server forced to shutdown: %v\n", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
