// Package httpapi exposes the catalog services over HTTP. Every route is
// served both at the root and under /api.
package httpapi

import (
	"context"
	"net/http"

	"github.com/rs/cors"

	"github.com/Lllllllleong/catalogflow/internal/services"
)

// Services are the handlers' collaborators.
type Services struct {
	Catalog    *services.CatalogService
	SiteConfig *services.SiteConfigService
	Storefront *services.StorefrontService
	Auth       *services.AuthService
	PDFImport  *services.PDFImportService
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	AllowedOrigins     []string
	RateLimitPerSecond int
	RateLimitBurst     int
}

// Server routes requests to the services.
type Server struct {
	services Services
	health   Pinger
	metrics  *Metrics
	limiter  *clientLimiter
	opts     Options
}

func NewServer(svcs Services, health Pinger, metrics *Metrics, opts Options) *Server {
	return &Server{
		services: svcs,
		health:   health,
		metrics:  metrics,
		limiter:  newClientLimiter(opts.RateLimitPerSecond, opts.RateLimitBurst),
		opts:     opts,
	}
}

// Handler returns the complete handler chain.
func (s *Server) Handler() http.Handler {
	api := s.routes()

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", api)

	var h http.Handler = root
	h = s.rateLimit(h)
	h = s.logRequests(h)
	return cors.New(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(h)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.HandleFunc("GET /products", s.handleListProducts)
	mux.Handle("POST /products", s.requireAuth(s.handleCreateProduct))
	mux.Handle("POST /products/bulk", s.requireAuth(s.handleBulkCreateProducts))
	mux.Handle("PUT /products/{id}", s.requireAuth(s.handleUpdateProduct))
	mux.Handle("DELETE /products/{id}", s.requireAuth(s.handleDeleteProduct))

	mux.HandleFunc("GET /config/{key}", s.handleGetConfig)
	mux.Handle("POST /config", s.requireAuth(s.handleSetConfig))

	mux.HandleFunc("GET /social-networks", s.handleListSocialNetworks)
	mux.Handle("POST /social-networks", s.requireAuth(s.handleReplaceSocialNetworks))
	mux.HandleFunc("GET /business-groups", s.handleListBusinessGroups)
	mux.Handle("POST /business-groups", s.requireAuth(s.handleReplaceBusinessGroups))

	mux.Handle("POST /pdf/upload", s.requireAuth(s.handleUploadPDF))
	mux.Handle("POST /pdf/save-products", s.requireAuth(s.handleSavePDFProducts))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health.Ping(r.Context()); err != nil {
		s.logError(r, "Health check failed.", err)
		writeError(w, http.StatusServiceUnavailable, "Servicio no disponible")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
