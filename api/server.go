// Package api exposes the storefront over HTTP.
package api

import (
	"fmt"
	"net/http"

	"cafe-storefront/services"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// SessionHeader carries the customer session id. Responses echo it, and
// requests without one are given a fresh id.
const SessionHeader = "X-Session-ID"

type Options struct {
	CORSOrigins  []string
	RateRPS      float64
	RateBurst    int
	ExportPrefix string
}

type Server struct {
	cafe    *services.Cafe
	opts    Options
	log     *zap.Logger
	limiter *RateLimiter
}

func NewServer(cafe *services.Cafe, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ExportPrefix == "" {
		opts.ExportPrefix = "cafe"
	}
	return &Server{
		cafe:    cafe,
		opts:    opts,
		log:     logger.Named("http"),
		limiter: NewRateLimiter(opts.RateRPS, opts.RateBurst),
	}
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func (s *Server) router() *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Index)

	s.addCatalogRoutes(router)
	s.addCartRoutes(router)
	s.addOrderRoutes(router)
	s.addAdminRoutes(router)
	return router
}

// Handler builds the full middleware chain: logging, security headers,
// CORS, then the router.
func (s *Server) Handler() http.Handler {
	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", SessionHeader},
		ExposedHeaders: []string{SessionHeader},
	}).Handler(s.router())

	return s.loggingMiddleware(securityHeaders(corsHandler))
}
