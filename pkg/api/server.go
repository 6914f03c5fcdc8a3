package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/langmgr/pkg/g2p"
	"github.com/platinummonkey/langmgr/pkg/httputil"
	"github.com/platinummonkey/langmgr/pkg/language"
	"github.com/platinummonkey/langmgr/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Options holds the dependencies of a Server
type Options struct {
	Manager   *g2p.Manager
	Processor *language.Processor
	Languages []*language.Descriptor

	// Registry and Metrics are optional; /metrics is only routed with a Registry
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Log      *logrus.Logger
}

// Server is the langmgr HTTP API
type Server struct {
	manager   *g2p.Manager
	processor *language.Processor
	languages []*language.Descriptor
	metrics   *observability.Metrics
	log       *logrus.Logger
	router    *mux.Router
}

// NewServer creates a server and sets up its routes
func NewServer(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		manager:   opts.Manager,
		processor: opts.Processor,
		languages: opts.Languages,
		metrics:   opts.Metrics,
		log:       log,
		router:    mux.NewRouter(),
	}

	s.setupRoutes(opts.Registry)
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes(registry *prometheus.Registry) {
	s.router.Use(
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(s.log),
		httputil.LoggingMiddleware(s.log),
		observability.HTTPMetricsMiddleware(s.metrics, routeTemplate),
	)

	s.router.HandleFunc("/healthz", s.healthz).Methods("GET")
	if registry != nil {
		s.router.Handle("/metrics", observability.MetricsHandler(registry)).Methods("GET")
	}

	s.router.HandleFunc("/v1/g2p", s.listEngines).Methods("GET")
	s.router.HandleFunc("/v1/g2p/{id}", s.getEngine).Methods("GET")

	s.router.HandleFunc("/v1/languages", s.listLanguages).Methods("GET")
	s.router.HandleFunc("/v1/languages/{id}", s.getLanguage).Methods("GET")
	s.router.HandleFunc("/v1/languages/{id}/convert", s.convertLanguage).Methods("POST")
	s.router.HandleFunc("/v1/convert", s.convertAll).Methods("POST")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routeTemplate labels metrics by route so path ids do not explode cardinality
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
