package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"jamesfarrell.me/youtube-study/internal/api/handlers"
	"jamesfarrell.me/youtube-study/internal/api/middleware"
)

type Options struct {
	Processor     handlers.Processor
	Resolver      handlers.Resolver
	ClientBaseURL string
	CORSOrigin    string
	// ServiceAPIKey, when set, is required as X-API-Key on /api routes.
	ServiceAPIKey string
	Logger        *slog.Logger
}

func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	preview := handlers.NewPreviewHandler(opts.Resolver, opts.ClientBaseURL)
	r.HandleFunc("/preview/{videoId}", preview.Preview).Methods(http.MethodGet)

	apiRoutes := r.PathPrefix("/api").Subrouter()
	apiRoutes.Use(middleware.APIKey(opts.ServiceAPIKey))
	processHandler := handlers.NewProcessHandler(opts.Processor)
	apiRoutes.HandleFunc("/process", processHandler.Process).Methods(http.MethodPost)

	// CORS wraps the router so preflight requests are answered before method matching.
	var h http.Handler = r
	h = middleware.CORS(opts.CORSOrigin)(h)
	h = middleware.RequestLog(opts.Logger)(h)
	return h
}
