package routes

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jmylchreest/refyne-catalog/internal/constants"
	"github.com/jmylchreest/refyne-catalog/internal/http/handlers"
	"github.com/jmylchreest/refyne-catalog/internal/http/mw"
)

// RouterConfig holds the settings the middleware chain needs.
type RouterConfig struct {
	BaseURL          string
	CORSOrigins      []string
	MaxUploadBytes   int64
	RequestTimeout   time.Duration
	ConvertTimeout   time.Duration
	UploadsPerMinute int

	// Quiet drops the per-request access log.
	Quiet bool
}

// NewRouter builds the chi router with the global middleware chain, the
// documented huma API and the raw upload handlers.
func NewRouter(cfg RouterConfig, h *Handlers) (*chi.Mux, huma.API) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = constants.DefaultRequestTimeout
	}
	if cfg.ConvertTimeout <= 0 {
		cfg.ConvertTimeout = constants.DefaultConvertTimeout
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = constants.DefaultMaxUploadBytes
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	if !cfg.Quiet {
		router.Use(middleware.Logger)
	}
	router.Use(middleware.Recoverer)
	router.Use(mw.APIVersion())

	// Conversions hold the connection while every row is enriched.
	router.Use(mw.Timeout(mw.TimeoutConfig{
		Default:          cfg.RequestTimeout,
		Extended:         cfg.ConvertTimeout,
		ExtendedPatterns: []string{"/catalog/convert"},
		SkipPatterns:     []string{"/healthz"},
	}))
	router.Use(mw.ExtendWriteDeadline(cfg.ConvertTimeout, "/catalog/convert"))
	router.Use(mw.Cache(mw.DefaultCacheConfig()))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{
			"Content-Disposition", "X-Request-ID", "X-API-Version",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After",
			handlers.HeaderRunID, handlers.HeaderRowsIn, handlers.HeaderRowsOut,
			handlers.HeaderProducts, handlers.HeaderFailed, handlers.HeaderSkipped,
			handlers.HeaderFailedRows, handlers.HeaderArchiveKey, handlers.HeaderArchiveURL,
		},
		MaxAge: 300,
	}))

	// Uploads are also capped per handler; this is the outer bound with room
	// for multipart framing.
	router.Use(middleware.RequestSize(cfg.MaxUploadBytes + 1<<20))

	rl := mw.DefaultRateLimitConfig()
	rl.UploadsPerMinute = cfg.UploadsPerMinute
	router.Use(mw.RateLimitByIP(rl.IPRequestsPerMinute))
	router.Use(mw.RateLimitUploads(rl))

	router.Use(middleware.Throttle(100))

	api := humachi.New(router, NewHumaConfig(cfg.BaseURL))
	Register(api, h)

	hiddenAPI := humachi.New(router, NewHiddenConfig())
	RegisterProbes(hiddenAPI, h)

	MountRaw(router, h)

	return router, api
}
