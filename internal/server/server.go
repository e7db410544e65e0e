// Package server is the HTTP edge in front of the video analyzer: a
// keep-alive event stream on /sse and an MCP JSON-RPC endpoint on /rpc, both
// behind bearer auth and CORS.
package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-video-analyzer/internal/auth"
)

// DefaultPingInterval is used when Options.PingInterval is not positive.
const DefaultPingInterval = 25 * time.Second

// Options configures the edge router.
type Options struct {
	// SharedSecret must be exactly auth.SharedSecretLength characters; any
	// other value rejects every protected request.
	SharedSecret string
	// AllowedOrigins lists the CORS origins. Empty allows any origin.
	AllowedOrigins  []string
	PingInterval    time.Duration
	MaxRequestBytes int64
	Version         string
}

// Server holds the router and its collaborators.
type Server struct {
	router       chi.Router
	pingInterval time.Duration
}

// New builds the edge router around analyzer. Only analyzeRemoteVideo is
// exposed over HTTP.
func New(analyzer Analyzer, opts Options) *Server {
	s := &Server{pingInterval: opts.PingInterval}
	if s.pingInterval <= 0 {
		s.pingInterval = DefaultPingInterval
	}
	if len(opts.SharedSecret) != auth.SharedSecretLength {
		log.Warn().
			Int("length", len(opts.SharedSecret)).
			Int("required", auth.SharedSecretLength).
			Msg("Shared secret has the wrong length; all /sse and /rpc requests will be rejected")
	}

	rpc := gzhttp.GzipHandler(newRPCHandler(NewMCPServer(analyzer, opts.Version, false)))
	bearer := requireBearer(opts.SharedSecret)

	r := chi.NewRouter()
	r.Use(withRequestLog)
	r.Use(newCORS(opts.AllowedOrigins).Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Options("/sse", noContent)
	r.Options("/rpc", noContent)
	r.With(bearer).Get("/sse", s.handleSSE)
	r.With(bearer, limitBody(opts.MaxRequestBytes)).Post("/rpc", rpc.ServeHTTP)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func noContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// newCORS reflects allowed origins with credentials. A "*" entry or an empty
// list allows every origin.
func newCORS(allowed []string) *cors.Cors {
	allowAll := len(allowed) == 0 || slices.Contains(allowed, "*")
	return cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return allowAll || slices.Contains(allowed, origin)
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Authorization", "Content-Type", "Accept",
			"Mcp-Session-Id", "Mcp-Protocol-Version", "Last-Event-ID",
		},
		ExposedHeaders:   []string{"Mcp-Session-Id", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	})
}
