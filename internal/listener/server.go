// Package listener runs a local HTTP receiver for webhook deliveries. It is
// meant for development: every delivery with a valid signature is handed to
// a callback, typically one printing it to the terminal.
package listener

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/foxy/foxy-go/internal/common/httpx"
	"github.com/foxy/foxy-go/internal/common/logtrace"
	"github.com/foxy/foxy-go/internal/common/middleware"
	"github.com/foxy/foxy-go/internal/version"
	"github.com/foxy/foxy-go/pkg/webhook"
)

// EventHeader names the webhook event type, e.g. transaction/created.
const EventHeader = "Foxy-Webhook-Event"

// Event is a verified delivery.
type Event struct {
	RequestID string
	Type      string
	Received  time.Time
	Payload   []byte
}

// Options configures a Server.
type Options struct {
	Key        string        // webhook encryption key
	Path       string        // delivery path, /webhooks when empty
	HandleCORS bool          // answer browser preflight requests
	Timeout    time.Duration // per request, 30s when zero
	OnEvent    func(Event)
}

// Server receives webhook deliveries.
type Server struct {
	Router *chi.Mux
	opts   Options
}

// NewServer creates a Server with all routes mounted.
func NewServer(opts Options) *Server {
	if opts.Path == "" {
		opts.Path = "/webhooks"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	s := &Server{Router: chi.NewRouter(), opts: opts}
	s.mountHandlers()
	return s
}

func (s *Server) mountHandlers() {
	s.Router.Use(middleware.RequestLogger)
	s.Router.Use(middleware.PanicHandler)
	s.Router.Use(middleware.SetTimeout(s.opts.Timeout))
	if s.opts.HandleCORS {
		s.Router.Use(s.HandleCORS)
	}
	s.Router.With(webhook.Middleware(s.opts.Key)).Post(s.opts.Path, httpx.WrapHttpRsp(s.receive))
	s.Router.Get("/version", s.getVersion)
	s.Router.Get("/ready", s.getReadiness)
}

func (s *Server) receive(r *http.Request) (*httpx.Response, error) {
	body, err := httpx.ReadBody(r, 0)
	if err != nil {
		return nil, err
	}
	ev := Event{
		RequestID: logtrace.RequestIdFromContext(r.Context()),
		Type:      r.Header.Get(EventHeader),
		Received:  time.Now(),
		Payload:   body,
	}
	log.Ctx(r.Context()).Debug().Str("event", ev.Type).Int("bytes", len(body)).Msg("webhook received")
	if s.opts.OnEvent != nil {
		s.opts.OnEvent(ev)
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   map[string]string{"status": "received"},
	}, nil
}

// GetVersionRsp is the body of GET /version.
type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
}

func (s *Server) getVersion(w http.ResponseWriter, r *http.Request) {
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, &GetVersionRsp{
		ServerVersion: "foxy webhook listener: " + version.Version,
	})
}

func (s *Server) getReadiness(w http.ResponseWriter, r *http.Request) {
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// HandleCORS answers cross-origin requests from any origin.
func (s *Server) HandleCORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", webhook.SignatureHeader, EventHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}

// Run serves on addr until ctx is done, then gives outstanding requests
// five seconds to complete.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("path", s.opts.Path).Msg("listening for webhooks")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("could not stop listener gracefully")
		return srv.Close()
	}
	log.Info().Msg("listener stopped")
	return nil
}
