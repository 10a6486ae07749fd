// Package server is the telephony gateway edge: Twilio voice webhooks in,
// TwiML out, plus a health surface and an optional Media Streams endpoint.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	twclient "github.com/twilio/twilio-go/client"

	"github.com/WilliamZhang9/Call2Map/config"
	"github.com/WilliamZhang9/Call2Map/session"
)

// TurnHandler processes one recognized utterance and returns the spoken
// reply plus whether the gateway should keep listening.
type TurnHandler interface {
	HandleTurn(ctx context.Context, sessionID, caller, utterance string) (string, bool)
}

// Server hosts the voice webhook endpoints.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	store      *session.Store
	turns      TurnHandler
	cfg        *config.Config
	upgrader   websocket.Upgrader
	validator  twclient.RequestValidator
}

// New creates the webhook server.
func New(cfg *config.Config, store *session.Store, turns TurnHandler) *Server {
	s := &Server{
		store:     store,
		turns:     turns,
		cfg:       cfg,
		validator: twclient.NewRequestValidator(cfg.TwilioAuthToken),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			// Twilio doesn't support WebSocket compression
			EnableCompression: false,
			CheckOrigin: func(r *http.Request) bool {
				// Twilio connections don't send browser Origin headers
				return true
			},
		},
	}

	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout — it would cut off the long-lived /stream socket
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/voice", func(r chi.Router) {
		if s.cfg.ValidateWebhooks {
			r.Use(s.requireTwilioSignature)
		}
		r.Post("/incoming", s.handleIncoming)
		r.Post("/process-speech", s.handleSpeech)
	})

	if s.cfg.EnableMediaStream {
		r.Get("/stream", s.handleMediaStream)
	}

	return r
}

// Router exposes the router for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening for webhooks.
func (s *Server) Start() error {
	log.Printf("🚀 Voice webhook server starting on port %d", s.cfg.Port)
	log.Printf("📞 Point the Twilio number at %s/voice/incoming", s.cfg.BaseURL)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("🛑 Shutting down voice server...")
	return s.httpServer.Shutdown(ctx)
}

// requireTwilioSignature rejects webhooks whose X-Twilio-Signature doesn't
// match the posted form against our public URL.
func (s *Server) requireTwilioSignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		params := make(map[string]string, len(r.PostForm))
		for key := range r.PostForm {
			params[key] = r.PostForm.Get(key)
		}
		url := s.cfg.BaseURL + r.URL.RequestURI()
		if !s.validator.Validate(url, params, r.Header.Get("X-Twilio-Signature")) {
			log.Printf("⚠️ Rejected webhook with invalid signature from %s", r.RemoteAddr)
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	body, err := sonic.Marshal(map[string]any{
		"status":       "Call2Map is running! 🎉",
		"phone":        s.cfg.TwilioPhoneNumber,
		"active_calls": s.store.Count(),
		"message":      "Call this number to talk to the AI assistant!",
	})
	if err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, s.store.Count())
}
