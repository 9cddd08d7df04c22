// Package api provides HTTP handlers for the booking server.
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/bigsmile-dental/denty/blob"
	"github.com/bigsmile-dental/denty/config"
	"github.com/bigsmile-dental/denty/conversation"
	"github.com/bigsmile-dental/denty/session"
	"github.com/bigsmile-dental/denty/store"
)

// Speech is the transcription/synthesis backend pair.
type Speech interface {
	Transcribe(ctx context.Context, wavData []byte) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Authorizer runs the one-time Google authorization flow.
type Authorizer interface {
	AuthURL() string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// Handler handles HTTP requests.
type Handler struct {
	config      *config.Config
	sessions    session.Store
	calls       session.Store
	audio       *blob.Store
	engine      *conversation.Engine
	phoneEngine *conversation.Engine
	speech      Speech
	booker      conversation.Booker
	users       store.UserStore
	authorizer  Authorizer
}

// NewHandler creates a new handler.
func NewHandler(
	cfg *config.Config,
	sessions, calls session.Store,
	audio *blob.Store,
	engine, phoneEngine *conversation.Engine,
	speech Speech,
	booker conversation.Booker,
	users store.UserStore,
	authorizer Authorizer,
) *Handler {
	return &Handler{
		config:      cfg,
		sessions:    sessions,
		calls:       calls,
		audio:       audio,
		engine:      engine,
		phoneEngine: phoneEngine,
		speech:      speech,
		booker:      booker,
		users:       users,
		authorizer:  authorizer,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Voice conversation API
	e.POST("/api/conversation/start", h.StartConversation)
	e.POST("/api/conversation/voice-input", h.VoiceInput)
	e.POST("/api/conversation/reset", h.ResetConversation)
	e.GET("/api/conversation/audio/:filename", h.StreamAudio)

	// Telephony webhooks
	e.POST("/api/twilio/incoming", h.IncomingCall)
	e.POST("/api/twilio/response", h.SpeechResponse)

	// Calendar API
	e.POST("/api/calendar/send-invite", h.SendInvite)

	// Auth API
	e.POST("/api/auth/signup", h.Signup)
	e.POST("/api/auth/signin", h.Signin)

	// One-time Google authorization flow
	e.GET("/google/auth", h.GoogleAuth)
	e.GET("/oauth2callback", h.OAuthCallback)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
