package api

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bigsmile-dental/denty/audio"
	"github.com/bigsmile-dental/denty/conversation"
)

type voiceInputRequest struct {
	SessionID  string `json:"sessionId"`
	PCMData    string `json:"pcmData"`
	SampleRate int    `json:"sampleRate"`
}

type resetRequest struct {
	SessionID string `json:"sessionId"`
}

// StartConversation creates a voice session seeded with the assistant
// persona.
// POST /api/conversation/start
func (h *Handler) StartConversation(c echo.Context) error {
	sess := h.sessions.Create(conversation.VoiceSystemPrompt)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"sessionId": sess.ID,
	})
}

// VoiceInput runs one voice turn: frame the PCM upload, transcribe it,
// run the dialogue engine, synthesize the reply, and hand back an
// audio reference.
// POST /api/conversation/voice-input
func (h *Handler) VoiceInput(c echo.Context) error {
	ctx := c.Request().Context()

	var req voiceInputRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
	}
	if req.SessionID == "" || req.PCMData == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Missing session ID or PCM data."})
	}

	sess, ok := h.sessions.Get(req.SessionID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]interface{}{"error": "Session not found."})
	}

	pcm, err := base64.StdEncoding.DecodeString(req.PCMData)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Invalid PCM payload."})
	}
	sampleRate := req.SampleRate
	if sampleRate == 0 {
		sampleRate = audio.DefaultSampleRate
	}

	// One turn at a time per session: history mutations stay ordered
	// even if a client submits overlapping turns.
	sess.Lock()
	defer sess.Unlock()
	sess.Touch()

	wav := audio.FrameWAV(pcm, sampleRate, audio.DefaultChannels, audio.DefaultBitDepth)

	sctx, cancel := context.WithTimeout(ctx, h.config.SpeechTimeout)
	transcript, err := h.speech.Transcribe(sctx, wav)
	cancel()
	if err != nil {
		log.Printf("ERROR: transcription failed: %v", err)
		return h.collaboratorFailure(c)
	}
	log.Printf("user says: %s", transcript)

	res, err := h.engine.RunTurn(ctx, sess.History, transcript)
	if err != nil {
		// Keep the user turn so the conversation can recover, nothing
		// past it.
		sess.History = append(sess.History, conversation.UserMessage(transcript))
		log.Printf("ERROR: turn failed: %v", err)
		return h.collaboratorFailure(c)
	}
	sess.History = res.Messages
	log.Printf("assistant responds: %s", res.Reply)

	sctx, cancel = context.WithTimeout(ctx, h.config.SpeechTimeout)
	speechBytes, err := h.speech.Synthesize(sctx, res.Reply)
	cancel()
	if err != nil {
		log.Printf("ERROR: synthesis failed: %v", err)
		return h.collaboratorFailure(c)
	}

	name := h.audio.Put(speechBytes, "audio/mpeg", "mp3")
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":       true,
		"transcription": transcript,
		"aiResponse":    res.Reply,
		"audioFile":     "/api/conversation/audio/" + name,
	})
}

// ResetConversation deletes a session. Resetting an already-deleted
// session reports not-found.
// POST /api/conversation/reset
func (h *Handler) ResetConversation(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
	}
	if !h.sessions.Delete(req.SessionID) {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"success": false,
			"error":   "Session not found.",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Session reset.",
	})
}

// StreamAudio returns previously synthesized reply audio.
// GET /api/conversation/audio/:filename
func (h *Handler) StreamAudio(c echo.Context) error {
	name := c.Param("filename")
	data, contentType, ok := h.audio.Get(name)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"success": false,
			"error":   "Audio file not found.",
		})
	}
	return c.Blob(http.StatusOK, contentType, data)
}

func (h *Handler) collaboratorFailure(c echo.Context) error {
	return c.JSON(http.StatusBadGateway, map[string]interface{}{
		"success": false,
		"error":   "The assistant is unavailable right now. Please try again.",
	})
}
