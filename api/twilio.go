package api

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/twilio/twilio-go/twiml"

	"github.com/bigsmile-dental/denty/conversation"
)

// Fixed lines spoken by the call channel.
const (
	callGreeting = "Hello! Thank you for calling. I can help you book an appointment. How can I assist you today?"
	callClosing  = "Thank you for using our service. You will receive a confirmation shortly. Goodbye!"
	callRepeat   = "I'm sorry, I didn't catch that. Could you please repeat yourself?"
	callApology  = "Sorry, I encountered an error. Please try calling again later."
	callLost     = "An error occurred with the conversation context. Please call back."
)

// IncomingCall answers a new call: greet, open a conversation keyed by
// the carrier call id, and start listening for speech.
// POST /api/twilio/incoming
func (h *Handler) IncomingCall(c echo.Context) error {
	callSid := c.FormValue("CallSid")
	if callSid == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "missing CallSid"})
	}

	h.calls.Attach(callSid, conversation.PhoneSystemPrompt)

	return h.renderVoice(c,
		&twiml.VoiceSay{Message: callGreeting},
		gatherSpeech(callSid),
	)
}

// SpeechResponse handles the carrier's recognized speech for one turn.
// Replies containing the completion phrase end the call; an empty
// capture re-prompts without consulting the completion backend.
// POST /api/twilio/response
func (h *Handler) SpeechResponse(c echo.Context) error {
	ctx := c.Request().Context()
	callSid := c.QueryParam("callSid")
	userSpeech := c.FormValue("SpeechResult")

	conv, ok := h.calls.Get(callSid)
	if !ok {
		return h.renderVoice(c,
			&twiml.VoiceSay{Message: callLost},
			&twiml.VoiceHangup{},
		)
	}

	if userSpeech == "" {
		return h.renderVoice(c,
			&twiml.VoiceSay{Message: callRepeat},
			gatherSpeech(callSid),
		)
	}

	conv.Lock()
	defer conv.Unlock()
	conv.Touch()

	res, err := h.phoneEngine.RunTurn(ctx, conv.History, userSpeech)
	if err != nil {
		// Never leave the caller hanging in silence.
		log.Printf("ERROR: call %s turn failed: %v", callSid, err)
		h.calls.Delete(callSid)
		return h.renderVoice(c,
			&twiml.VoiceSay{Message: callApology},
			&twiml.VoiceHangup{},
		)
	}
	conv.History = res.Messages

	if strings.Contains(strings.ToLower(res.Reply), conversation.CompletionPhrase) {
		h.calls.Delete(callSid)
		return h.renderVoice(c,
			&twiml.VoiceSay{Message: res.Reply},
			&twiml.VoiceSay{Message: callClosing},
			&twiml.VoiceHangup{},
		)
	}

	return h.renderVoice(c,
		&twiml.VoiceSay{Message: res.Reply},
		gatherSpeech(callSid),
	)
}

func gatherSpeech(callSid string) *twiml.VoiceGather {
	return &twiml.VoiceGather{
		Input:         "speech",
		SpeechTimeout: "auto",
		SpeechModel:   "experimental_conversations",
		Action:        "/api/twilio/response?callSid=" + url.QueryEscape(callSid),
	}
}

func (h *Handler) renderVoice(c echo.Context, verbs ...twiml.Element) error {
	doc, err := twiml.Voice(verbs)
	if err != nil {
		log.Printf("ERROR: failed to render voice markup: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": "failed to render response"})
	}
	return c.Blob(http.StatusOK, "text/xml", []byte(doc))
}
