package api

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/bigsmile-dental/denty/blob"
	"github.com/bigsmile-dental/denty/config"
	"github.com/bigsmile-dental/denty/conversation"
	"github.com/bigsmile-dental/denty/domain"
	"github.com/bigsmile-dental/denty/llm"
	"github.com/bigsmile-dental/denty/session"
	"github.com/bigsmile-dental/denty/store"
)

type scriptedCompleter struct {
	responses []*llm.ChatCompletionResponse
	requests  []*llm.ChatCompletionRequest
	err       error
}

func (s *scriptedCompleter) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.requests) > len(s.responses) {
		return nil, fmt.Errorf("unexpected completion call %d", len(s.requests))
	}
	return s.responses[len(s.requests)-1], nil
}

type fakeBooker struct {
	events []*domain.CalendarEvent
	err    error
}

func (f *fakeBooker) CreateEvent(ctx context.Context, ev *domain.CalendarEvent) (string, error) {
	f.events = append(f.events, ev)
	if f.err != nil {
		return "", f.err
	}
	return "https://calendar.example/event1", nil
}

type fakeSpeech struct {
	transcript    string
	audio         []byte
	transcribeErr error
	synthErr      error
}

func (f *fakeSpeech) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	if f.transcribeErr != nil {
		return "", f.transcribeErr
	}
	return f.transcript, nil
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if f.synthErr != nil {
		return nil, f.synthErr
	}
	return f.audio, nil
}

func textResponse(content string) *llm.ChatCompletionResponse {
	return &llm.ChatCompletionResponse{
		Choices: []llm.Choice{{Message: &llm.ChatMessage{Role: "assistant", Content: content}}},
	}
}

func toolCallResponse(callID, args string) *llm.ChatCompletionResponse {
	return &llm.ChatCompletionResponse{
		Choices: []llm.Choice{{Message: &llm.ChatMessage{
			Role: "assistant",
			ToolCalls: []llm.ToolCall{{
				ID:   callID,
				Type: "function",
				Function: llm.ToolCallFunction{
					Name:      conversation.ToolCreateCalendarEvent,
					Arguments: args,
				},
			}},
		}}},
	}
}

func newTestHandler(t *testing.T, completer conversation.Completer, sp Speech, booker conversation.Booker) *Handler {
	t.Helper()

	cfg := &config.Config{
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		ClinicTimezone:     "UTC",
		JWTSecret:          "test-secret",
		LLMTimeout:         time.Second,
		SpeechTimeout:      time.Second,
	}

	dispatcher := conversation.NewDispatcher(booker, nil, time.UTC, "123 Smile Street")
	engine := conversation.NewEngine(completer, "gpt-4o", dispatcher)
	phoneEngine := conversation.NewEngine(completer, "gpt-3.5-turbo", dispatcher)

	users, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("failed to open user store: %v", err)
	}
	t.Cleanup(func() { users.Close() })

	return NewHandler(cfg,
		session.NewMemoryStore(), session.NewMemoryStore(), blob.NewStore(),
		engine, phoneEngine, sp, booker, users, nil)
}
