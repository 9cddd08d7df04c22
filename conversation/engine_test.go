package conversation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bigsmile-dental/denty/domain"
	"github.com/bigsmile-dental/denty/llm"
)

const validBookingArgs = `{"name":"Jane Doe","phone_number":"555-1111","email":"jane@x.com","date":"2025-09-01","time":"10:00","service":"Dental Cleaning"}`

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
					Name:      ToolCreateCalendarEvent,
					Arguments: args,
				},
			}},
		}}},
	}
}

func newTestEngine(completer Completer, booker Booker) *Engine {
	dispatcher := NewDispatcher(booker, nil, time.UTC, "123 Smile Street")
	return NewEngine(completer, "gpt-4o", dispatcher)
}

func seedHistory() []llm.ChatMessage {
	return []llm.ChatMessage{{Role: "system", Content: VoiceSystemPrompt}}
}

// checkAlternation asserts no two consecutive user or assistant
// entries; tool entries must directly answer an assistant tool call.
func checkAlternation(t *testing.T, msgs []llm.ChatMessage) {
	t.Helper()
	for i := 1; i < len(msgs); i++ {
		prev, cur := msgs[i-1], msgs[i]
		if cur.Role == prev.Role && (cur.Role == "user" || (cur.Role == "assistant" && len(prev.ToolCalls) == 0)) {
			t.Fatalf("consecutive %s messages at %d", cur.Role, i)
		}
		if cur.Role == "tool" {
			if prev.Role != "assistant" || len(prev.ToolCalls) == 0 {
				t.Fatalf("tool message at %d does not follow a tool request", i)
			}
			if cur.ToolCallID != prev.ToolCalls[0].ID {
				t.Fatalf("tool message at %d answers %q, expected %q", i, cur.ToolCallID, prev.ToolCalls[0].ID)
			}
		}
	}
}

func TestRunTurnPlainReply(t *testing.T) {
	completer := &scriptedCompleter{responses: []*llm.ChatCompletionResponse{
		textResponse("Sure! May I have your full name?"),
	}}
	booker := &fakeBooker{}
	engine := newTestEngine(completer, booker)

	res, err := engine.RunTurn(context.Background(), seedHistory(), "I'd like to book a cleaning")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if res.Reply != "Sure! May I have your full name?" {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
	if len(completer.requests) != 1 {
		t.Fatalf("expected 1 completion call, got %d", len(completer.requests))
	}
	if len(completer.requests[0].Tools) == 0 || completer.requests[0].ToolChoice != "auto" {
		t.Fatal("first completion call must advertise the tool schema with tool_choice auto")
	}
	if len(booker.events) != 0 {
		t.Fatal("booker must not be called without a tool request")
	}

	roles := []string{"system", "user", "assistant"}
	if len(res.Messages) != len(roles) {
		t.Fatalf("expected %d messages, got %d", len(roles), len(res.Messages))
	}
	for i, role := range roles {
		if res.Messages[i].Role != role {
			t.Fatalf("message %d: expected role %s, got %s", i, role, res.Messages[i].Role)
		}
	}
	checkAlternation(t, res.Messages)
}

func TestRunTurnToolRoundTrip(t *testing.T) {
	completer := &scriptedCompleter{responses: []*llm.ChatCompletionResponse{
		toolCallResponse("call_1", validBookingArgs),
		textResponse("You're all set, Jane! See you on September 1st at 10:00."),
	}}
	booker := &fakeBooker{}
	engine := newTestEngine(completer, booker)

	res, err := engine.RunTurn(context.Background(), seedHistory(),
		"book a cleaning for Jane Doe, phone 555-1111, email jane@x.com, on 2025-09-01 at 10:00")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}

	if len(completer.requests) != 2 {
		t.Fatalf("expected 2 completion calls, got %d", len(completer.requests))
	}
	if len(completer.requests[1].Tools) != 0 {
		t.Fatal("second completion call must not advertise the tool schema")
	}
	if len(booker.events) != 1 {
		t.Fatalf("expected exactly 1 booking call, got %d", len(booker.events))
	}

	ev := booker.events[0]
	wantStart := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	if !ev.Start.Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, ev.Start)
	}
	if !ev.End.Equal(wantStart.Add(30 * time.Minute)) {
		t.Fatalf("expected end %v, got %v", wantStart.Add(30*time.Minute), ev.End)
	}
	if ev.Summary != "Dental Cleaning for Jane Doe" {
		t.Fatalf("unexpected summary %q", ev.Summary)
	}
	if ev.Email != "jane@x.com" {
		t.Fatalf("unexpected attendee %q", ev.Email)
	}

	roles := []string{"system", "user", "assistant", "tool", "assistant"}
	if len(res.Messages) != len(roles) {
		t.Fatalf("expected %d messages, got %d", len(roles), len(res.Messages))
	}
	for i, role := range roles {
		if res.Messages[i].Role != role {
			t.Fatalf("message %d: expected role %s, got %s", i, role, res.Messages[i].Role)
		}
	}
	if res.Messages[3].ToolCallID != "call_1" {
		t.Fatalf("tool result answers %q, expected call_1", res.Messages[3].ToolCallID)
	}
	checkAlternation(t, res.Messages)
	if res.Reply != "You're all set, Jane! See you on September 1st at 10:00." {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
}

func TestRunTurnEmptyTranscript(t *testing.T) {
	completer := &scriptedCompleter{responses: []*llm.ChatCompletionResponse{
		textResponse("I didn't catch that. Could you say it again?"),
	}}
	booker := &fakeBooker{}
	engine := newTestEngine(completer, booker)

	res, err := engine.RunTurn(context.Background(), seedHistory(), "")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if len(booker.events) != 0 {
		t.Fatal("silent turn must not book anything")
	}
	if res.Messages[1].Role != "user" || res.Messages[1].Content != "" {
		t.Fatalf("expected an empty user turn, got %+v", res.Messages[1])
	}
	checkAlternation(t, res.Messages)
}

func TestRunTurnMalformedArguments(t *testing.T) {
	completer := &scriptedCompleter{responses: []*llm.ChatCompletionResponse{
		toolCallResponse("call_9", `{"name":"Jane Doe"`),
	}}
	booker := &fakeBooker{}
	engine := newTestEngine(completer, booker)

	res, err := engine.RunTurn(context.Background(), seedHistory(), "book it")
	if err != nil {
		t.Fatalf("argument parse failures must not fail the turn: %v", err)
	}
	if res.Reply != ParseApology {
		t.Fatalf("expected apology reply, got %q", res.Reply)
	}
	if len(booker.events) != 0 {
		t.Fatal("booker must not be called with malformed arguments")
	}
	if len(completer.requests) != 1 {
		t.Fatalf("expected 1 completion call, got %d", len(completer.requests))
	}

	// History still advances so the caller can restate the details.
	last := res.Messages[len(res.Messages)-1]
	if last.Role != "assistant" || last.Content != ParseApology {
		t.Fatalf("unexpected final message %+v", last)
	}
	checkAlternation(t, res.Messages)
}

func TestRunTurnBookerFailure(t *testing.T) {
	completer := &scriptedCompleter{responses: []*llm.ChatCompletionResponse{
		toolCallResponse("call_1", validBookingArgs),
	}}
	booker := &fakeBooker{err: fmt.Errorf("calendar unavailable")}
	engine := newTestEngine(completer, booker)

	res, err := engine.RunTurn(context.Background(), seedHistory(), "book it")
	if err == nil {
		t.Fatal("expected a collaborator failure")
	}
	if res != nil {
		t.Fatal("failed turn must not return a partial result")
	}
}

func TestRunTurnCompletionFailure(t *testing.T) {
	completer := &scriptedCompleter{err: fmt.Errorf("upstream down")}
	engine := newTestEngine(completer, &fakeBooker{})

	if _, err := engine.RunTurn(context.Background(), seedHistory(), "hello"); err == nil {
		t.Fatal("expected a completion failure")
	}
}
