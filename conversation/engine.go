// Package conversation runs dialogue turns against the completion
// backend and dispatches the booking tool.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bigsmile-dental/denty/llm"
)

// ParseApology is spoken when the backend handed over tool arguments
// that failed validation. The history still advances so the caller can
// restate the details.
const ParseApology = "I'm sorry, I had trouble with those booking details. Could we go over them one more time?"

// Completer is the completion backend contract.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error)
}

// Engine runs one request/response cycle per call. It is channel
// agnostic: the voice handler feeds it transcripts, the telephony
// handler feeds it carrier-recognized text.
type Engine struct {
	completer  Completer
	model      string
	dispatcher *Dispatcher
}

// NewEngine creates a turn engine bound to one model.
func NewEngine(completer Completer, model string, dispatcher *Dispatcher) *Engine {
	return &Engine{
		completer:  completer,
		model:      model,
		dispatcher: dispatcher,
	}
}

// TurnResult is the outcome of a successful turn.
type TurnResult struct {
	// Messages is the full updated history, ending with the assistant
	// reply.
	Messages []llm.ChatMessage
	// Reply is the user-facing reply text.
	Reply string
}

// UserMessage builds the user entry for a transcript. Handlers use it
// to commit the user turn even when the rest of the turn fails.
func UserMessage(text string) llm.ChatMessage {
	return llm.ChatMessage{Role: "user", Content: text}
}

// RunTurn appends the user utterance to a copy of history, consults
// the completion backend with the tool schema, executes a requested
// tool call, and produces the reply.
//
// The two-call pattern is deliberate: when the backend requests the
// tool, its outcome must be folded back into context before the
// backend can phrase the confirmation, so a second completion call
// without the tool schema produces the final reply.
//
// On error the caller owns history: only the user turn should be
// committed.
func (e *Engine) RunTurn(ctx context.Context, history []llm.ChatMessage, userText string) (*TurnResult, error) {
	// An empty transcript still becomes a turn; the backend asks for a
	// repetition and the alternating-role invariant holds.
	msgs := make([]llm.ChatMessage, 0, len(history)+4)
	msgs = append(msgs, history...)
	msgs = append(msgs, UserMessage(userText))

	resp, err := e.completer.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model:      e.model,
		Messages:   msgs,
		Tools:      e.dispatcher.Schema(),
		ToolChoice: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}
	assistant, err := firstMessage(resp)
	if err != nil {
		return nil, err
	}

	if len(assistant.ToolCalls) == 0 {
		msgs = append(msgs, llm.ChatMessage{Role: "assistant", Content: assistant.Content})
		return &TurnResult{Messages: msgs, Reply: assistant.Content}, nil
	}

	// Tool round: keep the assistant's request verbatim so the result
	// message can answer its call id.
	msgs = append(msgs, *assistant)
	call := assistant.ToolCalls[0]

	outcome, err := e.dispatcher.Execute(ctx, call.Function.Name, call.Function.Arguments)
	if err != nil {
		var parseErr *ArgumentParseError
		if !errors.As(err, &parseErr) {
			return nil, err
		}
		log.Printf("tool arguments rejected: %v", parseErr)
		msgs = append(msgs,
			llm.ChatMessage{
				Role:       "tool",
				Name:       call.Function.Name,
				ToolCallID: call.ID,
				Content:    "The booking was not created: " + parseErr.Reason,
			},
			llm.ChatMessage{Role: "assistant", Content: ParseApology},
		)
		return &TurnResult{Messages: msgs, Reply: ParseApology}, nil
	}

	msgs = append(msgs, llm.ChatMessage{
		Role:       "tool",
		Name:       call.Function.Name,
		ToolCallID: call.ID,
		Content:    outcome,
	})

	final, err := e.completer.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model:    e.model,
		Messages: msgs,
	})
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}
	confirmation, err := firstMessage(final)
	if err != nil {
		return nil, err
	}

	msgs = append(msgs, llm.ChatMessage{Role: "assistant", Content: confirmation.Content})
	return &TurnResult{Messages: msgs, Reply: confirmation.Content}, nil
}

func firstMessage(resp *llm.ChatCompletionResponse) (*llm.ChatMessage, error) {
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return nil, fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message, nil
}
