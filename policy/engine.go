// Package policy gates booking tool calls with an OPA policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.booking_policy.decision"),
		rego.Module("booking_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the booking policy.
// Input is a map with keys: tool_name, hour, weekday.
// Returns the decision: "allow" or "block".
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default, so an empty result set means
		// the module is broken rather than the call being allowed.
		return "", fmt.Errorf("policy returned no decision")
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("policy returned unexpected type %T", results[0].Expressions[0].Value)
}

// DefaultPolicy books only within clinic hours, Monday through Saturday.
const DefaultPolicy = `
package booking_policy

import rego.v1

default decision := "allow"

decision := "block" if {
	input.tool_name == "create_calendar_event"
	input.hour < 9
}

decision := "block" if {
	input.tool_name == "create_calendar_event"
	input.hour >= 17
}

decision := "block" if {
	input.tool_name == "create_calendar_event"
	input.weekday == "Sunday"
}
`
