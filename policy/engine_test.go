package policy

import (
	"context"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func TestAllowWithinHours(t *testing.T) {
	e := newTestEngine(t)
	decision, err := e.Evaluate(context.Background(), map[string]interface{}{
		"tool_name": "create_calendar_event",
		"hour":      10,
		"weekday":   "Monday",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "allow" {
		t.Fatalf("expected allow, got %q", decision)
	}
}

func TestBlockOutsideHours(t *testing.T) {
	e := newTestEngine(t)
	for _, hour := range []int{0, 8, 17, 22} {
		decision, err := e.Evaluate(context.Background(), map[string]interface{}{
			"tool_name": "create_calendar_event",
			"hour":      hour,
			"weekday":   "Tuesday",
		})
		if err != nil {
			t.Fatalf("Evaluate failed for hour %d: %v", hour, err)
		}
		if decision != "block" {
			t.Fatalf("expected block for hour %d, got %q", hour, decision)
		}
	}
}

func TestBlockSunday(t *testing.T) {
	e := newTestEngine(t)
	decision, err := e.Evaluate(context.Background(), map[string]interface{}{
		"tool_name": "create_calendar_event",
		"hour":      11,
		"weekday":   "Sunday",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "block" {
		t.Fatalf("expected block, got %q", decision)
	}
}

func TestOtherToolsUnconstrained(t *testing.T) {
	e := newTestEngine(t)
	decision, err := e.Evaluate(context.Background(), map[string]interface{}{
		"tool_name": "something_else",
		"hour":      3,
		"weekday":   "Sunday",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "allow" {
		t.Fatalf("expected allow, got %q", decision)
	}
}
