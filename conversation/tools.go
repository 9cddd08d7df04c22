package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/bigsmile-dental/denty/domain"
	"github.com/bigsmile-dental/denty/llm"
)

// ToolCreateCalendarEvent is the single tool the assistant may invoke.
const ToolCreateCalendarEvent = "create_calendar_event"

// ArgumentParseError reports tool arguments that failed validation.
// It is a soft failure: the turn advances with an apologetic reply.
type ArgumentParseError struct {
	Reason string
}

func (e *ArgumentParseError) Error() string {
	return "invalid tool arguments: " + e.Reason
}

// Booker is the external calendar collaborator. CreateEvent returns a
// link to the created event.
type Booker interface {
	CreateEvent(ctx context.Context, ev *domain.CalendarEvent) (string, error)
}

// PolicyGate decides whether a validated booking may proceed.
type PolicyGate interface {
	Evaluate(ctx context.Context, input interface{}) (string, error)
}

// Dispatcher validates and executes tool calls requested by the
// completion backend.
type Dispatcher struct {
	booker         Booker
	gate           PolicyGate
	location       *time.Location
	clinicLocation string
}

// NewDispatcher creates a dispatcher. A nil gate allows every booking.
func NewDispatcher(booker Booker, gate PolicyGate, location *time.Location, clinicLocation string) *Dispatcher {
	if location == nil {
		location = time.UTC
	}
	return &Dispatcher{
		booker:         booker,
		gate:           gate,
		location:       location,
		clinicLocation: clinicLocation,
	}
}

// Schema returns the tool definitions advertised to the completion
// backend.
func (d *Dispatcher) Schema() []llm.Tool {
	return []llm.Tool{
		{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        ToolCreateCalendarEvent,
				Description: "Creates a calendar event for a dental appointment after collecting all necessary details.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":         map[string]interface{}{"type": "string", "description": "The full name of the patient."},
						"phone_number": map[string]interface{}{"type": "string", "description": "The patient's phone number."},
						"email":        map[string]interface{}{"type": "string", "description": "The patient's email address."},
						"date":         map[string]interface{}{"type": "string", "description": "The desired date for the appointment in YYYY-MM-DD format, e.g., 2025-08-15."},
						"time":         map[string]interface{}{"type": "string", "description": "The desired time for the appointment in 24-hour HH:MM format, e.g., 14:30 for 2:30 PM."},
						"service":      map[string]interface{}{"type": "string", "description": "The reason for the visit, e.g., 'Dental Cleaning', 'Wisdom Tooth Consultation'."},
					},
					"required": []string{"name", "phone_number", "email", "date", "time", "service"},
				},
			},
		},
	}
}

// Execute runs a tool call and returns the outcome text folded back
// into the conversation. A *ArgumentParseError means the arguments
// were rejected before any side effect; any other error is a
// collaborator failure.
func (d *Dispatcher) Execute(ctx context.Context, name, rawArgs string) (string, error) {
	if name != ToolCreateCalendarEvent {
		return "", &ArgumentParseError{Reason: fmt.Sprintf("unknown tool %q", name)}
	}

	var booking domain.BookingRequest
	dec := json.NewDecoder(bytes.NewReader([]byte(rawArgs)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&booking); err != nil {
		return "", &ArgumentParseError{Reason: err.Error()}
	}
	if err := booking.Validate(); err != nil {
		return "", &ArgumentParseError{Reason: err.Error()}
	}

	start, end, err := booking.StartEnd(d.location)
	if err != nil {
		return "", &ArgumentParseError{Reason: err.Error()}
	}

	if d.gate != nil {
		decision, err := d.gate.Evaluate(ctx, map[string]interface{}{
			"tool_name": name,
			"hour":      start.Hour(),
			"weekday":   start.Weekday().String(),
		})
		if err != nil {
			return "", fmt.Errorf("booking policy: %w", err)
		}
		if decision != "allow" {
			// Not an error: the refusal is the tool outcome, so the
			// assistant can offer a different slot.
			return fmt.Sprintf("Booking declined: the clinic only takes appointments between 09:00 and 17:00, Monday through Saturday. The requested slot %s at %s is outside clinic hours.", booking.Date, booking.Time), nil
		}
	}

	event := &domain.CalendarEvent{
		Email:       booking.Email,
		Summary:     fmt.Sprintf("%s for %s", booking.Service, booking.Name),
		Location:    d.clinicLocation,
		Description: fmt.Sprintf("Patient: %s\nPhone: %s\nReason: %s", booking.Name, booking.PhoneNumber, booking.Service),
		Start:       start,
		End:         end,
		TimeZone:    d.location.String(),
	}

	link, err := d.booker.CreateEvent(ctx, event)
	if err != nil {
		return "", fmt.Errorf("create calendar event: %w", err)
	}
	if link != "" {
		log.Printf("calendar event created: %s", link)
	}

	return fmt.Sprintf("Successfully booked appointment for %s on %s at %s. Confirmation sent to %s.",
		booking.Name, booking.Date, booking.Time, booking.Email), nil
}
