// Package domain defines the core domain models for the booking server.
package domain

import (
	"fmt"
	"time"
)

// Booking date/time layouts used by the tool contract.
const (
	BookingDateLayout = "2006-01-02"
	BookingTimeLayout = "15:04"
)

// AppointmentLength is the fixed slot length for a booking.
const AppointmentLength = 30 * time.Minute

// BookingRequest carries the six fields the assistant must collect
// before an appointment can be booked.
type BookingRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Service     string `json:"service"`
}

// Validate checks that every required field is present and that date
// and time parse against their declared layouts.
func (b *BookingRequest) Validate() error {
	missing := []string{}
	if b.Name == "" {
		missing = append(missing, "name")
	}
	if b.PhoneNumber == "" {
		missing = append(missing, "phone_number")
	}
	if b.Email == "" {
		missing = append(missing, "email")
	}
	if b.Date == "" {
		missing = append(missing, "date")
	}
	if b.Time == "" {
		missing = append(missing, "time")
	}
	if b.Service == "" {
		missing = append(missing, "service")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %v", missing)
	}
	if _, err := time.Parse(BookingDateLayout, b.Date); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", b.Date)
	}
	if _, err := time.Parse(BookingTimeLayout, b.Time); err != nil {
		return fmt.Errorf("invalid time %q: expected HH:MM", b.Time)
	}
	return nil
}

// StartEnd resolves the requested slot into start and end instants in
// the clinic's timezone. End is start plus the fixed slot length.
func (b *BookingRequest) StartEnd(loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(BookingDateLayout+" "+BookingTimeLayout, b.Date+" "+b.Time, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid appointment slot: %w", err)
	}
	return start, start.Add(AppointmentLength), nil
}

// CalendarEvent is the shape handed to the calendar collaborator.
type CalendarEvent struct {
	Email       string    `json:"email"`
	Summary     string    `json:"summary"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	TimeZone    string    `json:"time_zone,omitempty"`
}
