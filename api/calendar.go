package api

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bigsmile-dental/denty/domain"
)

type inviteRequest struct {
	Email       string `json:"email"`
	Summary     string `json:"summary"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// SendInvite creates a calendar event directly, bypassing the dialogue
// engines.
// POST /api/calendar/send-invite
func (h *Handler) SendInvite(c echo.Context) error {
	ctx := c.Request().Context()

	var req inviteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid request body",
		})
	}
	if req.Email == "" || req.Summary == "" || req.Start == "" || req.End == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Missing required fields",
		})
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "start must be an RFC3339 timestamp",
		})
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "end must be an RFC3339 timestamp",
		})
	}

	link, err := h.booker.CreateEvent(ctx, &domain.CalendarEvent{
		Email:       req.Email,
		Summary:     req.Summary,
		Location:    req.Location,
		Description: req.Description,
		Start:       start,
		End:         end,
		TimeZone:    h.config.ClinicTimezone,
	})
	if err != nil {
		log.Printf("ERROR: failed to send invite: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to send invite",
		})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":   true,
		"message":   "Invite sent",
		"eventLink": link,
	})
}
