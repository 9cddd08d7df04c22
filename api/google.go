package api

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// GoogleAuth redirects to the Google consent page for the one-time
// calendar authorization flow.
// GET /google/auth
func (h *Handler) GoogleAuth(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.authorizer.AuthURL())
}

// OAuthCallback exchanges the authorization code and persists the
// calendar token, then sends the operator back to the frontend.
// GET /oauth2callback
func (h *Handler) OAuthCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.String(http.StatusBadRequest, "Authorization code missing.")
	}

	tok, err := h.authorizer.Exchange(c.Request().Context(), code)
	if err != nil {
		log.Printf("ERROR: authorization exchange failed: %v", err)
		return c.String(http.StatusInternalServerError, "Error during authorization process.")
	}
	if tok.RefreshToken != "" {
		log.Printf("refresh token received; calendar client is authorized")
	}

	frontend := "/"
	if len(h.config.CORSAllowedOrigins) > 0 {
		frontend = h.config.CORSAllowedOrigins[0]
	}
	return c.Redirect(http.StatusFound, frontend+"/auth-success")
}
