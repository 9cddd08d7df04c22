package api

import (
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigsmile-dental/denty/domain"
)

const tokenLifetime = 30 * 24 * time.Hour

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers an account and returns a signed token.
// POST /api/auth/signup
func (h *Handler) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"message": "invalid request body"})
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"message": "Please enter all fields"})
	}

	existing, err := h.users.FindUser(ctx, req.Email, req.Username)
	if err != nil {
		log.Printf("ERROR: signup lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Internal Server Error"})
	}
	if existing != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"message": "User already exists"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: password hashing failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Internal Server Error"})
	}

	id, err := h.users.CreateUser(ctx, &domain.User{
		Email:    req.Email,
		Username: req.Username,
		Password: string(hashed),
	})
	if err != nil {
		log.Printf("ERROR: user insert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Internal Server Error"})
	}

	token, err := h.signToken(id)
	if err != nil {
		log.Printf("ERROR: token signing failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Internal Server Error"})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       id,
			"email":    req.Email,
			"username": req.Username,
		},
	})
}

// Signin verifies credentials and returns a signed token.
// POST /api/auth/signin
func (h *Handler) Signin(c echo.Context) error {
	ctx := c.Request().Context()

	var req signinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"message": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"message": "Please enter all fields"})
	}

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		log.Printf("ERROR: signin lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Internal Server Error"})
	}
	if user == nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"message": "Invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"message": "Invalid credentials"})
	}

	token, err := h.signToken(user.ID)
	if err != nil {
		log.Printf("ERROR: token signing failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"message": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
		},
	})
}

func (h *Handler) signToken(userID int64) (string, error) {
	if h.config.JWTSecret == "" {
		return "", jwt.ErrInvalidKey
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(tokenLifetime).Unix(),
	})
	return token.SignedString([]byte(h.config.JWTSecret))
}
