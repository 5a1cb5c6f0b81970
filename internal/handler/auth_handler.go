package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ArtlessApps/ruckplan/internal/middleware"
	"github.com/ArtlessApps/ruckplan/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService  *service.AuthService
	tokenService *service.TokenService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, tokenService *service.TokenService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
	}
}

type loginRequest struct {
	DeviceName string `json:"device_name"`
	Platform   string `json:"platform"` // "ios" or "watchos"
}

// LoginOrRegister handles POST /v1/auth/login
// The Firebase ID token rides in the Authorization header; tokens come back
// in the body since mobile clients keep them in the keychain, not cookies.
func (h *AuthHandler) LoginOrRegister(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Missing Authorization header",
		})
	}

	// Extract token (format: "Bearer <token>")
	token := authHeader
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		token = authHeader[7:]
	}

	var req loginRequest
	_ = c.BodyParser(&req) // device info is optional

	resp, err := h.authService.LoginOrRegister(c.Context(), service.LoginRequest{
		FirebaseToken: token,
		DeviceName:    req.DeviceName,
		Platform:      req.Platform,
	})
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"token":         resp.Tokens.AccessToken,
		"refresh_token": resp.Tokens.RefreshToken,
		"expires_in":    resp.Tokens.ExpiresIn,
		"is_new_user":   resp.IsNewUser,
		"user": fiber.Map{
			"id":    resp.User.ID,
			"name":  resp.User.Name,
			"email": resp.User.Email,
			"roles": resp.User.Roles,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	DeviceName   string `json:"device_name"`
	Platform     string `json:"platform"`
}

// RefreshToken handles POST /v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No refresh token provided",
		})
	}

	tokenPair, err := h.tokenService.RefreshAccessToken(c.Context(), req.RefreshToken, req.DeviceName, req.Platform)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired refresh token",
		})
	}

	return c.JSON(fiber.Map{
		"token":         tokenPair.AccessToken,
		"refresh_token": tokenPair.RefreshToken,
		"expires_in":    tokenPair.ExpiresIn,
	})
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err == nil && req.RefreshToken != "" {
		_ = h.tokenService.RevokeRefreshToken(c.Context(), req.RefreshToken)
	}

	return c.JSON(fiber.Map{
		"message": "logged out",
	})
}

// LogoutAll handles POST /v1/auth/logout-all. Revokes every refresh token
// the user holds, signing out all devices (phone and watch).
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	if err := h.tokenService.RevokeAllUserTokens(c.Context(), userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to revoke tokens",
		})
	}

	return c.JSON(fiber.Map{
		"message": "logged out everywhere",
	})
}
