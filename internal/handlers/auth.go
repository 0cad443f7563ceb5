package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/dimitrije/accounts-api/internal/config"
	"github.com/dimitrije/accounts-api/internal/middleware"
	"github.com/dimitrije/accounts-api/internal/services"
	"github.com/dimitrije/accounts-api/pkg/dto"
)

type AuthHandler struct {
	cfg         *config.Config
	authService AuthServiceInterface
	jwtService  JWTServiceInterface
	validate    *validator.Validate
}

func NewAuthHandler(cfg *config.Config, authService AuthServiceInterface, jwtService JWTServiceInterface) *AuthHandler {
	return &AuthHandler{
		cfg:         cfg,
		authService: authService,
		jwtService:  jwtService,
		validate:    validator.New(),
	}
}

func (h *AuthHandler) Register(c *drift.Context) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	_, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserExists):
			c.BadRequest("user already exists")
		case errors.Is(err, services.ErrInvalidRole):
			c.BadRequest("invalid role")
		default:
			c.InternalServerError("failed to register user")
		}
		return
	}

	_ = c.JSON(http.StatusCreated, dto.RegisterResponse{
		Success: true,
		Message: "user registered",
	})
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	_, pair, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.Unauthorized("invalid credentials")
			return
		}
		c.InternalServerError("failed to log in")
		return
	}

	_ = c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *drift.Context) {
	userID := middleware.GetUserID(c)

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		c.InternalServerError("failed to log out")
		return
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "logged out",
	})
}

// Refresh validates the presented refresh token's signature first, then
// lets the service compare it against the stored session and rotate.
func (h *AuthHandler) Refresh(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("access denied")
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), claims.UserID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrAccessDenied) {
			c.Unauthorized("access denied")
			return
		}
		c.InternalServerError("failed to refresh tokens")
		return
	}

	_ = c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (h *AuthHandler) Profile(c *drift.Context) {
	_ = c.JSON(http.StatusOK, dto.ProfileResponse{
		UserID: middleware.GetUserID(c).String(),
		Email:  middleware.GetUserEmail(c),
		Role:   middleware.GetUserRole(c),
	})
}

func (h *AuthHandler) AdminRoute(c *drift.Context) {
	_ = c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "admin access granted",
	})
}

func (h *AuthHandler) MaintainerRoute(c *drift.Context) {
	_ = c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "maintainer access granted",
	})
}

func (h *AuthHandler) GoogleRedirectURL(c *drift.Context) {
	_ = c.JSON(http.StatusOK, dto.AuthURLResponse{
		Success: true,
		Data:    h.authService.AuthorizationURL(),
	})
}

// GoogleCallback finishes the OAuth flow. The session token travels back
// as an HttpOnly cookie on a redirect to the client app, never in a
// response body the browser could expose to scripts.
func (h *AuthHandler) GoogleCallback(c *drift.Context) {
	code := c.QueryParam("code")
	if code == "" {
		c.BadRequest("missing authorization code")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	_, token, err := h.authService.GoogleLogin(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOAuthExchange):
			c.BadGateway("failed to exchange authorization code")
		case errors.Is(err, services.ErrMissingEmail):
			c.Unauthorized("google account has no email")
		default:
			c.InternalServerError("failed to log in with google")
		}
		return
	}

	http.SetCookie(c.Response, &http.Cookie{
		Name:     "auth",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	c.Response.Header().Set("Location", h.cfg.ClientURL)
	c.Response.WriteHeader(http.StatusFound)
	c.Abort()
}
