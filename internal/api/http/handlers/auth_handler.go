package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civictrack/internal/api/dto"
	"github.com/spec-kit/civictrack/internal/auth"
	"github.com/spec-kit/civictrack/internal/config"
	"github.com/spec-kit/civictrack/internal/domain"
	"github.com/spec-kit/civictrack/internal/service"
	apperrors "github.com/spec-kit/civictrack/pkg/util"
)

// AuthHandler exposes registration, login and session introspection.
type AuthHandler struct {
	auth  *service.AuthService
	guard *auth.SessionAuth
	cfg   config.SessionConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, guard *auth.SessionAuth, cfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{auth: authService, guard: guard, cfg: cfg}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	account, session, err := h.auth.Register(c.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session)
	return c.Status(http.StatusCreated).JSON(dto.AccountFromDomain(account))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	account, session, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, session)
	return c.JSON(dto.AccountFromDomain(account))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, err := h.guard.Resolve(c)
	if err != nil {
		return err
	}
	return c.JSON(dto.AccountFromDomain(principal.Account))
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, session *domain.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    session.ID,
		Expires:  session.ValidUntil,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
