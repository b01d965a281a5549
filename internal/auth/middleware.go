package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civictrack/internal/domain"
	"github.com/spec-kit/civictrack/internal/repository"
	apperrors "github.com/spec-kit/civictrack/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Account *domain.Account
	Session *domain.Session
}

// SessionAuth resolves the session cookie into a principal.
type SessionAuth struct {
	cookieName string
	sessions   SessionStore
	accounts   repository.AccountRepository
}

// NewSessionAuth constructs the middleware.
func NewSessionAuth(cookieName string, sessions SessionStore, accounts repository.AccountRepository) *SessionAuth {
	return &SessionAuth{cookieName: cookieName, sessions: sessions, accounts: accounts}
}

// Resolve looks up the session cookie and loads the account behind it.
// Fails with Unauthenticated when the cookie is missing or the session is
// unknown.
func (m *SessionAuth) Resolve(c *fiber.Ctx) (*Principal, error) {
	sessionID := c.Cookies(m.cookieName)
	if sessionID == "" {
		return nil, apperrors.NewUnauthorized("missing session cookie")
	}

	session, err := m.sessions.Get(c.Context(), sessionID)
	if err != nil {
		if err == ErrNoSession {
			return nil, apperrors.NewUnauthorized("invalid or expired session")
		}
		return nil, apperrors.MapError(err)
	}

	account, err := m.accounts.GetByEmail(c.Context(), session.Email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &Principal{Account: account, Session: session}, nil
}

// Handle enforces authentication for protected routes. Banned accounts are
// rejected outright; all routes behind this middleware mutate state or are
// admin surfaces.
func (m *SessionAuth) Handle(c *fiber.Ctx) error {
	principal, err := m.Resolve(c)
	if err != nil {
		return err
	}
	if principal.Account.Banned {
		return apperrors.NewForbidden("account is banned")
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
