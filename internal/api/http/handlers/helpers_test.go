package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/civictrack/internal/api/http"
	"github.com/spec-kit/civictrack/internal/api/http/handlers"
	"github.com/spec-kit/civictrack/internal/auth"
	"github.com/spec-kit/civictrack/internal/config"
	"github.com/spec-kit/civictrack/internal/domain"
	"github.com/spec-kit/civictrack/internal/events"
	"github.com/spec-kit/civictrack/internal/observability"
	"github.com/spec-kit/civictrack/internal/persistence"
	"github.com/spec-kit/civictrack/internal/repository/memory"
	"github.com/spec-kit/civictrack/internal/service"
	"github.com/spec-kit/civictrack/internal/storage"
)

const testCookieName = "session_id"

type testApp struct {
	app      *fiber.App
	accounts *memory.AccountRepo
	tickets  *memory.TicketRepo
	sessions auth.SessionStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithPhotos(t, nil)
}

func newTestAppWithPhotos(t *testing.T, photos storage.PhotoStore) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	accounts := memory.NewAccountRepo()
	tickets := memory.NewTicketRepo()
	sessions := auth.NewRedisSessionStore(client)
	guard := auth.NewSessionAuth(testCookieName, sessions, accounts)

	sessionCfg := config.SessionConfig{CookieName: testCookieName, TTLMinutes: 60, BcryptCost: 4}
	authService := service.NewAuthService(sessionCfg, accounts, sessions)
	ticketService := service.NewTicketService(tickets, events.NewInMemoryDispatcher())
	adminService := service.NewAdminService(accounts, tickets)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler("civictrack-test", "test", &persistence.Postgres{}, &persistence.Redis{Client: client}),
		Auth:    handlers.NewAuthHandler(authService, guard, sessionCfg),
		Tickets: handlers.NewTicketsHandler(ticketService, guard, photos),
		Admin:   handlers.NewAdminHandler(adminService),
		Guard:   guard,
	})

	return &testApp{app: app, accounts: accounts, tickets: tickets, sessions: sessions}
}

// seedAccount stores an account and opens a session for it, returning the
// session cookie value.
func (ta *testApp) seedAccount(t *testing.T, email, name string, role domain.Role) string {
	t.Helper()
	ctx := context.Background()

	hash, err := auth.HashPassword("hunter2", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	account := &domain.Account{Email: email, Name: name, PasswordHash: hash, Role: role}
	if err := ta.accounts.Create(ctx, account); err != nil {
		t.Fatalf("Create account: %v", err)
	}

	session, err := ta.sessions.Create(ctx, email, time.Hour)
	if err != nil {
		t.Fatalf("Create session: %v", err)
	}
	return session.ID
}

func (ta *testApp) request(t *testing.T, method, path string, body any, sessionID string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: sessionID})
	}

	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func sessionCookie(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == testCookieName {
			return cookie.Value
		}
	}
	return ""
}
