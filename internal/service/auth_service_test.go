package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/civictrack/internal/auth"
	"github.com/spec-kit/civictrack/internal/config"
	"github.com/spec-kit/civictrack/internal/domain"
	"github.com/spec-kit/civictrack/internal/repository/memory"
	apperrors "github.com/spec-kit/civictrack/pkg/util"
)

type fakeSessionStore struct {
	sessions map[string]*domain.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *fakeSessionStore) Create(_ context.Context, email string, ttl time.Duration) (*domain.Session, error) {
	session := &domain.Session{ID: uuid.NewString(), Email: email, ValidUntil: time.Now().Add(ttl)}
	s.sessions[session.ID] = session
	return session, nil
}

func (s *fakeSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, auth.ErrNoSession
	}
	return session, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func newAuthService() (*AuthService, *memory.AccountRepo, *fakeSessionStore) {
	accounts := memory.NewAccountRepo()
	sessions := newFakeSessionStore()
	cfg := config.SessionConfig{CookieName: "session_id", TTLMinutes: 60, BcryptCost: 4}
	return NewAuthService(cfg, accounts, sessions), accounts, sessions
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error with status %d, got nil", status)
	}
	if got := apperrors.ToDomainError(err).HTTPStatus; got != status {
		t.Fatalf("status = %d, want %d (err: %v)", got, status, err)
	}
}

func TestRegisterCreatesCommunityMemberWithSession(t *testing.T) {
	svc, accounts, sessions := newAuthService()
	ctx := context.Background()

	account, session, err := svc.Register(ctx, "resident@example.com", "hunter2", "Resident")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if account.Role != domain.RoleCommunityMember {
		t.Errorf("role = %q, want community-member", account.Role)
	}
	if account.PasswordHash == "hunter2" || account.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if _, err := sessions.Get(ctx, session.ID); err != nil {
		t.Errorf("session not persisted: %v", err)
	}
	if _, err := accounts.GetByEmail(ctx, "resident@example.com"); err != nil {
		t.Errorf("account not persisted: %v", err)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "resident@example.com", "hunter2", "Resident"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, _, err := svc.Register(ctx, "resident@example.com", "other", "Other")
	wantStatus(t, err, http.StatusConflict)
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "resident@example.com", "hunter2", "Resident"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	account, session, err := svc.Login(ctx, "resident@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if account.Email != "resident@example.com" || session.ID == "" {
		t.Error("login should return the account and a fresh session")
	}

	_, _, err = svc.Login(ctx, "resident@example.com", "wrong")
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestLoginUnknownEmailUnauthorized(t *testing.T) {
	svc, _, _ := newAuthService()

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestLoginBannedAccountForbidden(t *testing.T) {
	svc, accounts, _ := newAuthService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "banned@example.com", "hunter2", "Banned"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	account, err := accounts.GetByEmail(ctx, "banned@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	account.Banned = true
	if err := accounts.Update(ctx, account); err != nil {
		t.Fatalf("Update: %v", err)
	}

	_, _, err = svc.Login(ctx, "banned@example.com", "hunter2")
	wantStatus(t, err, http.StatusForbidden)
}
