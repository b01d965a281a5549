package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spec-kit/civictrack/internal/domain"
)

type fakePhotoStore struct {
	mu    sync.Mutex
	saved []string
}

func (s *fakePhotoStore) Save(_ context.Context, filename string, r io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, filename)
	return "http://photos.local/" + filename, nil
}

func (s *fakePhotoStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// multipartCreate posts a multipart ticket-create request with the given
// form fields and one photo part per name.
func (ta *testApp) multipartCreate(t *testing.T, fields map[string]string, photoNames []string, sessionID string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, val := range fields {
		if err := writer.WriteField(key, val); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	for _, name := range photoNames {
		part, err := writer.CreateFormFile("photos", name)
		if err != nil {
			t.Fatalf("create form file %s: %v", name, err)
		}
		if _, err := part.Write([]byte("jpeg-bytes")); err != nil {
			t.Fatalf("write photo %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/tickets/create", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: sessionID})
	}

	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("POST /tickets/create: %v", err)
	}
	return resp
}

func ticketFormFields() map[string]string {
	return map[string]string{
		"title":       "Broken streetlight",
		"description": "The light on 5th has been out for a week",
		"category":    "lighting",
	}
}

func TestCreateTicketStoresPhotos(t *testing.T) {
	store := &fakePhotoStore{}
	ta := newTestAppWithPhotos(t, store)
	sessionID := ta.seedAccount(t, "resident@example.com", "Resident", domain.RoleCommunityMember)

	resp := ta.multipartCreate(t, ticketFormFields(), []string{"one.jpg", "two.jpg"}, sessionID)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp, &body)

	photos, ok := body["photos"].([]any)
	if !ok || len(photos) != 2 {
		t.Fatalf("photos = %v, want 2 URLs", body["photos"])
	}
	for _, url := range photos {
		if !strings.HasPrefix(url.(string), "http://photos.local/") {
			t.Errorf("photo url = %v, want store URL", url)
		}
	}
	if store.count() != 2 {
		t.Errorf("stored photos = %d, want 2", store.count())
	}
}

func TestCreateTicketRejectsTooManyPhotos(t *testing.T) {
	store := &fakePhotoStore{}
	ta := newTestAppWithPhotos(t, store)
	sessionID := ta.seedAccount(t, "resident@example.com", "Resident", domain.RoleCommunityMember)

	names := []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg"}
	resp := ta.multipartCreate(t, ticketFormFields(), names, sessionID)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["error"] != "too many photos" {
		t.Errorf("error = %q", body["error"])
	}
	if store.count() != 0 {
		t.Errorf("stored photos = %d, want 0", store.count())
	}
}

func TestCreateTicketPhotosWithoutStore(t *testing.T) {
	ta := newTestApp(t)
	sessionID := ta.seedAccount(t, "resident@example.com", "Resident", domain.RoleCommunityMember)

	resp := ta.multipartCreate(t, ticketFormFields(), []string{"one.jpg"}, sessionID)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["error"] != "photo uploads are not enabled" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestCreateTicketInvalidPayloadUploadsNothing(t *testing.T) {
	store := &fakePhotoStore{}
	ta := newTestAppWithPhotos(t, store)
	sessionID := ta.seedAccount(t, "resident@example.com", "Resident", domain.RoleCommunityMember)

	fields := ticketFormFields()
	delete(fields, "title")
	resp := ta.multipartCreate(t, fields, []string{"one.jpg"}, sessionID)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if store.count() != 0 {
		t.Errorf("stored photos = %d, want 0 after rejected create", store.count())
	}
}
