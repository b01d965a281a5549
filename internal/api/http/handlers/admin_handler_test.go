package handlers_test

import (
	"net/http"
	"testing"

	"github.com/spec-kit/civictrack/internal/domain"
)

func TestAdminRoutesAreAdminOnly(t *testing.T) {
	ta := newTestApp(t)
	memberSession := ta.seedAccount(t, "resident@example.com", "Resident", domain.RoleCommunityMember)

	resp := ta.request(t, http.MethodGet, "/admin/banned-users", nil, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status without session = %d, want 401", resp.StatusCode)
	}

	resp = ta.request(t, http.MethodGet, "/admin/banned-users", nil, memberSession)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status for member = %d, want 403", resp.StatusCode)
	}
}

func TestBanAndUnbanUser(t *testing.T) {
	ta := newTestApp(t)
	adminSession := ta.seedAccount(t, "admin@example.com", "Admin", domain.RoleAdmin)
	ta.seedAccount(t, "troll@example.com", "Troll", domain.RoleCommunityMember)

	resp := ta.request(t, http.MethodGet, "/admin/ban-user/troll@example.com", nil, adminSession)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ban status = %d, want 200", resp.StatusCode)
	}
	var msg map[string]string
	decodeBody(t, resp, &msg)
	if msg["message"] != "User banned successfully" {
		t.Errorf("message = %q", msg["message"])
	}

	resp = ta.request(t, http.MethodGet, "/admin/banned-users", nil, adminSession)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("banned-users status = %d", resp.StatusCode)
	}
	var banned []map[string]string
	decodeBody(t, resp, &banned)
	if len(banned) != 1 || banned[0]["email"] != "troll@example.com" {
		t.Errorf("banned = %v", banned)
	}
	if _, ok := banned[0]["password"]; ok {
		t.Error("banned listing must not leak credentials")
	}

	resp = ta.request(t, http.MethodGet, "/admin/unban-user/troll@example.com", nil, adminSession)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unban status = %d, want 200", resp.StatusCode)
	}
	decodeBody(t, resp, &msg)
	if msg["message"] != "User unbanned successfully" {
		t.Errorf("message = %q", msg["message"])
	}

	resp = ta.request(t, http.MethodGet, "/admin/banned-users", nil, adminSession)
	decodeBody(t, resp, &banned)
	if len(banned) != 0 {
		t.Errorf("banned after unban = %v", banned)
	}

	resp = ta.request(t, http.MethodGet, "/admin/ban-user/ghost@example.com", nil, adminSession)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("ban unknown user status = %d, want 404", resp.StatusCode)
	}
}

func TestReportedTicketsAndClearReports(t *testing.T) {
	ta := newTestApp(t)
	adminSession := ta.seedAccount(t, "admin@example.com", "Admin", domain.RoleAdmin)
	memberSession := ta.seedAccount(t, "resident@example.com", "Resident", domain.RoleCommunityMember)

	created := ta.createTicket(t, memberSession)
	id := created["id"].(string)
	resp := ta.request(t, http.MethodPost, "/tickets/"+id+"/report", map[string]string{"comment": "spam"}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report status = %d", resp.StatusCode)
	}

	resp = ta.request(t, http.MethodGet, "/admin/reported-tickets", nil, adminSession)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reported-tickets status = %d", resp.StatusCode)
	}
	var items []map[string]any
	decodeBody(t, resp, &items)
	if len(items) != 1 {
		t.Fatalf("reported tickets = %d, want 1", len(items))
	}
	reports, ok := items[0]["reports"].(map[string]any)
	if !ok {
		t.Fatalf("admin projection must include reports: %v", items[0])
	}
	if reports["count"] != 1.0 {
		t.Errorf("count = %v, want 1", reports["count"])
	}
	if _, ok := items[0]["activity"]; !ok {
		t.Error("admin projection must include activity")
	}

	resp = ta.request(t, http.MethodGet, "/admin/clear-reports/"+id, nil, adminSession)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear-reports status = %d", resp.StatusCode)
	}
	var msg map[string]string
	decodeBody(t, resp, &msg)
	if msg["message"] != "Reports cleared successfully" {
		t.Errorf("message = %q", msg["message"])
	}

	resp = ta.request(t, http.MethodGet, "/admin/reported-tickets", nil, adminSession)
	decodeBody(t, resp, &items)
	if len(items) != 0 {
		t.Errorf("reported tickets after clear = %d, want 0", len(items))
	}

	resp = ta.request(t, http.MethodGet, "/admin/clear-reports/unknown-id", nil, adminSession)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("clear unknown ticket status = %d, want 404", resp.StatusCode)
	}
}
