package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/imm-a8ub/backoffice/internal/config"
	"github.com/imm-a8ub/backoffice/internal/core"
	"github.com/imm-a8ub/backoffice/internal/enrich"
	"github.com/imm-a8ub/backoffice/internal/listing"
	"github.com/imm-a8ub/backoffice/internal/zone"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.SessionSecret = "test-secret"
	cfg.Auth.SessionTTL = time.Hour
	cfg.Auth.AdminPassword = "admin-pass"
	cfg.Auth.EmployeePassword = "employee-pass"
	cfg.Rate.Enabled = false

	registry := zone.NewRegistry([]zone.Zone{
		{Name: "Baneasa", POT: "45%", CUT: "1.2"},
	})
	svc := core.NewService(core.NewStore(), registry, enrich.New(nil, nil), core.ServiceConfig{})

	srv, err := NewServer(svc, cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

// do sends a request through the router and returns the recorder.
func do(t *testing.T, srv *Server, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

// login authenticates and returns the session cookie.
func login(t *testing.T, srv *Server, username, password string) *http.Cookie {
	t.Helper()

	w := do(t, srv, http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login as %s: status %d, body %s", username, w.Code, w.Body.String())
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("login response carries no session cookie")
	return nil
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

// ----------------------------------------------------------------------------
// Session Tests
// ----------------------------------------------------------------------------

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		username string
		password string
		status   int
		role     string
	}{
		{"admin ok", "admin", "admin-pass", http.StatusOK, "admin"},
		{"employee ok", "employee", "employee-pass", http.StatusOK, "employee"},
		{"wrong password", "admin", "nope", http.StatusUnauthorized, ""},
		{"unknown user", "ghost", "admin-pass", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, "/api/login", map[string]string{
				"username": tt.username,
				"password": tt.password,
			}, nil)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}

			body := decodeBody[map[string]string](t, w)
			if body["role"] != tt.role {
				t.Errorf("role = %q, want %q", body["role"], tt.role)
			}
		})
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	srv := newTestServer(t)
	cookie := login(t, srv, "admin", "admin-pass")

	w := do(t, srv, http.MethodPost, "/api/logout", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie && c.MaxAge >= 0 {
			t.Errorf("session cookie not expired: MaxAge = %d", c.MaxAge)
		}
	}
}

func TestRequireSession(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"garbage token", &http.Cookie{Name: sessionCookie, Value: "not-a-jwt"}},
		{"wrong signature", &http.Cookie{
			Name:  sessionCookie,
			Value: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJhZG1pbiJ9.invalid",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodGet, "/api/admin_data", nil, tt.cookie)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Role guard Tests
// ----------------------------------------------------------------------------

func TestCollectionRoleGuards(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, "admin", "admin-pass")
	employee := login(t, srv, "employee", "employee-pass")

	tests := []struct {
		name   string
		path   string
		cookie *http.Cookie
		status int
	}{
		{"admin_data as admin", "/api/admin_data", admin, http.StatusOK},
		{"admin_data as employee", "/api/admin_data", employee, http.StatusUnauthorized},
		{"employee_data as employee", "/api/employee_data", employee, http.StatusOK},
		{"employee_data as admin", "/api/employee_data", admin, http.StatusUnauthorized},
		{"validation_data as admin", "/api/validation_data", admin, http.StatusOK},
		{"validation_data as employee", "/api/validation_data", employee, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodGet, tt.path, nil, tt.cookie)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
			if tt.status == http.StatusUnauthorized {
				body := decodeBody[ErrorResponse](t, w)
				if body.Code != "AUTH001" {
					t.Errorf("error code = %q, want AUTH001", body.Code)
				}
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Workflow Tests
// ----------------------------------------------------------------------------

func TestWorkflowThroughAPI(t *testing.T) {
	srv := newTestServer(t)
	srv.service.Store().Ingest([]listing.Listing{
		{ID: "A", Description: "desc a"},
	})

	admin := login(t, srv, "admin", "admin-pass")
	employee := login(t, srv, "employee", "employee-pass")

	// Admin dispatches A with one question.
	w := do(t, srv, http.MethodPost, "/api/send_to_employee", map[string]any{
		"ID":        "A",
		"questions": []string{"q1"},
	}, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("send_to_employee: %d %s", w.Code, w.Body.String())
	}

	// Employee sees it, admin collection is empty.
	w = do(t, srv, http.MethodGet, "/api/employee_data", nil, employee)
	items := decodeBody[[]listing.Listing](t, w)
	if len(items) != 1 || items[0].ID != "A" || len(items[0].Questions) != 1 {
		t.Fatalf("employee_data = %+v", items)
	}
	w = do(t, srv, http.MethodGet, "/api/admin_data", nil, admin)
	if items := decodeBody[[]listing.Listing](t, w); len(items) != 0 {
		t.Fatalf("admin_data = %+v, want empty", items)
	}

	// Employee submits with edits.
	w = do(t, srv, http.MethodPost, "/api/save_details", map[string]any{
		"ID":           "A",
		"streetNumber": "12",
	}, employee)
	if w.Code != http.StatusOK {
		t.Fatalf("save_details: %d %s", w.Code, w.Body.String())
	}

	w = do(t, srv, http.MethodGet, "/api/validation_data", nil, admin)
	items = decodeBody[[]listing.Listing](t, w)
	if len(items) != 1 || items[0].ID != "A" || items[0].Status != listing.StatusNew {
		t.Fatalf("validation_data = %+v", items)
	}

	// Side table carries the street number.
	w = do(t, srv, http.MethodGet, "/api/get_additional_details?id=A", nil, employee)
	details := decodeBody[listing.AdditionalDetails](t, w)
	if details.StreetNumber != "12" {
		t.Errorf("streetNumber = %q, want 12", details.StreetNumber)
	}

	// Either role may prune the validation collection.
	w = do(t, srv, http.MethodPost, "/api/delete_validation_row", map[string]string{"id": "A"}, employee)
	if w.Code != http.StatusOK {
		t.Fatalf("delete_validation_row: %d %s", w.Code, w.Body.String())
	}
}

func TestTransitionErrors(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, "admin", "admin-pass")
	employee := login(t, srv, "employee", "employee-pass")

	tests := []struct {
		name   string
		path   string
		body   map[string]any
		cookie *http.Cookie
		status int
		code   string
	}{
		{
			"dispatch unknown id", "/api/send_to_employee",
			map[string]any{"ID": "nope"}, admin,
			http.StatusNotFound, "WF001",
		},
		{
			"dispatch as employee", "/api/send_to_employee",
			map[string]any{"ID": "nope"}, employee,
			http.StatusUnauthorized, "AUTH001",
		},
		{
			"submit as admin", "/api/send_to_validation",
			map[string]any{"ID": "nope"}, admin,
			http.StatusUnauthorized, "AUTH001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, tt.path, tt.body, tt.cookie)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			body := decodeBody[ErrorResponse](t, w)
			if body.Code != tt.code {
				t.Errorf("error code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Zone and restructure Tests
// ----------------------------------------------------------------------------

func TestResolveZoneEndpoint(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, "admin", "admin-pass")

	w := do(t, srv, http.MethodGet, "/api/resolve_zone?name=baneasa", nil, admin)
	body := decodeBody[map[string]any](t, w)
	match, ok := body["match"].(map[string]any)
	if !ok || match["zone"] != "Baneasa" {
		t.Errorf("match = %v", body["match"])
	}

	w = do(t, srv, http.MethodGet, "/api/resolve_zone?name=zzzzzz", nil, admin)
	body = decodeBody[map[string]any](t, w)
	if body["match"] != nil {
		t.Errorf("match = %v, want null", body["match"])
	}
}

func TestMarkdownDegradesWithoutProvider(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, "admin", "admin-pass")

	w := do(t, srv, http.MethodPost, "/api/markdown", map[string]string{
		"description": "teren de vanzare",
	}, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := decodeBody[map[string]any](t, w)
	if body["markdown"] != "teren de vanzare" {
		t.Errorf("markdown = %v, want original text", body["markdown"])
	}
	if body["degraded"] != true {
		t.Error("degraded flag not set")
	}
}

func TestMarkdownRequiresDescription(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, "admin", "admin-pass")

	w := do(t, srv, http.MethodPost, "/api/markdown", map[string]string{}, admin)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAuditEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.service.Store().Ingest([]listing.Listing{{ID: "A"}})

	admin := login(t, srv, "admin", "admin-pass")
	employee := login(t, srv, "employee", "employee-pass")

	w := do(t, srv, http.MethodPost, "/api/send_to_employee", map[string]any{"ID": "A"}, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("send_to_employee: %d", w.Code)
	}

	w = do(t, srv, http.MethodGet, "/api/audit", nil, employee)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("audit as employee: %d, want 401", w.Code)
	}

	w = do(t, srv, http.MethodGet, "/api/audit", nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("audit as admin: %d", w.Code)
	}
	entries := decodeBody[[]core.AuditEntry](t, w)
	if len(entries) != 1 || entries[0].Action != core.ActionDispatch {
		t.Errorf("audit entries = %+v", entries)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/login", map[string]string{}, nil)
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
