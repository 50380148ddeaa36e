package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/checkerhq/checker/internal/auth"
	"github.com/checkerhq/checker/internal/boardservice"
	"github.com/checkerhq/checker/internal/models"
	"github.com/checkerhq/checker/internal/testutil"
)

func newTestServer(t *testing.T, registrationOpen bool) *httptest.Server {
	t.Helper()
	db := testutil.TestDB(t)
	authSvc := auth.NewService(db, auth.EnvTest)
	svc := boardservice.NewService(db)
	srv := httptest.NewServer(NewRouter(svc, authSvc, nil, registrationOpen))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON issues a request and decodes the response body into a generic map.
func doJSON(t *testing.T, srv *httptest.Server, method, path, key string, body any) (int, map[string]any) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, srv.URL+path, buf)
	if err != nil {
		t.Fatal(err)
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func errCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error envelope in %v", body)
	}
	code, _ := e["code"].(string)
	return code
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("no data envelope in %v", body)
	}
	return d
}

// register creates an account and returns its default read/write key.
func register(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	status, body := doJSON(t, srv, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    email,
		"password": "a strong password",
	})
	if status != http.StatusCreated {
		t.Fatalf("register status = %d, body %v", status, body)
	}
	key, _ := data(t, body)["apiKey"].(map[string]any)
	raw, _ := key["key"].(string)
	if raw == "" {
		t.Fatal("register response missing raw key")
	}
	return raw
}

func TestRegisterAndCheckInFlow(t *testing.T) {
	srv := newTestServer(t, true)
	key := register(t, srv, "flow@example.com")

	// Create a board.
	status, body := doJSON(t, srv, http.MethodPost, "/boards", key, map[string]any{
		"name":     "Meditation",
		"unitType": models.UnitBoolean,
	})
	if status != http.StatusCreated {
		t.Fatalf("create board status = %d, body %v", status, body)
	}
	boardID, _ := data(t, body)["id"].(string)
	if boardID == "" {
		t.Fatal("create board response missing id")
	}

	// Check in for today.
	status, body = doJSON(t, srv, http.MethodPost, "/boards/"+boardID+"/check-ins", key, map[string]any{})
	if status != http.StatusCreated {
		t.Fatalf("check-in status = %d, body %v", status, body)
	}
	board, _ := data(t, body)["board"].(map[string]any)
	if board["currentStreak"].(float64) != 1 {
		t.Errorf("currentStreak = %v, want 1", board["currentStreak"])
	}

	// Stats reflect the write.
	status, body = doJSON(t, srv, http.MethodGet, "/boards/"+boardID+"/stats", key, nil)
	if status != http.StatusOK {
		t.Fatalf("stats status = %d", status)
	}
	st := data(t, body)
	if st["totalCheckIns"].(float64) != 1 {
		t.Errorf("totalCheckIns = %v, want 1", st["totalCheckIns"])
	}

	// The board shows up on the dashboard.
	status, body = doJSON(t, srv, http.MethodGet, "/users/me/dashboard", key, nil)
	if status != http.StatusOK {
		t.Fatalf("dashboard status = %d", status)
	}
	summary, _ := data(t, body)["summary"].(map[string]any)
	if summary["totalBoards"].(float64) != 1 {
		t.Errorf("totalBoards = %v, want 1", summary["totalBoards"])
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, true)

	status, body := doJSON(t, srv, http.MethodGet, "/boards", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if code := errCode(t, body); code != "MISSING_API_KEY" {
		t.Errorf("code = %q, want MISSING_API_KEY", code)
	}

	status, body = doJSON(t, srv, http.MethodGet, "/boards", "chk_test_aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if code := errCode(t, body); code != "INVALID_API_KEY" {
		t.Errorf("code = %q, want INVALID_API_KEY", code)
	}
}

func TestScopeEnforcement(t *testing.T) {
	srv := newTestServer(t, true)
	key := register(t, srv, "scopes@example.com")

	// Mint a read-only key.
	status, body := doJSON(t, srv, http.MethodPost, "/api-keys", key, map[string]any{
		"name":   "read only",
		"scopes": []string{models.ScopeRead},
	})
	if status != http.StatusCreated {
		t.Fatalf("create key status = %d, body %v", status, body)
	}
	readKey, _ := data(t, body)["key"].(string)

	// Read works.
	if status, _ := doJSON(t, srv, http.MethodGet, "/boards", readKey, nil); status != http.StatusOK {
		t.Errorf("read with read key: status = %d, want 200", status)
	}

	// Writes are refused.
	status, body = doJSON(t, srv, http.MethodPost, "/boards", readKey, map[string]any{
		"name":     "Nope",
		"unitType": models.UnitBoolean,
	})
	if status != http.StatusForbidden {
		t.Fatalf("write with read key: status = %d, want 403", status)
	}
	if code := errCode(t, body); code != "INSUFFICIENT_SCOPE" {
		t.Errorf("code = %q, want INSUFFICIENT_SCOPE", code)
	}

	// The default read/write key cannot delete.
	status, body = doJSON(t, srv, http.MethodPost, "/boards", key, map[string]any{
		"name":     "Doomed",
		"unitType": models.UnitBoolean,
	})
	if status != http.StatusCreated {
		t.Fatalf("create board status = %d", status)
	}
	boardID, _ := data(t, body)["id"].(string)
	if status, _ := doJSON(t, srv, http.MethodDelete, "/boards/"+boardID, key, nil); status != http.StatusForbidden {
		t.Errorf("delete with read/write key: status = %d, want 403", status)
	}

	// An admin key passes every gate.
	status, body = doJSON(t, srv, http.MethodPost, "/api-keys", key, map[string]any{
		"name":   "admin",
		"scopes": []string{models.ScopeAdmin},
	})
	if status != http.StatusCreated {
		t.Fatalf("create admin key status = %d", status)
	}
	adminKey, _ := data(t, body)["key"].(string)
	if status, _ := doJSON(t, srv, http.MethodDelete, "/boards/"+boardID, adminKey, nil); status != http.StatusOK {
		t.Errorf("delete with admin key: status = %d, want 200", status)
	}
}

func TestFutureCheckInRejected(t *testing.T) {
	srv := newTestServer(t, true)
	key := register(t, srv, "future@example.com")

	status, body := doJSON(t, srv, http.MethodPost, "/boards", key, map[string]any{
		"name":     "Time travel",
		"unitType": models.UnitBoolean,
	})
	if status != http.StatusCreated {
		t.Fatal("create board failed")
	}
	boardID, _ := data(t, body)["id"].(string)

	tomorrow := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	status, body = doJSON(t, srv, http.MethodPost, "/boards/"+boardID+"/check-ins", key, map[string]any{
		"date": tomorrow,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if code := errCode(t, body); code != "FUTURE_DATE" {
		t.Errorf("code = %q, want FUTURE_DATE", code)
	}
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t, true)
	key := register(t, srv, "val@example.com")

	cases := []struct {
		name string
		path string
		body map[string]any
	}{
		{"board without name", "/boards", map[string]any{"unitType": models.UnitBoolean}},
		{"board with bad unit", "/boards", map[string]any{"name": "x", "unitType": "lightyears"}},
		{"quick check-in without board ref", "/quick/check-in", map[string]any{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, srv, http.MethodPost, tc.path, key, tc.body)
			if status != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %v)", status, body)
			}
			if code := errCode(t, body); code != "VALIDATION_ERROR" {
				t.Errorf("code = %q, want VALIDATION_ERROR", code)
			}
		})
	}
}

func TestQuickCheckInByName(t *testing.T) {
	srv := newTestServer(t, true)
	key := register(t, srv, "quick@example.com")

	if status, _ := doJSON(t, srv, http.MethodPost, "/boards", key, map[string]any{
		"name":     "Journal",
		"unitType": models.UnitBoolean,
	}); status != http.StatusCreated {
		t.Fatal("create board failed")
	}

	status, body := doJSON(t, srv, http.MethodPost, "/quick/check-in", key, map[string]any{
		"boardName": "Journal",
	})
	if status != http.StatusCreated {
		t.Fatalf("status = %d, body %v", status, body)
	}
	board, _ := data(t, body)["board"].(map[string]any)
	if board["name"] != "Journal" {
		t.Errorf("board name = %v, want Journal", board["name"])
	}

	// Unknown name resolves to 404.
	status, body = doJSON(t, srv, http.MethodPost, "/quick/check-in", key, map[string]any{
		"boardName": "No such board",
	})
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if code := errCode(t, body); code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", code)
	}
}

func TestHeatmapEndpoint(t *testing.T) {
	srv := newTestServer(t, true)
	key := register(t, srv, "heat@example.com")

	status, body := doJSON(t, srv, http.MethodPost, "/boards", key, map[string]any{
		"name":     "Cycling",
		"unitType": models.UnitQuantity,
	})
	if status != http.StatusCreated {
		t.Fatal("create board failed")
	}
	boardID, _ := data(t, body)["id"].(string)

	today := time.Now().UTC().Format("2006-01-02")
	if status, _ := doJSON(t, srv, http.MethodPost, "/boards/"+boardID+"/check-ins", key, map[string]any{}); status != http.StatusCreated {
		t.Fatal("check-in failed")
	}

	year := time.Now().UTC().Year()
	status, body = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/boards/%s/heatmap?year=%d", boardID, year), key, nil)
	if status != http.StatusOK {
		t.Fatalf("heatmap status = %d", status)
	}
	d := data(t, body)
	if d["year"].(float64) != float64(year) {
		t.Errorf("year = %v, want %d", d["year"], year)
	}
	days, _ := d["days"].([]any)
	if len(days) != 1 {
		t.Fatalf("days = %d, want 1", len(days))
	}
	day, _ := days[0].(map[string]any)
	if day["date"] != today {
		t.Errorf("day date = %v, want %s", day["date"], today)
	}

	status, body = doJSON(t, srv, http.MethodGet, "/boards/"+boardID+"/heatmap?year=banana", key, nil)
	if status != http.StatusBadRequest {
		t.Errorf("bad year: status = %d, want 400", status)
	}
}

func TestHeatmapDefaultYearUsesUserTimezone(t *testing.T) {
	db := testutil.TestDB(t)
	authSvc := auth.NewService(db, auth.EnvTest)
	// Shortly after midnight UTC on New Year's Day 2026; in New York it is
	// still 2025-12-31.
	clock := time.Date(2026, 1, 1, 2, 0, 0, 0, time.UTC)
	svc := boardservice.NewService(db, boardservice.WithClock(func() time.Time { return clock }))
	srv := httptest.NewServer(NewRouter(svc, authSvc, nil, true))
	t.Cleanup(srv.Close)

	status, body := doJSON(t, srv, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    "nyc@example.com",
		"password": "a strong password",
		"timezone": "America/New_York",
	})
	if status != http.StatusCreated {
		t.Fatalf("register status = %d, body %v", status, body)
	}
	keyView, _ := data(t, body)["apiKey"].(map[string]any)
	key, _ := keyView["key"].(string)

	status, body = doJSON(t, srv, http.MethodPost, "/boards", key, map[string]any{
		"name":     "Fireworks",
		"unitType": models.UnitBoolean,
	})
	if status != http.StatusCreated {
		t.Fatal("create board failed")
	}
	boardID, _ := data(t, body)["id"].(string)

	// "Today" for this user is 2025-12-31.
	if status, body = doJSON(t, srv, http.MethodPost, "/boards/"+boardID+"/check-ins", key, map[string]any{}); status != http.StatusCreated {
		t.Fatalf("check-in failed: %v", body)
	}

	status, body = doJSON(t, srv, http.MethodGet, "/boards/"+boardID+"/heatmap", key, nil)
	if status != http.StatusOK {
		t.Fatalf("heatmap status = %d", status)
	}
	d := data(t, body)
	if d["year"].(float64) != 2025 {
		t.Errorf("default year = %v, want 2025 (owner's timezone)", d["year"])
	}
	days, _ := d["days"].([]any)
	if len(days) != 1 {
		t.Fatalf("days = %d, want 1", len(days))
	}
	if day, _ := days[0].(map[string]any); day["date"] != "2025-12-31" {
		t.Errorf("day date = %v, want 2025-12-31", day["date"])
	}
}

func TestRegistrationDisabled(t *testing.T) {
	srv := newTestServer(t, false)

	status, body := doJSON(t, srv, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    "closed@example.com",
		"password": "a strong password",
	})
	if status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if code := errCode(t, body); code != "REGISTRATION_DISABLED" {
		t.Errorf("code = %q, want REGISTRATION_DISABLED", code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t, true)
	register(t, srv, "login@example.com")

	status, body := doJSON(t, srv, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "login@example.com",
		"password": "a strong password",
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	keys, _ := data(t, body)["apiKeys"].([]any)
	if len(keys) != 1 {
		t.Errorf("apiKeys = %d, want 1", len(keys))
	}

	status, body = doJSON(t, srv, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "login@example.com",
		"password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if code := errCode(t, body); code != "INVALID_CREDENTIALS" {
		t.Errorf("code = %q, want INVALID_CREDENTIALS", code)
	}
}

func TestRevokedKeyStopsWorking(t *testing.T) {
	srv := newTestServer(t, true)
	key := register(t, srv, "revoke@example.com")

	// Mint an admin key, then use it to revoke the default one.
	status, body := doJSON(t, srv, http.MethodPost, "/api-keys", key, map[string]any{
		"name":   "admin",
		"scopes": []string{models.ScopeAdmin},
	})
	if status != http.StatusCreated {
		t.Fatal("create admin key failed")
	}
	adminKey, _ := data(t, body)["key"].(string)

	status, body = doJSON(t, srv, http.MethodGet, "/api-keys", key, nil)
	if status != http.StatusOK {
		t.Fatal("list keys failed")
	}
	var defaultID string
	for _, raw := range body["data"].([]any) {
		k := raw.(map[string]any)
		if k["name"] == "Default Key" {
			defaultID = k["id"].(string)
		}
	}
	if defaultID == "" {
		t.Fatal("default key not found in listing")
	}

	if status, _ := doJSON(t, srv, http.MethodDelete, "/api-keys/"+defaultID, adminKey, nil); status != http.StatusOK {
		t.Fatal("revoke failed")
	}

	status, body = doJSON(t, srv, http.MethodGet, "/boards", key, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("revoked key: status = %d, want 401", status)
	}
	if code := errCode(t, body); code != "INVALID_API_KEY" {
		t.Errorf("code = %q, want INVALID_API_KEY", code)
	}
}
