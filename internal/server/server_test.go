package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rgalloway/tally/internal/config"
	"github.com/rgalloway/tally/internal/database"
	"github.com/rgalloway/tally/internal/email"
)

func testServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		Port:       "8080",
		BaseURL:    "http://localhost:8080",
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		CronSecret: "cron-secret",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, cfg, email.NewClient("", ""), nil, logger)
	return srv.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func register(t *testing.T, h http.Handler, emailAddr string) string {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    emailAddr,
		"name":     "Alice",
		"password": "correct horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("register returned empty token")
	}
	return resp.Token
}

func TestHealth(t *testing.T) {
	h := testServer(t)

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decode(t, rec, &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Checks["database"] != "ok" {
		t.Errorf("database check = %q", resp.Checks["database"])
	}
	if resp.Checks["email"] != "not configured" {
		t.Errorf("email check = %q", resp.Checks["email"])
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	h := testServer(t)
	token := register(t, h, "alice@example.com")

	// duplicate email rejected
	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"name":     "Alice Again",
		"password": "correct horse",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "Alice@Example.com",
		"password": "correct horse",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/auth/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	// the token is dead after logout
	rec = doJSON(t, h, http.MethodGet, "/api/habits", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("post-logout status = %d, want 401", rec.Code)
	}
}

func TestHabitLifecycle(t *testing.T) {
	h := testServer(t)
	token := register(t, h, "alice@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/habits", token, map[string]any{
		"name":     "Read",
		"category": "learning",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Habit struct {
			ID int64 `json:"id"`
		} `json:"habit"`
		Achievements []struct {
			ID string `json:"id"`
		} `json:"achievements"`
	}
	decode(t, rec, &created)
	if created.Habit.ID == 0 {
		t.Fatal("created habit has no id")
	}
	if len(created.Achievements) != 1 || created.Achievements[0].ID != "first_habit" {
		t.Errorf("achievements = %v, want first_habit", created.Achievements)
	}

	// unknown fields in the payload are rejected
	rec = doJSON(t, h, http.MethodPost, "/api/habits", token, map[string]any{
		"name": "Run", "colour": "#fff",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", rec.Code)
	}

	path := fmt.Sprintf("/api/habits/%d", created.Habit.ID)
	rec = doJSON(t, h, http.MethodPut, path, token, map[string]any{"name": "Read More"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	var updated struct {
		Name string `json:"name"`
	}
	decode(t, rec, &updated)
	if updated.Name != "Read More" {
		t.Errorf("name = %q", updated.Name)
	}

	// toggle on then off
	rec = doJSON(t, h, http.MethodPost, path+"/toggle", token, map[string]string{"date": "2024-06-12"})
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, body %s", rec.Code, rec.Body.String())
	}
	var toggled struct {
		Completed bool `json:"completed"`
	}
	decode(t, rec, &toggled)
	if !toggled.Completed {
		t.Error("first toggle should complete")
	}
	rec = doJSON(t, h, http.MethodPost, path+"/toggle", token, map[string]string{"date": "2024-06-12"})
	decode(t, rec, &toggled)
	if toggled.Completed {
		t.Error("second toggle should clear")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/completions?start=2024-06-01&end=2024-06-30", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("completions status = %d", rec.Code)
	}
	var completions []json.RawMessage
	decode(t, rec, &completions)
	if len(completions) != 0 {
		t.Errorf("completions = %d rows, want 0 after toggle off", len(completions))
	}

	rec = doJSON(t, h, http.MethodDelete, path, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, path, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted status = %d, want 404", rec.Code)
	}
}

func TestHabitOwnership(t *testing.T) {
	h := testServer(t)
	alice := register(t, h, "alice@example.com")
	bob := register(t, h, "bob@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/habits", alice, map[string]any{"name": "Read"})
	var created struct {
		Habit struct {
			ID int64 `json:"id"`
		} `json:"habit"`
	}
	decode(t, rec, &created)

	path := fmt.Sprintf("/api/habits/%d", created.Habit.ID)
	rec = doJSON(t, h, http.MethodGet, path, bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user get status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, h, http.MethodDelete, path, bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user delete status = %d, want 404", rec.Code)
	}
}

func TestStatsEndpoints(t *testing.T) {
	h := testServer(t)
	token := register(t, h, "alice@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/habits", token, map[string]any{"name": "Read"})
	var created struct {
		Habit struct {
			ID int64 `json:"id"`
		} `json:"habit"`
	}
	decode(t, rec, &created)

	today := time.Now().UTC().Format("2006-01-02")
	path := fmt.Sprintf("/api/habits/%d/toggle", created.Habit.ID)
	rec = doJSON(t, h, http.MethodPost, path, token, map[string]string{"date": today})
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/stats/today", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats/today status = %d", rec.Code)
	}
	var summary struct {
		Completed int `json:"completed"`
		Total     int `json:"total"`
		Rate      int `json:"rate"`
	}
	decode(t, rec, &summary)
	if summary.Completed != 1 || summary.Total != 1 || summary.Rate != 100 {
		t.Errorf("today = %+v, want 1/1 at 100%%", summary)
	}

	for _, path := range []string{
		"/api/stats/week",
		"/api/stats/month",
		"/api/stats/heatmap",
		"/api/stats/top",
		"/api/stats/comparison",
	} {
		rec = doJSON(t, h, http.MethodGet, path, token, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}

	corr := fmt.Sprintf("/api/stats/correlation?a=%d&b=%d", created.Habit.ID, created.Habit.ID)
	rec = doJSON(t, h, http.MethodGet, corr, token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("correlation status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/stats/correlation?a=1&b=999", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("correlation with unknown habit status = %d, want 404", rec.Code)
	}
}

func TestProfileUpdate(t *testing.T) {
	h := testServer(t)
	token := register(t, h, "alice@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile status = %d", rec.Code)
	}
	var profile struct {
		ReminderTime      string `json:"reminder_time"`
		ReminderThreshold int    `json:"reminder_threshold"`
	}
	decode(t, rec, &profile)
	if profile.ReminderTime != "22:00" || profile.ReminderThreshold != 70 {
		t.Errorf("defaults = %+v", profile)
	}

	rec = doJSON(t, h, http.MethodPut, "/api/profile", token, map[string]any{
		"reminder_threshold": 85,
		"timezone":           "Europe/Berlin",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	// unknown settings names fail instead of being silently dropped
	rec = doJSON(t, h, http.MethodPut, "/api/profile", token, map[string]any{
		"remind_threshold": 90,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPut, "/api/profile", token, map[string]any{
		"timezone": "Mars/Olympus_Mons",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad timezone status = %d, want 400", rec.Code)
	}
}

func TestCronEndpointGuard(t *testing.T) {
	h := testServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/cron/send-reminders", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated cron status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/cron/send-reminders", "cron-secret", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cron with secret status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result struct {
		RunID     string `json:"run_id"`
		Processed int    `json:"processed"`
	}
	decode(t, rec, &result)
	if result.RunID == "" {
		t.Error("batch result has no run id")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/cron/send-reminders", nil)
	req.Header.Set("X-Cron-Trigger", "1")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Errorf("cron with trigger header status = %d", rec2.Code)
	}
}

func TestAccountDelete(t *testing.T) {
	h := testServer(t)
	token := register(t, h, "alice@example.com")

	rec := doJSON(t, h, http.MethodDelete, "/api/account", token, map[string]string{"confirm": "yes please"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong confirmation status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/account", token, map[string]string{"confirm": "DELETE_MY_ACCOUNT"})
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login after delete status = %d, want 401", rec.Code)
	}
}

func TestPublicStats(t *testing.T) {
	h := testServer(t)
	token := register(t, h, "alice@example.com")
	doJSON(t, h, http.MethodPost, "/api/habits", token, map[string]any{"name": "Read"})

	rec := doJSON(t, h, http.MethodGet, "/api/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Users  int `json:"users"`
		Habits int `json:"habits"`
	}
	decode(t, rec, &resp)
	if resp.Users != 1 || resp.Habits != 1 {
		t.Errorf("counts = %+v, want 1 user and 1 habit", resp)
	}
}
