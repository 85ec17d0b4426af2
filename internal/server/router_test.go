package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"garaj-backend/internal/auth"
	"garaj-backend/internal/config"
	"garaj-backend/internal/database"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret-that-is-at-least-32-chars"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig(t *testing.T, authEnabled bool) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("gizli123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &config.Config{
		CORSOrigins:       "http://localhost:3000",
		AuthEnabled:       authEnabled,
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
		JWTSecret:         testSecret,
		Timezone:          "UTC",
	}
}

func do(t *testing.T, req *http.Request, app *fiber.App) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func login(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	database.DB = setupTestDB(t)
	app := New(testConfig(t, true))

	for _, path := range []string{"/api/jobs", "/api/firms", "/api/stock/low", "/api/reports", "/api/auth/me"} {
		resp, _ := do(t, httptest.NewRequest(http.MethodGet, path, nil), app)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, resp.StatusCode)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer bozuk-token")
	resp, _ := do(t, req, app)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", resp.StatusCode)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	database.DB = setupTestDB(t)
	app := New(testConfig(t, true))

	resp, body := do(t, login(`{"username":"admin","password":"yanlis"}`), app)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if body["error"] != "Kullanıcı adı veya şifre hatalı" {
		t.Fatalf("unexpected error %v", body["error"])
	}

	resp, _ = do(t, login(`{"username":"admin"}`), app)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", resp.StatusCode)
	}
}

func TestLoginGrantsAccess(t *testing.T) {
	database.DB = setupTestDB(t)
	app := New(testConfig(t, true))

	resp, body := do(t, login(`{"username":"admin","password":"gizli123"}`), app)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("expected token in body")
	}

	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == auth.CookieName {
			cookie = ck
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("expected httpOnly %s cookie, got %v", auth.CookieName, resp.Cookies())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, body = do(t, req, app)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with bearer token, got %d", resp.StatusCode)
	}
	if _, ok := body["jobs"]; !ok {
		t.Fatalf("expected jobs key, got %v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: cookie.Value})
	resp, body = do(t, req, app)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with cookie, got %d", resp.StatusCode)
	}
	user, _ := body["user"].(map[string]any)
	if user["username"] != "admin" {
		t.Fatalf("unexpected user %v", body["user"])
	}
}

func TestAuthDisabledPassesThrough(t *testing.T) {
	database.DB = setupTestDB(t)
	app := New(testConfig(t, false))

	resp, _ := do(t, httptest.NewRequest(http.MethodGet, "/api/expenses/categories", nil), app)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestStaticRoutesWinOverIDRoutes(t *testing.T) {
	database.DB = setupTestDB(t)
	app := New(testConfig(t, false))

	resp, body := do(t, httptest.NewRequest(http.MethodDelete, "/api/jobs/clear", nil), app)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected clear to succeed, got %d (%v)", resp.StatusCode, body)
	}

	resp, body = do(t, httptest.NewRequest(http.MethodGet, "/api/stock/low", nil), app)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected low stock list, got %d (%v)", resp.StatusCode, body)
	}
}

func TestHealth(t *testing.T) {
	database.DB = setupTestDB(t)
	app := New(testConfig(t, true))

	resp, body := do(t, httptest.NewRequest(http.MethodGet, "/health", nil), app)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health response %d %v", resp.StatusCode, body)
	}
}
