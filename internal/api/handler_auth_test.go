package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"carslink-backend/config"
	"carslink-backend/internal/ai"
	"carslink-backend/internal/db"
	"carslink-backend/internal/geo"
	"carslink-backend/internal/store"
)

// setupTestAPI wires the real router against an in-memory SQLite database.
// The rate limiter is configured high enough to stay out of the way.
func setupTestAPI(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(testDB))

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 1
	cfg.Server.GarageAPIKey = "garage-test-key"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.Issuer = "carslink-test"
	cfg.Auth.TokenTTL = time.Hour

	logger := zap.NewNop().Sugar()
	appStore := store.NewGormStore(testDB)
	h := NewHandler(appStore, cfg, ai.NewClient(cfg.AI, logger), geo.NewClient(cfg.Geocoding), nil, logger)
	return NewRouter(h), appStore
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthFlow(t *testing.T) {
	router, _ := setupTestAPI(t)

	// Signup
	w := doJSON(t, router, "POST", "/api/auth/create-profile", "", `{
		"first_name": "Léa",
		"last_name":  "Martin",
		"email":      "lea@example.com",
		"password":   "motdepasse"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	// Duplicate email is refused.
	w = doJSON(t, router, "POST", "/api/auth/create-profile", "", `{
		"first_name": "Léa",
		"last_name":  "Martin",
		"email":      "lea@example.com",
		"password":   "motdepasse"
	}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Login before email confirmation is forbidden.
	login := `{"email": "lea@example.com", "password": "motdepasse"}`
	w = doJSON(t, router, "POST", "/api/auth/login", "", login)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, "POST", "/api/auth/confirm-email", "", fmt.Sprintf(`{"account_id": %q}`, created.ID))
	require.Equal(t, http.StatusNoContent, w.Code)

	// Wrong password stays a 401 either way.
	w = doJSON(t, router, "POST", "/api/auth/login", "", `{"email": "lea@example.com", "password": "wrong-one"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, "POST", "/api/auth/login", "", login)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.AccessToken)

	// The token opens the authenticated surface.
	w = doJSON(t, router, "GET", "/api/profile", session.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "lea@example.com", profile.Email)

	// Without a token the same route is closed.
	w = doJSON(t, router, "GET", "/api/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A garbage token is rejected too.
	w = doJSON(t, router, "GET", "/api/profile", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckEmail(t *testing.T) {
	router, _ := setupTestAPI(t)

	w := doJSON(t, router, "POST", "/api/auth/check-email", "", `{"email": "libre@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists": false}`, w.Body.String())

	w = doJSON(t, router, "POST", "/api/auth/create-profile", "", `{
		"first_name": "Léa",
		"last_name":  "Martin",
		"email":      "libre@example.com",
		"password":   "motdepasse"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, "POST", "/api/auth/check-email", "", `{"email": "libre@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists": true}`, w.Body.String())

	// A malformed address is rejected before touching the store.
	w = doJSON(t, router, "POST", "/api/auth/check-email", "", `{"email": "not-an-address"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_ThrottledPerEmail(t *testing.T) {
	router, _ := setupTestAPI(t)

	// Hammering one address exhausts its attempt budget, case-insensitively.
	bad := `{"email": "Cible@example.com", "password": "wrong-one"}`
	var last int
	for i := 0; i < loginBurst+1; i++ {
		w := doJSON(t, router, "POST", "/api/auth/login", "", bad)
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)

	// Other addresses are unaffected.
	w := doJSON(t, router, "POST", "/api/auth/login", "", `{"email": "autre@example.com", "password": "wrong-one"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGarageSurface_RequiresKey(t *testing.T) {
	router, _ := setupTestAPI(t)

	req, _ := http.NewRequest("POST", "/api/garage/appointments/x/status", strings.NewReader(`{"status":"confirmed"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, _ = http.NewRequest("POST", "/api/garage/appointments/x/status", strings.NewReader(`{"status":"confirmed"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Garage-Key", "garage-test-key")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	// The key is accepted; the unknown appointment is the remaining failure.
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDebugEnv_ReportsBooleansOnly(t *testing.T) {
	router, _ := setupTestAPI(t)

	w := doJSON(t, router, "GET", "/api/debug-env", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "test-secret")
	assert.Contains(t, w.Body.String(), `"jwt_configured":true`)
}
