package internal

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
	"carslink-backend/internal/api"
	"carslink-backend/internal/db"
	"carslink-backend/internal/geo"
	"carslink-backend/internal/model"
	"carslink-backend/internal/store"
)

const garageKey = "integration-garage-key"

func setupServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(testDB))

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 1
	cfg.Server.GarageAPIKey = garageKey
	cfg.Auth.JWTSecret = "integration-secret"
	cfg.Auth.TokenTTL = time.Hour

	logger := zap.NewNop().Sugar()
	appStore := store.NewGormStore(testDB)
	h := api.NewHandler(appStore, cfg, ai.NewClient(cfg.AI, logger), geo.NewClient(cfg.Geocoding), nil, logger)
	return api.NewRouter(h), testDB
}

type request struct {
	method, path, token, garageKey, body string
}

func do(t *testing.T, router *gin.Engine, r request) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(r.method, r.path, strings.NewReader(r.body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.garageKey != "" {
		req.Header.Set("X-Garage-Key", r.garageKey)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// TestAppointmentLifecycle drives a booking from signup to completed repair,
// exercising the garage-side surface, the chat turn-taking rule, the derived
// progress value and the notification counters along the way.
func TestAppointmentLifecycle(t *testing.T) {
	router, testDB := setupServer(t)

	// A partner garage exists.
	garage := model.Garage{ID: "garage-lyon-1", Name: "Garage du Rhône", Address: "12 rue de la Part-Dieu", City: "Lyon"}
	require.NoError(t, testDB.Create(&garage).Error)

	// --- Signup, confirmation, login ---
	w := do(t, router, request{method: "POST", path: "/api/auth/create-profile", body: `{
		"first_name": "Hugo",
		"last_name":  "Bernard",
		"email":      "hugo@example.com",
		"password":   "motdepasse"
	}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	accountID := decode[struct {
		ID string `json:"id"`
	}](t, w).ID

	w = do(t, router, request{method: "POST", path: "/api/auth/confirm-email", body: fmt.Sprintf(`{"account_id": %q}`, accountID)})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, request{method: "POST", path: "/api/auth/login", body: `{"email": "hugo@example.com", "password": "motdepasse"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, w).AccessToken
	require.NotEmpty(t, token)

	// --- Vehicle and appointment ---
	w = do(t, router, request{method: "POST", path: "/api/vehicles", token: token, body: `{
		"brand": "Renault", "model": "Clio", "year": 2019, "plate": "ab-123-cd"
	}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	vehicle := decode[model.Vehicle](t, w)
	assert.Equal(t, "AB123CD", vehicle.Plate)

	start := time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC)
	w = do(t, router, request{method: "POST", path: "/api/appointments", token: token, body: fmt.Sprintf(`{
		"vehicle_id":   %q,
		"garage_id":    %q,
		"service_type": "vidange",
		"start_time":   %q,
		"end_time":     %q
	}`, vehicle.ID, garage.ID, start.Format(time.RFC3339), start.Add(time.Hour).Format(time.RFC3339))})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	appointment := decode[model.Appointment](t, w)
	assert.Equal(t, model.AppointmentPending, appointment.Status)

	// --- Chat is garage-first ---
	w = do(t, router, request{method: "POST", path: "/api/appointments/" + appointment.ID + "/messages", token: token, body: `{"body": "Bonjour?"}`})
	assert.Equal(t, http.StatusNotFound, w.Code, "no chat exists before the garage opens it")

	w = do(t, router, request{method: "POST", path: "/api/garage/appointments/" + appointment.ID + "/messages", garageKey: garageKey, body: `{"body": "Bonjour, nous avons bien reçu votre demande."}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, router, request{method: "POST", path: "/api/appointments/" + appointment.ID + "/messages", token: token, body: `{"body": "Merci!"}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, router, request{method: "POST", path: "/api/appointments/" + appointment.ID + "/messages", token: token, body: `{"body": "Encore moi."}`})
	assert.Equal(t, http.StatusConflict, w.Code, "two client messages in a row are refused")

	w = do(t, router, request{method: "GET", path: "/api/appointments/" + appointment.ID + "/messages", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	conversation := decode[struct {
		Messages []model.ChatMessage `json:"messages"`
		CanSend  bool                `json:"can_send"`
	}](t, w)
	assert.Len(t, conversation.Messages, 2)
	assert.False(t, conversation.CanSend)

	// --- Garage confirms, works, completes ---
	w = do(t, router, request{method: "POST", path: "/api/garage/appointments/" + appointment.ID + "/status", garageKey: garageKey, body: `{"status": "confirmed"}`})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	// Skipping ahead to completed is rejected by the transition table.
	w = do(t, router, request{method: "POST", path: "/api/garage/appointments/" + appointment.ID + "/status", garageKey: garageKey, body: `{"status": "completed"}`})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, request{method: "POST", path: "/api/garage/appointments/" + appointment.ID + "/status", garageKey: garageKey, body: `{"status": "in_progress"}`})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, request{method: "PUT", path: "/api/garage/appointments/" + appointment.ID + "/tracking", garageKey: garageKey, body: `{"status": "diagnosing", "description": "Diagnostic moteur en cours"}`})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	// The tracking record, not the appointment status, drives the stepper.
	w = do(t, router, request{method: "GET", path: "/api/appointments/" + appointment.ID, token: token})
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		Status   model.AppointmentStatus `json:"Status"`
		Progress struct {
			StepID    string `json:"step_id"`
			StepIndex int    `json:"step_index"`
			Cancelled bool   `json:"cancelled"`
		} `json:"progress"`
	}](t, w)
	assert.Equal(t, model.AppointmentInProgress, detail.Status)
	assert.Equal(t, "diagnosing", detail.Progress.StepID)
	assert.Equal(t, 1, detail.Progress.StepIndex)
	assert.False(t, detail.Progress.Cancelled)

	w = do(t, router, request{method: "POST", path: "/api/garage/appointments/" + appointment.ID + "/status", garageKey: garageKey, body: `{"status": "completed"}`})
	require.Equal(t, http.StatusNoContent, w.Code)

	// --- Calendar export ---
	w = do(t, router, request{method: "GET", path: "/api/appointments/" + appointment.ID + "/calendar.ics", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, w.Body.String(), "BEGIN:VEVENT")
	assert.Contains(t, w.Body.String(), "DTSTART:20260914T090000Z")
	assert.Contains(t, w.Body.String(), "Garage du Rhône")

	// --- Notifications accumulated along the way ---
	// 1 new message + confirmed + in_progress + diagnosing + completed.
	w = do(t, router, request{method: "GET", path: "/api/notifications/counts", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	counts := decode[model.NotificationCounts](t, w)
	assert.Equal(t, int64(5), counts.All)
	assert.Equal(t, int64(5), counts.Unread)

	w = do(t, router, request{method: "GET", path: "/api/notifications?filter=unread", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	notifications := decode[[]model.Notification](t, w)
	require.Len(t, notifications, 5)

	w = do(t, router, request{method: "POST", path: "/api/notifications/" + notifications[0].ID + "/read", token: token})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, request{method: "POST", path: "/api/notifications/" + notifications[1].ID + "/archive", token: token})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, request{method: "GET", path: "/api/notifications/counts", token: token})
	counts = decode[model.NotificationCounts](t, w)
	assert.Equal(t, int64(4), counts.All)
	assert.Equal(t, int64(3), counts.Unread)
	assert.Equal(t, int64(1), counts.Read)
	assert.Equal(t, int64(1), counts.Archived)
}

// TestCancelledAppointmentProgress pins the precedence rule: a cancelled
// appointment renders as cancelled even when a tracking record still says the
// repair is underway.
func TestCancelledAppointmentProgress(t *testing.T) {
	router, testDB := setupServer(t)

	garage := model.Garage{ID: "garage-lyon-2", Name: "Garage des Brotteaux", City: "Lyon"}
	require.NoError(t, testDB.Create(&garage).Error)

	w := do(t, router, request{method: "POST", path: "/api/auth/create-profile", body: `{
		"first_name": "Emma", "last_name": "Roux", "email": "emma@example.com", "password": "motdepasse"
	}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	accountID := decode[struct {
		ID string `json:"id"`
	}](t, w).ID
	w = do(t, router, request{method: "POST", path: "/api/auth/confirm-email", body: fmt.Sprintf(`{"account_id": %q}`, accountID)})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, request{method: "POST", path: "/api/auth/login", body: `{"email": "emma@example.com", "password": "motdepasse"}`})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, w).AccessToken

	w = do(t, router, request{method: "POST", path: "/api/vehicles", token: token, body: `{"brand": "Peugeot", "model": "208", "plate": "ZZ-999-ZZ"}`})
	require.Equal(t, http.StatusCreated, w.Code)
	vehicle := decode[model.Vehicle](t, w)

	start := time.Now().Add(48 * time.Hour).UTC()
	w = do(t, router, request{method: "POST", path: "/api/appointments", token: token, body: fmt.Sprintf(`{
		"vehicle_id": %q, "garage_id": %q, "service_type": "freins",
		"start_time": %q, "end_time": %q
	}`, vehicle.ID, garage.ID, start.Format(time.RFC3339), start.Add(time.Hour).Format(time.RFC3339))})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	appointment := decode[model.Appointment](t, w)

	// The garage writes a tracking record, then the client cancels.
	w = do(t, router, request{method: "PUT", path: "/api/garage/appointments/" + appointment.ID + "/tracking", garageKey: garageKey, body: `{"status": "in_progress"}`})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, request{method: "POST", path: "/api/appointments/" + appointment.ID + "/cancel", token: token})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, request{method: "GET", path: "/api/appointments/" + appointment.ID, token: token})
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		Progress struct {
			StepID    string `json:"step_id"`
			StepIndex int    `json:"step_index"`
			Cancelled bool   `json:"cancelled"`
		} `json:"progress"`
	}](t, w)
	assert.True(t, detail.Progress.Cancelled, "the stale tracking row must not mask the cancellation")
	assert.Equal(t, 0, detail.Progress.StepIndex)

	// Cancelling twice is a quiet no-op.
	w = do(t, router, request{method: "POST", path: "/api/appointments/" + appointment.ID + "/cancel", token: token})
	assert.Equal(t, http.StatusNoContent, w.Code)
}
