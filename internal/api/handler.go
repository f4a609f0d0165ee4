package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"carslink-backend/config"
	"carslink-backend/internal/ai"
	"carslink-backend/internal/auth"
	"carslink-backend/internal/geo"
	"carslink-backend/internal/mw"
	"carslink-backend/internal/notification"
	"carslink-backend/internal/store"
)

// Login attempts are throttled per email: a burst of 5, refilling one attempt
// every 12 seconds.
const (
	loginBurst  = 5
	loginRefill = 12 * time.Second
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store  store.Store
	cfg    *config.Config
	ai     *ai.Client
	geo    *geo.Client
	pushes *notification.WorkerPool
	logins *mw.KeyedLimiter
	logger *zap.SugaredLogger
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, cfg *config.Config, aiClient *ai.Client, geoClient *geo.Client, pushes *notification.WorkerPool, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		store:  s,
		cfg:    cfg,
		ai:     aiClient,
		geo:    geoClient,
		pushes: pushes,
		logins: mw.NewKeyedLimiter(rate.Every(loginRefill), loginBurst),
		logger: logger,
	}
}

// dispatchPush enqueues push delivery for a freshly written notification row.
func (h *Handler) dispatchPush(notificationID string) {
	if h.pushes != nil && notificationID != "" {
		h.pushes.Dispatch(notificationID)
	}
}

// fail converts store and auth errors to HTTP responses.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrNotYourTurn):
		c.JSON(http.StatusConflict, gin.H{"error": "waiting for the garage to reply"})
	case errors.Is(err, store.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "status transition not allowed"})
	default:
		switch auth.KindOf(err) {
		case auth.KindEmailTaken:
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case auth.KindInvalidCredentials:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		case auth.KindEmailUnconfirmed:
			c.JSON(http.StatusForbidden, gin.H{"error": "email not confirmed"})
		case auth.KindRateLimited:
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
		default:
			h.logger.Errorf("request failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
	}
}
