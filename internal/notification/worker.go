package notification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"carslink-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// pushPayload is the JSON body delivered to the service worker.
type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Kind  string `json:"kind"`
}

// WorkerPool manages a pool of workers delivering push notifications for
// freshly written notification rows.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
	logger  *zap.SugaredLogger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, logger *zap.SugaredLogger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		logger:  logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debugf("push worker %d started", id)
	for {
		select {
		case notificationID := <-wp.jobs:
			wp.deliver(ctx, notificationID)
		case <-ctx.Done():
			wp.logger.Debugf("push worker %d shutting down", id)
			return
		}
	}
}

// Dispatch enqueues a notification for push delivery. Never blocks the
// writing request: when the queue is full the push is skipped (the in-app
// row already exists).
func (wp *WorkerPool) Dispatch(notificationID string) {
	select {
	case wp.jobs <- notificationID:
	default:
		wp.logger.Warnf("push queue full, skipping push for notification %s", notificationID)
	}
}

// deliver sends the push to every subscription of the notification's account.
func (wp *WorkerPool) deliver(ctx context.Context, notificationID string) {
	var n model.Notification
	if err := wp.db.WithContext(ctx).First(&n, "id = ?", notificationID).Error; err != nil {
		wp.logger.Errorf("failed to load notification %s: %v", notificationID, err)
		return
	}

	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("account_id = ?", n.AccountID).
		Find(&subscriptions).Error
	if err != nil {
		wp.logger.Errorf("failed to load subscriptions for account %s: %v", n.AccountID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{Title: n.Title, Body: n.Body, Kind: n.Kind})
	if err != nil {
		wp.logger.Errorf("failed to marshal push payload: %v", err)
		return
	}

	for _, sub := range subscriptions {
		wp.send(ctx, sub, payload)
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Errorf("failed to push to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions are cleaned up on the spot.
	if resp.StatusCode == http.StatusGone {
		wp.logger.Infof("subscription %s expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.logger.Errorf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
