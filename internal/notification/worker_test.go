package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{}, zap.NewNop().Sugar())

	wp.Dispatch("notif-1")

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "notif-1", job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchNeverBlocks(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{}, zap.NewNop().Sugar())

	// Queue capacity equals the pool size (1); further dispatches are dropped
	// instead of blocking the caller.
	done := make(chan struct{})
	go func() {
		wp.Dispatch("a")
		wp.Dispatch("b")
		wp.Dispatch("c")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}
}

func TestWorkerPool_DeliverLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{}, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends push for one subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Contains(t, string(payload), "Rendez-vous confirmé")
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "notifications" WHERE id = \$1`).
			WithArgs("notif-1", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "kind", "title", "body"}).
				AddRow("notif-1", "acct-1", "appointment_status", "Rendez-vous confirmé", "Votre rendez-vous est confirmé"))

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions" WHERE account_id = \$1`).
			WithArgs("acct-1").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "account_id", "p256dh", "auth", "created_at"}).
				AddRow("https://example.com/push", "acct-1", "key", "auth", time.Now()))

		wp.Dispatch("notif-1")
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "notifications" WHERE id = \$1`).
			WithArgs("notif-2", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "kind", "title", "body"}).
				AddRow("notif-2", "acct-2", "new_message", "Nouveau message du garage", "Bonjour"))

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions" WHERE account_id = \$1`).
			WithArgs("acct-2").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "account_id", "p256dh", "auth", "created_at"}).
				AddRow("https://example.com/expired", "acct-2", "key", "auth", time.Now()))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Dispatch("notif-2")

		// A short sleep to allow the worker to process the job.
		time.Sleep(100 * time.Millisecond)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
