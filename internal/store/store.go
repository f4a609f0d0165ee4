package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"carslink-backend/internal/model"
)

// Store-level sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrNotFound          = errors.New("record not found")
	ErrNotYourTurn       = errors.New("waiting for the garage to reply")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Accounts
	CreateAccount(ctx context.Context, acct *model.Account) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ConfirmEmail(ctx context.Context, id string) error
	UpdateAccount(ctx context.Context, acct *model.Account) error
	SoftDeleteAccount(ctx context.Context, id string) error

	// Vehicles
	CreateVehicle(ctx context.Context, v *model.Vehicle) error
	ListVehicles(ctx context.Context, accountID string) ([]model.Vehicle, error)
	GetVehicle(ctx context.Context, id, accountID string) (*model.Vehicle, error)
	UpdateVehicle(ctx context.Context, v *model.Vehicle) error
	DeleteVehicle(ctx context.Context, id, accountID string) error

	// Garages
	ListGarages(ctx context.Context, city string) ([]model.Garage, error)
	GetGarage(ctx context.Context, id string) (*model.Garage, error)

	// Appointments & repair tracking
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	ListAppointments(ctx context.Context, accountID string) ([]model.Appointment, error)
	GetAppointment(ctx context.Context, id, accountID string) (*model.Appointment, error)
	CancelAppointment(ctx context.Context, id, accountID string, now time.Time) (*model.Notification, error)
	UpdateAppointmentStatus(ctx context.Context, id string, to model.AppointmentStatus, now time.Time) (*model.Notification, error)
	GetRepairTracking(ctx context.Context, appointmentID string) (*model.RepairTracking, error)
	UpsertRepairTracking(ctx context.Context, appointmentID string, status model.RepairStatus, description string, now time.Time) (*model.Notification, error)

	// Chat
	GetChatMessages(ctx context.Context, appointmentID, accountID string) ([]model.ChatMessage, error)
	SendClientMessage(ctx context.Context, appointmentID, accountID, body string) (*model.ChatMessage, error)
	SendGarageMessage(ctx context.Context, appointmentID, body string) (*model.ChatMessage, *model.Notification, error)

	// Notifications
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, accountID, filter string) ([]model.Notification, error)
	CountNotifications(ctx context.Context, accountID string) (*model.NotificationCounts, error)
	MarkNotificationRead(ctx context.Context, id, accountID string) error
	MarkAllNotificationsRead(ctx context.Context, accountID string) error
	SetNotificationArchived(ctx context.Context, id, accountID string, archived bool) error
	DeleteNotification(ctx context.Context, id, accountID string) error
	DeleteAllNotifications(ctx context.Context, accountID string) error

	// Push subscriptions
	UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeletePushSubscription(ctx context.Context, endpoint string) error

	// Support, invoices, settings
	CreateSupportTicket(ctx context.Context, ticket *model.SupportTicket) error
	ListInvoices(ctx context.Context, accountID string) ([]model.Invoice, error)
	GetAppSetting(ctx context.Context, key string) (string, error)
	InvalidateSettings()
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db       *gorm.DB
	settings *settingsCache
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, settings: newSettingsCache()}
}

// DB exposes the underlying handle for middleware and tests.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// translateNotFound converts gorm's record-not-found into the store sentinel.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
