package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"carslink-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(h.cfg.Server.RateLimitPerSec), h.cfg.Server.RateLimitBurst, h.logger)

	cacheTTL := time.Duration(h.cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Public surface
		api.POST("/auth/create-profile", h.Signup)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/confirm-email", h.ConfirmEmail)
		api.POST("/auth/check-email", h.CheckEmail)
		api.GET("/garages", caching, h.ListGarages)
		api.GET("/garages/:garage_id", caching, h.GetGarage)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
		api.GET("/ai-ping", h.AIPing)
		api.GET("/test-openrouter", h.TestOpenRouter)
		api.GET("/debug-env", h.DebugEnv)
		api.POST("/geocode", h.Geocode)
		api.GET("/settings/:key", h.GetAppSetting)

		// Authenticated client surface
		authed := api.Group("")
		authed.Use(mw.RequireAuth(h.cfg.Auth))
		{
			authed.GET("/profile", h.GetProfile)
			authed.PUT("/profile", h.UpdateProfile)
			authed.DELETE("/profile", h.DeleteProfile)

			authed.GET("/vehicles", h.ListVehicles)
			authed.POST("/vehicles", h.CreateVehicle)
			authed.PUT("/vehicles/:vehicle_id", h.UpdateVehicle)
			authed.DELETE("/vehicles/:vehicle_id", h.DeleteVehicle)

			authed.GET("/appointments", h.ListAppointments)
			authed.POST("/appointments", h.CreateAppointment)
			authed.GET("/appointments/:appointment_id", h.GetAppointment)
			authed.POST("/appointments/:appointment_id/cancel", h.CancelAppointment)
			authed.GET("/appointments/:appointment_id/calendar.ics", h.AppointmentCalendar)
			authed.GET("/appointments/:appointment_id/messages", h.ListMessages)
			authed.POST("/appointments/:appointment_id/messages", h.SendMessage)

			authed.GET("/notifications", h.ListNotifications)
			authed.GET("/notifications/counts", h.NotificationCounts)
			authed.POST("/notifications/read-all", h.MarkAllNotificationsRead)
			authed.POST("/notifications/:notification_id/read", h.MarkNotificationRead)
			authed.POST("/notifications/:notification_id/archive", h.ArchiveNotification)
			authed.POST("/notifications/:notification_id/unarchive", h.UnarchiveNotification)
			authed.DELETE("/notifications/:notification_id", h.DeleteNotification)
			authed.DELETE("/notifications", h.DeleteAllNotifications)

			authed.PUT("/subscriptions", h.PutSubscription)
			authed.DELETE("/subscriptions", h.DeleteSubscription)

			authed.POST("/support/tickets", h.CreateSupportTicket)
			authed.GET("/invoices", h.ListInvoices)

			authed.POST("/ai/chat", h.AIChat)
		}

		// Garage-side surface, key-protected. Garage auth proper is out of
		// scope; status, tracking and messages are written through here.
		garage := api.Group("/garage")
		garage.Use(mw.RequireGarageKey(h.cfg.Server.GarageAPIKey))
		{
			garage.POST("/appointments/:appointment_id/status", h.UpdateAppointmentStatus)
			garage.PUT("/appointments/:appointment_id/tracking", h.UpsertRepairTracking)
			garage.POST("/appointments/:appointment_id/messages", h.SendGarageMessage)
		}
	}

	return r
}
