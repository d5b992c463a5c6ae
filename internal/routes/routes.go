package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tnma-app/membership-backend/internal/config"
	"github.com/tnma-app/membership-backend/internal/handlers"
	"github.com/tnma-app/membership-backend/internal/middleware"
)

func SetupRoutes(r *chi.Mux, cfg *config.Config) {
	// Public auth routes
	r.Post("/api/auth/register", handlers.Register)
	r.Post("/api/auth/login", handlers.Login)
	r.Post("/api/auth/google", handlers.GoogleLogin)
	r.Post("/api/auth/otp/send", handlers.SendVerifyEmailOtp)
	r.Post("/api/auth/otp/verify", handlers.VerifyEmailOtp)
	r.Post("/api/auth/otp/login/send", handlers.SendLoginOtp)
	r.Post("/api/auth/otp/login", handlers.LoginWithOtp)

	// Public directory routes
	r.Get("/api/associations", handlers.ListAssociations)
	r.Get("/api/users/mobile/{mobile}", handlers.GetUserByMobile)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTAccessSecret))

		r.Get("/api/auth/me", handlers.CurrentUser)
		r.Post("/api/auth/logout", handlers.Logout)
		r.Post("/api/auth/change-password", handlers.ChangePassword)

		r.Put("/api/profile", handlers.UpdateProfile)

		// QR & scan ledger
		r.Get("/api/qr/me", handlers.GetMyQr)
		r.Post("/api/qr/scan", handlers.ScanQr)
		r.Get("/api/qr/history", handlers.GetScanHistory)

		// Employee management (owner)
		r.Post("/api/employees", handlers.CreateEmployee)
		r.Get("/api/employees", handlers.GetMyEmployees)
		r.Put("/api/employees/{id}", handlers.UpdateEmployee)

		// Member's own dues
		r.Get("/api/subscriptions/me", handlers.GetMySubscriptions)

		// File upload
		r.Post("/api/upload", handlers.UploadFile)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/api/admin/users", handlers.GetAllUsers)
			r.Get("/api/admin/users/{id}", handlers.GetUserByID)
			r.Put("/api/admin/users/{id}", handlers.UpdateUser)
			r.Delete("/api/admin/users/{id}", handlers.DeleteUser)

			r.Post("/api/admin/associations", handlers.CreateAssociation)
			r.Put("/api/admin/associations/{id}", handlers.UpdateAssociation)
			r.Delete("/api/admin/associations/{id}", handlers.DeleteAssociation)

			r.Post("/api/admin/subscriptions", handlers.UpsertSubscription)
			r.Get("/api/admin/subscriptions/member/{memberId}", handlers.GetMemberSubscriptions)
			r.Get("/api/admin/subscriptions/month/{monthKey}", handlers.GetSubscriptionsByMonth)
		})
	})
}
