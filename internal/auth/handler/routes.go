package handler

import (
	authconstant "github.com/AnthoniusHendriyanto/ecommerce-auth/pkg/constant"
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the auth surface. The whole group sits behind the
// per-IP limiter; protected routes additionally pass the auth gate.
func RegisterRoutes(app *fiber.App, h *AuthHandler, gate *AuthMiddleware, ipLimiter *IPRateLimiter) {
	auth := app.Group("/api/v1/auth", ipLimiter.Middleware())

	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Post("/refresh-token", h.Refresh)
	auth.Post("/forgot-password", h.ForgotPassword)
	auth.Put("/reset-password/:token", h.ResetPassword)
	auth.Get("/verify-email/:token", h.VerifyEmail)
	auth.Post("/resend-verification", h.ResendVerification)

	auth.Get("/me", gate.RequireAuth(), h.Me)
	auth.Put("/change-password", gate.RequireAuth(), h.ChangePassword)

	admin := auth.Group("/admin", gate.RequireAuth(), gate.RequireRole(authconstant.RoleAdmin))
	admin.Get("/users", h.GetAllUsers)
}
