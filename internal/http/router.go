package api

import (
	"log"
	stdhttp "net/http"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	h "backend/internal/http/handlers"
	"backend/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	h.Configure(env)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		// Public directory
		api.GET("/routes", h.ListRoutes)
		api.GET("/routes/:id", h.GetRoute)
		api.GET("/stops/nearby", h.GetNearbyStops)
		api.GET("/shuttles", h.ListShuttles)

		// Authenticated surfaces
		authed := api.Group("")
		authed.Use(middleware.Auth(env.JWTSecret))
		{
			authed.GET("/me", h.Me)

			wallet := authed.Group("/wallet")
			wallet.GET("", h.GetMyWallet)
			wallet.GET("/history", h.GetWalletHistory)
			wallet.POST("/recharge", h.Recharge)
			wallet.GET("/statement", h.GetWalletStatementPDF)

			bookings := authed.Group("/bookings")
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListMyBookings)
			bookings.POST("/quote", h.GetBookingQuote)
			bookings.GET("/:id", h.GetBooking)
			bookings.POST("/:id/cancel", h.CancelBooking)
			bookings.GET("/:id/e-ticket", h.GetBookingETicketPDF)

			// Admin surfaces
			admin := authed.Group("/admin")
			admin.Use(middleware.RequireRoles(domain.RoleAdmin))
			{
				admin.GET("/users", h.ListUsers)
				admin.POST("/allocations", h.BulkAllocate)

				admin.GET("/bookings", h.ListAllBookings)
				admin.PUT("/bookings/:id/status", h.UpdateBookingStatus)

				admin.POST("/routes", h.CreateRoute)
				admin.PUT("/routes/:id", h.UpdateRoute)
				admin.DELETE("/routes/:id", h.DeleteRoute)

				admin.POST("/stops", h.CreateStop)
				admin.PUT("/stops/:id", h.UpdateStop)
				admin.DELETE("/stops/:id", h.DeleteStop)

				admin.POST("/shuttles", h.CreateShuttle)
				admin.PUT("/shuttles/:id", h.UpdateShuttle)
				admin.DELETE("/shuttles/:id", h.DeleteShuttle)
			}
		}
	}

	return r
}
