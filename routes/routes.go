package routes

import (
	"net/http"
	"time"

	"medirouter/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterQueryRoutes registers the conversational router endpoint.
func RegisterQueryRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.POST("/query", hb.HandleQuery)
	}
}

// RegisterBookingRoutes sets up the two-phase booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.POST("/hold", hb.HoldHandler)
		bookingGroup.POST("/confirm", hb.ConfirmHandler)
		bookingGroup.POST("/cancel", hb.CancelHandler)
	}
}

// RegisterDatasetRoutes registers the direct lookup endpoints.
func RegisterDatasetRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.GET("/hospitals", hb.ListHospitalsHandler)
		api.GET("/hospitals/:id/diagnostics", hb.GetDiagnosticsHandler)
		api.GET("/hospitals/:id/emergency", hb.GetEmergencyHandler)
		api.GET("/doctors/:id/slots", hb.GetDoctorSlotsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes wires every endpoint group plus CORS.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterQueryRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterDatasetRoutes(r, hb)
}
