package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle aggregates the route handlers wired in main.
type HandlerBundle struct {
	// Query endpoint.
	HandleQuery gin.HandlerFunc

	// Booking endpoints.
	HoldHandler    gin.HandlerFunc
	ConfirmHandler gin.HandlerFunc
	CancelHandler  gin.HandlerFunc

	// Dataset lookup endpoints.
	ListHospitalsHandler  gin.HandlerFunc
	GetDiagnosticsHandler gin.HandlerFunc
	GetEmergencyHandler   gin.HandlerFunc
	GetDoctorSlotsHandler gin.HandlerFunc
}
