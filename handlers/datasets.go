package handlers

import (
	"net/http"

	slotRepo "medirouter/database/repository/slot"
	"medirouter/datasets"
	"medirouter/utils"

	"github.com/gin-gonic/gin"
)

// DatasetHandler serves direct read-only lookups against the gateway.
type DatasetHandler struct {
	Gateway datasets.Gateway
	Slots   slotRepo.SlotRepository // read-only view of the schedule
}

func NewDatasetHandler(gw datasets.Gateway, slots slotRepo.SlotRepository) *DatasetHandler {
	return &DatasetHandler{Gateway: gw, Slots: slots}
}

// ListHospitalsHandler returns the hospital directory, optionally
// filtered by state.
func (h *DatasetHandler) ListHospitalsHandler(c *gin.Context) {
	var filter datasets.Predicate
	if state := c.Query("state"); state != "" {
		filter = datasets.ByField("state", state)
	}
	records, err := h.Gateway.Fetch(datasets.KindHospitals, filter)
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "hospital directory unavailable", err.Error())
		return
	}
	hospitals, warnings := datasets.DecodeHospitals(records)
	c.JSON(http.StatusOK, gin.H{"hospitals": hospitals, "warnings": warnings})
}

// GetDiagnosticsHandler returns the lab-test offerings of one hospital.
func (h *DatasetHandler) GetDiagnosticsHandler(c *gin.Context) {
	hospitalID := c.Param("id")
	records, err := h.Gateway.Fetch(datasets.KindLabTests, datasets.ByField("hospital_id", hospitalID))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "lab catalog unavailable", err.Error())
		return
	}
	offerings, warnings := datasets.DecodeDiagnostics(records)
	c.JSON(http.StatusOK, gin.H{"diagnostics": offerings, "warnings": warnings})
}

// GetEmergencyHandler returns one hospital's emergency capability.
func (h *DatasetHandler) GetEmergencyHandler(c *gin.Context) {
	hospitalID := c.Param("id")
	records, err := h.Gateway.Fetch(datasets.KindEmergency, datasets.ByField("hospital_id", hospitalID))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "emergency dataset unavailable", err.Error())
		return
	}
	capabilities, warnings := datasets.DecodeEmergency(records)
	c.JSON(http.StatusOK, gin.H{"emergency": capabilities, "warnings": warnings})
}

// GetDoctorSlotsHandler returns a doctor's slots with their current
// states. Reads only; slot state is owned by the booking ledger.
func (h *DatasetHandler) GetDoctorSlotsHandler(c *gin.Context) {
	doctorID := c.Param("id")
	slots, err := h.Slots.ListByDoctor(c.Request.Context(), doctorID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to read schedule", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
