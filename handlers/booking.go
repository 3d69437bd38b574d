package handlers

import (
	"errors"
	"net/http"
	"time"

	"medirouter/models"
	"medirouter/services/ledger"
	"medirouter/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes the ledger's two-phase booking flow to the
// presentation layer: hold, then confirm with the returned token.
type BookingHandler struct {
	Ledger ledger.BookingLedger
}

func NewBookingHandler(l ledger.BookingLedger) *BookingHandler {
	return &BookingHandler{Ledger: l}
}

// HoldHandler reserves a slot for the requested doctor and window.
func (h *BookingHandler) HoldHandler(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking payload", err.Error())
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	token, err := h.Ledger.Hold(c.Request.Context(), req.DoctorID, req.Start, req.End, req.RequesterID, ttl)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ConfirmHandler turns a live hold into a booking.
func (h *BookingHandler) ConfirmHandler(c *gin.Context) {
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid confirm payload", err.Error())
		return
	}

	result, err := h.Ledger.Confirm(c.Request.Context(), input.Token)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CancelHandler cancels a confirmed booking.
func (h *BookingHandler) CancelHandler(c *gin.Context) {
	var input struct {
		SlotID      string `json:"slot_id" binding:"required"`
		RequesterID string `json:"requester_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid cancel payload", err.Error())
		return
	}

	if err := h.Ledger.Cancel(c.Request.Context(), input.SlotID, input.RequesterID); err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func writeBookingError(c *gin.Context, err error) {
	var be *ledger.BookingError
	if !errors.As(err, &be) {
		utils.JSONError(c, http.StatusInternalServerError, "booking operation failed", err.Error())
		return
	}
	status := http.StatusInternalServerError
	switch be.Code {
	case ledger.CodeConflict:
		status = http.StatusConflict
	case ledger.CodeExpired:
		status = http.StatusGone
	case ledger.CodeNotFound:
		status = http.StatusNotFound
	case ledger.CodeForbidden:
		status = http.StatusForbidden
	}
	utils.JSONError(c, status, be.Code, be.Message)
}
