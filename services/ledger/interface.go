package ledger

import (
	"context"
	"time"

	"medirouter/models"
)

// BookingLedger arbitrates appointment slot state. It is the only
// component allowed to write DoctorSlot records once they are loaded.
type BookingLedger interface {
	// LoadSlots seeds the ledger with schedule slots. Existing slots
	// keep their state; only unknown ids are inserted.
	LoadSlots(ctx context.Context, slots []models.DoctorSlot) error

	// Hold reserves an Open slot covering [start, end) for the
	// requester. At most one concurrent hold can succeed per doctor and
	// overlapping window.
	Hold(ctx context.Context, doctorID string, start, end time.Time, requesterID string, ttl time.Duration) (*models.HeldToken, error)

	// Confirm turns a live hold into a booking. An expired or replaced
	// token yields an Expired error and the slot reverts to Open.
	Confirm(ctx context.Context, token string) (*models.BookingResult, error)

	// Cancel releases a Booked slot. Only the original booker or the
	// configured override requester may cancel; Cancelled is terminal.
	Cancel(ctx context.Context, slotID, requesterID string) error

	// ExpireHeld reverts every Held slot whose TTL elapsed back to
	// Open and returns how many it released.
	ExpireHeld(ctx context.Context) (int, error)
}
