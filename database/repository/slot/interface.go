package slotRepo

import (
	"context"
	"errors"

	"medirouter/models"
)

// ErrSlotNotFound is returned when no slot matches the lookup key.
var ErrSlotNotFound = errors.New("slot not found")

// SlotRepository is the durable store behind the booking ledger. State
// changes go through UpdateState, a conditional (compare-and-swap)
// write keyed on the slot's version; a false return means the stored
// slot moved on and the caller must re-read.
type SlotRepository interface {
	Insert(ctx context.Context, slot models.DoctorSlot) error
	GetByID(ctx context.Context, slotID string) (*models.DoctorSlot, error)
	GetByToken(ctx context.Context, token string) (*models.DoctorSlot, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.DoctorSlot, error)
	ListHeld(ctx context.Context) ([]models.DoctorSlot, error)
	UpdateState(ctx context.Context, slot models.DoctorSlot, expectedVersion int) (bool, error)
}
