package slotRepo

import (
	"context"
	"sort"
	"sync"

	"medirouter/models"
)

// MemorySlotRepo is an in-process SlotRepository used in development
// and tests. It honors the same conditional-update contract as the
// Mongo implementation.
type MemorySlotRepo struct {
	mu    sync.RWMutex
	slots map[string]models.DoctorSlot
}

func NewMemorySlotRepo() *MemorySlotRepo {
	return &MemorySlotRepo{slots: make(map[string]models.DoctorSlot)}
}

func (r *MemorySlotRepo) Insert(_ context.Context, slot models.DoctorSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[slot.ID] = slot
	return nil
}

func (r *MemorySlotRepo) GetByID(_ context.Context, slotID string) (*models.DoctorSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot, ok := r.slots[slotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &slot, nil
}

func (r *MemorySlotRepo) GetByToken(_ context.Context, token string) (*models.DoctorSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, slot := range r.slots {
		if slot.Status == models.SlotHeld && slot.HoldToken == token {
			s := slot
			return &s, nil
		}
	}
	return nil, ErrSlotNotFound
}

func (r *MemorySlotRepo) ListByDoctor(_ context.Context, doctorID string) ([]models.DoctorSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.DoctorSlot
	for _, slot := range r.slots {
		if slot.DoctorID == doctorID {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *MemorySlotRepo) ListHeld(_ context.Context) ([]models.DoctorSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.DoctorSlot
	for _, slot := range r.slots {
		if slot.Status == models.SlotHeld {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (r *MemorySlotRepo) UpdateState(_ context.Context, slot models.DoctorSlot, expectedVersion int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.slots[slot.ID]
	if !ok {
		return false, ErrSlotNotFound
	}
	if current.Version != expectedVersion {
		return false, nil
	}
	slot.Version = expectedVersion + 1
	r.slots[slot.ID] = slot
	return true, nil
}
