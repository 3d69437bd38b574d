package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	slotRepo "medirouter/database/repository/slot"
	"medirouter/models"
	"medirouter/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLedger is the production BookingLedger. Booking attempts for
// the same doctor serialize on a per-doctor mutex around the Open→Held
// transition; attempts for different doctors proceed fully in
// parallel. The repository's conditional updates back the transitions
// for durability.
type DefaultLedger struct {
	Repo             slotRepo.SlotRepository
	DefaultTTL       time.Duration
	OverrideCanceler string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewDefaultLedger(repo slotRepo.SlotRepository, defaultTTL time.Duration, overrideCanceler string) *DefaultLedger {
	if defaultTTL <= 0 {
		defaultTTL = 60 * time.Second
	}
	return &DefaultLedger{
		Repo:             repo,
		DefaultTTL:       defaultTTL,
		OverrideCanceler: overrideCanceler,
		locks:            make(map[string]*sync.Mutex),
	}
}

// doctorLock returns the mutex serializing state transitions for one
// doctor, creating it on first use.
func (l *DefaultLedger) doctorLock(doctorID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[doctorID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[doctorID] = lock
	}
	return lock
}

func (l *DefaultLedger) LoadSlots(ctx context.Context, slots []models.DoctorSlot) error {
	for _, slot := range slots {
		if _, err := l.Repo.GetByID(ctx, slot.ID); err == nil {
			continue // already loaded, keep its state
		} else if !errors.Is(err, slotRepo.ErrSlotNotFound) {
			return fmt.Errorf("failed to check slot %s: %w", slot.ID, err)
		}
		if slot.Status == "" {
			slot.Status = models.SlotOpen
		}
		if err := l.Repo.Insert(ctx, slot); err != nil {
			return err
		}
	}
	return nil
}

func (l *DefaultLedger) Hold(ctx context.Context, doctorID string, start, end time.Time, requesterID string, ttl time.Duration) (*models.HeldToken, error) {
	if !start.Before(end) {
		return nil, NewNotFound(fmt.Sprintf("invalid window [%s, %s)", start.Format(time.RFC3339), end.Format(time.RFC3339)))
	}
	if ttl <= 0 {
		ttl = l.DefaultTTL
	}

	lock := l.doctorLock(doctorID)
	lock.Lock()
	defer lock.Unlock()

	slots, err := l.Repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule for doctor %s: %w", doctorID, err)
	}

	now := time.Now()
	var candidate *models.DoctorSlot
	for i := range slots {
		slot := slots[i]
		if !slot.Overlaps(start, end) {
			continue
		}
		switch slot.Status {
		case models.SlotBooked:
			return nil, NewConflict(fmt.Sprintf("doctor %s is booked in the requested window", doctorID))
		case models.SlotHeld:
			if slot.HoldExpiry.After(now) {
				return nil, NewConflict(fmt.Sprintf("doctor %s has a pending hold in the requested window", doctorID))
			}
			// Abandoned hold: lazily revert before considering the slot.
			reverted, err := l.revertExpired(ctx, slot)
			if err != nil {
				return nil, err
			}
			slot = *reverted
			fallthrough
		case models.SlotOpen:
			if slot.Status == models.SlotOpen && candidate == nil && !start.Before(slot.Start) && !slot.End.Before(end) {
				s := slot
				candidate = &s
			}
		}
	}
	if candidate == nil {
		return nil, NewNotFound(fmt.Sprintf("no open slot covers the requested window for doctor %s", doctorID))
	}

	token := uuid.New().String()
	held := *candidate
	held.Status = models.SlotHeld
	held.HoldToken = token
	held.HolderID = requesterID
	held.HoldExpiry = now.Add(ttl)
	held.BookedBy = ""

	applied, err := l.Repo.UpdateState(ctx, held, candidate.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to hold slot %s: %w", candidate.ID, err)
	}
	if !applied {
		// Another process transitioned the slot first.
		return nil, NewConflict(fmt.Sprintf("slot %s changed state concurrently", candidate.ID))
	}

	utils.GetLogger().Debug("slot held",
		zap.String("slot", held.ID),
		zap.String("doctor", doctorID),
		zap.String("holder", requesterID),
		zap.Time("expiry", held.HoldExpiry))

	return &models.HeldToken{
		Token:    token,
		SlotID:   held.ID,
		DoctorID: doctorID,
		HolderID: requesterID,
		Expiry:   held.HoldExpiry,
	}, nil
}

func (l *DefaultLedger) Confirm(ctx context.Context, token string) (*models.BookingResult, error) {
	slot, err := l.Repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, NewExpired("hold token is unknown or no longer live")
		}
		return nil, err
	}

	lock := l.doctorLock(slot.DoctorID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; the sweep or a competing confirm may have
	// moved the slot on.
	slot, err = l.Repo.GetByID(ctx, slot.ID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, NewExpired("held slot vanished")
		}
		return nil, err
	}
	if slot.Status != models.SlotHeld || slot.HoldToken != token {
		return nil, NewExpired("hold was released or replaced")
	}
	if !slot.HoldExpiry.After(time.Now()) {
		if _, err := l.revertExpired(ctx, *slot); err != nil {
			return nil, err
		}
		return nil, NewExpired("hold TTL elapsed before confirmation")
	}

	booked := *slot
	booked.Status = models.SlotBooked
	booked.BookedBy = slot.HolderID
	booked.HoldToken = ""
	booked.HolderID = ""
	booked.HoldExpiry = time.Time{}

	applied, err := l.Repo.UpdateState(ctx, booked, slot.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm slot %s: %w", slot.ID, err)
	}
	if !applied {
		return nil, NewExpired("hold was superseded during confirmation")
	}

	utils.GetLogger().Info("booking confirmed",
		zap.String("slot", booked.ID),
		zap.String("doctor", booked.DoctorID),
		zap.String("booker", booked.BookedBy))

	return &models.BookingResult{Status: models.BookingConfirmed, SlotID: booked.ID}, nil
}

func (l *DefaultLedger) Cancel(ctx context.Context, slotID, requesterID string) error {
	slot, err := l.Repo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return NewNotFound(fmt.Sprintf("slot %s does not exist", slotID))
		}
		return err
	}

	lock := l.doctorLock(slot.DoctorID)
	lock.Lock()
	defer lock.Unlock()

	slot, err = l.Repo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return NewNotFound(fmt.Sprintf("slot %s does not exist", slotID))
		}
		return err
	}
	if slot.Status != models.SlotBooked {
		return NewNotFound(fmt.Sprintf("slot %s carries no booking", slotID))
	}
	if slot.BookedBy != requesterID && (l.OverrideCanceler == "" || requesterID != l.OverrideCanceler) {
		return NewForbidden(fmt.Sprintf("requester %s did not book slot %s", requesterID, slotID))
	}

	cancelled := *slot
	cancelled.Status = models.SlotCancelled

	applied, err := l.Repo.UpdateState(ctx, cancelled, slot.Version)
	if err != nil {
		return fmt.Errorf("failed to cancel slot %s: %w", slotID, err)
	}
	if !applied {
		return NewNotFound(fmt.Sprintf("slot %s changed state concurrently", slotID))
	}

	utils.GetLogger().Info("booking cancelled",
		zap.String("slot", slotID),
		zap.String("requester", requesterID))
	return nil
}

// ExpireHeld sweeps every Held slot whose TTL elapsed back to Open.
// The cron worker runs it periodically; Hold and Confirm also check
// lazily so abandoned holds never outlive their TTL by more than the
// sweep interval.
func (l *DefaultLedger) ExpireHeld(ctx context.Context) (int, error) {
	held, err := l.Repo.ListHeld(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list held slots: %w", err)
	}

	now := time.Now()
	released := 0
	for _, slot := range held {
		if slot.HoldExpiry.After(now) {
			continue
		}
		lock := l.doctorLock(slot.DoctorID)
		lock.Lock()
		current, err := l.Repo.GetByID(ctx, slot.ID)
		if err == nil && current.Status == models.SlotHeld && !current.HoldExpiry.After(now) {
			if _, err := l.revertExpired(ctx, *current); err == nil {
				released++
			}
		}
		lock.Unlock()
	}
	return released, nil
}

// revertExpired transitions an expired Held slot back to Open. Caller
// must hold the doctor lock.
func (l *DefaultLedger) revertExpired(ctx context.Context, slot models.DoctorSlot) (*models.DoctorSlot, error) {
	reopened := slot
	reopened.Status = models.SlotOpen
	reopened.HoldToken = ""
	reopened.HolderID = ""
	reopened.HoldExpiry = time.Time{}

	applied, err := l.Repo.UpdateState(ctx, reopened, slot.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to release expired hold on slot %s: %w", slot.ID, err)
	}
	if !applied {
		current, err := l.Repo.GetByID(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		return current, nil
	}
	reopened.Version = slot.Version + 1
	utils.GetLogger().Debug("expired hold released", zap.String("slot", slot.ID))
	return &reopened, nil
}
