package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	slotRepo "medirouter/database/repository/slot"
	"medirouter/models"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return ts
}

func newTestLedger(t *testing.T, slots ...models.DoctorSlot) *DefaultLedger {
	t.Helper()
	repo := slotRepo.NewMemorySlotRepo()
	l := NewDefaultLedger(repo, time.Minute, "admin")
	if err := l.LoadSlots(context.Background(), slots); err != nil {
		t.Fatalf("LoadSlots: %v", err)
	}
	return l
}

func openSlot(id, doctorID, start, end string, t *testing.T) models.DoctorSlot {
	return models.DoctorSlot{
		ID:       id,
		DoctorID: doctorID,
		Start:    mustTime(t, start),
		End:      mustTime(t, end),
		Status:   models.SlotOpen,
	}
}

func TestHoldExclusivityUnderConcurrency(t *testing.T) {
	l := newTestLedger(t, openSlot("s1", "d1", "2026-09-01T10:00:00Z", "2026-09-01T10:30:00Z", t))
	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T10:30:00Z")

	const workers = 50
	var wg sync.WaitGroup
	successes := make(chan *models.HeldToken, workers)
	conflicts := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			token, err := l.Hold(context.Background(), "d1", start, end, "requester", time.Minute)
			if err != nil {
				conflicts <- err
				return
			}
			successes <- token
		}(i)
	}
	wg.Wait()
	close(successes)
	close(conflicts)

	if got := len(successes); got != 1 {
		t.Fatalf("expected exactly 1 successful hold, got %d", got)
	}
	for err := range conflicts {
		if !IsCode(err, CodeConflict) {
			t.Fatalf("losing hold should return Conflict, got %v", err)
		}
	}
}

func TestHoldConfirmScenario(t *testing.T) {
	l := newTestLedger(t, openSlot("s1", "d1", "2026-09-01T10:00:00Z", "2026-09-01T10:30:00Z", t))
	ctx := context.Background()
	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T10:30:00Z")

	token, err := l.Hold(ctx, "d1", start, end, "alice", time.Minute)
	if err != nil {
		t.Fatalf("hold by alice: %v", err)
	}

	if _, err := l.Hold(ctx, "d1", start, end, "bob", time.Minute); !IsCode(err, CodeConflict) {
		t.Fatalf("bob's hold during alice's hold should be Conflict, got %v", err)
	}

	result, err := l.Confirm(ctx, token.Token)
	if err != nil {
		t.Fatalf("confirm within TTL: %v", err)
	}
	if result.Status != models.BookingConfirmed || result.SlotID != "s1" {
		t.Fatalf("unexpected confirm result: %+v", result)
	}

	// Slot is now Booked; a retry must still conflict.
	if _, err := l.Hold(ctx, "d1", start, end, "bob", time.Minute); !IsCode(err, CodeConflict) {
		t.Fatalf("bob's hold after booking should be Conflict, got %v", err)
	}
}

func TestExpiredHoldIsReboundable(t *testing.T) {
	l := newTestLedger(t, openSlot("s1", "d1", "2026-09-01T10:00:00Z", "2026-09-01T10:30:00Z", t))
	ctx := context.Background()
	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T10:30:00Z")

	if _, err := l.Hold(ctx, "d1", start, end, "alice", 30*time.Millisecond); err != nil {
		t.Fatalf("hold by alice: %v", err)
	}
	time.Sleep(60 * time.Millisecond)

	token, err := l.Hold(ctx, "d1", start, end, "bob", time.Minute)
	if err != nil {
		t.Fatalf("bob's hold after alice's hold expired: %v", err)
	}
	if token.HolderID != "bob" {
		t.Fatalf("expected bob to hold the slot, got %s", token.HolderID)
	}
}

func TestConfirmAfterExpiryReopensSlot(t *testing.T) {
	l := newTestLedger(t, openSlot("s1", "d1", "2026-09-01T10:00:00Z", "2026-09-01T10:30:00Z", t))
	ctx := context.Background()
	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T10:30:00Z")

	token, err := l.Hold(ctx, "d1", start, end, "alice", 20*time.Millisecond)
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if _, err := l.Confirm(ctx, token.Token); !IsCode(err, CodeExpired) {
		t.Fatalf("confirm after TTL should be Expired, got %v", err)
	}

	slot, err := l.Repo.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("read slot: %v", err)
	}
	if slot.Status != models.SlotOpen {
		t.Fatalf("slot should revert to Open after expiry, got %s", slot.Status)
	}
}

func TestDisjointBookingsProceedInParallel(t *testing.T) {
	l := newTestLedger(t,
		openSlot("s1", "d1", "2026-09-01T10:00:00Z", "2026-09-01T10:30:00Z", t),
		openSlot("s2", "d2", "2026-09-01T10:00:00Z", "2026-09-01T10:30:00Z", t),
		openSlot("s3", "d1", "2026-09-01T11:00:00Z", "2026-09-01T11:30:00Z", t),
	)
	ctx := context.Background()

	type attempt struct {
		doctorID   string
		start, end time.Time
	}
	attempts := []attempt{
		{"d1", mustTime(t, "2026-09-01T10:00:00Z"), mustTime(t, "2026-09-01T10:30:00Z")},
		{"d2", mustTime(t, "2026-09-01T10:00:00Z"), mustTime(t, "2026-09-01T10:30:00Z")},
		{"d1", mustTime(t, "2026-09-01T11:00:00Z"), mustTime(t, "2026-09-01T11:30:00Z")},
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(attempts))
	for _, a := range attempts {
		wg.Add(1)
		go func(a attempt) {
			defer wg.Done()
			_, err := l.Hold(ctx, a.doctorID, a.start, a.end, "requester", time.Minute)
			errs <- err
		}(a)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("disjoint hold should succeed, got %v", err)
		}
	}
}

func TestAdjacentWindowsAreIndependent(t *testing.T) {
	l := newTestLedger(t,
		openSlot("s1", "d1", "2026-09-01T10:00:00Z", "2026-09-01T10:30:00Z", t),
		openSlot("s2", "d1", "2026-09-01T10:30:00Z", "2026-09-01T11:00:00Z", t),
	)
	ctx := context.Background()

	if _, err := l.Hold(ctx, "d1", mustTime(t, "2026-09-01T10:00:00Z"), mustTime(t, "2026-09-01T10:30:00Z"), "alice", time.Minute); err != nil {
		t.Fatalf("first hold: %v", err)
	}
	if _, err := l.Hold(ctx, "d1", mustTime(t, "2026-09-01T10:30:00Z"), mustTime(t, "2026-09-01T11:00:00Z"), "bob", time.Minute); err != nil {
		t.Fatalf("adjacent window must not conflict: %v", err)
	}
}

func TestCancelPermissions(t *testing.T) {
	l := newTestLedger(t, openSlot("s1", "d1", "2026-09-01T10:00:00Z", "2026-09-01T10:30:00Z", t))
	ctx := context.Background()
	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T10:30:00Z")

	token, err := l.Hold(ctx, "d1", start, end, "alice", time.Minute)
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if _, err := l.Confirm(ctx, token.Token); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if err := l.Cancel(ctx, "s1", "mallory"); !IsCode(err, CodeForbidden) {
		t.Fatalf("cancel by non-booker should be Forbidden, got %v", err)
	}
	if err := l.Cancel(ctx, "missing", "alice"); !IsCode(err, CodeNotFound) {
		t.Fatalf("cancel of unknown slot should be NotFound, got %v", err)
	}
	if err := l.Cancel(ctx, "s1", "alice"); err != nil {
		t.Fatalf("cancel by booker: %v", err)
	}

	slot, err := l.Repo.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("read slot: %v", err)
	}
	if slot.Status != models.SlotCancelled {
		t.Fatalf("expected Cancelled, got %s", slot.Status)
	}

	// Cancelled is terminal; the window is gone, not reopened.
	if _, err := l.Hold(ctx, "d1", start, end, "bob", time.Minute); !IsCode(err, CodeNotFound) {
		t.Fatalf("hold against cancelled slot should be NotFound, got %v", err)
	}

	// Double-cancel reports no booking to cancel.
	if err := l.Cancel(ctx, "s1", "alice"); !IsCode(err, CodeNotFound) {
		t.Fatalf("second cancel should be NotFound, got %v", err)
	}
}

func TestOverrideCancelerMayCancel(t *testing.T) {
	l := newTestLedger(t, openSlot("s1", "d1", "2026-09-01T10:00:00Z", "2026-09-01T10:30:00Z", t))
	ctx := context.Background()

	token, err := l.Hold(ctx, "d1", mustTime(t, "2026-09-01T10:00:00Z"), mustTime(t, "2026-09-01T10:30:00Z"), "alice", time.Minute)
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if _, err := l.Confirm(ctx, token.Token); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := l.Cancel(ctx, "s1", "admin"); err != nil {
		t.Fatalf("override canceler should be allowed: %v", err)
	}
}

func TestExpireHeldSweep(t *testing.T) {
	l := newTestLedger(t,
		openSlot("s1", "d1", "2026-09-01T10:00:00Z", "2026-09-01T10:30:00Z", t),
		openSlot("s2", "d2", "2026-09-01T10:00:00Z", "2026-09-01T10:30:00Z", t),
	)
	ctx := context.Background()

	if _, err := l.Hold(ctx, "d1", mustTime(t, "2026-09-01T10:00:00Z"), mustTime(t, "2026-09-01T10:30:00Z"), "alice", 20*time.Millisecond); err != nil {
		t.Fatalf("short hold: %v", err)
	}
	if _, err := l.Hold(ctx, "d2", mustTime(t, "2026-09-01T10:00:00Z"), mustTime(t, "2026-09-01T10:30:00Z"), "bob", time.Minute); err != nil {
		t.Fatalf("long hold: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	released, err := l.ExpireHeld(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if released != 1 {
		t.Fatalf("expected 1 released hold, got %d", released)
	}

	s1, _ := l.Repo.GetByID(ctx, "s1")
	if s1.Status != models.SlotOpen {
		t.Fatalf("expired hold should be Open, got %s", s1.Status)
	}
	s2, _ := l.Repo.GetByID(ctx, "s2")
	if s2.Status != models.SlotHeld {
		t.Fatalf("live hold should stay Held, got %s", s2.Status)
	}
}

func TestHoldWithoutMatchingSlot(t *testing.T) {
	l := newTestLedger(t, openSlot("s1", "d1", "2026-09-01T10:00:00Z", "2026-09-01T10:30:00Z", t))
	ctx := context.Background()

	if _, err := l.Hold(ctx, "nobody", mustTime(t, "2026-09-01T10:00:00Z"), mustTime(t, "2026-09-01T10:30:00Z"), "alice", time.Minute); !IsCode(err, CodeNotFound) {
		t.Fatalf("hold for unknown doctor should be NotFound, got %v", err)
	}
	// Window outside any slot.
	if _, err := l.Hold(ctx, "d1", mustTime(t, "2026-09-01T12:00:00Z"), mustTime(t, "2026-09-01T12:30:00Z"), "alice", time.Minute); !IsCode(err, CodeNotFound) {
		t.Fatalf("hold outside schedule should be NotFound, got %v", err)
	}
	// Inverted window.
	if _, err := l.Hold(ctx, "d1", mustTime(t, "2026-09-01T10:30:00Z"), mustTime(t, "2026-09-01T10:00:00Z"), "alice", time.Minute); !IsCode(err, CodeNotFound) {
		t.Fatalf("inverted window should be NotFound, got %v", err)
	}
}
