package router

import (
	"context"
	"testing"
	"time"

	slotRepo "medirouter/database/repository/slot"
	"medirouter/datasets"
	"medirouter/models"
	"medirouter/services/compare"
	"medirouter/services/ledger"
)

// fakeGateway serves canned records per dataset kind; kinds listed in
// down fail with DatasetUnavailable.
type fakeGateway struct {
	tables map[datasets.DatasetKind][]datasets.Record
	down   map[datasets.DatasetKind]bool
}

func (g *fakeGateway) Fetch(kind datasets.DatasetKind, filter datasets.Predicate) ([]datasets.Record, error) {
	if g.down[kind] {
		return nil, datasets.NewDatasetUnavailable(kind, "down for test")
	}
	var out []datasets.Record
	for _, rec := range g.tables[kind] {
		if filter == nil || filter(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (g *fakeGateway) Kinds() []datasets.DatasetKind {
	kinds := make([]datasets.DatasetKind, 0, len(g.tables))
	for kind := range g.tables {
		kinds = append(kinds, kind)
	}
	return kinds
}

func newTestGateway() *fakeGateway {
	return &fakeGateway{
		tables: map[datasets.DatasetKind][]datasets.Record{
			datasets.KindHospitals: {
				{"hospital_id": "h1", "hospital_name": "General", "city": "Springfield", "state": "CA", "hospital_type": "Acute Care", "specialties": "cardiology;oncology", "beds": "400", "phone": "111"},
				{"hospital_id": "h2", "hospital_name": "Mercy", "city": "Rivertown", "state": "CA", "hospital_type": "Acute Care", "specialties": "cardiology", "beds": "150", "phone": "222"},
			},
			datasets.KindLabTests: {
				{"hospital_id": "h1", "test_name": "cbc", "price": "120", "turnaround_hours": "24"},
				{"hospital_id": "h2", "test_name": "cbc", "price": "80", "turnaround_hours": "48"},
				{"hospital_id": "ghost", "test_name": "cbc", "price": "1", "turnaround_hours": "1"},
			},
			datasets.KindEmergency: {
				{"hospital_id": "h1", "ambulances": "6", "avg_response_mins": "9", "open_24x7": "yes", "phone": "911-1"},
				{"hospital_id": "h2", "ambulances": "2", "avg_response_mins": "16", "open_24x7": "no", "phone": "911-2"},
			},
		},
		down: map[datasets.DatasetKind]bool{},
	}
}

func newTestRouter(t *testing.T, gw datasets.Gateway, fallback bool) *DefaultRouter {
	t.Helper()
	repo := slotRepo.NewMemorySlotRepo()
	l := ledger.NewDefaultLedger(repo, time.Minute, "")
	slot := models.DoctorSlot{
		ID:       "s1",
		DoctorID: "d1",
		Start:    time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		End:      time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
		Status:   models.SlotOpen,
	}
	if err := l.LoadSlots(context.Background(), []models.DoctorSlot{slot}); err != nil {
		t.Fatalf("seed slots: %v", err)
	}
	return &DefaultRouter{
		Gateway:    gw,
		Engine:     compare.NewEngine(),
		Ledger:     l,
		Classifier: &KeywordClassifier{Fallback: fallback},
	}
}

func TestRouteComparisonRanksAndDropsDangling(t *testing.T) {
	r := newTestRouter(t, newTestGateway(), true)

	resp, err := r.Route(context.Background(), models.QueryRequest{
		Text: "compare hospitals by price and capacity",
		Criteria: &models.Criteria{Weights: map[string]float64{
			"price":    -1.0,
			"capacity": 0.3,
		}},
	})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Intent != models.IntentComparison {
		t.Fatalf("expected comparison intent, got %s", resp.Intent)
	}
	if len(resp.Ranked) != 2 {
		t.Fatalf("expected 2 ranked hospitals, got %+v", resp.Ranked)
	}
	for _, rh := range resp.Ranked {
		if rh.HospitalID == "ghost" {
			t.Fatal("dangling hospital leaked into ranking")
		}
	}
	// h1: (-120 + 0.3*400)/1.3 = 0; h2: (-80 + 0.3*150)/1.3 < 0.
	if resp.Ranked[0].HospitalID != "h1" {
		t.Fatalf("expected h1 first, got %+v", resp.Ranked)
	}
	if resp.Ranked[0].Name != "General" {
		t.Fatalf("expected directory name attached, got %q", resp.Ranked[0].Name)
	}
}

func TestRouteComparisonDegradesOnMissingDataset(t *testing.T) {
	gw := newTestGateway()
	gw.down[datasets.KindEmergency] = true
	r := newTestRouter(t, gw, true)

	resp, err := r.Route(context.Background(), models.QueryRequest{
		Text: "compare hospitals",
		Criteria: &models.Criteria{Weights: map[string]float64{
			"price":        -1.0,
			"responseTime": -0.5,
		}},
	})
	if err != nil {
		t.Fatalf("comparison should survive a missing dataset: %v", err)
	}
	if len(resp.Ranked) == 0 {
		t.Fatal("expected ranking from the remaining metrics")
	}
	if len(resp.Warnings) == 0 {
		t.Fatal("expected a degradation warning")
	}
}

func TestRouteBookingConfirmsAndConflicts(t *testing.T) {
	r := newTestRouter(t, newTestGateway(), true)
	ctx := context.Background()

	req := models.QueryRequest{
		RequesterID: "alice",
		Text:        "book doctor d1",
		Booking: &models.BookingRequest{
			DoctorID: "d1",
			Start:    time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
			End:      time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
		},
	}

	resp, err := r.Route(ctx, req)
	if err != nil {
		t.Fatalf("route booking: %v", err)
	}
	if resp.Booking == nil || resp.Booking.Status != models.BookingConfirmed {
		t.Fatalf("expected confirmed booking, got %+v", resp.Booking)
	}

	// The same window again is a conflict, surfaced as a result, not an error.
	req.RequesterID = "bob"
	resp, err = r.Route(ctx, req)
	if err != nil {
		t.Fatalf("route second booking: %v", err)
	}
	if resp.Booking.Status != models.BookingConflict {
		t.Fatalf("expected conflict, got %+v", resp.Booking)
	}
}

func TestRouteBookingWithoutDetails(t *testing.T) {
	r := newTestRouter(t, newTestGateway(), true)

	resp, err := r.Route(context.Background(), models.QueryRequest{Text: "book something"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Booking == nil || resp.Booking.Status != models.BookingNotFound {
		t.Fatalf("expected NotFound result, got %+v", resp.Booking)
	}
	if len(resp.Warnings) == 0 {
		t.Fatal("expected a warning asking for booking details")
	}
}

func TestRouteEmergencyLookup(t *testing.T) {
	r := newTestRouter(t, newTestGateway(), true)

	resp, err := r.Route(context.Background(), models.QueryRequest{Text: "I have an emergency", State: "CA"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Intent != models.IntentEmergency {
		t.Fatalf("expected emergency intent, got %s", resp.Intent)
	}
	if len(resp.Emergency) != 2 {
		t.Fatalf("expected 2 emergency records, got %d", len(resp.Emergency))
	}
}

func TestRouteDiagnosticLookup(t *testing.T) {
	r := newTestRouter(t, newTestGateway(), true)

	resp, err := r.Route(context.Background(), models.QueryRequest{Text: "which labs offer a blood test", HospitalID: "h2"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Intent != models.IntentDiagnostic {
		t.Fatalf("expected diagnostic intent, got %s", resp.Intent)
	}
	if len(resp.Diagnostics) != 1 || resp.Diagnostics[0].HospitalID != "h2" {
		t.Fatalf("expected h2's offerings only, got %+v", resp.Diagnostics)
	}
}

func TestRouteGeneralFallback(t *testing.T) {
	r := newTestRouter(t, newTestGateway(), true)

	resp, err := r.Route(context.Background(), models.QueryRequest{Text: "hospitals in CA please", State: "CA"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Intent != models.IntentGeneral {
		t.Fatalf("expected general intent, got %s", resp.Intent)
	}
	if len(resp.Hospitals) != 2 {
		t.Fatalf("expected the CA directory, got %+v", resp.Hospitals)
	}
}

func TestRouteAmbiguousWithoutFallback(t *testing.T) {
	r := newTestRouter(t, newTestGateway(), false)

	_, err := r.Route(context.Background(), models.QueryRequest{Text: "hmm"})
	if !IsAmbiguous(err) {
		t.Fatalf("expected AmbiguousIntent, got %v", err)
	}
}
