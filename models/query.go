package models

// Intent is the classified purpose of an incoming request.
type Intent string

const (
	IntentBooking    Intent = "booking"
	IntentComparison Intent = "comparison"
	IntentEmergency  Intent = "emergency"
	IntentDiagnostic Intent = "diagnostic"
	IntentGeneral    Intent = "general" // fallback lookup
)

// QueryRequest is the payload coming into the router. Text carries the
// user's free-form request; the structured fields, when present, refine
// the dispatch (the classifier only decides the intent).
type QueryRequest struct {
	RequesterID string          `json:"requester_id"`
	Text        string          `json:"text"`
	Criteria    *Criteria       `json:"criteria,omitempty"`
	Booking     *BookingRequest `json:"booking,omitempty"`
	HospitalID  string          `json:"hospital_id,omitempty"`
	State       string          `json:"state,omitempty"`
}

// QueryResponse is the router's merged answer. Exactly one of the
// payload fields is populated, matching the dispatched intent.
type QueryResponse struct {
	Intent      Intent                `json:"intent"`
	Ranked      []RankedHospital      `json:"ranked,omitempty"`
	Hospitals   []HospitalRecord      `json:"hospitals,omitempty"`
	Emergency   []EmergencyCapability `json:"emergency,omitempty"`
	Diagnostics []DiagnosticOffering  `json:"diagnostics,omitempty"`
	Booking     *BookingResult        `json:"booking,omitempty"`
	Warnings    []string              `json:"warnings,omitempty"`
}

// RouterContext is per-requester conversation state kept between
// queries (Redis-backed, TTL-bounded).
type RouterContext struct {
	LastIntent   Intent `json:"last_intent,omitempty"`
	PendingToken string `json:"pending_token,omitempty"`
	PendingSlot  string `json:"pending_slot,omitempty"`
}
