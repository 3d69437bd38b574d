package models

import "time"

// SlotStatus is the lifecycle state of a doctor slot.
type SlotStatus string

const (
	SlotOpen      SlotStatus = "Open"
	SlotHeld      SlotStatus = "Held"
	SlotBooked    SlotStatus = "Booked"
	SlotCancelled SlotStatus = "Cancelled"
)

// DoctorSlot represents a bookable appointment window for a doctor.
// Once loaded, slot state is owned exclusively by the booking ledger;
// no other component writes it.
type DoctorSlot struct {
	ID         string     `bson:"id" json:"id"`
	DoctorID   string     `bson:"doctor_id" json:"doctor_id"`
	HospitalID string     `bson:"hospital_id" json:"hospital_id"`
	Specialty  string     `bson:"specialty" json:"specialty"`
	Start      time.Time  `bson:"start" json:"start"`
	End        time.Time  `bson:"end" json:"end"`
	Status     SlotStatus `bson:"status" json:"status"`

	// Hold bookkeeping; meaningful only while Status == SlotHeld.
	HoldToken  string    `bson:"hold_token,omitempty" json:"hold_token,omitempty"`
	HolderID   string    `bson:"holder_id,omitempty" json:"holder_id,omitempty"`
	HoldExpiry time.Time `bson:"hold_expiry,omitempty" json:"hold_expiry,omitempty"`

	// Set when Status == SlotBooked.
	BookedBy string `bson:"booked_by,omitempty" json:"booked_by,omitempty"`

	// Version supports conditional updates in the durable store.
	Version int `bson:"version" json:"version"`
}

// Overlaps reports whether the slot's window shares any instant with
// [start, end). Adjacent windows do not overlap.
func (s DoctorSlot) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && start.Before(s.End)
}

// HeldToken is the receipt returned by a successful hold. Confirming a
// booking requires presenting it before expiry.
type HeldToken struct {
	Token    string    `json:"token"`
	SlotID   string    `json:"slot_id"`
	DoctorID string    `json:"doctor_id"`
	HolderID string    `json:"holder_id"`
	Expiry   time.Time `json:"expiry"`
}

// BookingStatus is the outcome class of a booking attempt.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "Confirmed"
	BookingConflict  BookingStatus = "Conflict"
	BookingNotFound  BookingStatus = "NotFound"
	BookingExpired   BookingStatus = "Expired"
)

// BookingRequest is a request to reserve a doctor's time window.
type BookingRequest struct {
	DoctorID    string    `json:"doctor_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	RequesterID string    `json:"requester_id"`
	TTLSeconds  int       `json:"ttl_seconds,omitempty"`
}

// BookingResult is the terminal outcome of a booking attempt.
type BookingResult struct {
	Status BookingStatus `json:"status"`
	SlotID string        `json:"slot_id,omitempty"`
	Token  *HeldToken    `json:"token,omitempty"`
}
