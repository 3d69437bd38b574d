package datasets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"medirouter/models"
)

// Decoders shape raw gateway records into the typed models. Rows with
// unparsable values are skipped and reported as warnings; partial data
// must not abort a query.

func DecodeHospitals(records []Record) ([]models.HospitalRecord, []string) {
	var out []models.HospitalRecord
	var warnings []string
	for _, rec := range records {
		beds, err := strconv.Atoi(rec["beds"])
		if err != nil || beds < 0 {
			warnings = append(warnings, fmt.Sprintf("hospital %s: invalid beds %q", rec["hospital_id"], rec["beds"]))
			beds = 0
		}
		out = append(out, models.HospitalRecord{
			ID:          rec["hospital_id"],
			Name:        rec["hospital_name"],
			City:        rec["city"],
			State:       rec["state"],
			Type:        rec["hospital_type"],
			Specialties: splitList(rec["specialties"]),
			Capacity:    beds,
			Phone:       rec["phone"],
		})
	}
	return out, warnings
}

func DecodeDiagnostics(records []Record) ([]models.DiagnosticOffering, []string) {
	var out []models.DiagnosticOffering
	var warnings []string
	for _, rec := range records {
		price, err := strconv.ParseFloat(rec["price"], 64)
		if err != nil || price < 0 {
			warnings = append(warnings, fmt.Sprintf("labtest %s/%s: invalid price %q", rec["hospital_id"], rec["test_name"], rec["price"]))
			continue
		}
		turnaround, err := strconv.ParseFloat(rec["turnaround_hours"], 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("labtest %s/%s: invalid turnaround %q", rec["hospital_id"], rec["test_name"], rec["turnaround_hours"]))
			turnaround = 0
		}
		out = append(out, models.DiagnosticOffering{
			HospitalID:      rec["hospital_id"],
			TestName:        rec["test_name"],
			Price:           price,
			TurnaroundHours: turnaround,
		})
	}
	return out, warnings
}

func DecodeEmergency(records []Record) ([]models.EmergencyCapability, []string) {
	var out []models.EmergencyCapability
	var warnings []string
	for _, rec := range records {
		ambulances, err := strconv.Atoi(rec["ambulances"])
		if err != nil || ambulances < 0 {
			warnings = append(warnings, fmt.Sprintf("emergency %s: invalid ambulances %q", rec["hospital_id"], rec["ambulances"]))
			ambulances = 0
		}
		response, err := strconv.ParseFloat(rec["avg_response_mins"], 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("emergency %s: invalid response time %q", rec["hospital_id"], rec["avg_response_mins"]))
			response = 0
		}
		out = append(out, models.EmergencyCapability{
			HospitalID:      rec["hospital_id"],
			Ambulances:      ambulances,
			AvgResponseMins: response,
			Open24x7:        parseBool(rec["open_24x7"]),
			Phone:           rec["phone"],
		})
	}
	return out, warnings
}

func DecodeDoctors(records []Record) ([]models.DoctorRecord, []string) {
	var out []models.DoctorRecord
	var warnings []string
	for _, rec := range records {
		years, err := strconv.Atoi(rec["experience_years"])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("doctor %s: invalid experience %q", rec["doctor_id"], rec["experience_years"]))
			years = 0
		}
		out = append(out, models.DoctorRecord{
			ID:              rec["doctor_id"],
			Name:            rec["doctor_name"],
			HospitalID:      rec["hospital_id"],
			Specialty:       rec["specialty"],
			Phone:           rec["phone"],
			ExperienceYears: years,
		})
	}
	return out, warnings
}

func DecodeSlots(records []Record) ([]models.DoctorSlot, []string) {
	var out []models.DoctorSlot
	var warnings []string
	for _, rec := range records {
		start, err := parseTime(rec["start"])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("slot %s: invalid start %q", rec["slot_id"], rec["start"]))
			continue
		}
		end, err := parseTime(rec["end"])
		if err != nil || !start.Before(end) {
			warnings = append(warnings, fmt.Sprintf("slot %s: invalid end %q", rec["slot_id"], rec["end"]))
			continue
		}
		out = append(out, models.DoctorSlot{
			ID:         rec["slot_id"],
			DoctorID:   rec["doctor_id"],
			HospitalID: rec["hospital_id"],
			Specialty:  rec["specialty"],
			Start:      start,
			End:        end,
			Status:     models.SlotOpen,
		})
	}
	return out, warnings
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

func parseTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "yes", "true", "1", "y":
		return true
	}
	return false
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
