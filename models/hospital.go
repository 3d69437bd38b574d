package models

// HospitalRecord is one entry in the hospital directory. Immutable once
// loaded from the data gateway.
type HospitalRecord struct {
	ID          string   `bson:"id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	City        string   `bson:"city" json:"city"`
	State       string   `bson:"state" json:"state"`
	Type        string   `bson:"type" json:"type"` // e.g. "Acute Care", "Critical Access"
	Specialties []string `bson:"specialties" json:"specialties"`
	Capacity    int      `bson:"capacity" json:"capacity"` // bed count, >= 0
	Phone       string   `bson:"phone" json:"phone"`
}

// DiagnosticOffering is a lab test offered by a hospital. Many offerings
// reference one HospitalRecord.
type DiagnosticOffering struct {
	HospitalID      string  `bson:"hospital_id" json:"hospital_id"`
	TestName        string  `bson:"test_name" json:"test_name"`
	Price           float64 `bson:"price" json:"price"` // non-negative
	TurnaroundHours float64 `bson:"turnaround_hours" json:"turnaround_hours"`
}

// EmergencyCapability describes a hospital's emergency readiness.
// One-to-one with HospitalRecord.
type EmergencyCapability struct {
	HospitalID      string  `bson:"hospital_id" json:"hospital_id"`
	Ambulances      int     `bson:"ambulances" json:"ambulances"` // >= 0
	AvgResponseMins float64 `bson:"avg_response_mins" json:"avg_response_mins"`
	Open24x7        bool    `bson:"open_24x7" json:"open_24x7"`
	Phone           string  `bson:"phone" json:"phone"`
}

// DoctorRecord is one entry in the doctor directory.
type DoctorRecord struct {
	ID              string `bson:"id" json:"id"`
	Name            string `bson:"name" json:"name"`
	HospitalID      string `bson:"hospital_id" json:"hospital_id"`
	Specialty       string `bson:"specialty" json:"specialty"`
	Phone           string `bson:"phone" json:"phone"`
	ExperienceYears int    `bson:"experience_years" json:"experience_years"`
}
