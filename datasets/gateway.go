package datasets

// DatasetKind identifies one of the independently loaded record stores.
type DatasetKind string

const (
	KindHospitals DatasetKind = "hospitals"
	KindLabTests  DatasetKind = "labtests"
	KindEmergency DatasetKind = "emergency"
	KindDoctors   DatasetKind = "doctors"
	KindSchedule  DatasetKind = "schedule"
)

// Record is one raw row from a dataset, keyed by column name.
type Record map[string]string

// Predicate filters raw records; nil matches everything.
type Predicate func(Record) bool

// Gateway provides uniform read-only access to the datasets. Each kind
// is loaded independently so a missing dataset degrades only the
// queries that need it.
type Gateway interface {
	Fetch(kind DatasetKind, filter Predicate) ([]Record, error)
	Kinds() []DatasetKind
}

// requiredColumns is the expected shape per dataset kind. A loaded file
// whose header lacks any of these fails with a schema mismatch.
var requiredColumns = map[DatasetKind][]string{
	KindHospitals: {"hospital_id", "hospital_name", "city", "state", "hospital_type", "specialties", "beds", "phone"},
	KindLabTests:  {"hospital_id", "test_name", "price", "turnaround_hours"},
	KindEmergency: {"hospital_id", "ambulances", "avg_response_mins", "open_24x7", "phone"},
	KindDoctors:   {"doctor_id", "doctor_name", "hospital_id", "specialty", "phone", "experience_years"},
	KindSchedule:  {"slot_id", "doctor_id", "hospital_id", "specialty", "start", "end"},
}

// fileNames maps each kind to its CSV file inside the data directory.
var fileNames = map[DatasetKind]string{
	KindHospitals: "Hospital_General_Information.csv",
	KindLabTests:  "Hospital_Information_with_Lab_Tests.csv",
	KindEmergency: "hospitals_emergency_data.csv",
	KindDoctors:   "doctors_info_data.csv",
	KindSchedule:  "doctors_slots_data.csv",
}
