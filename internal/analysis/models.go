package analysis

// Severity of a document finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityModerate Severity = "moderate"
	SeverityLow      Severity = "low"
)

type Metadata struct {
	DoctorName  string `json:"doctorName"`
	ClinicName  string `json:"clinicName"`
	Date        string `json:"date"`
	PatientName string `json:"patientName"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
}

// StepType classifies a treatment pathway step.
type StepType string

const (
	StepMedication  StepType = "medication"
	StepProcedure   StepType = "procedure"
	StepObservation StepType = "observation"
	StepLifestyle   StepType = "lifestyle"
)

type TreatmentStep struct {
	Step string   `json:"step"`
	Type StepType `json:"type"`
	Time string   `json:"time"`
}

type Medication struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage"`
	Duration string `json:"duration"`
}

// Result is the structured reading of one uploaded report.
type Result struct {
	Filename         string          `json:"filename"`
	Source           string          `json:"source"` // text or filename
	Metadata         Metadata        `json:"metadata"`
	Severity         Severity        `json:"severity"`
	Diagnosis        string          `json:"diagnosis"`
	Summary          string          `json:"summary"`
	IncreasedMarkers []string        `json:"increasedMarkers"`
	AlertFlags       []string        `json:"alertFlags"`
	Symptoms         []string        `json:"symptoms"`
	TreatmentFlow    []TreatmentStep `json:"treatmentFlow"`
	RecommendedMeds  []Medication    `json:"recommendedMeds"`
	Protocols        []string        `json:"protocols"`
	Lifestyle        []string        `json:"lifestyle"`
	Avoid            []string        `json:"avoid"`
	FollowUpPlan     string          `json:"followUpPlan"`
}

// Category is the clinical area a report falls in.
type Category string

const (
	CategoryCardiac    Category = "cardiac"
	CategoryHematology Category = "hematology"
	CategoryOrthopedic Category = "orthopedic"
	CategoryWellness   Category = "wellness"
)
