package patient

import "time"

// Status is where a patient sits in the hospital flow.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusSeen       Status = "seen"
	StatusAdmitted   Status = "admitted"
	StatusDischarged Status = "discharged"
)

// Severity is the triage severity.
type Severity string

const (
	SeverityEmergency Severity = "emergency"
	SeverityHigh      Severity = "high"
	SeverityMedium    Severity = "medium"
	SeverityLow       Severity = "low"
	SeverityStable    Severity = "stable"
)

// Severities in the order the simulator draws from.
var Severities = []Severity{SeverityStable, SeverityLow, SeverityMedium, SeverityHigh, SeverityEmergency}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	for _, known := range Severities {
		if s == known {
			return true
		}
	}
	return false
}

// Duration units accepted at intake.
const (
	UnitHours = "Hours"
	UnitDays  = "Days"
	UnitWeeks = "Weeks"
)

type Complaint struct {
	Symptom  string `json:"symptom"`
	Duration int    `json:"duration"`
	Unit     string `json:"unit"`
}

// FollowUp is a scheduled post-visit contact.
type FollowUp struct {
	Date   string `json:"date"`
	Status string `json:"status"` // scheduled, sent, confirmed, missed
	Type   string `json:"type"`   // routine, urgent, tele-consult
}

type DischargeReport struct {
	Summary      string    `json:"summary"`
	Medications  string    `json:"medications"`
	Instructions string    `json:"instructions"`
	Date         time.Time `json:"date"`
}

type VitalsReading struct {
	Date      string  `json:"date"`
	BPSys     int     `json:"bpSys"`
	BPDia     int     `json:"bpDia"`
	HeartRate int     `json:"heartRate"`
	Temp      float64 `json:"temp"`
}

// Patient is one record of the registry. Notes are most-recent-first.
type Patient struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Age                 int              `json:"age"`
	Gender              string           `json:"gender"`
	Phone               string           `json:"phone"`
	Complaints          []Complaint      `json:"complaints"`
	Severity            Severity         `json:"severity"`
	SuggestedDepartment string           `json:"suggestedDepartment"`
	AISummary           string           `json:"aiSummary"`
	Notes               []string         `json:"notes"`
	Allergies           []string         `json:"allergies"`
	Status              Status           `json:"status"`
	AdmittedDate        time.Time        `json:"admittedDate"`
	Ward                string           `json:"ward,omitempty"`
	Room                string           `json:"room,omitempty"`
	Condition           string           `json:"condition,omitempty"`
	DischargeReport     *DischargeReport `json:"dischargeReport,omitempty"`
	FollowUp            *FollowUp        `json:"followUp,omitempty"`
	AdherenceScore      *int             `json:"adherenceScore,omitempty"`
	LastContacted       string           `json:"lastContacted,omitempty"`
	VitalsHistory       []VitalsReading  `json:"vitalsHistory,omitempty"`
}

// PrimarySymptom returns the first complaint, or "" when none was recorded.
func (p Patient) PrimarySymptom() string {
	if len(p.Complaints) == 0 {
		return ""
	}
	return p.Complaints[0].Symptom
}

// Clone returns a deep copy so callers never share slices with the registry.
func (p Patient) Clone() Patient {
	c := p
	c.Complaints = append([]Complaint(nil), p.Complaints...)
	c.Notes = append([]string(nil), p.Notes...)
	c.Allergies = append([]string(nil), p.Allergies...)
	c.VitalsHistory = append([]VitalsReading(nil), p.VitalsHistory...)
	if p.DischargeReport != nil {
		r := *p.DischargeReport
		c.DischargeReport = &r
	}
	if p.FollowUp != nil {
		f := *p.FollowUp
		c.FollowUp = &f
	}
	if p.AdherenceScore != nil {
		s := *p.AdherenceScore
		c.AdherenceScore = &s
	}
	return c
}

// PrependNotes puts notes in front of the existing ones, keeping their order.
func (p *Patient) PrependNotes(notes ...string) {
	p.Notes = append(append([]string{}, notes...), p.Notes...)
}

// RegisterRequest is the reception intake form.
type RegisterRequest struct {
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Gender    string   `json:"gender"`
	Phone     string   `json:"phone"`
	Symptom   string   `json:"symptom"`
	Duration  int      `json:"duration"`
	Unit      string   `json:"unit"`
	Allergies []string `json:"allergies"`
}

// Vitals captured on the admission form.
type Vitals struct {
	BP   string `json:"bp"`
	HR   string `json:"hr"`
	Temp string `json:"temp"`
	SpO2 string `json:"spo2"`
}

// AdmissionRequest admits a patient to a bed.
type AdmissionRequest struct {
	WardID    string `json:"wardId"`
	BedID     string `json:"bedId"`
	Vitals    Vitals `json:"vitals"`
	Diagnosis string `json:"diagnosis"`
	Note      string `json:"note,omitempty"`
}

// DischargeForm is the editable discharge summary.
type DischargeForm struct {
	Summary      string `json:"summary"`
	Medications  string `json:"medications"`
	Instructions string `json:"instructions"`
}

// ListFilter narrows List results. Empty fields match everything.
type ListFilter struct {
	Status     Status
	Search     string
	Department string
}

// Stats are the dashboard counters.
type Stats struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Waiting  int `json:"waiting"`
}

// Assessment is the triage panel's detailed AI response.
type Assessment struct {
	Protocol          string   `json:"protocol"`
	ClinicalReasoning string   `json:"clinicalReasoning"`
	Recommendations   []string `json:"recommendations"`
}
