package consult

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/MedFlow-Health/operations-service/internal/patient"
)

var ErrInvalidMeasurements = errors.New("weight and height must be positive")

// Report renders the downloadable consultation report.
func Report(p patient.Patient, c Consultation, date time.Time) string {
	transcript := c.Transcript
	if transcript == "" {
		transcript = "No transcript available."
	}

	var b strings.Builder
	b.WriteString("MEDICAL CONSULTATION REPORT\n")
	b.WriteString("---------------------------\n")
	fmt.Fprintf(&b, "Patient: %s\nID: %s\nDate: %s\n\n", p.Name, p.ID, date.Format("1/2/2006"))
	fmt.Fprintf(&b, "TRANSCRIPT:\n%s\n\n", transcript)
	fmt.Fprintf(&b, "STRUCTURED EMR DATA:\nSymptoms: %s\nDiagnosis: %s\nVitals: %s\nPlan: %s\n\n",
		c.EMR.Symptoms, c.EMR.Diagnosis, c.EMR.Vitals, c.EMR.Plan)
	fmt.Fprintf(&b, "DRAFT DISCHARGE SUMMARY:\n%s\n\n", c.DischargeDraft)
	fmt.Fprintf(&b, "MEDICATIONS PRESCRIBED:\n%s\n\n", medicationLines(c.Medications))
	b.WriteString("Dr. MedFlow AI System\n")
	return b.String()
}

func medicationLines(meds []Medication) string {
	if len(meds) == 0 {
		return "None"
	}
	lines := make([]string, len(meds))
	for i, m := range meds {
		lines[i] = fmt.Sprintf("- %s %s (%s)", m.Name, m.Dosage, m.Frequency)
	}
	return strings.Join(lines, "\n")
}

// ReportFilename is the download name, e.g. "Rajesh_Kumar_Report.txt".
func ReportFilename(p patient.Patient) string {
	return strings.ReplaceAll(p.Name, " ", "_") + "_Report.txt"
}

// Prescription renders the chat-formatted e-prescription. The clinical note is
// the dictated diagnosis when there is one, else the intake summary.
func Prescription(p patient.Patient, c Consultation, date time.Time) string {
	note := c.EMR.Diagnosis
	if note == "" {
		note = p.AISummary
	}

	meds := make([]string, len(c.Medications))
	for i, m := range c.Medications {
		meds[i] = fmt.Sprintf("%d. %s - %s (%s)", i+1, m.Name, m.Dosage, m.Frequency)
	}

	alerts := "None"
	if len(c.Alerts) > 0 {
		alerts = strings.Join(c.Alerts, "\n")
	}

	return fmt.Sprintf("*🏥 MedFlow e-Prescription*\n\n*Patient:* %s\n*Date:* %s\n\n*📝 Clinical Note:*\n%s\n\n*💊 Prescribed Medications:*\n%s\n\n*⚠️ Alerts:*\n%s\n\n_Dr. MedFlow System_",
		p.Name, date.Format("1/2/2006"), note, strings.Join(meds, "\n"), alerts)
}

// BMI computes body-mass index from kilograms and centimetres, rounded to one
// decimal.
func BMI(weightKg, heightCm float64) (float64, error) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, ErrInvalidMeasurements
	}
	h := heightCm / 100
	return math.Round(weightKg/(h*h)*10) / 10, nil
}
