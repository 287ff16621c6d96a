package analysis

import (
	"fmt"
	"time"

	"github.com/MedFlow-Health/operations-service/internal/inference"
	"github.com/MedFlow-Health/operations-service/internal/patient"
)

const importedPhone = "555-0199"

// Rand draws the imported patient id.
type Rand interface {
	Intn(n int) int
}

// PatientSeverity maps a report severity onto the triage scale.
func PatientSeverity(s Severity) patient.Severity {
	switch s {
	case SeverityCritical:
		return patient.SeverityEmergency
	case SeverityModerate:
		return patient.SeverityHigh
	}
	return patient.SeverityLow
}

// ToPatient turns an analysed report into a waiting patient ready for the
// dashboard queue.
func ToPatient(r Result, rng Rand, now time.Time) patient.Patient {
	symptom := "Refer to report"
	if len(r.Symptoms) > 0 && r.Symptoms[0] != "" {
		symptom = r.Symptoms[0]
	}

	return patient.Patient{
		ID:                  fmt.Sprintf("P-%d", 10000+rng.Intn(90000)),
		Name:                r.Metadata.PatientName,
		Age:                 r.Metadata.Age,
		Gender:              r.Metadata.Gender,
		Phone:               importedPhone,
		Complaints:          []patient.Complaint{{Symptom: symptom, Duration: 1, Unit: patient.UnitDays}},
		Severity:            PatientSeverity(r.Severity),
		SuggestedDepartment: inference.Department(r.Summary),
		AISummary:           r.Summary,
		Status:              patient.StatusWaiting,
		Notes: []string{
			"Imported from document: " + r.Filename,
			"Doctor: " + r.Metadata.DoctorName,
			"Clinic: " + r.Metadata.ClinicName,
			"Diagnosis: " + r.Diagnosis,
		},
		Allergies:    []string{},
		AdmittedDate: now,
	}
}
