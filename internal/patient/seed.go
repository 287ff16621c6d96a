package patient

import (
	"time"

	"github.com/samber/lo"
)

// Seed returns the registry the service starts with.
func Seed(now time.Time) []Patient {
	day := 24 * time.Hour
	return []Patient{
		{
			ID: "P-1001", Name: "Rajesh Kumar", Age: 58, Gender: "Male", Phone: "98450 11223",
			Complaints:          []Complaint{{Symptom: "Severe chest pain radiating to left arm", Duration: 2, Unit: UnitHours}},
			Severity:            SeverityEmergency,
			SuggestedDepartment: "Cardiology",
			AISummary:           "Patient (Age: 58) presents with severe chest pain radiating to left arm. AI analysis suggests Cardiology referral. Needs immediate attention.",
			Notes:               []string{"ECG ordered at triage", "History of hypertension"},
			Allergies:           []string{"Penicillin"},
			Status:              StatusWaiting,
			AdmittedDate:        now.Add(-2 * time.Hour),
			VitalsHistory: []VitalsReading{
				{Date: now.Add(-2 * time.Hour).Format("15:04"), BPSys: 162, BPDia: 98, HeartRate: 112, Temp: 98.4},
				{Date: now.Add(-1 * time.Hour).Format("15:04"), BPSys: 158, BPDia: 95, HeartRate: 108, Temp: 98.6},
			},
		},
		{
			ID: "P-1002", Name: "Anjali Sharma", Age: 72, Gender: "Female", Phone: "98860 44556",
			Complaints:          []Complaint{{Symptom: "Sudden dizziness and slurred speech", Duration: 6, Unit: UnitHours}},
			Severity:            SeverityHigh,
			SuggestedDepartment: "Neurology",
			AISummary:           "Patient (Age: 72) presents with sudden dizziness and slurred speech. AI analysis suggests Neurology referral. Monitor vitals closely.",
			Notes:               []string{"Admitted to Neurology Ward Bed N-02", "CT Head: no bleed", "Tachycardia noted overnight"},
			Allergies:           []string{"NSAIDs"},
			Status:              StatusAdmitted,
			AdmittedDate:        now.Add(-2 * day),
			Ward:                "Neurology Ward",
			Room:                "N-02",
			Condition:           "Stable",
			AdherenceScore:      lo.ToPtr(82),
		},
		{
			ID: "P-1003", Name: "Priya Patel", Age: 29, Gender: "Female", Phone: "99000 78901",
			Complaints:          []Complaint{{Symptom: "High fever with chills", Duration: 3, Unit: UnitDays}},
			Severity:            SeverityHigh,
			SuggestedDepartment: "General",
			AISummary:           "Patient (Age: 29) presents with high fever with chills. AI analysis suggests General referral. Standard protocol recommended.",
			Notes:               []string{"Blood cultures sent"},
			Allergies:           []string{},
			Status:              StatusSeen,
			AdmittedDate:        now.Add(-5 * time.Hour),
			FollowUp:            &FollowUp{Date: now.Add(3 * day).Format("2006-01-02"), Status: "scheduled", Type: "routine"},
		},
		{
			ID: "P-1004", Name: "Arjun Singh", Age: 34, Gender: "Male", Phone: "97400 12345",
			Complaints:          []Complaint{{Symptom: "Wrist swelling after a fall", Duration: 1, Unit: UnitDays}},
			Severity:            SeverityMedium,
			SuggestedDepartment: "Orthopedics",
			AISummary:           "Patient (Age: 34) presents with wrist swelling after a fall. AI analysis suggests Orthopedics referral. Monitor vitals closely.",
			Notes:               []string{},
			Allergies:           []string{},
			Status:              StatusWaiting,
			AdmittedDate:        now.Add(-40 * time.Minute),
		},
		{
			ID: "P-1005", Name: "Lakshmi Reddy", Age: 66, Gender: "Female", Phone: "94480 67890",
			Complaints:          []Complaint{{Symptom: "Persistent cough", Duration: 2, Unit: UnitWeeks}},
			Severity:            SeverityLow,
			SuggestedDepartment: "General",
			AISummary:           "Patient (Age: 66) presents with persistent cough. AI analysis suggests General referral. Standard protocol recommended.",
			Notes:               []string{"Discharged with summary.", "Chest X-Ray clear"},
			Allergies:           []string{"Sulfa"},
			Status:              StatusDischarged,
			AdmittedDate:        now.Add(-6 * day),
			DischargeReport: &DischargeReport{
				Summary:      "Patient admitted with persistent cough. Chest X-Ray clear. Vitals stable at discharge.",
				Medications:  "1. Syp Dextromethorphan 10ml TDS x 5 Days",
				Instructions: "Review in OPD after 7 days.",
				Date:         now.Add(-4 * day),
			},
			FollowUp:       &FollowUp{Date: now.Add(-1 * day).Format("2006-01-02"), Status: "missed", Type: "tele-consult"},
			AdherenceScore: lo.ToPtr(64),
			LastContacted:  now.Add(-2 * day).Format("2006-01-02"),
		},
		{
			ID: "P-1006", Name: "Aarav Nair", Age: 6, Gender: "Male", Phone: "98765 43210",
			Complaints:          []Complaint{{Symptom: "Child with ear pain", Duration: 2, Unit: UnitDays}},
			Severity:            SeverityMedium,
			SuggestedDepartment: "Pediatrics",
			AISummary:           "Patient (Age: 6) presents with child with ear pain. AI analysis suggests Pediatrics referral. Standard protocol recommended.",
			Notes:               []string{},
			Allergies:           []string{},
			Status:              StatusWaiting,
			AdmittedDate:        now.Add(-15 * time.Minute),
		},
	}
}
