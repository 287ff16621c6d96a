// Package inference holds the keyword policy used everywhere a severity or a
// department has to be guessed from free text: reception intake, document
// import and the dashboard assistant.
package inference

import (
	"fmt"
	"strings"
)

// Severity levels, most urgent first.
const (
	SeverityEmergency = "emergency"
	SeverityHigh      = "high"
	SeverityMedium    = "medium"
	SeverityLow       = "low"
	SeverityStable    = "stable"
)

// Departments.
const (
	DeptGeneral     = "General"
	DeptEmergency   = "Emergency"
	DeptCardiology  = "Cardiology"
	DeptNeurology   = "Neurology"
	DeptOrthopedics = "Orthopedics"
	DeptPediatrics  = "Pediatrics"
)

// Departments lists every department in display order.
var Departments = []string{DeptGeneral, DeptEmergency, DeptCardiology, DeptNeurology, DeptOrthopedics, DeptPediatrics}

type rule struct {
	result   string
	keywords []string
}

// Order matters: the first matching rule wins.
var severityRules = []rule{
	{SeverityEmergency, []string{"chest", "heart", "breath", "blood", "stroke"}},
	{SeverityHigh, []string{"fever", "pain", "broken"}},
}

var departmentRules = []rule{
	{DeptCardiology, []string{"chest", "heart", "cardio", "coronary"}},
	{DeptNeurology, []string{"head", "dizzy", "neuro", "brain", "stroke"}},
	{DeptOrthopedics, []string{"bone", "break", "fracture", "wrist", "leg"}},
	{DeptPediatrics, []string{"child", "baby"}},
}

// AdviceLines are appended to intake summaries.
var AdviceLines = []string{
	"Needs immediate attention.",
	"Monitor vitals closely.",
	"Standard admission recommended.",
}

func match(rules []rule, text, fallback string) string {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, k := range r.keywords {
			if strings.Contains(lower, k) {
				return r.result
			}
		}
	}
	return fallback
}

// Severity guesses triage severity from a complaint.
func Severity(text string) string {
	return match(severityRules, text, SeverityMedium)
}

// Department guesses the referral department from free text.
func Department(text string) string {
	return match(departmentRules, text, DeptGeneral)
}

// IntakeSummary is the canned assessment written at registration.
func IntakeSummary(age int, symptom, department, advice string) string {
	return fmt.Sprintf("Patient (Age: %d) presents with %s. AI analysis suggests %s referral. %s",
		age, symptom, department, advice)
}

// FirstSentence returns text up to the first period, without it.
func FirstSentence(text string) string {
	if i := strings.Index(text, "."); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return strings.TrimSpace(text)
}

// ProtocolFor returns the response protocol suggested for a department.
func ProtocolFor(department string) string {
	switch department {
	case DeptCardiology:
		return "ACS / Chest Pain Protocol"
	case DeptNeurology:
		return "Stroke Alert / Neuro Assessment"
	case DeptOrthopedics:
		return "Trauma & Fracture Management"
	case DeptPediatrics:
		return "PALS Guidelines"
	case DeptEmergency:
		return "Critical Care & Stabilization"
	default:
		return "Standard Medical Admission"
	}
}

// Critical reports whether severity counts toward the critical total.
func Critical(severity string) bool {
	return severity == SeverityEmergency || severity == SeverityHigh
}
