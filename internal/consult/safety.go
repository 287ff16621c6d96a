package consult

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/MedFlow-Health/operations-service/internal/patient"
)

type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

// Interactions maps a drug to the drugs it must not be combined with. The
// check runs from the earlier prescription to the later one only.
var Interactions = map[string][]string{
	"Aspirin":       {"Warfarin", "Heparin", "Ibuprofen"},
	"Warfarin":      {"Aspirin", "Metronidazole", "Ciprofloxacin"},
	"Simvastatin":   {"Erythromycin", "Clarithromycin", "Verapamil"},
	"Nitroglycerin": {"Sildenafil", "Tadalafil"},
	"Ibuprofen":     {"Aspirin", "Warfarin", "Lithium"},
}

var nsaids = []string{"ibuprofen", "aspirin", "naproxen"}

// CheckPrescription lists drug-drug interactions followed by allergy
// contraindications.
func CheckPrescription(meds []Medication, allergies []string) []string {
	alerts := []string{}

	for i, a := range meds {
		bad := Interactions[a.Name]
		for _, b := range meds[i+1:] {
			if lo.Contains(bad, b.Name) {
				alerts = append(alerts, fmt.Sprintf("⚠️ Interaction: %s + %s (Bleeding/Toxicity Risk)", a.Name, b.Name))
			}
		}
	}

	for _, m := range meds {
		name := strings.ToLower(m.Name)
		for _, allergy := range allergies {
			al := strings.ToLower(allergy)
			if al == "" {
				continue
			}
			if strings.Contains(name, al) || (al == "nsaids" && lo.Contains(nsaids, name)) {
				alerts = append(alerts, fmt.Sprintf("🚫 Contraindication: Patient allergic to %s (%s)", allergy, m.Name))
			}
		}
	}
	return alerts
}

// RedFlags scans a patient's record for findings the consultant should see
// before anything else.
func RedFlags(p patient.Patient) []string {
	flags := []string{}
	if p.Severity == patient.SeverityEmergency {
		flags = append(flags, "CRITICAL: Patient marked as Emergency severity.")
	}
	if p.Age > 65 && p.Severity != patient.SeverityLow {
		flags = append(flags, "RISK: Geriatric patient with active symptoms. Fall risk elevated.")
	}

	notes := strings.ToLower(strings.Join(p.Notes, " "))
	if strings.Contains(notes, "tachycardia") || strings.Contains(notes, "chest pain") {
		flags = append(flags, "TREND: Recurrent cardiac symptoms detected in notes.")
	}
	if strings.Contains(notes, "fever") && strings.Contains(notes, "hypotension") {
		flags = append(flags, "SEPSIS ALERT: Potential Sepsis criteria met (Fever + Hypotension keywords).")
	}
	return flags
}

// Suggestions returns the starter prescription for a department. Departments
// without a protocol get none.
func Suggestions(department string) []Medication {
	switch department {
	case "Cardiology":
		return []Medication{{"Aspirin", "81mg", "QD"}, {"Atorvastatin", "40mg", "QHS"}}
	case "Neurology":
		return []Medication{{"Sumatriptan", "50mg", "PRN"}, {"Ondansetron", "4mg", "PRN"}}
	case "Orthopedics":
		return []Medication{{"Ibuprofen", "400mg", "TID"}, {"Acetaminophen", "500mg", "Q6H"}}
	case "General":
		return []Medication{{"Amoxicillin", "500mg", "TID"}, {"Paracetamol", "650mg", "Q4H PRN"}}
	}
	return nil
}
