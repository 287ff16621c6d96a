package assistant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MedFlow-Health/operations-service/internal/inference"
	"github.com/MedFlow-Health/operations-service/internal/patient"
)

var ErrEmptyQuery = errors.New("query is empty")

// ClinicalAnswer replies to a consultant's question about one patient.
func ClinicalAnswer(p patient.Patient, question string) string {
	q := strings.ToLower(question)
	impression := inference.FirstSentence(p.AISummary)

	switch {
	case containsAny(q, "likely", "diagnosis"):
		return fmt.Sprintf("Based on the symptoms (%s) and severity, the most likely diagnosis is **%s**. Consider ruling out differentials relevant to %s.",
			p.PrimarySymptom(), impression, p.SuggestedDepartment)

	case containsAny(q, "antibiotic", "penicillin", "allergic"):
		for _, a := range p.Allergies {
			if strings.Contains(strings.ToLower(a), "penicillin") {
				return "**Patient has a Penicillin allergy.** Suggesting alternatives: **Azithromycin** (Macrolide) or **Clindamycin** depending on infection type. Avoid Cephalosporins if reaction was anaphylactic."
			}
		}
		return "Patient has **No known Penicillin allergy**. Amoxicillin or Augmentin are safe first-line options."

	case containsAny(q, "summary", "discharge"):
		return fmt.Sprintf("**Discharge Summary Draft:** Patient %s treated for %s. Stable on discharge. Follow up in 1 week. Return if symptoms worsen.",
			p.Name, impression)
	}

	return fmt.Sprintf("I've noted that. Is there anything specific about the **%s** protocol you'd like to check?", p.SuggestedDepartment)
}
