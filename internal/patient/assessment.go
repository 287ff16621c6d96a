package patient

import (
	"fmt"
	"strings"

	"github.com/MedFlow-Health/operations-service/internal/inference"
)

// Assess builds the detailed triage view for one patient.
func Assess(p Patient) Assessment {
	dept := p.SuggestedDepartment
	protocol := inference.ProtocolFor(dept)
	symptom := p.PrimarySymptom()
	duration := ""
	if len(p.Complaints) > 0 {
		duration = fmt.Sprintf("%d %s", p.Complaints[0].Duration, p.Complaints[0].Unit)
	}

	return Assessment{
		Protocol: protocol,
		ClinicalReasoning: fmt.Sprintf("Patient presents with %s of %s duration. The AI risk model calculates a %s probability of acute pathology. Correlation with age (%dy) and gender suggests potential for underlying %s issues requiring immediate clinical correlation.",
			symptom, duration, p.Severity, p.Age, strings.ToLower(dept)),
		Recommendations: []string{
			fmt.Sprintf("Initiate '%s' workflow immediately.", protocol),
			"Prioritize vital signs monitoring every 15 minutes.",
			fmt.Sprintf("Prepare for likely diagnostic imaging (X-Ray/CT) relevant to %s.", symptom),
			fmt.Sprintf("Consult %s on-call resident for admission orders.", dept),
		},
	}
}

// Assessment returns the triage detail for a stored patient.
func (s *Service) Assessment(id string) (Assessment, error) {
	p, err := s.store.Get(id)
	if err != nil {
		return Assessment{}, err
	}
	return Assess(p), nil
}
