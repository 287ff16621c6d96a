package analysis

// template returns the canned reading for a category. Metadata is filled
// in by the caller.
func template(c Category) Result {
	switch c {
	case CategoryCardiac:
		return Result{
			Severity:         SeverityCritical,
			Diagnosis:        "Acute Myocardial Infarction (STEMI)",
			Summary:          "ECG Analysis reveals ST-elevation consistent with anterior myocardial infarction. Immediate intervention required.",
			IncreasedMarkers: []string{"Troponin T (>0.04 ng/mL)", "CK-MB", "ST Segment Elevation"},
			AlertFlags:       []string{"ST-Elevation V1-V4", "Elevated Troponin", "Chest Pain > 2hrs"},
			Symptoms:         []string{"Chest Pressure", "Shortness of Breath", "Diaphoresis"},
			TreatmentFlow: []TreatmentStep{
				{Step: "Activate Code STEMI", Type: StepProcedure, Time: "Immediate"},
				{Step: "Administer Aspirin 325mg (chewable)", Type: StepMedication, Time: "T+0 mins"},
				{Step: "Cardiac Catheterization Lab Transfer", Type: StepProcedure, Time: "T+15 mins"},
				{Step: "Start Beta-Blocker Therapy", Type: StepMedication, Time: "Post-Procedure"},
			},
			RecommendedMeds: []Medication{
				{Name: "Aspirin", Dosage: "81mg daily", Duration: "Indefinite"},
				{Name: "Clopidogrel", Dosage: "75mg daily", Duration: "12 Months"},
				{Name: "Atorvastatin", Dosage: "80mg nightly", Duration: "Indefinite"},
			},
			Protocols:    []string{"Activate STEMI Protocol immediately.", "Continuous cardiac monitoring.", "Oxygen therapy if SpO2 < 90%."},
			Lifestyle:    []string{"Strict Bed rest until stable.", "Start cardiac diet (Low Sodium, Low Fat).", "Smoking cessation counseling."},
			Avoid:        []string{"Physical exertion or stress.", "NSAIDs (increases cardiac risk).", "Driving until cleared by cardio."},
			FollowUpPlan: "Cardiology Clinic in 7 Days",
		}

	case CategoryHematology:
		return Result{
			Severity:         SeverityModerate,
			Diagnosis:        "Bacterial Infection (Possible early Sepsis)",
			Summary:          "Blood panel indicates localized infection. Elevated White Blood Cell count (14.5 K/uL). Hemoglobin levels are slightly low (11.2 g/dL).",
			IncreasedMarkers: []string{"WBC Count (14.5)", "Neutrophils (85%)", "CRP"},
			AlertFlags:       []string{"Leukocytosis", "Neutrophilia"},
			Symptoms:         []string{"Fatigue", "Low-grade fever", "General Malaise"},
			TreatmentFlow: []TreatmentStep{
				{Step: "Start Broad Spectrum Antibiotics", Type: StepMedication, Time: "T+0 hours"},
				{Step: "Blood Cultures x2", Type: StepProcedure, Time: "Before Abx"},
				{Step: "Monitor Temperature Q4H", Type: StepObservation, Time: "Ongoing"},
				{Step: "Repeat CBC", Type: StepProcedure, Time: "T+24 hours"},
			},
			RecommendedMeds: []Medication{
				{Name: "Amoxicillin-Clav", Dosage: "875mg BID", Duration: "7 Days"},
				{Name: "Paracetamol", Dosage: "650mg Q6H PRN", Duration: "As needed"},
			},
			Protocols:    []string{"Prescribe broad-spectrum oral antibiotics.", "Hydration monitoring (IV if necessary).", "Follow-up CBC in 7 days to track WBC."},
			Lifestyle:    []string{"Rest and active hydration.", "Probiotic supplements.", "Isolate from immunocompromised individuals."},
			Avoid:        []string{"Alcohol consumption.", "Strenuous activity.", "Missed antibiotic doses."},
			FollowUpPlan: "PCP Review in 3 Days",
		}

	case CategoryOrthopedic:
		return Result{
			Severity:         SeverityModerate,
			Diagnosis:        "Distal Radius Fracture (Hairline)",
			Summary:          "X-Ray confirms hairline fracture of the distal radius. Alignment is good. No surgical intervention currently indicated.",
			IncreasedMarkers: []string{"Soft tissue swelling", "Pain Scale (7/10)"},
			AlertFlags:       []string{"Decreased Range of Motion", "Swelling"},
			Symptoms:         []string{"Wrist pain", "Swelling", "Limited Range of Motion"},
			TreatmentFlow: []TreatmentStep{
				{Step: "Immobilize with Splint", Type: StepProcedure, Time: "Immediate"},
				{Step: "Post-Reduction X-Ray", Type: StepProcedure, Time: "T+1 Hour"},
				{Step: "Cast Application", Type: StepProcedure, Time: "T+3 Days (once swelling subsides)"},
				{Step: "Physical Therapy", Type: StepLifestyle, Time: "T+6 Weeks"},
			},
			RecommendedMeds: []Medication{
				{Name: "Ibuprofen", Dosage: "600mg TID", Duration: "5 Days"},
				{Name: "Calcium + Vit D", Dosage: "Daily supp", Duration: "8 Weeks"},
			},
			Protocols:    []string{"Splint immobilization (4 weeks).", "Ice and elevation (R.I.C.E).", "Check neurovascular status daily."},
			Lifestyle:    []string{"Keep limb elevated above heart level.", "Finger motion exercises.", "Calcium supplementation."},
			Avoid:        []string{"Heavy lifting with affected limb.", "Getting cast/splint wet.", "Contact sports."},
			FollowUpPlan: "Ortho Clinic in 1 Week",
		}
	}

	return Result{
		Severity:         SeverityLow,
		Diagnosis:        "Routine Wellness Exam",
		Summary:          "Routine annual physical examination results are within normal limits. Lipid profile is optimal. No significant findings.",
		IncreasedMarkers: []string{},
		AlertFlags:       []string{},
		Symptoms:         []string{"None reported - Routine Checkup"},
		TreatmentFlow: []TreatmentStep{
			{Step: "Review Vaccine History", Type: StepProcedure, Time: "Today"},
			{Step: "Discuss Diet & Exercise", Type: StepLifestyle, Time: "Today"},
			{Step: "Schedule Next Annual", Type: StepProcedure, Time: "T+1 Year"},
		},
		RecommendedMeds: []Medication{
			{Name: "Multivitamin", Dosage: "Daily", Duration: "Ongoing"},
		},
		Protocols:    []string{"Routine follow-up in 1 year.", "Maintain current wellness plan.", "Update vaccinations if needed."},
		Lifestyle:    []string{"Continue regular exercise (150 mins/week).", "Balanced diet rich in vegetables.", "Adequate sleep (7-8 hours)."},
		Avoid:        []string{"Sedentary lifestyle.", "Excessive sugar intake."},
		FollowUpPlan: "Annual Checkup in 1 Year",
	}
}
