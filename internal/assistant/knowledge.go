package assistant

// KnowledgeEntry is one term of the general medical dictionary.
type KnowledgeEntry struct {
	Key    string
	Answer string
}

// Knowledge is checked in order; the first key contained in the query wins.
var Knowledge = []KnowledgeEntry{
	{"diabetes", "**Diabetes Mellitus** is a chronic condition affecting how the body processes blood sugar (glucose). \n\n**Common Symptoms:** Increased thirst, frequent urination, fatigue, blurred vision. \n**Management:** Diet control, exercise, insulin or oral medications."},
	{"hypertension", "**Hypertension (High Blood Pressure)** is a condition where the force of blood against artery walls is too high. \n\n**Risks:** Heart disease, stroke. \n**Management:** Low sodium diet, exercise, anti-hypertensive drugs."},
	{"cpr", "**CPR (Cardiopulmonary Resuscitation)** is an emergency procedure.\n\n**Steps:**\n1. Call Emergency Services.\n2. Push hard and fast in the center of the chest (100-120 bpm).\n3. Give rescue breaths if trained."},
	{"fever", "**Fever** is a temporary increase in body temperature, often due to an illness. \n\n**Advice:** Stay hydrated, rest, and take antipyretics (like Paracetamol) if uncomfortable. Seek help if > 103°F or persists > 3 days."},
	{"stroke", "**Stroke** occurs when blood supply to part of the brain is interrupted. \n\n**Think F.A.S.T:**\n- **F**ace drooping\n- **A**rm weakness\n- **S**peech difficulty\n- **T**ime to call emergency services."},
	{"blod", "**Blood** transports oxygen and nutrients to the lungs and tissues. Did you mean **Blood Pressure** or **Blood Test**?"},
	{"blood", "**Blood** is essential for life. It carries oxygen (RBCs), fights infection (WBCs), and stops bleeding (Platelets). Common tests include CBC (Complete Blood Count)."},
}

const disclaimer = "Disclaimer: This is general information and not a substitute for professional medical advice."

// departmentMeds is the standard medication protocol quoted per department.
func departmentMeds(dept string) []string {
	switch dept {
	case "Cardiology":
		return []string{"Aspirin 81mg", "Atorvastatin", "Metoprolol", "Nitroglycerin PRN"}
	case "Neurology":
		return []string{"TPA (if eligible)", "Anti-platelet therapy", "Neuro-protective agents"}
	case "Orthopedics":
		return []string{"Acetaminophen", "Ibuprofen", "Calcium + Vit D", "Bisphosphonates"}
	case "General":
		return []string{"Paracetamol", "IV Fluids", "Broad-spectrum antibiotics"}
	}
	return []string{"Standard care meds", "Vitamins"}
}
