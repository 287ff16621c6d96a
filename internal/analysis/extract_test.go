package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

const cardiacReport = `Patient Name: John Doe
Age: 52
Gender: male
Doctor: Dr. Smith
Report Date: 3/14/2024
Findings: Troponin elevated, STEMI pattern on ECG.`

func TestExtractMetadata(t *testing.T) {
	md := ExtractMetadata(cardiacReport, testNow)

	assert.Equal(t, "John Doe", md.PatientName)
	assert.Equal(t, 52, md.Age)
	assert.Equal(t, "Male", md.Gender)
	assert.Equal(t, "Dr. Smith", md.DoctorName)
	assert.Equal(t, "3/14/2024", md.Date)
	assert.Equal(t, "MedFlow General Hospital", md.ClinicName)
}

func TestExtractMetadata_Defaults(t *testing.T) {
	md := ExtractMetadata("nothing recognisable in here at all", testNow)

	assert.Equal(t, "Unknown Patient", md.PatientName)
	assert.Equal(t, 45, md.Age)
	assert.Equal(t, "Male", md.Gender)
	assert.Equal(t, "Dr. MedFlow AI", md.DoctorName)
	assert.Equal(t, "3/9/2026", md.Date)
}

func TestTextCategory(t *testing.T) {
	tests := []struct {
		text string
		want Category
	}{
		{"ECG shows changes", CategoryCardiac},
		{"Hemoglobin 11.2 and WBC raised", CategoryHematology},
		{"Hairline fracture of the distal radius", CategoryOrthopedic},
		{"Lipid profile within limits", CategoryWellness},
		// cardiac keywords win over blood work
		{"CBC normal, troponin raised", CategoryCardiac},
	}
	for _, tt := range tests {
		if got := TextCategory(tt.text); got != tt.want {
			t.Errorf("TextCategory(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestFromText_Cardiac(t *testing.T) {
	r := FromText(cardiacReport, "scan.pdf", testNow)

	assert.Equal(t, "text", r.Source)
	assert.Equal(t, "Acute Myocardial Infarction", r.Diagnosis)
	assert.Equal(t, SeverityCritical, r.Severity)
	assert.Equal(t, []string{"Chest Pain", "Shortness of Breath"}, r.Symptoms)
	assert.Equal(t, "John Doe", r.Metadata.PatientName)
	assert.NotEmpty(t, r.TreatmentFlow)
}

func TestFromText_HematologyInfection(t *testing.T) {
	r := FromText("CBC panel: WBC 14.5 suggests bacterial infection, hemoglobin low.", "cbc.pdf", testNow)

	assert.Equal(t, "Bacterial Infection", r.Diagnosis)
	assert.Equal(t, SeverityModerate, r.Severity)
}

func TestFromText_HematologyRoutine(t *testing.T) {
	r := FromText("CBC panel: WBC 7.2, hemoglobin 13.9, platelet count normal.", "cbc.pdf", testNow)

	assert.Equal(t, "Hematology Report", r.Diagnosis)
	assert.Equal(t, SeverityLow, r.Severity)
}

func TestFromFilename(t *testing.T) {
	tests := []struct {
		filename  string
		name      string
		age       int
		gender    string
		diagnosis string
		severity  Severity
		doctor    string
	}{
		{"sarah_heart_scan.png", "Sanya Iyer", 32, "Female", "Acute Myocardial Infarction (STEMI)", SeverityCritical, "Dr. Varun Chopra"},
		{"mike_ekg.jpg", "Manish Malhotra", 55, "Male", "Acute Myocardial Infarction (STEMI)", SeverityCritical, "Dr. Varun Chopra"},
		{"james_bloodwork.png", "Jatin Arora", 54, "Male", "Bacterial Infection (Possible early Sepsis)", SeverityModerate, "Dr. Aditi Verma"},
		{"esther_wrist_xray.jpg", "Anjali Sharma", 72, "Female", "Distal Radius Fracture (Hairline)", SeverityModerate, "Dr. Balraj Sethi"},
		{"annual.png", "Amit Yadav", 45, "Male", "Routine Wellness Exam", SeverityLow, "Dr. Aditi Verma"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			r := FromFilename(tt.filename, testNow)
			assert.Equal(t, "filename", r.Source)
			assert.Equal(t, tt.filename, r.Filename)
			assert.Equal(t, tt.name, r.Metadata.PatientName)
			assert.Equal(t, tt.age, r.Metadata.Age)
			assert.Equal(t, tt.gender, r.Metadata.Gender)
			assert.Equal(t, tt.diagnosis, r.Diagnosis)
			assert.Equal(t, tt.severity, r.Severity)
			assert.Equal(t, tt.doctor, r.Metadata.DoctorName)
		})
	}
}

func TestTemplatesDoNotShareSlices(t *testing.T) {
	a := FromFilename("heart.png", testNow)
	a.Symptoms[0] = "changed"

	b := FromFilename("heart.png", testNow)
	assert.Equal(t, "Chest Pressure", b.Symptoms[0])
}
