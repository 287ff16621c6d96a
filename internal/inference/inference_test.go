package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverity(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Severe chest pain", SeverityEmergency},
		{"Shortness of breath", SeverityEmergency},
		{"Vomiting blood", SeverityEmergency},
		{"High fever", SeverityHigh},
		{"Back pain", SeverityHigh},
		{"Broken finger", SeverityHigh},
		{"Mild rash", SeverityMedium},
		{"", SeverityMedium},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Severity(tt.text), tt.text)
	}
}

func TestDepartment(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"severe chest pain", DeptCardiology},
		{"Coronary artery disease suspected", DeptCardiology},
		{"Headache and dizziness", DeptNeurology},
		{"Possible stroke", DeptNeurology},
		{"Wrist swelling", DeptOrthopedics},
		{"Hairline fracture of the radius", DeptOrthopedics},
		{"Baby not feeding", DeptPediatrics},
		{"Cough", DeptGeneral},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Department(tt.text), tt.text)
	}
}

func TestIntakeSummary(t *testing.T) {
	got := IntakeSummary(54, "severe chest pain", DeptCardiology, AdviceLines[0])
	assert.Equal(t, "Patient (Age: 54) presents with severe chest pain. AI analysis suggests Cardiology referral. Needs immediate attention.", got)
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "Patient (Age: 54) presents with pain", FirstSentence("Patient (Age: 54) presents with pain. More text."))
	assert.Equal(t, "no period", FirstSentence("no period"))
}

func TestProtocolFor(t *testing.T) {
	assert.Equal(t, "ACS / Chest Pain Protocol", ProtocolFor(DeptCardiology))
	assert.Equal(t, "PALS Guidelines", ProtocolFor(DeptPediatrics))
	assert.Equal(t, "Standard Medical Admission", ProtocolFor("Dermatology"))
}

func TestCritical(t *testing.T) {
	assert.True(t, Critical(SeverityEmergency))
	assert.True(t, Critical(SeverityHigh))
	assert.False(t, Critical(SeverityMedium))
}
