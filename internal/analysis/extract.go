package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinTextLength is the shortest extracted text worth reading. Shorter
// text, typically from scanned PDFs, falls back to the filename.
const MinTextLength = 50

var (
	nameRe   = regexp.MustCompile(`(?i)(?:Name|Patient Name|Patient):[ \t]*([a-zA-Z .]+)`)
	ageRe    = regexp.MustCompile(`(?i)(?:Age|DOB|Date of Birth):\s*(\d+)`)
	genderRe = regexp.MustCompile(`(?i)(?:Gender|Sex):\s*(Male|Female)`)
	doctorRe = regexp.MustCompile(`(?i)(?:Doctor|Dr\.|Physician):[ \t]*([a-zA-Z .]+)`)
	dateRe   = regexp.MustCompile(`(?i)(?:Date|Report Date):\s*(\d{1,2}/\d{1,2}/\d{2,4})`)
)

const (
	defaultPatientName = "Unknown Patient"
	defaultAge         = 45
	defaultGender      = "Male"
	defaultDoctor      = "Dr. MedFlow AI"
	defaultClinic      = "MedFlow General Hospital"
)

// ExtractMetadata reads patient and report details from report text.
func ExtractMetadata(text string, now time.Time) Metadata {
	md := Metadata{
		PatientName: defaultPatientName,
		Age:         defaultAge,
		Gender:      defaultGender,
		Date:        now.Format("1/2/2006"),
		DoctorName:  defaultDoctor,
		ClinicName:  defaultClinic,
	}
	if m := nameRe.FindStringSubmatch(text); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			md.PatientName = v
		}
	}
	if m := ageRe.FindStringSubmatch(text); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil {
			md.Age = age
		}
	}
	if m := genderRe.FindStringSubmatch(text); m != nil {
		md.Gender = strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
	}
	if m := doctorRe.FindStringSubmatch(text); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			md.DoctorName = v
		}
	}
	if m := dateRe.FindStringSubmatch(text); m != nil {
		md.Date = m[1]
	}
	return md
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// TextCategory classifies report text by keyword, first match wins.
func TextCategory(text string) Category {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "cardiac", "heart", "troponin", "ecg"):
		return CategoryCardiac
	case containsAny(lower, "hemoglobin", "wbc", "platelet", "cbc"):
		return CategoryHematology
	case containsAny(lower, "fracture", "bone", "x-ray", "radius"):
		return CategoryOrthopedic
	}
	return CategoryWellness
}

// FilenameCategory classifies an upload by its file name.
func FilenameCategory(filename string) Category {
	lower := strings.ToLower(filename)
	switch {
	case containsAny(lower, "heart", "cardio", "ecg", "ekg"):
		return CategoryCardiac
	case containsAny(lower, "blood", "lab", "cbc"):
		return CategoryHematology
	case containsAny(lower, "xray", "fracture", "bone", "wrist"):
		return CategoryOrthopedic
	}
	return CategoryWellness
}

// FilenameMetadata guesses the patient from hints in the file name.
func FilenameMetadata(filename string, now time.Time) Metadata {
	lower := strings.ToLower(filename)
	md := Metadata{
		PatientName: "Amit Yadav",
		Age:         45,
		Gender:      "Male",
		Date:        now.Format("1/2/2006"),
		DoctorName:  "Dr. Aditi Verma",
		ClinicName:  "MedFlow General",
	}
	switch {
	case strings.Contains(lower, "sarah"):
		md.PatientName, md.Gender, md.Age = "Sanya Iyer", "Female", 32
	case containsAny(lower, "michael", "mike"):
		md.PatientName, md.Age = "Manish Malhotra", 55
	case strings.Contains(lower, "esther"):
		md.PatientName, md.Gender, md.Age = "Anjali Sharma", "Female", 72
	case strings.Contains(lower, "james"):
		md.PatientName, md.Age = "Jatin Arora", 54
	}
	switch FilenameCategory(filename) {
	case CategoryCardiac:
		md.DoctorName, md.ClinicName = "Dr. Varun Chopra", "Heart Institute"
	case CategoryOrthopedic:
		md.DoctorName, md.ClinicName = "Dr. Balraj Sethi", "Ortho Care"
	}
	return md
}

// FromFilename builds a reading from the file name alone.
func FromFilename(filename string, now time.Time) Result {
	r := template(FilenameCategory(filename))
	r.Filename = filename
	r.Source = "filename"
	r.Metadata = FilenameMetadata(filename, now)
	return r
}

// FromText builds a reading from extracted report text. The category's
// template supplies the care plan; diagnosis and severity follow the text.
func FromText(text, filename string, now time.Time) Result {
	category := TextCategory(text)
	lower := strings.ToLower(text)

	r := template(category)
	r.Filename = filename
	r.Source = "text"
	r.Metadata = ExtractMetadata(text, now)

	switch category {
	case CategoryCardiac:
		r.Diagnosis = "Cardiac Assessment"
		r.Severity = SeverityCritical
		r.Summary = "Report indicates potential cardiac event. Elevated markers or abnormal ECG detected."
		r.Symptoms = []string{"Chest Pain", "Shortness of Breath"}
		if containsAny(lower, "stemi", "infarction") {
			r.Diagnosis = "Acute Myocardial Infarction"
		}
	case CategoryHematology:
		r.Diagnosis = "Hematology Report"
		r.Severity = SeverityLow
		r.Summary = "Blood work analysis completed. Review WBC and Hemoglobin levels for signs of infection or anemia."
		r.Symptoms = []string{"Routine Checkup"}
		if containsAny(lower, "infection", "bacteria") {
			r.Diagnosis = "Bacterial Infection"
			r.Severity = SeverityModerate
		}
	case CategoryOrthopedic:
		r.Diagnosis = "Orthopedic Injury"
		r.Severity = SeverityLow
		r.Summary = "Imaging confirms bone structure integrity issues. Fracture or stress injury detected."
		r.Symptoms = []string{"Pain", "Swelling", "Limited Mobility"}
	default:
		r.Diagnosis = "General Checkup"
		r.Severity = SeverityLow
		r.Summary = "Analysis of the uploaded document indicates standard medical parameters."
		r.Symptoms = []string{"Routine Checkup"}
	}
	return r
}
