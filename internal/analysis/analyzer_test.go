package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MedFlow-Health/operations-service/internal/patient"
	"github.com/MedFlow-Health/operations-service/internal/testutil"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	return f.text, f.err
}

type stubArchiver struct {
	keys []string
	err  error
}

func (s *stubArchiver) Put(ctx context.Context, key string, body []byte, contentType string) error {
	s.keys = append(s.keys, key)
	return s.err
}

type fixedRand int

func (f fixedRand) Intn(n int) int { return int(f) % n }

type metricsSpy struct {
	sources []string
}

func (m *metricsSpy) RecordDocumentAnalysis(ctx context.Context, source, severity string, d time.Duration) {
	m.sources = append(m.sources, source)
}

func newTestAnalyzer(ex DocumentTextExtractor, ar Archiver) *Analyzer {
	a := NewAnalyzer(ex, ar, testutil.DiscardLogger())
	a.SetClock(func() time.Time { return testNow })
	return a
}

func TestAnalyze_UsesTextWhenLongEnough(t *testing.T) {
	ar := &stubArchiver{}
	a := newTestAnalyzer(fakeExtractor{text: cardiacReport}, ar)
	spy := &metricsSpy{}
	a.SetMetrics(spy)

	r := a.Analyze(context.Background(), "upload.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, "text", r.Source)
	assert.Equal(t, "John Doe", r.Metadata.PatientName)
	require.Len(t, ar.keys, 1)
	assert.True(t, strings.HasPrefix(ar.keys[0], "documents/"))
	assert.True(t, strings.HasSuffix(ar.keys[0], "/upload.pdf"))
	assert.Equal(t, []string{"text"}, spy.sources)
}

func TestAnalyze_ShortTextFallsBackToFilename(t *testing.T) {
	a := newTestAnalyzer(fakeExtractor{text: "scan page 1"}, nil)

	r := a.Analyze(context.Background(), "sarah_heart.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, "filename", r.Source)
	assert.Equal(t, "Sanya Iyer", r.Metadata.PatientName)
	assert.Equal(t, SeverityCritical, r.Severity)
}

func TestAnalyze_ExtractionErrorFallsBackToFilename(t *testing.T) {
	a := newTestAnalyzer(fakeExtractor{err: errors.New("corrupt xref")}, nil)

	r := a.Analyze(context.Background(), "wrist_xray.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, "filename", r.Source)
	assert.Equal(t, "Distal Radius Fracture (Hairline)", r.Diagnosis)
}

func TestAnalyze_ArchiveFailureIsNotFatal(t *testing.T) {
	ar := &stubArchiver{err: errors.New("bucket missing")}
	a := newTestAnalyzer(fakeExtractor{}, ar)

	r := a.Analyze(context.Background(), "annual.png", []byte{0x89, 'P', 'N', 'G'})

	assert.Equal(t, "Routine Wellness Exam", r.Diagnosis)
	assert.Len(t, ar.keys, 1)
}

func TestPDFExtractor_NonPDFYieldsNoText(t *testing.T) {
	text, err := NewPDFExtractor().ExtractText(context.Background(), "photo.png", []byte{0x89, 'P', 'N', 'G'})

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestPDFExtractor_CorruptPDF(t *testing.T) {
	_, err := NewPDFExtractor().ExtractText(context.Background(), "broken.pdf", []byte("not really a pdf"))

	assert.Error(t, err)
}

func TestToPatient(t *testing.T) {
	r := FromFilename("esther_fracture.png", testNow)

	p := ToPatient(r, fixedRand(2345), testNow)

	assert.Equal(t, "P-12345", p.ID)
	assert.Equal(t, "Anjali Sharma", p.Name)
	assert.Equal(t, patient.StatusWaiting, p.Status)
	assert.Equal(t, patient.SeverityHigh, p.Severity)
	assert.Equal(t, "Orthopedics", p.SuggestedDepartment)
	assert.Equal(t, "555-0199", p.Phone)
	assert.Equal(t, "Wrist pain", p.PrimarySymptom())
	assert.Equal(t, []string{
		"Imported from document: esther_fracture.png",
		"Doctor: Dr. Balraj Sethi",
		"Clinic: Ortho Care",
		"Diagnosis: Distal Radius Fracture (Hairline)",
	}, p.Notes)
}

func TestPatientSeverity(t *testing.T) {
	assert.Equal(t, patient.SeverityEmergency, PatientSeverity(SeverityCritical))
	assert.Equal(t, patient.SeverityHigh, PatientSeverity(SeverityModerate))
	assert.Equal(t, patient.SeverityLow, PatientSeverity(SeverityLow))
}

func TestToPatient_NoSymptoms(t *testing.T) {
	r := FromFilename("annual.png", testNow)
	r.Symptoms = nil

	p := ToPatient(r, fixedRand(0), testNow)

	assert.Equal(t, "Refer to report", p.PrimarySymptom())
	assert.Equal(t, "P-10000", p.ID)
}
