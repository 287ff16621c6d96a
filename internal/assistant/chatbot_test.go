package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MedFlow-Health/operations-service/internal/analysis"
	"github.com/MedFlow-Health/operations-service/internal/patient"
	"github.com/MedFlow-Health/operations-service/internal/testutil"
)

var testNow = time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

type staticPatients []patient.Patient

func (s staticPatients) List(patient.ListFilter) []patient.Patient { return s }

func (s staticPatients) Get(id string) (patient.Patient, error) {
	for _, p := range s {
		if p.ID == id {
			return p, nil
		}
	}
	return patient.Patient{}, patient.ErrPatientNotFound
}

type docs map[string]analysis.Result

func (d docs) Analysis(sessionID string) (analysis.Result, bool) {
	r, ok := d[sessionID]
	return r, ok
}

func newTestChatbot(d docs) *Chatbot {
	return NewChatbot(staticPatients(patient.Seed(testNow)), d, 0, testutil.DiscardLogger())
}

func ask(t *testing.T, c *Chatbot, sessionID, q string) Message {
	t.Helper()
	m, err := c.Ask(context.Background(), sessionID, q)
	require.NoError(t, err)
	return m
}

func TestChatbot_StartsWithWelcome(t *testing.T) {
	c := newTestChatbot(docs{})

	conv := c.History("s1")

	require.Len(t, conv.Messages, 1)
	assert.Equal(t, SenderBot, conv.Messages[0].Sender)
	assert.Equal(t, ContextGeneral, conv.Context)
}

func TestChatbot_PatientRecord(t *testing.T) {
	c := newTestChatbot(docs{})

	m := ask(t, c, "s1", "How is Rajesh doing?")

	assert.Equal(t, KindPatient, m.Kind)
	assert.Contains(t, m.Text, "Patient Record: Rajesh Kumar")
	assert.Contains(t, m.Text, "Location: Triage")
	conv := c.History("s1")
	assert.Equal(t, ContextPatient, conv.Context)
	assert.Equal(t, "Rajesh Kumar", conv.ContextName)
	assert.Len(t, conv.Messages, 3)
}

func TestChatbot_PatientMedication(t *testing.T) {
	c := newTestChatbot(docs{})

	m := ask(t, c, "s1", "What medication for Anjali?")

	assert.Contains(t, m.Text, "Standard protocol for Neurology")
	assert.Contains(t, m.Text, "- TPA (if eligible)")
	assert.Contains(t, m.Text, "Allergies: NSAIDs")
}

func TestChatbot_PatientDischargeDraft(t *testing.T) {
	c := newTestChatbot(docs{})

	m := ask(t, c, "s1", "discharge summary for Priya")

	assert.Contains(t, m.Text, "Patient Priya Patel admitted with High fever with chills.")
	assert.Contains(t, m.Text, "Clinical course: Stabilized.")
	assert.Contains(t, m.Text, "Current Status: HIGH.")
}

func TestChatbot_DocumentContext(t *testing.T) {
	c := newTestChatbot(docs{"s1": analysis.FromFilename("heart.png", testNow)})

	m := ask(t, c, "s1", "what are the risks in the report")
	assert.Equal(t, KindDocument, m.Kind)
	assert.Contains(t, m.Text, "Critical Findings")
	assert.Contains(t, m.Text, "- ST-Elevation V1-V4")

	// the document stays the topic until something else is named
	m = ask(t, c, "s1", "treatment plan")
	assert.Contains(t, m.Text, "Treatment Pathway")
	assert.Contains(t, m.Text, "- Aspirin: 81mg daily")
	assert.Contains(t, m.Text, "Follow up: Cardiology Clinic in 7 Days")
}

func TestChatbot_DocumentWithoutFlags(t *testing.T) {
	c := newTestChatbot(docs{"s1": analysis.FromFilename("annual.png", testNow)})

	m := ask(t, c, "s1", "any critical alerts in this document?")

	assert.True(t, strings.HasPrefix(m.Text, "No critical alerts or flags found"))
}

func TestChatbot_DocumentOwnerNameGoesToDocument(t *testing.T) {
	// esther maps to Anjali Sharma, who is also in the registry
	c := newTestChatbot(docs{"s1": analysis.FromFilename("esther_xray.png", testNow)})

	m := ask(t, c, "s1", "Anjali report diagnosis")

	assert.Equal(t, KindDocument, m.Kind)
	assert.Contains(t, m.Text, "Diagnostic Impression: Distal Radius Fracture (Hairline)")
}

func TestChatbot_AnnounceDocument(t *testing.T) {
	c := newTestChatbot(docs{"s1": analysis.FromFilename("james_cbc.png", testNow)})

	c.AnnounceDocument("s1", analysis.FromFilename("james_cbc.png", testNow))
	conv := c.History("s1")
	assert.Equal(t, ContextDocument, conv.Context)
	assert.Equal(t, "Jatin Arora", conv.ContextName)

	m := ask(t, c, "s1", "summarize")
	assert.Contains(t, m.Text, "Report Analysis")
	assert.Contains(t, m.Text, "MODERATE Severity")
}

func TestChatbot_KnowledgeGreetingFallback(t *testing.T) {
	c := newTestChatbot(docs{})

	m := ask(t, c, "s1", "tell me about diabetes")
	assert.Equal(t, KindKnowledge, m.Kind)
	assert.Contains(t, m.Text, "Diabetes Mellitus")
	assert.Contains(t, m.Text, disclaimer)

	m = ask(t, c, "s1", "hello")
	assert.Contains(t, m.Text, "Try asking 'How is [Patient Name]?'")

	m = ask(t, c, "s1", "zzz")
	assert.Contains(t, m.Text, "I couldn't find specific data for that query.")
}

func TestChatbot_EmptyQuery(t *testing.T) {
	c := newTestChatbot(docs{})

	_, err := c.Ask(context.Background(), "s1", "   ")

	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestChatbot_DelayHonoursCancellation(t *testing.T) {
	c := NewChatbot(staticPatients(nil), docs{}, time.Hour, testutil.DiscardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Ask(ctx, "s1", "hello")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestChatbot_Forget(t *testing.T) {
	c := newTestChatbot(docs{})
	ask(t, c, "s1", "hello")

	c.Forget("s1")

	assert.Len(t, c.History("s1").Messages, 1)
}

func TestMatchPatient_ShortFirstNameIgnored(t *testing.T) {
	patients := []patient.Patient{{ID: "P-1", Name: "Al Green"}}

	_, ok := MatchPatient(patients, "call al now")
	assert.False(t, ok)

	p, ok := MatchPatient(patients, "how is al green")
	require.True(t, ok)
	assert.Equal(t, "P-1", p.ID)
}
