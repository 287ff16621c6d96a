// Package assistant answers free-text questions from staff: the dashboard
// chatbot, the consultant's clinical query box and spoken commands.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/MedFlow-Health/operations-service/internal/analysis"
	"github.com/MedFlow-Health/operations-service/internal/patient"
)

// Context is what the chatbot is currently talking about.
type Context string

const (
	ContextGeneral  Context = "general"
	ContextPatient  Context = "patient"
	ContextDocument Context = "document"
)

// Message kinds tell clients how to render a reply.
const (
	KindText      = "text"
	KindPatient   = "patient"
	KindDocument  = "document"
	KindKnowledge = "knowledge"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

const welcome = "Hello! I'm MedFlow Assistant. I can help with patient records or analyze uploaded documents."

type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the chat history of one session.
type Conversation struct {
	Messages    []Message `json:"messages"`
	Context     Context   `json:"context"`
	ContextName string    `json:"contextName,omitempty"`
}

// PatientLister is the registry view the chatbot searches.
type PatientLister interface {
	List(filter patient.ListFilter) []patient.Patient
}

// DocumentSource returns the analysis active in a session.
type DocumentSource interface {
	Analysis(sessionID string) (analysis.Result, bool)
}

type Chatbot struct {
	mu            sync.Mutex
	conversations map[string]*Conversation

	patients PatientLister
	docs     DocumentSource
	delay    time.Duration
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewChatbot(patients PatientLister, docs DocumentSource, delay time.Duration, log logrus.FieldLogger) *Chatbot {
	return &Chatbot{
		conversations: make(map[string]*Conversation),
		patients:      patients,
		docs:          docs,
		delay:         delay,
		log:           log,
		now:           time.Now,
	}
}

func (c *Chatbot) message(sender, kind, text string) Message {
	return Message{ID: uuid.NewString(), Sender: sender, Kind: kind, Text: text, Timestamp: c.now()}
}

// conversation must be called with c.mu held.
func (c *Chatbot) conversation(sessionID string) *Conversation {
	conv, ok := c.conversations[sessionID]
	if !ok {
		conv = &Conversation{
			Messages: []Message{c.message(SenderBot, KindText, welcome)},
			Context:  ContextGeneral,
		}
		c.conversations[sessionID] = conv
	}
	return conv
}

// History returns a copy of the session's conversation.
func (c *Chatbot) History(sessionID string) Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv := c.conversation(sessionID)
	out := *conv
	out.Messages = append([]Message(nil), conv.Messages...)
	return out
}

// Forget drops a session's conversation.
func (c *Chatbot) Forget(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conversations, sessionID)
}

// AnnounceDocument posts the "Document Processed" message and switches the
// conversation to the new document.
func (c *Chatbot) AnnounceDocument(sessionID string, r analysis.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv := c.conversation(sessionID)
	text := fmt.Sprintf("Document Processed\n%s\nAsk me about: Summary, Critical Flags, Plan", r.Metadata.PatientName)
	conv.Messages = append(conv.Messages, c.message(SenderBot, KindDocument, text))
	conv.Context = ContextDocument
	conv.ContextName = r.Metadata.PatientName
}

// Ask records the question, waits the configured thinking delay and
// returns the reply. A cancelled ctx abandons the reply.
func (c *Chatbot) Ask(ctx context.Context, sessionID, query string) (Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Message{}, ErrEmptyQuery
	}

	c.mu.Lock()
	conv := c.conversation(sessionID)
	conv.Messages = append(conv.Messages, c.message(SenderUser, KindText, query))
	c.mu.Unlock()

	if err := wait(ctx, c.delay); err != nil {
		return Message{}, err
	}

	var doc *analysis.Result
	if c.docs != nil {
		if r, ok := c.docs.Analysis(sessionID); ok {
			doc = &r
		}
	}
	patients := c.patients.List(patient.ListFilter{})

	c.mu.Lock()
	defer c.mu.Unlock()
	conv = c.conversation(sessionID)
	kind, text := c.respond(conv, patients, doc, query)
	reply := c.message(SenderBot, kind, text)
	conv.Messages = append(conv.Messages, reply)

	c.log.WithFields(logrus.Fields{"session_id": sessionID, "context": conv.Context, "kind": kind}).Debug("assistant replied")
	return reply, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// MatchPatient finds the first patient whose full name, or first name
// longer than two letters, appears in the query.
func MatchPatient(patients []patient.Patient, query string) (patient.Patient, bool) {
	lower := strings.ToLower(query)
	return lo.Find(patients, func(p patient.Patient) bool {
		name := strings.ToLower(p.Name)
		if strings.Contains(lower, name) {
			return true
		}
		first := strings.Fields(name)
		return len(first) > 0 && len(first[0]) > 2 && strings.Contains(lower, first[0])
	})
}

// respond runs the priority chain: registry patient, active document,
// knowledge bank, greeting, fallback. conv is updated in place.
func (c *Chatbot) respond(conv *Conversation, patients []patient.Patient, doc *analysis.Result, query string) (string, string) {
	lower := strings.ToLower(query)

	matched, found := MatchPatient(patients, lower)
	if found {
		ownsDoc := doc != nil && strings.Contains(strings.ToLower(doc.Metadata.PatientName), strings.ToLower(matched.Name))
		if !ownsDoc {
			conv.Context = ContextPatient
			conv.ContextName = matched.Name
			return KindPatient, patientReply(matched, lower)
		}
	}

	askingAboutDoc := strings.Contains(lower, "report") ||
		strings.Contains(lower, "document") ||
		strings.Contains(lower, "this patient") ||
		(conv.Context == ContextDocument && !found)
	if doc != nil && askingAboutDoc {
		conv.Context = ContextDocument
		conv.ContextName = doc.Metadata.PatientName
		return KindDocument, documentReply(*doc, lower)
	}

	for _, entry := range Knowledge {
		if strings.Contains(lower, entry.Key) {
			conv.Context = ContextGeneral
			conv.ContextName = ""
			return KindKnowledge, "Medical Knowledge Bank\n" + entry.Answer + "\n\n" + disclaimer
		}
	}

	if strings.Contains(lower, "hello") || strings.Contains(lower, "hi") || strings.Contains(lower, "help") {
		return KindText, "Hello! I can help you summarize patient records from the database or analyze uploaded documents. Try asking 'How is [Patient Name]?' or upload a PDF."
	}

	return KindText, "I couldn't find specific data for that query. Please mention a patient's name, upload a document, or ask a general medical term (e.g. 'Diabetes')."
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func patientReply(p patient.Patient, q string) string {
	if containsAny(q, "medicine", "medication", "drug", "prescri") {
		var b strings.Builder
		fmt.Fprintf(&b, "Medication Protocol\nStandard protocol for %s:\n", p.SuggestedDepartment)
		for _, m := range departmentMeds(p.SuggestedDepartment) {
			b.WriteString("- " + m + "\n")
		}
		if len(p.Allergies) > 0 {
			b.WriteString("Allergies: " + strings.Join(p.Allergies, ", ") + "\n")
		}
		return strings.TrimRight(b.String(), "\n")
	}

	if containsAny(q, "discharge", "summary", "draft") {
		course := "Stabilized"
		if p.Status == patient.StatusAdmitted {
			course = "Under active management"
		}
		return fmt.Sprintf("Discharge Draft\nPatient %s admitted with %s. Clinical course: %s. Current Status: %s. Plan: Continue %s protocol. Discharge when vitals stable for 24h.",
			p.Name, p.PrimarySymptom(), course, strings.ToUpper(string(p.Severity)), p.SuggestedDepartment)
	}

	location := p.Ward
	if location == "" {
		location = "Triage"
	}
	if p.Room != "" {
		location += " - Bed " + p.Room
	}
	return fmt.Sprintf("Patient Record: %s\n%s\nVitals: BP: 120/80 • HR: 72\nLocation: %s\nSeverity: %s • Department: %s",
		p.Name, p.AISummary, location, strings.ToUpper(string(p.Severity)), p.SuggestedDepartment)
}

func documentReply(doc analysis.Result, q string) string {
	switch {
	case containsAny(q, "risk", "alert", "flag", "critical"):
		if len(doc.AlertFlags) == 0 && len(doc.IncreasedMarkers) == 0 {
			return "No critical alerts or flags found in this report. The patient appears stable based on the extracted data."
		}
		var b strings.Builder
		b.WriteString("Critical Findings")
		for _, f := range doc.AlertFlags {
			b.WriteString("\n- " + f)
		}
		if len(doc.IncreasedMarkers) > 0 {
			b.WriteString("\nElevated Markers: " + strings.Join(doc.IncreasedMarkers, ", "))
		}
		return b.String()

	case containsAny(q, "med", "drug", "treat", "plan"):
		var b strings.Builder
		fmt.Fprintf(&b, "Treatment Pathway\nBased on analysis for %s:", doc.Metadata.PatientName)
		for _, m := range doc.RecommendedMeds {
			fmt.Fprintf(&b, "\n- %s: %s", m.Name, m.Dosage)
		}
		b.WriteString("\nFollow up: " + doc.FollowUpPlan)
		return b.String()

	case containsAny(q, "diagnosis", "condition", "problem"):
		return fmt.Sprintf("Diagnostic Impression: %s\n%s\nConfidence: High based on extracted clinical markers.", doc.Diagnosis, doc.Summary)
	}

	return fmt.Sprintf("Report Analysis\n%s\nPatient: %s • Age: %d\n%s Severity",
		doc.Summary, doc.Metadata.PatientName, doc.Metadata.Age, strings.ToUpper(string(doc.Severity)))
}
