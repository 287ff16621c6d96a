package assistant

import (
	"context"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/MedFlow-Health/operations-service/internal/emergency"
	"github.com/MedFlow-Health/operations-service/internal/notification"
	"github.com/MedFlow-Health/operations-service/internal/patient"
)

// IntentEmergencyCardiac is the only spoken command recognised.
const IntentEmergencyCardiac = "emergency_cardiac"

var voiceNameRe = regexp.MustCompile(`(?i)(?:patient|for)\s+([a-z]+)`)

// Command is a parsed spoken instruction.
type Command struct {
	Intent      string `json:"intent"`
	PatientName string `json:"patientName,omitempty"`
	Raw         string `json:"raw"`
}

// ParseCommand recognises emergency phrases and the patient they name.
func ParseCommand(text string) (Command, bool) {
	lower := strings.ToLower(text)
	if !containsAny(lower, "emergency", "code blue", "cardiac") {
		return Command{Raw: text}, false
	}
	cmd := Command{Intent: IntentEmergencyCardiac, Raw: text}
	if m := voiceNameRe.FindStringSubmatch(lower); m != nil {
		cmd.PatientName = m[1]
	}
	return cmd, true
}

type EmergencyAdmitter interface {
	List(filter patient.ListFilter) []patient.Patient
	ActivateCardiacEmergency(ctx context.Context, id, actor string) (patient.Patient, error)
}

type CodeBlue interface {
	Activate(ctx context.Context, location, triggeredBy string) emergency.Alert
}

type AlertPusher interface {
	Push(title string, kind notification.Kind) notification.Notification
}

// Outcome reports what a voice command did.
type Outcome struct {
	Command  Command          `json:"command"`
	Patient  *patient.Patient `json:"patient,omitempty"`
	CodeBlue emergency.Alert  `json:"codeBlue"`
}

type VoiceCommands struct {
	patients EmergencyAdmitter
	codeBlue CodeBlue
	notifier AlertPusher
	log      logrus.FieldLogger
}

func NewVoiceCommands(patients EmergencyAdmitter, codeBlue CodeBlue, notifier AlertPusher, log logrus.FieldLogger) *VoiceCommands {
	return &VoiceCommands{patients: patients, codeBlue: codeBlue, notifier: notifier, log: log}
}

// Execute runs a recognised command. Without a matching patient only the
// generic alert and the Code Blue broadcast go out.
func (v *VoiceCommands) Execute(ctx context.Context, cmd Command, actor string) Outcome {
	out := Outcome{Command: cmd}

	var target *patient.Patient
	if cmd.PatientName != "" {
		fragment := strings.ToLower(cmd.PatientName)
		if p, ok := lo.Find(v.patients.List(patient.ListFilter{}), func(p patient.Patient) bool {
			return strings.Contains(strings.ToLower(p.Name), fragment)
		}); ok {
			target = &p
		}
	}

	location := emergency.DefaultLocation
	if target == nil {
		v.notifier.Push("Voice Command Alert: Code Blue Triggered (General)", notification.KindAlert)
	} else {
		p, err := v.patients.ActivateCardiacEmergency(ctx, target.ID, actor)
		if err != nil {
			v.log.WithError(err).WithField("patient_id", target.ID).Warn("cardiac emergency could not update patient")
			v.notifier.Push("Voice Command Alert: Code Blue Triggered (General)", notification.KindAlert)
		} else {
			out.Patient = &p
			location = p.Room
		}
	}

	out.CodeBlue = v.codeBlue.Activate(ctx, location, actor)
	v.log.WithFields(logrus.Fields{"intent": cmd.Intent, "patient": cmd.PatientName, "actor": actor}).Warn("voice command executed")
	return out
}
