package session

import (
	"time"

	"github.com/MedFlow-Health/operations-service/internal/analysis"
	"github.com/MedFlow-Health/operations-service/internal/auth"
)

// Languages the dashboard is translated into.
const (
	LanguageEnglish = "en"
	LanguageHindi   = "hi"
	LanguageKannada = "kn"
)

func validLanguage(l string) bool {
	return l == LanguageEnglish || l == LanguageHindi || l == LanguageKannada
}

// Session is the per-login UI state. Only the theme outlives it.
type Session struct {
	ID                string           `json:"id"`
	User              auth.User        `json:"user"`
	View              auth.View        `json:"view"`
	Nav               []auth.View      `json:"nav"`
	SelectedPatientID string           `json:"selectedPatientId,omitempty"`
	OnBreak           bool             `json:"onBreak"`
	Theme             string           `json:"theme"`
	Language          string           `json:"language"`
	Analysis          *analysis.Result `json:"analysis,omitempty"`
	StartedAt         time.Time        `json:"startedAt"`
	ExpiresAt         time.Time        `json:"expiresAt"`
}

// expired reports whether the session token has lapsed at now. A zero
// ExpiresAt never lapses.
func (s Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

func (s Session) clone() Session {
	c := s
	c.Nav = append([]auth.View(nil), s.Nav...)
	if s.Analysis != nil {
		r := *s.Analysis
		c.Analysis = &r
	}
	return c
}

type LoginRequest struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Session   Session   `json:"session"`
}

// ProfileUpdate holds the editable profile fields. Nil fields are left alone.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}

type SettingsUpdate struct {
	Profile  ProfileUpdate `json:"profile"`
	Theme    string        `json:"theme"`
	Language string        `json:"language"`
}
