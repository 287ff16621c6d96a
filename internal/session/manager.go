package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/MedFlow-Health/operations-service/internal/analysis"
	"github.com/MedFlow-Health/operations-service/internal/auth"
	"github.com/MedFlow-Health/operations-service/internal/messaging"
	"github.com/MedFlow-Health/operations-service/internal/notification"
	"github.com/MedFlow-Health/operations-service/internal/preferences"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrBreakNotAllowed  = errors.New("only doctors can take a coffee break")
	ErrUnknownLanguage  = errors.New("language must be one of en, hi, kn")
	ErrPatientNotChosen = errors.New("patient id is required")
)

// AccessDeniedError is returned when a role navigates to a view it cannot see.
type AccessDeniedError struct {
	Role auth.Role
	View auth.View
}

func (e *AccessDeniedError) Error() string {
	return auth.DeniedMessage(e.Role)
}

// Authenticator checks login credentials.
type Authenticator interface {
	Authenticate(email, password string, role auth.Role) (auth.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(user auth.User, sessionID string) (string, time.Time, error)
}

type Notifier interface {
	Push(title string, kind notification.Kind) notification.Notification
}

// Runner is the background work that lives only while someone is logged in.
type Runner interface {
	Start(ctx context.Context)
	Stop()
}

type MetricsRecorder interface {
	RecordLogin(ctx context.Context, role string, success bool)
	RecordActiveSessions(ctx context.Context, n int)
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	users     Authenticator
	tokens    TokenIssuer
	perms     auth.Permissions
	notifier  Notifier
	prefs     preferences.KeyValueStore
	publisher messaging.PublisherInterface
	log       logrus.FieldLogger
	metrics   MetricsRecorder
	now       func() time.Time

	runner    Runner
	runnerCtx context.Context

	onAnalysis []func(sessionID string, r analysis.Result)
	onLogout   []func(sessionID string)
}

func NewManager(users Authenticator, tokens TokenIssuer, perms auth.Permissions, notifier Notifier, prefs preferences.KeyValueStore, log logrus.FieldLogger) *Manager {
	if prefs == nil {
		prefs = preferences.NewMemoryStore()
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		users:     users,
		tokens:    tokens,
		perms:     perms,
		notifier:  notifier,
		prefs:     prefs,
		publisher: messaging.NoopPublisher{},
		log:       log,
		now:       time.Now,
	}
}

func (m *Manager) SetPublisher(p messaging.PublisherInterface) { m.publisher = p }

func (m *Manager) SetMetrics(r MetricsRecorder) { m.metrics = r }

func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// OnAnalysis registers fn to run after a session stores a new analysis.
func (m *Manager) OnAnalysis(fn func(sessionID string, r analysis.Result)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAnalysis = append(m.onAnalysis, fn)
}

// OnLogout registers fn to run after a session ends.
func (m *Manager) OnLogout(fn func(sessionID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = append(m.onLogout, fn)
}

// AttachRunner ties r to the session lifetime: it starts with the first
// login and stops after the last logout. ctx bounds the runner as well.
func (m *Manager) AttachRunner(ctx context.Context, r Runner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runner = r
	m.runnerCtx = ctx
	if len(m.sessions) > 0 {
		r.Start(ctx)
	}
}

// Login authenticates the user and opens a session.
func (m *Manager) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	email := strings.TrimSpace(req.Email)
	user, err := m.users.Authenticate(email, req.Password, req.Role)
	if m.metrics != nil {
		m.metrics.RecordLogin(ctx, string(req.Role), err == nil)
	}
	if err != nil {
		m.log.WithFields(logrus.Fields{"email": email, "role": req.Role}).Warn("login rejected")
		return LoginResult{}, err
	}

	theme, err := preferences.Theme(ctx, m.prefs, user.Email)
	if err != nil {
		m.log.WithError(err).Warn("failed to load theme preference")
	}

	s := &Session{
		ID:        uuid.NewString(),
		User:      user,
		View:      auth.InitialView(user.Role),
		Nav:       m.perms.NavItems(user.Role),
		Theme:     theme,
		Language:  LanguageEnglish,
		StartedAt: m.now(),
	}

	token, exp, err := m.tokens.Issue(user, s.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to issue session token: %w", err)
	}
	s.ExpiresAt = exp

	m.Sweep(ctx)

	m.mu.Lock()
	m.sessions[s.ID] = s
	active := len(m.sessions)
	if active == 1 && m.runner != nil {
		m.runner.Start(m.runnerCtx)
	}
	out := s.clone()
	m.mu.Unlock()

	m.publishSession(ctx, messaging.EventSessionStarted, out)
	m.recordActive(ctx, active)
	m.log.WithFields(logrus.Fields{"session_id": s.ID, "email": user.Email, "role": user.Role}).Info("session started")

	return LoginResult{Token: token, ExpiresAt: exp, Session: out}, nil
}

// Logout ends the session and drops its UI state.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	if _, ok := m.sessions[sessionID]; !ok {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	m.end(ctx, []string{sessionID}, "logout")
	return nil
}

// Sweep ends every session whose token has expired and returns how many
// were removed. The runner stops when the last one goes.
func (m *Manager) Sweep(ctx context.Context) int {
	now := m.now()
	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if s.expired(now) {
			expired = append(expired, id)
		}
	}
	if len(expired) == 0 {
		m.mu.Unlock()
		return 0
	}
	m.end(ctx, expired, "expired")
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(ctx); n > 0 {
				m.log.WithField("count", n).Info("expired sessions removed")
			}
		}
	}
}

// end removes ids, stops the runner when none remain and then runs the
// logout hooks and events outside the lock. m.mu must be held on entry;
// end releases it.
func (m *Manager) end(ctx context.Context, ids []string, reason string) {
	ended := make([]Session, 0, len(ids))
	for _, id := range ids {
		if s, ok := m.sessions[id]; ok {
			ended = append(ended, s.clone())
			delete(m.sessions, id)
		}
	}
	active := len(m.sessions)
	if active == 0 && m.runner != nil {
		m.runner.Stop()
	}
	hooks := append([]func(string){}, m.onLogout...)
	m.mu.Unlock()

	for _, s := range ended {
		for _, fn := range hooks {
			fn(s.ID)
		}
		m.publishSession(ctx, messaging.EventSessionEnded, s)
		m.log.WithFields(logrus.Fields{"session_id": s.ID, "reason": reason}).Info("session ended")
	}
	m.recordActive(ctx, active)
}

// IsActive implements auth.SessionValidator. An expired session is not
// active and is evicted on the spot.
func (m *Manager) IsActive(sessionID string) bool {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	expired := ok && s.expired(m.now())
	m.mu.RUnlock()
	if expired {
		m.Sweep(context.Background())
		return false
	}
	return ok
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) Get(sessionID string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s.clone(), nil
}

func (m *Manager) update(sessionID string, fn func(s *Session) error) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	next := s.clone()
	if err := fn(&next); err != nil {
		return Session{}, err
	}
	*s = next
	return next.clone(), nil
}

// Navigate switches the current view when the role may see it.
func (m *Manager) Navigate(sessionID string, view auth.View) (Session, error) {
	return m.update(sessionID, func(s *Session) error {
		if !m.perms.Allows(s.User.Role, view) {
			return &AccessDeniedError{Role: s.User.Role, View: view}
		}
		s.View = view
		return nil
	})
}

// ConsultPatient opens the consultant view on one patient.
func (m *Manager) ConsultPatient(sessionID, patientID string) (Session, error) {
	if strings.TrimSpace(patientID) == "" {
		return Session{}, ErrPatientNotChosen
	}
	return m.update(sessionID, func(s *Session) error {
		if !m.perms.Allows(s.User.Role, auth.ViewConsultant) {
			return &AccessDeniedError{Role: s.User.Role, View: auth.ViewConsultant}
		}
		s.SelectedPatientID = patientID
		s.View = auth.ViewConsultant
		return nil
	})
}

// SetAnalysis stores the latest document analysis of a session. Unknown
// sessions are ignored.
func (m *Manager) SetAnalysis(sessionID string, r analysis.Result) {
	if _, err := m.update(sessionID, func(s *Session) error {
		s.Analysis = &r
		return nil
	}); err != nil {
		return
	}

	m.mu.RLock()
	hooks := append([]func(string, analysis.Result){}, m.onAnalysis...)
	m.mu.RUnlock()
	for _, fn := range hooks {
		fn(sessionID, r)
	}
}

func (m *Manager) Analysis(sessionID string) (analysis.Result, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.Analysis == nil {
		return analysis.Result{}, false
	}
	return *s.Analysis, true
}

// ToggleBreak flips coffee mode for a doctor and announces the change.
func (m *Manager) ToggleBreak(sessionID string) (Session, error) {
	s, err := m.update(sessionID, func(s *Session) error {
		if s.User.Role != auth.RoleDoctor {
			return ErrBreakNotAllowed
		}
		s.OnBreak = !s.OnBreak
		return nil
	})
	if err != nil {
		return Session{}, err
	}

	if s.OnBreak {
		m.notifier.Push("Shift Status: You are now on break. Cases delegated to On-Call Resident.", notification.KindInfo)
	} else {
		m.notifier.Push("Shift Status: Welcome back! You are now Live.", notification.KindSuccess)
	}
	return s, nil
}

func applyProfile(u *auth.User, p ProfileUpdate) {
	if p.Name != nil && strings.TrimSpace(*p.Name) != "" {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Phone != nil {
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Bio != nil {
		u.Bio = strings.TrimSpace(*p.Bio)
	}
}

// UpdateProfile edits the session's copy of the user.
func (m *Manager) UpdateProfile(sessionID string, p ProfileUpdate) (Session, error) {
	s, err := m.update(sessionID, func(s *Session) error {
		applyProfile(&s.User, p)
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	m.notifier.Push("Profile Updated Successfully", notification.KindSuccess)
	return s, nil
}

// SaveSettings applies profile, theme and language together. The theme is
// persisted per user; everything else lasts for the session.
func (m *Manager) SaveSettings(ctx context.Context, sessionID string, req SettingsUpdate) (Session, error) {
	if req.Language != "" && !validLanguage(req.Language) {
		return Session{}, ErrUnknownLanguage
	}
	if req.Theme != "" && req.Theme != preferences.ThemeLight && req.Theme != preferences.ThemeDark {
		return Session{}, preferences.ErrUnknownTheme
	}

	current, err := m.Get(sessionID)
	if err != nil {
		return Session{}, err
	}
	if req.Theme != "" {
		if err := preferences.SetTheme(ctx, m.prefs, current.User.Email, req.Theme); err != nil {
			return Session{}, fmt.Errorf("failed to save theme: %w", err)
		}
	}

	s, err := m.update(sessionID, func(s *Session) error {
		applyProfile(&s.User, req.Profile)
		if req.Theme != "" {
			s.Theme = req.Theme
		}
		if req.Language != "" {
			s.Language = req.Language
		}
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	m.notifier.Push("Settings Saved Successfully", notification.KindSuccess)
	return s, nil
}

// ToggleTheme flips and persists the user's theme.
func (m *Manager) ToggleTheme(ctx context.Context, sessionID string) (Session, error) {
	current, err := m.Get(sessionID)
	if err != nil {
		return Session{}, err
	}
	theme, err := preferences.ToggleTheme(ctx, m.prefs, current.User.Email)
	if err != nil {
		return Session{}, fmt.Errorf("failed to toggle theme: %w", err)
	}
	return m.update(sessionID, func(s *Session) error {
		s.Theme = theme
		return nil
	})
}

// Shutdown drops every session and stops the runner.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*Session)
	if m.runner != nil {
		m.runner.Stop()
	}
}

func (m *Manager) publishSession(ctx context.Context, key string, s Session) {
	event := messaging.SessionEvent{
		BaseEvent: messaging.NewBaseEvent(key),
		Data: messaging.SessionData{
			SessionID: s.ID,
			Email:     s.User.Email,
			Role:      string(s.User.Role),
			At:        m.now(),
		},
	}
	if err := m.publisher.Publish(ctx, key, event); err != nil {
		m.log.WithError(err).WithField("event", key).Warn("failed to publish session event")
	}
}

func (m *Manager) recordActive(ctx context.Context, n int) {
	if m.metrics != nil {
		m.metrics.RecordActiveSessions(ctx, n)
	}
}
