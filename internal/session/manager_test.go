package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MedFlow-Health/operations-service/internal/analysis"
	"github.com/MedFlow-Health/operations-service/internal/auth"
	"github.com/MedFlow-Health/operations-service/internal/messaging"
	"github.com/MedFlow-Health/operations-service/internal/notification"
	"github.com/MedFlow-Health/operations-service/internal/preferences"
	"github.com/MedFlow-Health/operations-service/internal/testutil"
)

type countingRunner struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (r *countingRunner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
}

func (r *countingRunner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
}

type fixture struct {
	manager   *Manager
	feed      *notification.Feed
	prefs     *preferences.MemoryStore
	publisher *testutil.MockPublisher
	verifier  *auth.Verifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir, err := auth.NewDirectory(auth.DefaultCredentials(), bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		feed:      notification.NewEmptyFeed(),
		prefs:     preferences.NewMemoryStore(),
		publisher: testutil.NewMockPublisher(),
	}
	f.verifier = auth.NewVerifier(auth.NewConfig(testutil.TestSecret, time.Hour), nil)
	f.manager = NewManager(dir, f.verifier, auth.DefaultPermissions(), f.feed, f.prefs, testutil.DiscardLogger())
	f.manager.SetPublisher(f.publisher)
	f.verifier.SetSessionValidator(f.manager)
	return f
}

func (f *fixture) login(t *testing.T, email, password string, role auth.Role) LoginResult {
	t.Helper()
	res, err := f.manager.Login(context.Background(), LoginRequest{Email: email, Password: password, Role: role})
	require.NoError(t, err)
	return res
}

func TestLogin_Doctor(t *testing.T) {
	f := newFixture(t)

	res := f.login(t, "doctor@medflow.ai", "doctor123", auth.RoleDoctor)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, auth.ViewDashboard, res.Session.View)
	assert.Equal(t, "Dr. Aditi Verma", res.Session.User.Name)
	assert.Equal(t, preferences.ThemeLight, res.Session.Theme)
	assert.Equal(t, LanguageEnglish, res.Session.Language)
	assert.Len(t, res.Session.Nav, len(auth.NavViews))
	assert.True(t, f.manager.IsActive(res.Session.ID))
	f.publisher.AssertEventCount(t, messaging.EventSessionStarted, 1)

	pr, err := f.verifier.ParseAndVerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, pr.SessionID)
}

func TestLogin_CleanerLandsOnCleanerView(t *testing.T) {
	f := newFixture(t)

	res := f.login(t, "cleaner@medflow.ai", "cleaner123", auth.RoleCleaner)

	assert.Equal(t, auth.ViewCleaner, res.Session.View)
	assert.Equal(t, []auth.View{auth.ViewCleaner, auth.ViewSettings}, res.Session.Nav)
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Login(context.Background(), LoginRequest{Email: "doctor@medflow.ai", Password: "wrong", Role: auth.RoleDoctor})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, "Invalid email or password.", err.Error())

	_, err = f.manager.Login(context.Background(), LoginRequest{Email: "nurse@medflow.ai", Password: "nurse123", Role: auth.RoleDoctor})
	var mismatch *auth.RoleMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "Email exists, but role does not match. Try selecting 'nurse'.", err.Error())

	assert.Equal(t, 0, f.manager.Count())
	assert.Equal(t, 0, f.publisher.GetEventCount())
}

func TestLogin_LoadsStoredTheme(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, preferences.SetTheme(context.Background(), f.prefs, "nurse@medflow.ai", preferences.ThemeDark))

	res := f.login(t, "nurse@medflow.ai", "nurse123", auth.RoleNurse)

	assert.Equal(t, preferences.ThemeDark, res.Session.Theme)
}

func TestRunnerFollowsSessions(t *testing.T) {
	f := newFixture(t)
	runner := &countingRunner{}
	f.manager.AttachRunner(context.Background(), runner)

	a := f.login(t, "doctor@medflow.ai", "doctor123", auth.RoleDoctor)
	b := f.login(t, "nurse@medflow.ai", "nurse123", auth.RoleNurse)
	assert.Equal(t, 1, runner.starts)

	require.NoError(t, f.manager.Logout(context.Background(), a.Session.ID))
	assert.Equal(t, 0, runner.stops)

	require.NoError(t, f.manager.Logout(context.Background(), b.Session.ID))
	assert.Equal(t, 1, runner.stops)
	f.publisher.AssertEventCount(t, messaging.EventSessionEnded, 2)
}

func TestSweep_ExpiredSessionStopsRunner(t *testing.T) {
	f := newFixture(t)
	runner := &countingRunner{}
	f.manager.AttachRunner(context.Background(), runner)
	var ended []string
	f.manager.OnLogout(func(id string) { ended = append(ended, id) })

	res := f.login(t, "doctor@medflow.ai", "doctor123", auth.RoleDoctor)
	assert.Equal(t, res.ExpiresAt, res.Session.ExpiresAt)
	assert.Equal(t, 0, f.manager.Sweep(context.Background()))

	f.manager.SetClock(func() time.Time { return res.ExpiresAt.Add(time.Second) })
	assert.Equal(t, 1, f.manager.Sweep(context.Background()))

	assert.Equal(t, 0, f.manager.Count())
	assert.Equal(t, 1, runner.stops)
	assert.Equal(t, []string{res.Session.ID}, ended)
	f.publisher.AssertEventCount(t, messaging.EventSessionEnded, 1)
}

func TestIsActive_EvictsExpiredSession(t *testing.T) {
	f := newFixture(t)
	runner := &countingRunner{}
	f.manager.AttachRunner(context.Background(), runner)

	res := f.login(t, "nurse@medflow.ai", "nurse123", auth.RoleNurse)
	require.True(t, f.manager.IsActive(res.Session.ID))

	f.manager.SetClock(func() time.Time { return res.ExpiresAt })
	assert.False(t, f.manager.IsActive(res.Session.ID))
	assert.Equal(t, 0, f.manager.Count())
	assert.Equal(t, 1, runner.stops)

	_, err := f.manager.Get(res.Session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLogout_RevokesToken(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, "intern@medflow.ai", "intern123", auth.RoleIntern)

	require.NoError(t, f.manager.Logout(context.Background(), res.Session.ID))

	_, err := f.verifier.ParseAndVerifyToken(res.Token)
	assert.Error(t, err)
	assert.ErrorIs(t, f.manager.Logout(context.Background(), res.Session.ID), ErrSessionNotFound)
}

func TestNavigate(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, "reception@medflow.ai", "reception123", auth.RoleReceptionist)

	s, err := f.manager.Navigate(res.Session.ID, auth.ViewBilling)
	require.NoError(t, err)
	assert.Equal(t, auth.ViewBilling, s.View)

	_, err = f.manager.Navigate(res.Session.ID, auth.ViewTriage)
	var denied *AccessDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, "Your role (receptionist) does not have permission to view this page.", err.Error())

	current, err := f.manager.Get(res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.ViewBilling, current.View)
}

func TestConsultPatient(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, "intern@medflow.ai", "intern123", auth.RoleIntern)

	s, err := f.manager.ConsultPatient(res.Session.ID, "P-1003")
	require.NoError(t, err)
	assert.Equal(t, auth.ViewConsultant, s.View)
	assert.Equal(t, "P-1003", s.SelectedPatientID)

	nurse := f.login(t, "nurse@medflow.ai", "nurse123", auth.RoleNurse)
	_, err = f.manager.ConsultPatient(nurse.Session.ID, "P-1003")
	assert.Error(t, err)
}

func TestAnalysisIsPerSessionAndClearedOnLogout(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, "nurse@medflow.ai", "nurse123", auth.RoleNurse)

	_, ok := f.manager.Analysis(res.Session.ID)
	assert.False(t, ok)

	f.manager.SetAnalysis(res.Session.ID, analysis.Result{Diagnosis: "Routine Wellness Exam"})
	got, ok := f.manager.Analysis(res.Session.ID)
	require.True(t, ok)
	assert.Equal(t, "Routine Wellness Exam", got.Diagnosis)

	require.NoError(t, f.manager.Logout(context.Background(), res.Session.ID))
	_, ok = f.manager.Analysis(res.Session.ID)
	assert.False(t, ok)
}

func TestToggleBreak(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, "doctor@medflow.ai", "doctor123", auth.RoleDoctor)

	s, err := f.manager.ToggleBreak(res.Session.ID)
	require.NoError(t, err)
	assert.True(t, s.OnBreak)
	assert.Equal(t, notification.KindInfo, f.feed.List()[0].Type)

	s, err = f.manager.ToggleBreak(res.Session.ID)
	require.NoError(t, err)
	assert.False(t, s.OnBreak)
	assert.Equal(t, "Shift Status: Welcome back! You are now Live.", f.feed.List()[0].Title)

	nurse := f.login(t, "nurse@medflow.ai", "nurse123", auth.RoleNurse)
	_, err = f.manager.ToggleBreak(nurse.Session.ID)
	assert.ErrorIs(t, err, ErrBreakNotAllowed)
}

func TestSaveSettings(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, "doctor@medflow.ai", "doctor123", auth.RoleDoctor)
	name := "Dr. Aditi V."

	s, err := f.manager.SaveSettings(context.Background(), res.Session.ID, SettingsUpdate{
		Profile:  ProfileUpdate{Name: &name},
		Theme:    preferences.ThemeDark,
		Language: LanguageKannada,
	})
	require.NoError(t, err)
	assert.Equal(t, name, s.User.Name)
	assert.Equal(t, preferences.ThemeDark, s.Theme)
	assert.Equal(t, LanguageKannada, s.Language)
	assert.Equal(t, "Settings Saved Successfully", f.feed.List()[0].Title)

	theme, err := preferences.Theme(context.Background(), f.prefs, "doctor@medflow.ai")
	require.NoError(t, err)
	assert.Equal(t, preferences.ThemeDark, theme)

	_, err = f.manager.SaveSettings(context.Background(), res.Session.ID, SettingsUpdate{Language: "fr"})
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestUpdateProfileAndToggleTheme(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, "nurse@medflow.ai", "nurse123", auth.RoleNurse)
	bio := "Night shift lead"

	s, err := f.manager.UpdateProfile(res.Session.ID, ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, s.User.Bio)
	assert.Equal(t, "Nurse Meera Nair", s.User.Name)
	assert.Equal(t, "Profile Updated Successfully", f.feed.List()[0].Title)

	s, err = f.manager.ToggleTheme(context.Background(), res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, preferences.ThemeDark, s.Theme)
}

func TestHooks(t *testing.T) {
	f := newFixture(t)
	var analysed, ended []string
	f.manager.OnAnalysis(func(sessionID string, r analysis.Result) { analysed = append(analysed, r.Diagnosis) })
	f.manager.OnLogout(func(sessionID string) { ended = append(ended, sessionID) })
	res := f.login(t, "nurse@medflow.ai", "nurse123", auth.RoleNurse)

	f.manager.SetAnalysis(res.Session.ID, analysis.Result{Diagnosis: "Hematology Report"})
	f.manager.SetAnalysis("gone", analysis.Result{Diagnosis: "ignored"})
	require.NoError(t, f.manager.Logout(context.Background(), res.Session.ID))

	assert.Equal(t, []string{"Hematology Report"}, analysed)
	assert.Equal(t, []string{res.Session.ID}, ended)
}
