package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/MedFlow-Health/operations-service/internal/analysis"
	"github.com/MedFlow-Health/operations-service/internal/archive"
	"github.com/MedFlow-Health/operations-service/internal/assistant"
	"github.com/MedFlow-Health/operations-service/internal/auth"
	"github.com/MedFlow-Health/operations-service/internal/consult"
	"github.com/MedFlow-Health/operations-service/internal/dashboard"
	"github.com/MedFlow-Health/operations-service/internal/emergency"
	"github.com/MedFlow-Health/operations-service/internal/messaging"
	"github.com/MedFlow-Health/operations-service/internal/notification"
	"github.com/MedFlow-Health/operations-service/internal/operations"
	"github.com/MedFlow-Health/operations-service/internal/order"
	"github.com/MedFlow-Health/operations-service/internal/patient"
	"github.com/MedFlow-Health/operations-service/internal/preferences"
	"github.com/MedFlow-Health/operations-service/internal/session"
	"github.com/MedFlow-Health/operations-service/internal/simulation"
	"github.com/MedFlow-Health/operations-service/internal/speech"
	"github.com/MedFlow-Health/operations-service/internal/telemetry"
)

const (
	serviceName          = "operations-service"
	sessionSweepInterval = time.Minute
)

// Deps are the collaborators built by the caller. Nil fields fall back to
// in-process defaults, so a zero Deps plus a Verifier and Directory yields
// a fully working service.
type Deps struct {
	Verifier    *auth.Verifier
	Directory   *auth.Directory
	Permissions auth.Permissions

	Preferences preferences.KeyValueStore
	Publisher   messaging.PublisherInterface
	Archiver    archive.Archiver
	Messenger   messaging.ExternalMessenger
	SpeechInput speech.Input
	Speaker     speech.Output

	Metrics    *telemetry.Metrics
	Prometheus *telemetry.HTTPCollector

	AssistantDelay     time.Duration
	SimulationEnabled  bool
	SimulationInterval time.Duration

	Log logrus.FieldLogger
}

// App is the wired service: the router plus the pieces main needs to manage
// lifetimes.
type App struct {
	Router   *mux.Router
	Sessions *session.Manager
	Feed     *notification.Feed
	Hub      *notification.Hub
	Runner   *simulation.Runner
}

// Shutdown ends every session and stops the simulation.
func (a *App) Shutdown() {
	a.Sessions.Shutdown()
	if a.Runner != nil {
		a.Runner.Stop()
	}
}

// SetupRouter builds every registry and handler and mounts the routes. ctx
// bounds background work such as the simulation runner.
func SetupRouter(ctx context.Context, deps Deps) *App {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	perms := deps.Permissions
	if perms == nil {
		perms = auth.DefaultPermissions()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	archiver := deps.Archiver
	if archiver == nil {
		archiver = archive.NoopArchiver{}
	}
	messenger := deps.Messenger
	if messenger == nil {
		messenger = messaging.LinkMessenger{}
	}
	prom := deps.Prometheus
	if prom == nil {
		prom = telemetry.NewHTTPCollector(serviceName)
	}

	// Notifications
	feed := notification.NewFeed()
	hub := notification.NewHub()
	hub.Attach(feed)
	notificationHandler := notification.NewHandler(feed, hub)

	// Patients
	patientOpts := []patient.Option{
		patient.WithPublisher(publisher),
		patient.WithArchiver(archiver),
		patient.WithLogger(log.WithField("component", "patient")),
	}
	if deps.Metrics != nil {
		patientOpts = append(patientOpts, patient.WithMetrics(deps.Metrics))
	}
	patientService := patient.NewService(patient.NewMemoryStore(patient.Seed(time.Now())), feed, patientOpts...)
	patientHandler := patient.NewHandler(patientService)

	// Orders
	orderService := order.NewService(patientService, feed, publisher, log.WithField("component", "order"))
	orderHandler := order.NewHandler(orderService)

	// Code Blue
	board := emergency.NewBoard(feed, publisher, log.WithField("component", "emergency"))
	emergencyHandler := emergency.NewHandler(board)

	// Sessions
	sessions := session.NewManager(deps.Directory, deps.Verifier, perms, feed, deps.Preferences, log.WithField("component", "session"))
	sessions.SetPublisher(publisher)
	deps.Verifier.SetSessionValidator(sessions)
	sessionHandler := session.NewHandler(sessions)

	// Document analysis
	analyzer := analysis.NewAnalyzer(analysis.NewPDFExtractor(), archiver, log.WithField("component", "analysis"))
	analysisHandler := analysis.NewHandler(analyzer, sessions, patientService)

	// Assistants
	chatbot := assistant.NewChatbot(patientService, sessions, deps.AssistantDelay, log.WithField("component", "assistant"))
	voice := assistant.NewVoiceCommands(patientService, board, feed, log.WithField("component", "voice"))
	assistantHandler := assistant.NewHandler(chatbot, patientService, voice)

	// Consultation tools
	consultService := consult.NewService(patientService, deps.SpeechInput, log.WithField("component", "consult"))
	consultService.SetArchiver(archiver)
	consultService.SetMessenger(messenger)
	consultHandler := consult.NewHandler(consultService)

	// Dashboard read model
	dashboardService := dashboard.NewService(patientService, orderService, speech.NewReader(deps.Speaker), log.WithField("component", "dashboard"))
	dashboardService.SetMessenger(messenger)
	dashboardHandler := dashboard.NewHandler(dashboardService)

	// Peripheral views
	operationsHandler := operations.NewHandler(operations.NewService(log.WithField("component", "operations")))

	// Session lifecycle hooks
	sessions.OnAnalysis(chatbot.AnnounceDocument)
	sessions.OnLogout(func(sessionID string) {
		chatbot.Forget(sessionID)
		consultService.Forget(sessionID)
		if err := dashboardService.StopSpeech(sessionID); err != nil {
			log.WithError(err).Warn("Failed to stop speech on logout")
		}
	})

	go sessions.RunSweeper(ctx, sessionSweepInterval)

	var runner *simulation.Runner
	if deps.SimulationEnabled {
		ticker := simulation.NewTicker(patientService, feed, patient.SharedRand{})
		runner = simulation.NewRunner(ticker, deps.SimulationInterval, log.WithField("component", "simulation"))
		if deps.Metrics != nil {
			runner.SetMetrics(deps.Metrics)
		}
		sessions.AttachRunner(ctx, runner)
	}

	var (
		authMetrics auth.MetricsRecorder
		permMetrics auth.PermissionMetricsRecorder
	)
	if deps.Metrics != nil {
		authMetrics = deps.Metrics
		permMetrics = deps.Metrics
		sessions.SetMetrics(deps.Metrics)
		orderService.SetMetrics(deps.Metrics)
		board.SetMetrics(deps.Metrics)
		analyzer.SetMetrics(deps.Metrics)
		prom.Forward(deps.Metrics)
	}

	authn := auth.MiddlewareWithMetrics(deps.Verifier, authMetrics)
	// protect requires a valid session and, when views are given, access to
	// at least one of them.
	protect := func(h http.HandlerFunc, views ...auth.View) http.Handler {
		var next http.Handler = h
		if len(views) > 0 {
			next = auth.RequireAnyViewWithMetrics(perms, permMetrics, views...)(next)
		}
		return authn(next)
	}

	r := mux.NewRouter()
	r.Use(otelmux.Middleware(serviceName))
	r.Use(prom.Middleware)

	// Public endpoints
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"operations-service"}`))
	}).Methods("GET")
	r.Handle("/metrics", prom.Handler()).Methods("GET")
	r.HandleFunc("/auth/login", sessionHandler.Login).Methods("POST")

	// Session
	r.Handle("/auth/logout", protect(sessionHandler.Logout)).Methods("POST")
	r.Handle("/session", protect(sessionHandler.Current)).Methods("GET")
	r.Handle("/session/view", protect(sessionHandler.Navigate)).Methods("PUT")
	r.Handle("/session/patient", protect(sessionHandler.Consult, auth.ViewConsultant)).Methods("PUT")
	r.Handle("/session/break", protect(sessionHandler.ToggleBreak)).Methods("POST")
	r.Handle("/session/profile", protect(sessionHandler.UpdateProfile, auth.ViewSettings)).Methods("PATCH")
	r.Handle("/session/settings", protect(sessionHandler.SaveSettings, auth.ViewSettings)).Methods("PUT")
	r.Handle("/session/theme", protect(sessionHandler.ToggleTheme, auth.ViewSettings)).Methods("POST")

	// Notifications
	r.Handle("/notifications", protect(notificationHandler.ListNotifications)).Methods("GET")
	r.Handle("/notifications", protect(notificationHandler.ClearNotifications)).Methods("DELETE")
	r.Handle("/ws/notifications", protect(notificationHandler.Stream)).Methods("GET")

	// Dashboard
	r.Handle("/dashboard", protect(dashboardHandler.Overview, auth.ViewDashboard)).Methods("GET")
	r.Handle("/dashboard/notice", protect(dashboardHandler.SetNotice, auth.ViewDashboard)).Methods("PUT")
	r.Handle("/dashboard/patients/{id}/share", protect(dashboardHandler.ShareSummary, auth.ViewDashboard)).Methods("POST")
	r.Handle("/dashboard/patients/{id}/reminder", protect(dashboardHandler.Reminder, auth.ViewDashboard)).Methods("POST")
	r.Handle("/dashboard/patients/{id}/reminder/email", protect(dashboardHandler.EmailReminder, auth.ViewDashboard)).Methods("POST")
	r.Handle("/dashboard/patients/{id}/speech", protect(dashboardHandler.ToggleSpeech, auth.ViewDashboard)).Methods("POST")
	r.Handle("/dashboard/speech", protect(dashboardHandler.StopSpeech, auth.ViewDashboard)).Methods("DELETE")

	// Patient registry
	patientViews := []auth.View{auth.ViewDashboard, auth.ViewReception, auth.ViewTriage, auth.ViewConsultant}
	r.Handle("/patients", protect(patientHandler.ListPatients, patientViews...)).Methods("GET")
	r.Handle("/patients", protect(patientHandler.RegisterPatient, auth.ViewReception)).Methods("POST")
	r.Handle("/patients/{id}", protect(patientHandler.GetPatient, patientViews...)).Methods("GET")
	r.Handle("/patients/{id}/seen", protect(patientHandler.MarkSeen, auth.ViewTriage)).Methods("POST")
	r.Handle("/patients/{id}/admit", protect(patientHandler.Admit, auth.ViewTriage)).Methods("POST")
	r.Handle("/patients/{id}/discharge", protect(patientHandler.DischargeDraft, auth.ViewTriage)).Methods("GET")
	r.Handle("/patients/{id}/discharge", protect(patientHandler.Discharge, auth.ViewTriage)).Methods("POST")
	r.Handle("/patients/{id}/discharge/summary", protect(patientHandler.DischargeSummary, auth.ViewTriage, auth.ViewDashboard)).Methods("GET")
	r.Handle("/patients/{id}/notes", protect(patientHandler.AddNote, auth.ViewTriage, auth.ViewConsultant)).Methods("POST")
	r.Handle("/patients/{id}/severity", protect(patientHandler.SetSeverity, auth.ViewTriage)).Methods("PUT")
	r.Handle("/patients/{id}/assessment", protect(patientHandler.GetAssessment, auth.ViewTriage, auth.ViewConsultant)).Methods("GET")
	r.Handle("/patients/{id}/clinical-query", protect(assistantHandler.ClinicalQuery, auth.ViewConsultant)).Methods("POST")
	r.Handle("/wards", protect(patientHandler.ListWards, auth.ViewTriage)).Methods("GET")

	// Orders
	r.Handle("/orders", protect(orderHandler.ListOrders, auth.ViewDashboard, auth.ViewConsultant)).Methods("GET")
	r.Handle("/orders", protect(orderHandler.PlaceOrder, auth.ViewConsultant)).Methods("POST")
	r.Handle("/orders/catalog", protect(orderHandler.GetCatalog, auth.ViewConsultant)).Methods("GET")

	// Consultation
	r.Handle("/consultations/{id}", protect(consultHandler.Open, auth.ViewConsultant)).Methods("GET")
	r.Handle("/consultations/{id}/recording", protect(consultHandler.Record, auth.ViewConsultant)).Methods("POST")
	r.Handle("/consultations/{id}/transcript", protect(consultHandler.Process, auth.ViewConsultant)).Methods("POST")
	r.Handle("/consultations/{id}/medications", protect(consultHandler.AddMedication, auth.ViewConsultant)).Methods("POST")
	r.Handle("/consultations/{id}/medications/{index}", protect(consultHandler.RemoveMedication, auth.ViewConsultant)).Methods("DELETE")
	r.Handle("/consultations/{id}/suggestions", protect(consultHandler.SmartSuggest, auth.ViewConsultant)).Methods("POST")
	r.Handle("/consultations/{id}/report", protect(consultHandler.Report, auth.ViewConsultant)).Methods("GET")
	r.Handle("/consultations/{id}/prescription/share", protect(consultHandler.SharePrescription, auth.ViewConsultant)).Methods("POST")
	r.Handle("/bmi", protect(consultHandler.CalculateBMI, auth.ViewConsultant)).Methods("POST")

	// Document analysis
	r.Handle("/analysis", protect(analysisHandler.Upload, auth.ViewAnalysis)).Methods("POST")
	r.Handle("/analysis", protect(analysisHandler.Current, auth.ViewAnalysis)).Methods("GET")
	r.Handle("/analysis/import", protect(analysisHandler.Import, auth.ViewAnalysis)).Methods("POST")

	// Assistants
	r.Handle("/assistant/conversation", protect(assistantHandler.Conversation, auth.ViewAssistant)).Methods("GET")
	r.Handle("/assistant/messages", protect(assistantHandler.Ask, auth.ViewAssistant)).Methods("POST")
	r.Handle("/voice/commands", protect(assistantHandler.VoiceCommand, auth.ViewVoice)).Methods("POST")

	// Code Blue
	r.Handle("/emergency/code-blue", protect(emergencyHandler.Status)).Methods("GET")
	r.Handle("/emergency/code-blue", protect(emergencyHandler.Activate, auth.ViewVoice)).Methods("POST")
	r.Handle("/emergency/code-blue", protect(emergencyHandler.Resolve, auth.ViewVoice)).Methods("DELETE")

	// Pharmacy
	r.Handle("/pharmacy/inventory", protect(operationsHandler.Inventory, auth.ViewPharmacy)).Methods("GET")
	r.Handle("/pharmacy/inventory/{id}/restock", protect(operationsHandler.Restock, auth.ViewPharmacy)).Methods("POST")

	// Billing
	r.Handle("/billing/invoices", protect(operationsHandler.Billing, auth.ViewBilling)).Methods("GET")
	r.Handle("/billing/invoices", protect(operationsHandler.CreateInvoice, auth.ViewBilling)).Methods("POST")
	r.Handle("/billing/drafts", protect(operationsHandler.SaveDraft, auth.ViewBilling)).Methods("POST")
	r.Handle("/billing/drafts/{id}", protect(operationsHandler.ResumeDraft, auth.ViewBilling)).Methods("GET")
	r.Handle("/billing/claims", protect(operationsHandler.Claims, auth.ViewBilling)).Methods("GET")
	r.Handle("/billing/claims/verify", protect(operationsHandler.AutoVerifyClaims, auth.ViewBilling)).Methods("POST")

	// Staff and cleaning
	r.Handle("/staff", protect(operationsHandler.Roster, auth.ViewStaff)).Methods("GET")
	r.Handle("/cleaning/tasks", protect(operationsHandler.Tasks, auth.ViewCleaner)).Methods("GET")
	r.Handle("/cleaning/tasks/{id}/toggle", protect(operationsHandler.ToggleTask, auth.ViewCleaner)).Methods("POST")

	return &App{Router: r, Sessions: sessions, Feed: feed, Hub: hub, Runner: runner}
}
