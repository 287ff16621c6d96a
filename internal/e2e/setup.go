package e2e

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MedFlow-Health/operations-service/internal/auth"
	httpserver "github.com/MedFlow-Health/operations-service/internal/http"
	"github.com/MedFlow-Health/operations-service/internal/session"
	"github.com/MedFlow-Health/operations-service/internal/testutil"
)

// TestServer is the whole service behind an httptest server, with an
// in-memory broker standing in for RabbitMQ.
type TestServer struct {
	Server        *httptest.Server
	App           *httpserver.App
	MockPublisher *testutil.MockPublisher
}

// SetupE2ETest wires every registry the way cmd/api does, minus the
// optional infrastructure. The simulation is off so state stays stable.
func SetupE2ETest(t *testing.T) *TestServer {
	t.Helper()
	return setupServer(t, 0)
}

// SetupE2ETestWithSimulation is SetupE2ETest with the simulation runner
// ticking every interval while a session is open.
func SetupE2ETestWithSimulation(t *testing.T, interval time.Duration) *TestServer {
	t.Helper()
	return setupServer(t, interval)
}

func setupServer(t *testing.T, simulationInterval time.Duration) *TestServer {
	t.Helper()

	perms, err := auth.LoadPermissions("../../permissions.yml")
	if err != nil {
		t.Fatalf("Failed to load permissions: %v", err)
	}

	directory, err := auth.NewDirectory(auth.DefaultCredentials(), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to build credential table: %v", err)
	}

	mockPublisher := testutil.NewMockPublisher()
	app := httpserver.SetupRouter(t.Context(), httpserver.Deps{
		Verifier:    auth.NewVerifier(auth.NewConfig(testutil.TestSecret, 0), nil),
		Directory:   directory,
		Permissions: perms,
		Publisher:   mockPublisher,
		Log:         testutil.DiscardLogger(),

		SimulationEnabled:  simulationInterval > 0,
		SimulationInterval: simulationInterval,
	})

	ts := &TestServer{
		Server:        httptest.NewServer(httpserver.CORSMiddleware([]string{"http://localhost:3000"})(app.Router)),
		App:           app,
		MockPublisher: mockPublisher,
	}
	t.Cleanup(ts.Cleanup)
	return ts
}

// Cleanup stops the server and ends every session.
func (ts *TestServer) Cleanup() {
	ts.Server.Close()
	ts.App.Shutdown()
}

// Client returns an unauthenticated client for the server.
func (ts *TestServer) Client() *testutil.HTTPTestClient {
	return testutil.NewHTTPTestClient(ts.Server.URL, "")
}

// Login signs in with a demo account and returns a client carrying the
// session token.
func (ts *TestServer) Login(t *testing.T, email, password string, role auth.Role) *testutil.HTTPTestClient {
	t.Helper()

	resp := ts.Client().POST(t, "/auth/login", session.LoginRequest{Email: email, Password: password, Role: role})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Login as %s failed: %d %s", email, resp.StatusCode, testutil.ReadBody(t, resp))
	}

	var body session.LoginResponse
	testutil.DecodeJSON(t, resp, &body)
	if body.Token == "" {
		t.Fatalf("Login as %s returned no token", email)
	}
	return testutil.NewHTTPTestClient(ts.Server.URL, body.Token)
}
