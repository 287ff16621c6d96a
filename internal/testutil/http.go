package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// HTTPTestClient calls a test server with JSON bodies. Token may be empty
// for unauthenticated calls such as login.
type HTTPTestClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPTestClient(baseURL, token string) *HTTPTestClient {
	return &HTTPTestClient{BaseURL: baseURL, Token: token, Client: &http.Client{}}
}

// WithToken returns a copy of the client that sends token.
func (c *HTTPTestClient) WithToken(token string) *HTTPTestClient {
	return &HTTPTestClient{BaseURL: c.BaseURL, Token: token, Client: c.Client}
}

func (c *HTTPTestClient) GET(t *testing.T, path string) *http.Response {
	t.Helper()
	return c.send(t, http.MethodGet, path, nil, false)
}

func (c *HTTPTestClient) DELETE(t *testing.T, path string) *http.Response {
	t.Helper()
	return c.send(t, http.MethodDelete, path, nil, false)
}

// POST encodes body as JSON; a nil body is sent as the JSON literal null.
func (c *HTTPTestClient) POST(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	return c.send(t, http.MethodPost, path, body, true)
}

func (c *HTTPTestClient) PUT(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	return c.send(t, http.MethodPut, path, body, true)
}

func (c *HTTPTestClient) PATCH(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	return c.send(t, http.MethodPatch, path, body, true)
}

func (c *HTTPTestClient) send(t *testing.T, method, path string, body interface{}, withBody bool) *http.Response {
	t.Helper()

	var reader io.Reader
	if withBody {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "marshal request body")
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	require.NoError(t, err)
	if withBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	require.NoError(t, err, "%s %s", method, path)
	return resp
}

// DecodeJSON decodes and closes the response body.
func DecodeJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body := ReadBody(t, resp)
	require.NoError(t, json.Unmarshal([]byte(body), target), "decode response: %s", body)
}

// ReadBody returns the response body and closes it.
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "read response body")
	return string(body)
}

// AssertStatusCode reports a mismatch together with the body. On mismatch
// the body is consumed.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d: %s", expected, resp.StatusCode, ReadBody(t, resp))
	}
}
