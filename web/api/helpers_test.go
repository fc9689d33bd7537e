package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"itlalogin/config"
	"itlalogin/models"
	"itlalogin/web"
)

const testJWTSecret = "test-secret-key-for-jwt-testing-32chars"

// testServer is a live auth service backed by an in-memory database.
type testServer struct {
	baseURL  string
	settings config.Settings
	db       *models.DB
	client   *http.Client
}

// newTestServer starts the server on addr in a goroutine.
// rweb has no shutdown hook, so every test server needs its own port.
func newTestServer(t *testing.T, addr string) *testServer {
	t.Helper()

	db, err := models.OpenDB("")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	tokens, err := models.NewTokenIssuer(testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to create token issuer: %v", err)
	}

	settings := config.Default()
	settings.Server.Address = addr
	settings.APIBaseURL = "http://" + addr
	settings.Server.LoginRatePerMinute = 0

	srv, err := web.NewServer(settings, db, tokens)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	go func() {
		_ = web.Run(srv, settings, db)
	}()

	ts := &testServer{
		baseURL:  settings.APIBaseURL,
		settings: settings,
		db:       db,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
	ts.waitReady(t)
	return ts
}

func (ts *testServer) waitReady(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := ts.client.Get(ts.baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("server at %s never became ready", ts.baseURL)
}

func (ts *testServer) cleanup() {
	ts.db.Close()
}

// request sends a JSON request and decodes the JSON response.
func (ts *testServer) request(method, path string, body any, headers ...string) (int, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, _ := json.Marshal(b)
			reader = bytes.NewBuffer(data)
		}
	}

	req, err := http.NewRequest(method, ts.baseURL+path, reader)
	if err != nil {
		return 0, nil
	}
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := ts.client.Do(req)
	if err != nil {
		return 0, nil
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

// get fetches a page and returns its status, headers and body.
func (ts *testServer) get(t *testing.T, path string) (int, http.Header, string) {
	t.Helper()
	resp, err := ts.client.Get(ts.baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, resp.Header, string(body)
}
