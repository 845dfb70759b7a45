package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mediaxsd-commits/stratcomjobsapp/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Recording test server
// ---------------------------------------------------------------------------

// recorded captures the requests a test server received.
type recorded struct {
	count  int
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

// newTestClient spins up a server that answers every request with the given
// status and body, and returns a client pointed at it plus the recorder.
func newTestClient(t *testing.T, status int, respBody string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.count++
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.header = r.Header.Clone()
		rec.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)

	return New(Options{BaseURL: srv.URL, Logger: zerolog.Nop()}), rec
}

// ---------------------------------------------------------------------------
// Wire contract: one call, documented method/path/body
// ---------------------------------------------------------------------------

func TestTypedMethods_WireContract(t *testing.T) {
	cases := []struct {
		name       string
		respBody   string
		invoke     func(c *Client) error
		wantMethod string
		wantPath   string
		wantBody   string // exact JSON, "" means empty body
	}{
		{
			name:     "Login",
			respBody: `{"token":"tkn","user":{"id":"user-1"}}`,
			invoke: func(c *Client) error {
				_, err := c.Login(context.Background(), LoginInput{Email: "a@b.co", Password: "secret"})
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/users/login",
			wantBody:   `{"email":"a@b.co","password":"secret"}`,
		},
		{
			name:     "Register",
			respBody: `{"token":"tkn","user":{"id":"user-1"}}`,
			invoke: func(c *Client) error {
				_, err := c.Register(context.Background(), RegisterInput{Name: "Ana", Email: "a@b.co", Password: "longenough"})
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/users/register",
			wantBody:   `{"name":"Ana","email":"a@b.co","password":"longenough"}`,
		},
		{
			name:     "Me",
			respBody: `{"id":"user-1"}`,
			invoke: func(c *Client) error {
				_, err := c.Me(context.Background())
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/users/me",
		},
		{
			name:     "ListUsers",
			respBody: `[]`,
			invoke: func(c *Client) error {
				_, err := c.ListUsers(context.Background())
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/users",
		},
		{
			name:     "UpdateUser",
			respBody: `{"id":"user-2"}`,
			invoke: func(c *Client) error {
				_, err := c.UpdateUser(context.Background(), "user-2", UpdateUserInput{Name: "Bo", Email: "bo@b.co", Role: "operator"})
				return err
			},
			wantMethod: http.MethodPut,
			wantPath:   "/users/user-2",
			wantBody:   `{"name":"Bo","email":"bo@b.co","role":"operator"}`,
		},
		{
			name: "DeleteUser",
			invoke: func(c *Client) error {
				return c.DeleteUser(context.Background(), "user-2")
			},
			wantMethod: http.MethodDelete,
			wantPath:   "/users/user-2",
		},
		{
			name:     "ListJobs",
			respBody: `[]`,
			invoke: func(c *Client) error {
				_, err := c.ListJobs(context.Background(), JobFilter{})
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/jobs",
		},
		{
			name:     "GetJob",
			respBody: `{"id":"job-1"}`,
			invoke: func(c *Client) error {
				_, err := c.GetJob(context.Background(), "job-1")
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/jobs/job-1",
		},
		{
			name:     "CreateJob",
			respBody: `{"id":"job-1"}`,
			invoke: func(c *Client) error {
				_, err := c.CreateJob(context.Background(), CreateJobInput{Title: "Map update", Description: "Refresh sector maps", Fee: 250})
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/jobs",
			wantBody:   `{"title":"Map update","description":"Refresh sector maps","fee":250}`,
		},
		{
			name:     "UpdateJob",
			respBody: `{"id":"job-1"}`,
			invoke: func(c *Client) error {
				_, err := c.UpdateJob(context.Background(), "job-1", UpdateJobInput{Title: "Map update", Description: "v2", Fee: 300, Priority: domain.PriorityHigh})
				return err
			},
			wantMethod: http.MethodPut,
			wantPath:   "/jobs/job-1",
			wantBody:   `{"title":"Map update","description":"v2","fee":300,"priority":"high"}`,
		},
		{
			name: "DeleteJob",
			invoke: func(c *Client) error {
				return c.DeleteJob(context.Background(), "job-1")
			},
			wantMethod: http.MethodDelete,
			wantPath:   "/jobs/job-1",
		},
		{
			name:     "ClaimJob",
			respBody: `{"id":"job-1","status":"claimed"}`,
			invoke: func(c *Client) error {
				_, err := c.ClaimJob(context.Background(), "job-1")
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/jobs/job-1/claim",
		},
		{
			name:     "UpdateJobStatus",
			respBody: `{"id":"job-1","status":"completed"}`,
			invoke: func(c *Client) error {
				_, err := c.UpdateJobStatus(context.Background(), "job-1", domain.StatusCompleted)
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/jobs/job-1/status",
			wantBody:   `{"status":"completed"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestClient(t, http.StatusOK, tc.respBody)
			if err := tc.invoke(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.count != 1 {
				t.Fatalf("expected exactly 1 request, got %d", rec.count)
			}
			if rec.method != tc.wantMethod {
				t.Errorf("method = %s, want %s", rec.method, tc.wantMethod)
			}
			if rec.path != tc.wantPath {
				t.Errorf("path = %s, want %s", rec.path, tc.wantPath)
			}
			if got := strings.TrimSpace(string(rec.body)); got != tc.wantBody {
				t.Errorf("body = %s, want %s", got, tc.wantBody)
			}
			if tc.wantBody != "" && rec.header.Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %s, want application/json", rec.header.Get("Content-Type"))
			}
		})
	}
}

func TestListJobs_FilterQuery(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `[]`)
	_, err := c.ListJobs(context.Background(), JobFilter{Status: domain.StatusOpen, Priority: domain.PriorityUrgent, Search: "map"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.query != "priority=urgent&search=map&status=open" {
		t.Errorf("query = %s", rec.query)
	}
}

// ---------------------------------------------------------------------------
// Bearer token attachment
// ---------------------------------------------------------------------------

func TestBearerToken_AttachedWhenStored(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `[]`)
	if err := c.Tokens().Save("tkn-123"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListJobs(context.Background(), JobFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.header.Get("Authorization"); got != "Bearer tkn-123" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer tkn-123")
	}
}

func TestBearerToken_OmittedWhenAbsent(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `[]`)
	if _, err := c.ListJobs(context.Background(), JobFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.header.Get("Authorization"); got != "" {
		t.Errorf("Authorization unexpectedly set: %q", got)
	}
}

// ---------------------------------------------------------------------------
// Error normalisation
// ---------------------------------------------------------------------------

func TestError_UsesServerEnvelope(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNotFound, `{"error":"job not found"}`)
	_, err := c.GetJob(context.Background(), "nope")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "job not found" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestError_NonJSONBodyStillHasMessage(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadGateway, `<html>bad gateway</html>`)
	_, err := c.GetJob(context.Background(), "job-1")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message == "" {
		t.Fatal("error message must not be empty")
	}
	if !strings.Contains(apiErr.Message, "502") {
		t.Errorf("message should carry the status: %q", apiErr.Message)
	}
}

func TestError_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close() // force connection refused

	c := New(Options{BaseURL: base, Logger: zerolog.Nop()})
	_, err := c.GetJob(context.Background(), "job-1")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != 0 {
		t.Errorf("transport failures carry status 0, got %d", apiErr.StatusCode)
	}
	if apiErr.Message == "" {
		t.Error("error message must not be empty")
	}
}

// ---------------------------------------------------------------------------
// Token lifecycle
// ---------------------------------------------------------------------------

func TestLogin_StoresTokenBeforeReturning(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"token":"fresh-token","user":{"id":"user-1","email":"a@b.co"}}`)
	user, err := c.Login(context.Background(), LoginInput{Email: "a@b.co", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %s", user.ID)
	}
	token, _ := c.Tokens().Token()
	if token != "fresh-token" {
		t.Errorf("stored token = %q, want %q", token, "fresh-token")
	}
}

func TestRegister_StoresTokenBeforeReturning(t *testing.T) {
	c, _ := newTestClient(t, http.StatusCreated, `{"token":"reg-token","user":{"id":"user-1"}}`)
	_, err := c.Register(context.Background(), RegisterInput{Name: "Ana", Email: "a@b.co", Password: "longenough"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, _ := c.Tokens().Token()
	if token != "reg-token" {
		t.Errorf("stored token = %q, want %q", token, "reg-token")
	}
}

func TestLogin_FailureLeavesNoToken(t *testing.T) {
	c, _ := newTestClient(t, http.StatusUnauthorized, `{"error":"invalid credentials"}`)
	if _, err := c.Login(context.Background(), LoginInput{Email: "a@b.co", Password: "wrong"}); err == nil {
		t.Fatal("expected an error")
	}
	token, _ := c.Tokens().Token()
	if token != "" {
		t.Errorf("token should stay empty after failed login, got %q", token)
	}
}

func TestLogout_ClearsToken(t *testing.T) {
	c := New(Options{BaseURL: "http://unused", Logger: zerolog.Nop()})
	_ = c.Tokens().Save("stale")
	if err := c.Logout(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, _ := c.Tokens().Token()
	if token != "" {
		t.Errorf("token not cleared: %q", token)
	}
}

// ---------------------------------------------------------------------------
// Client-side validation short-circuits
// ---------------------------------------------------------------------------

func TestCreateJob_InvalidInputSendsNothing(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{}`)
	_, err := c.CreateJob(context.Background(), CreateJobInput{Description: "missing title", Fee: 10})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "title is required") {
		t.Errorf("unexpected message: %v", err)
	}
	if rec.count != 0 {
		t.Errorf("expected no request, got %d", rec.count)
	}
}

func TestLogin_InvalidEmailSendsNothing(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{}`)
	if _, err := c.Login(context.Background(), LoginInput{Email: "not-an-email", Password: "x"}); err == nil {
		t.Fatal("expected a validation error")
	}
	if rec.count != 0 {
		t.Errorf("expected no request, got %d", rec.count)
	}
}
