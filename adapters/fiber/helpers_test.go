package fiber

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/quill"
	"github.com/lborres/quill/core"
	"github.com/lborres/quill/pkg/crypto"
	"github.com/lborres/quill/services"
)

const testSecret = "fiber-adapter-test-secret-0123456789"

type testServer struct {
	app     *fiber.App
	q       *core.Quill
	storage *services.FakeStorageProvider
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// the app-level handler must agree with the adapter on production mode
	settings := &Adapter{}
	for _, opt := range opts {
		opt(settings)
	}

	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(logger, settings.production)})
	adapter, err := New(app, append([]Option{WithLogger(logger)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	storage := services.NewFakeStorageProvider()
	q, err := quill.New(quill.Config{
		Secret:         testSecret,
		Database:       storage,
		HTTP:           adapter,
		PasswordHasher: &crypto.Argon2{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
	})
	if err != nil {
		t.Fatalf("quill.New() error = %v", err)
	}

	return &testServer{app: app, q: q, storage: storage}
}

// signUp creates a user directly through the service layer.
func (s *testServer) signUp(t *testing.T, email, password string, role core.Role) *core.User {
	t.Helper()

	result, err := s.q.Auth.SignUp(context.Background(), core.SignUpInput{Name: "Test User", Email: email, Password: password})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if role != core.RoleUser {
		result.User.Role = role
		if err := s.storage.UpdateUser(context.Background(), result.User); err != nil {
			t.Fatalf("UpdateUser() error = %v", err)
		}
	}
	return result.User
}

type request struct {
	method      string
	path        string
	body        string
	contentType string
	headers     map[string]string
	cookies     []*http.Cookie
}

func (s *testServer) do(t *testing.T, r request) *http.Response {
	t.Helper()

	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != "" {
		contentType := r.contentType
		if contentType == "" {
			contentType = fiber.MIMEApplicationJSON
		}
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	for _, c := range r.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test(%s %s) error = %v", r.method, r.path, err)
	}
	return resp
}

// fetchCSRF calls the token endpoint and returns the token plus the cookies
// the caller should send next (anon_session, csrf_token and any passed in).
func (s *testServer) fetchCSRF(t *testing.T, cookies []*http.Cookie, headers map[string]string) (string, []*http.Cookie) {
	t.Helper()

	resp := s.do(t, request{method: http.MethodGet, path: "/api/csrf-token", cookies: cookies, headers: headers})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/csrf-token status = %d", resp.StatusCode)
	}
	var body struct {
		Success   bool   `json:"success"`
		CSRFToken string `json:"csrfToken"`
	}
	decode(t, resp, &body)
	return body.CSRFToken, mergeCookies(cookies, resp.Cookies())
}

// login fetches a CSRF token, logs in and returns the session cookies and the
// CSRF token bound to the user.
func (s *testServer) login(t *testing.T, email, password string) (string, []*http.Cookie) {
	t.Helper()

	token, cookies := s.fetchCSRF(t, nil, nil)
	resp := s.do(t, request{
		method:  http.MethodPost,
		path:    "/api/auth/login",
		body:    `{"email":"` + email + `","password":"` + password + `"}`,
		headers: map[string]string{CSRFHeader: token},
		cookies: cookies,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /api/auth/login status = %d", resp.StatusCode)
	}
	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	decode(t, resp, &body)
	return body.CSRFToken, mergeCookies(cookies, resp.Cookies())
}

func mergeCookies(existing, set []*http.Cookie) []*http.Cookie {
	byName := make(map[string]*http.Cookie)
	var order []string
	for _, c := range append(append([]*http.Cookie{}, existing...), set...) {
		if _, seen := byName[c.Name]; !seen {
			order = append(order, c.Name)
		}
		byName[c.Name] = c
	}
	merged := make([]*http.Cookie, 0, len(order))
	for _, name := range order {
		if byName[name].Value != "" {
			merged = append(merged, byName[name])
		}
	}
	return merged
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func readEnvelope(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var env errorResponse
	decode(t, resp, &env)
	return env
}
