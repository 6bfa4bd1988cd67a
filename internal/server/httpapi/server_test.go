package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/common"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/logging"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/models"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/oauth"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/sessions"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/users"
)

type fakeOAuth struct {
	info *oauth.UserInfo
	err  error
}

func (f *fakeOAuth) AuthCodeURL(state string) string {
	return "https://accounts.example/consent?state=" + state
}

func (f *fakeOAuth) Exchange(ctx context.Context, code string) (*oauth.UserInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

type fakeIdentity struct {
	byGoogleID map[string]*models.User
	lastName   string
}

func (f *fakeIdentity) Resolve(ctx context.Context, googleID, displayName string) (*models.User, error) {
	f.lastName = displayName
	if u, ok := f.byGoogleID[googleID]; ok {
		u.LoginCount++
		return u, nil
	}
	u := &models.User{
		ID:         "uid-" + googleID,
		GoogleID:   googleID,
		Username:   displayName,
		Role:       models.RoleUser,
		LoginCount: 1,
	}
	f.byGoogleID[googleID] = u
	return u, nil
}

type fakeSessions struct {
	byToken map[string]*models.Session
	nextTok int
}

func (f *fakeSessions) Create(ctx context.Context, userID string) (*sessions.Established, error) {
	f.nextTok++
	token := fmt.Sprintf("tok-%d", f.nextTok)
	expires := time.Now().Add(15 * time.Minute)
	f.byToken[token] = &models.Session{
		TokenHash: token,
		UserID:    userID,
		CSRFToken: "csrf-" + token,
		ExpiresAt: expires,
	}
	return &sessions.Established{Token: token, CSRFToken: "csrf-" + token, ExpiresAt: expires}, nil
}

func (f *fakeSessions) Resolve(ctx context.Context, token string) (*models.Session, error) {
	sess, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrSessionExpired
	}
	return sess, nil
}

func (f *fakeSessions) Destroy(ctx context.Context, token string) error {
	delete(f.byToken, token)
	return nil
}

type fakeUsers struct {
	byID       map[string]*models.User
	byUsername map[string]*models.User
	passwords  map[string]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byID:       map[string]*models.User{},
		byUsername: map[string]*models.User{},
		passwords:  map[string]string{},
	}
}

func (f *fakeUsers) Register(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	if _, exists := f.byUsername[username]; exists {
		return nil, common.ErrConflict
	}
	if role == "" {
		role = models.RoleUser
	}
	u := &models.User{ID: "uid-" + username, Username: username, Role: role}
	f.byID[u.ID] = u
	f.byUsername[username] = u
	f.passwords[username] = password
	return u, nil
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (string, error) {
	u, ok := f.byUsername[username]
	if !ok {
		return "", common.ErrNotFound
	}
	if f.passwords[username] != password {
		return "", common.ErrUnauthorized
	}
	return "token-for-" + u.ID, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, userID string, in users.ProfileUpdate) error {
	if errs := users.ValidateProfile(in); len(errs) > 0 {
		return errs
	}
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.ScreenName = in.ScreenName
	u.Email = in.Email
	u.Bio = in.Bio
	return nil
}

func (f *fakeUsers) ProfileView(user *models.User) (*users.Profile, error) {
	return &users.Profile{
		Username:   user.Username,
		Role:       user.Role,
		ScreenName: user.ScreenName,
		Email:      user.Email,
		Bio:        user.Bio,
	}, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

type testEnv struct {
	srv      *httptest.Server
	client   *http.Client
	oauth    *fakeOAuth
	identity *fakeIdentity
	sessions *fakeSessions
	users    *fakeUsers
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		oauth:    &fakeOAuth{info: &oauth.UserInfo{Subject: "g-1", Name: "Alice"}},
		identity: &fakeIdentity{byGoogleID: map[string]*models.User{}},
		sessions: &fakeSessions{byToken: map[string]*models.Session{}},
		users:    newFakeUsers(),
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	server := NewServer(env.oauth, env.identity, env.sessions, env.users, logger)

	env.srv = httptest.NewServer(server.Routes())
	t.Cleanup(env.srv.Close)

	env.client = &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return env
}

// establishSession creates a session for the given user and returns its cookie.
func (e *testEnv) establishSession(t *testing.T, user *models.User) (*http.Cookie, string) {
	t.Helper()
	e.users.byID[user.ID] = user
	established, err := e.sessions.Create(context.Background(), user.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookieName, Value: established.Token}, established.CSRFToken
}

func (e *testEnv) get(t *testing.T, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := e.client.Post(e.srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func TestSecurityAndCacheHeaders(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "max-age=31536000; includeSubDomains; preload", resp.Header.Get("Strict-Transport-Security"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "public, max-age=300, stale-while-revalidate=360", resp.Header.Get("Cache-Control"))

	resp = env.get(t, "/product")
	assert.Equal(t, "public, max-age=300, stale-while-revalidate=360", resp.Header.Get("Cache-Control"))

	resp = env.get(t, "/api/user-profile")
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	body := decodeJSON(t, resp)
	assert.Equal(t, "Austin Lin", body["username"])
	assert.Equal(t, "825-754-7566", body["phone"])
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/auth/register", map[string]string{"username": "alice", "password": "s3cret"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User registered successfully!", decodeJSON(t, resp)["message"])

	// duplicate username surfaces as a 500, not a validation error
	resp = env.postJSON(t, "/api/auth/register", map[string]string{"username": "alice", "password": "other"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp = env.postJSON(t, "/api/auth/register", map[string]string{"username": "", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.postJSON(t, "/api/auth/login", map[string]string{"username": "alice", "password": "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, "Login successful!", body["message"])
	assert.NotEmpty(t, body["token"])

	resp = env.postJSON(t, "/api/auth/login", map[string]string{"username": "alice", "password": "wrong"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", decodeJSON(t, resp)["message"])

	resp = env.postJSON(t, "/api/auth/login", map[string]string{"username": "bob", "password": "x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User not found", decodeJSON(t, resp)["message"])
}

func TestGoogleSignInFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/auth/google")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	var stateCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == stateCookieName {
			stateCookie = c
		}
	}
	require.NotNil(t, stateCookie, "state cookie must be set")

	resp = env.get(t, "/auth/google/callback?state="+state+"&code=c1", stateCookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	var sessCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			sessCookie = c
		}
	}
	require.NotNil(t, sessCookie, "session cookie must be set")

	created := env.identity.byGoogleID["g-1"]
	require.NotNil(t, created)
	assert.Equal(t, "Alice", env.identity.lastName)
	assert.Equal(t, int64(1), created.LoginCount)
	assert.Equal(t, models.RoleUser, created.Role)

	// the fresh session renders the dashboard
	env.users.byID[created.ID] = created
	resp = env.get(t, "/dashboard", sessCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Alice")
}

func TestGoogleCallback_Failures(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing state cookie", func(t *testing.T) {
		resp := env.get(t, "/auth/google/callback?state=abc&code=c1")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/error", resp.Header.Get("Location"))
	})

	t.Run("state mismatch", func(t *testing.T) {
		cookie := &http.Cookie{Name: stateCookieName, Value: "expected"}
		resp := env.get(t, "/auth/google/callback?state=other&code=c1", cookie)
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/error", resp.Header.Get("Location"))
	})

	t.Run("exchange failure", func(t *testing.T) {
		env.oauth.err = fmt.Errorf("upstream says no")
		defer func() { env.oauth.err = nil }()
		cookie := &http.Cookie{Name: stateCookieName, Value: "st"}
		resp := env.get(t, "/auth/google/callback?state=st&code=c1", cookie)
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/error", resp.Header.Get("Location"))
	})
}

func TestCallbackRedirectsSuperUser(t *testing.T) {
	env := newTestEnv(t)

	env.identity.byGoogleID["g-1"] = &models.User{
		ID: "uid-g-1", GoogleID: "g-1", Username: "Alice",
		Role: models.RoleSuperUser, LoginCount: 9,
	}

	cookie := &http.Cookie{Name: stateCookieName, Value: "st"}
	resp := env.get(t, "/auth/google/callback?state=st&code=c1", cookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/super-dashboard", resp.Header.Get("Location"))
}

func TestAuthorizationGates(t *testing.T) {
	env := newTestEnv(t)

	regular := &models.User{ID: "u1", Username: "bob", Role: models.RoleUser}
	super := &models.User{ID: "u2", Username: "root", Role: models.RoleSuperUser}
	regularCookie, _ := env.establishSession(t, regular)
	superCookie, _ := env.establishSession(t, super)

	tests := []struct {
		name       string
		path       string
		cookie     *http.Cookie
		wantStatus int
		wantLoc    string
	}{
		{name: "anonymous dashboard", path: "/dashboard", wantStatus: http.StatusFound, wantLoc: "/error"},
		{name: "user dashboard", path: "/dashboard", cookie: regularCookie, wantStatus: http.StatusOK},
		{name: "anonymous super-dashboard", path: "/super-dashboard", wantStatus: http.StatusFound, wantLoc: "/error"},
		{name: "user super-dashboard", path: "/super-dashboard", cookie: regularCookie, wantStatus: http.StatusFound, wantLoc: "/error"},
		{name: "superuser super-dashboard", path: "/super-dashboard", cookie: superCookie, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.cookie != nil {
				resp = env.get(t, tt.path, tt.cookie)
			} else {
				resp = env.get(t, tt.path)
			}
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, resp.Header.Get("Location"))
			}
		})
	}
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)

	super := &models.User{ID: "u2", Username: "root", Role: models.RoleSuperUser}
	superCookie, csrf := env.establishSession(t, super)

	t.Run("success", func(t *testing.T) {
		form := url.Values{
			"_csrf":      {csrf},
			"screenName": {"abc123"},
			"email":      {"root@example.com"},
			"bio":        {"hello"},
		}
		resp := env.postForm(t, "/update-profile", form, superCookie)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "abc123", super.ScreenName)
	})

	t.Run("missing csrf", func(t *testing.T) {
		form := url.Values{"screenName": {"abc123"}, "email": {"root@example.com"}}
		resp := env.postForm(t, "/update-profile", form, superCookie)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("validation failure leaves profile untouched", func(t *testing.T) {
		form := url.Values{
			"_csrf":      {csrf},
			"screenName": {"ab"},
			"email":      {"root@example.com"},
		}
		resp := env.postForm(t, "/update-profile", form, superCookie)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeJSON(t, resp)
		require.Contains(t, body, "errors")
		assert.Equal(t, "abc123", super.ScreenName)
	})

	t.Run("regular user redirected", func(t *testing.T) {
		regular := &models.User{ID: "u1", Username: "bob", Role: models.RoleUser}
		regularCookie, regularCSRF := env.establishSession(t, regular)
		form := url.Values{"_csrf": {regularCSRF}, "screenName": {"abc123"}, "email": {"b@e.com"}}
		resp := env.postForm(t, "/update-profile", form, regularCookie)
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/error", resp.Header.Get("Location"))
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	user := &models.User{ID: "u1", Username: "bob", Role: models.RoleUser}
	cookie, _ := env.establishSession(t, user)

	resp := env.get(t, "/logout", cookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Empty(t, env.sessions.byToken)

	// the session no longer grants access
	resp = env.get(t, "/dashboard", cookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/error", resp.Header.Get("Location"))
}

func TestGoalStubs(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/goals")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Showing wellness goals", string(body))

	resp = env.get(t, "/api/goals/7")
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "Showing steps for goal No.7", string(body))

	req, err := http.NewRequest(http.MethodPut, env.srv.URL+"/api/goals/7/finish", nil)
	require.NoError(t, err)
	putResp, err := env.client.Do(req)
	require.NoError(t, err)
	defer putResp.Body.Close()
	body, _ = io.ReadAll(putResp.Body)
	assert.Equal(t, "Goal No.7 finished, awesome!", string(body))

	createResp, err := env.client.Post(env.srv.URL+"/api/goals", "application/json",
		strings.NewReader(`{"title":"meditate"}`))
	require.NoError(t, err)
	defer createResp.Body.Close()
	body, _ = io.ReadAll(createResp.Body)
	assert.Equal(t, `Added new goal: {"title":"meditate"}`, string(body))

	emptyResp, err := env.client.Post(env.srv.URL+"/api/goals", "application/json", nil)
	require.NoError(t, err)
	defer emptyResp.Body.Close()
	body, _ = io.ReadAll(emptyResp.Body)
	assert.Equal(t, "Added new goal: {}", string(body))
}
