package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	credentialsrepofake "github.com/jrsteele09/go-auth-client/credentials/repofake"
	"github.com/jrsteele09/go-auth-client/internal/authserverfake"
	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/navigation"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const (
	testUsername = "alice"
	testPassword = "password123"
	testUserInfo = `{"name":"Alice"}`
)

type testConfig struct {
	baseURL string
}

func (c testConfig) GetBaseURL() string { return c.baseURL }
func (testConfig) GetLoginPath() string { return "/login" }
func (testConfig) GetTokenPath() string { return "/auth/login" }
func (testConfig) GetRefreshPath() string { return "/auth/refresh" }
func (testConfig) GetUserInfoPath() string { return "/auth/me" }
func (testConfig) GetHTTPTimeout() time.Duration { return 5 * time.Second }
func (testConfig) GetProtectedPathMarkers() []string { return []string{"/api/", "/auth/"} }
func (testConfig) GetLogoutOnAnyUnauthorized() bool { return true }

// testFixture holds a manager wired to an in-memory store and a recording navigator
type testFixture struct {
	store     *credentialsrepofake.FakeCredentialStore
	navigator *navigation.Recorder
	manager   *session.Manager
}

func setupTestFixture(t *testing.T, baseURL string) *testFixture {
	t.Helper()
	store := credentialsrepofake.NewFakeCredentialStore()
	navigator := &navigation.Recorder{}
	return &testFixture{
		store:     store,
		navigator: navigator,
		manager:   session.New(nil, store, navigator, testConfig{baseURL: baseURL}),
	}
}

func setupFakeService(t *testing.T) *authserverfake.Server {
	t.Helper()
	s := authserverfake.Start(authserverfake.User{
		Username: testUsername,
		Password: testPassword,
		Email:    "alice@example.com",
		FullName: "Alice Liddell",
		Groups:   []string{"users"},
	})
	t.Cleanup(s.Close)
	return s
}

func (f *testFixture) seed(t *testing.T, b credentials.Bundle) {
	t.Helper()
	require.NoError(t, f.store.Save(context.Background(), b))
}

func (f *testFixture) bundle(t *testing.T) credentials.Bundle {
	t.Helper()
	b, err := f.store.Load(context.Background())
	require.NoError(t, err)
	return b
}

func TestManager_RefreshWithoutRefreshToken(t *testing.T) {
	service := setupFakeService(t)
	f := setupTestFixture(t, service.URL)
	f.seed(t, credentials.Bundle{AccessToken: "A1", UserInfo: testUserInfo})

	token, err := f.manager.Refresh(context.Background())

	require.Empty(t, token)
	require.True(t, errors.Is(err, errors.ErrNoRefreshToken))
	require.True(t, f.bundle(t).IsEmpty())
	require.Equal(t, []string{"/login"}, f.navigator.Paths())
	require.Zero(t, service.Calls(authserverfake.RouteAuthRefresh))
}

func TestManager_RefreshSuccess(t *testing.T) {
	var gotBody map[string]string
	var gotContentType, gotAuthorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/refresh", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		gotAuthorization = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"A2","refresh_token":"R2"}`))
	}))
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	f.seed(t, credentials.Bundle{AccessToken: "A1", RefreshToken: "R1", UserInfo: testUserInfo})

	token, err := f.manager.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, "A2", token)

	require.Equal(t, credentials.Bundle{AccessToken: "A2", RefreshToken: "R2", UserInfo: testUserInfo}, f.bundle(t))
	require.Equal(t, map[string]string{"refresh_token": "R1"}, gotBody)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "Bearer A1", gotAuthorization)
	require.Empty(t, f.navigator.Paths())
}

func TestManager_RefreshFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"detail":"boom"}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"detail":"Invalid refresh token"}`},
		{name: "malformed body", status: http.StatusOK, body: `{"access_token":`},
		{name: "missing refresh token", status: http.StatusOK, body: `{"access_token":"A2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			f := setupTestFixture(t, server.URL)
			f.seed(t, credentials.Bundle{AccessToken: "A1", RefreshToken: "R1", UserInfo: testUserInfo})

			token, err := f.manager.Refresh(context.Background())

			require.Empty(t, token)
			require.True(t, errors.Is(err, errors.ErrRefreshFailed))
			require.True(t, f.bundle(t).IsEmpty())
			require.Equal(t, "/login", f.navigator.Last())
		})
	}

	t.Run("status is reported", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		f := setupTestFixture(t, server.URL)
		f.seed(t, credentials.Bundle{RefreshToken: "R1"})

		_, err := f.manager.Refresh(context.Background())
		var statusErr *errors.StatusError
		require.True(t, errors.As(err, &statusErr))
		require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
		require.Equal(t, "unavailable", statusErr.Body)
	})
}

func TestManager_RefreshNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	f := setupTestFixture(t, url)
	f.seed(t, credentials.Bundle{AccessToken: "A1", RefreshToken: "R1"})

	token, err := f.manager.Refresh(context.Background())
	require.Empty(t, token)
	require.True(t, errors.Is(err, errors.ErrRefreshFailed))
	require.True(t, f.bundle(t).IsEmpty())
	require.Equal(t, []string{"/login"}, f.navigator.Paths())
}

func TestManager_RefreshAgainstService(t *testing.T) {
	service := setupFakeService(t)
	f := setupTestFixture(t, service.URL)
	ctx := context.Background()

	_, err := f.manager.Login(ctx, testUsername, testPassword)
	require.NoError(t, err)
	before := f.bundle(t)

	service.ExpireAccessTokens()
	token, err := f.manager.Refresh(ctx)
	require.NoError(t, err)
	require.NotEqual(t, before.AccessToken, token)

	after := f.bundle(t)
	require.Equal(t, token, after.AccessToken)
	require.NotEqual(t, before.RefreshToken, after.RefreshToken)
	require.Equal(t, before.UserInfo, after.UserInfo)
	require.Equal(t, testUsername, after.Subject())

	resp, err := f.manager.Client().Get(f.manager.URL(authserverfake.RouteAPIItems))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Bearer "+token, service.LastAuthorization(authserverfake.RouteAPIItems))
}

func TestManager_ConcurrentRefreshesAreIndependent(t *testing.T) {
	service := setupFakeService(t)
	f := setupTestFixture(t, service.URL)
	ctx := context.Background()

	_, err := f.manager.Login(ctx, testUsername, testPassword)
	require.NoError(t, err)

	const callers = 5
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			_, err := f.manager.Refresh(ctx)
			return err
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, callers, service.Calls(authserverfake.RouteAuthRefresh))
	require.True(t, f.bundle(t).IsAuthenticated())
	require.Empty(t, f.navigator.Paths())
}

func TestManager_UnauthorizedResponseEndsSession(t *testing.T) {
	service := setupFakeService(t)
	f := setupTestFixture(t, service.URL)
	ctx := context.Background()

	_, err := f.manager.Login(ctx, testUsername, testPassword)
	require.NoError(t, err)

	service.ExpireAccessTokens()
	resp, err := f.manager.Client().Get(f.manager.URL(authserverfake.RouteAPIItems))
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.True(t, f.bundle(t).IsEmpty())
	require.Equal(t, []string{"/login"}, f.navigator.Paths())
}

func TestManager_Logout(t *testing.T) {
	f := setupTestFixture(t, "http://localhost:8000")
	f.seed(t, credentials.Bundle{AccessToken: "A1", RefreshToken: "R1", UserInfo: testUserInfo})

	f.manager.Logout(context.Background())

	require.True(t, f.bundle(t).IsEmpty())
	require.Equal(t, []string{"/login"}, f.navigator.Paths())

	t.Run("with nothing stored", func(t *testing.T) {
		f.manager.Logout(context.Background())
		require.Equal(t, []string{"/login", "/login"}, f.navigator.Paths())
	})
}

func TestManager_CurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("stored record", func(t *testing.T) {
		f := setupTestFixture(t, "http://localhost:8000")
		f.seed(t, credentials.Bundle{UserInfo: testUserInfo})

		info, err := f.manager.CurrentUser(ctx)
		require.NoError(t, err)
		require.Equal(t, credentials.UserInfo{"name": "Alice"}, info)
	})

	t.Run("nothing stored", func(t *testing.T) {
		f := setupTestFixture(t, "http://localhost:8000")

		info, err := f.manager.CurrentUser(ctx)
		require.NoError(t, err)
		require.Nil(t, info)
	})

	t.Run("stored null", func(t *testing.T) {
		f := setupTestFixture(t, "http://localhost:8000")
		f.seed(t, credentials.Bundle{UserInfo: "null"})

		info, err := f.manager.CurrentUser(ctx)
		require.NoError(t, err)
		require.Nil(t, info)
	})

	t.Run("malformed record", func(t *testing.T) {
		f := setupTestFixture(t, "http://localhost:8000")
		f.seed(t, credentials.Bundle{UserInfo: "{not json"})

		info, err := f.manager.CurrentUser(ctx)
		require.Nil(t, info)
		require.True(t, errors.Is(err, errors.ErrMalformedUserInfo))
		require.Empty(t, f.navigator.Paths())
	})
}

func TestManager_Login(t *testing.T) {
	service := setupFakeService(t)
	ctx := context.Background()

	t.Run("stores all three keys", func(t *testing.T) {
		f := setupTestFixture(t, service.URL)

		info, err := f.manager.Login(ctx, testUsername, testPassword)
		require.NoError(t, err)
		require.Equal(t, testUsername, info.Username())
		require.Equal(t, "Alice Liddell", info.DisplayName())
		require.Equal(t, []string{"users"}, info.Groups())
		require.True(t, info.IsActive())

		b := f.bundle(t)
		require.NotEmpty(t, b.AccessToken)
		require.NotEmpty(t, b.RefreshToken)
		require.Equal(t, testUsername, b.Subject())

		stored, err := f.manager.CurrentUser(ctx)
		require.NoError(t, err)
		require.Equal(t, info, stored)
		require.Empty(t, f.navigator.Paths())
	})

	t.Run("wrong password", func(t *testing.T) {
		f := setupTestFixture(t, service.URL)
		f.seed(t, credentials.Bundle{AccessToken: "A1", RefreshToken: "R1"})

		info, err := f.manager.Login(ctx, testUsername, "wrong")
		require.Nil(t, info)
		require.True(t, errors.Is(err, errors.ErrInvalidCredentials))
		require.Equal(t, credentials.Bundle{AccessToken: "A1", RefreshToken: "R1"}, f.bundle(t))
		require.Empty(t, f.navigator.Paths())
	})

	t.Run("blocked user", func(t *testing.T) {
		service.AddUser(authserverfake.User{Username: "mallory", Password: testPassword, Inactive: true})
		f := setupTestFixture(t, service.URL)

		_, err := f.manager.Login(ctx, "mallory", testPassword)
		require.True(t, errors.Is(err, errors.ErrLoginFailed))
		var statusErr *errors.StatusError
		require.True(t, errors.As(err, &statusErr))
		require.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	})
}

func TestManager_LoginReplacesStaleProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"A9","refresh_token":"R9","token_type":"bearer"}`))
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := setupTestFixture(t, server.URL)
	f.seed(t, credentials.Bundle{AccessToken: "A1", RefreshToken: "R1", UserInfo: `{"username":"previous"}`})

	info, err := f.manager.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.Nil(t, info)
	require.Equal(t, credentials.Bundle{AccessToken: "A9", RefreshToken: "R9"}, f.bundle(t))
}

func TestManager_FetchCurrentUser(t *testing.T) {
	service := setupFakeService(t)
	ctx := context.Background()

	t.Run("caches the profile", func(t *testing.T) {
		f := setupTestFixture(t, service.URL)
		pair, err := service.IssuePair(testUsername)
		require.NoError(t, err)
		f.seed(t, credentials.Bundle{AccessToken: *pair.AccessToken, RefreshToken: *pair.RefreshToken})

		info, err := f.manager.FetchCurrentUser(ctx)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", info.Email())

		cached, err := f.manager.CurrentUser(ctx)
		require.NoError(t, err)
		require.Equal(t, info, cached)
	})

	t.Run("without a token", func(t *testing.T) {
		f := setupTestFixture(t, service.URL)

		_, err := f.manager.FetchCurrentUser(ctx)
		var statusErr *errors.StatusError
		require.True(t, errors.As(err, &statusErr))
		require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
		require.Equal(t, []string{"/login"}, f.navigator.Paths())
	})
}

// failingStore wraps the fake store and fails the operations whose error is set
type failingStore struct {
	*credentialsrepofake.FakeCredentialStore
	clearErr error
	saveErr  error
}

func (s failingStore) Save(ctx context.Context, b credentials.Bundle) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.FakeCredentialStore.Save(ctx, b)
}

func (s failingStore) Clear(ctx context.Context) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	return s.FakeCredentialStore.Clear(ctx)
}

func TestManager_StoreFailures(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.Wrapf(errors.ErrStoreUnavailable, "write credentials")

	t.Run("logout navigates when clear fails", func(t *testing.T) {
		fake := credentialsrepofake.NewFakeCredentialStore()
		require.NoError(t, fake.Save(ctx, credentials.Bundle{AccessToken: "A1", RefreshToken: "R1"}))
		navigator := &navigation.Recorder{}
		manager := session.New(nil, failingStore{FakeCredentialStore: fake, clearErr: storeErr}, navigator, testConfig{baseURL: "http://localhost:8000"})

		manager.Logout(ctx)
		require.Equal(t, []string{"/login"}, navigator.Paths())
	})

	t.Run("refresh logs out when saving the new pair fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"access_token":"A2","refresh_token":"R2"}`))
		}))
		defer server.Close()

		fake := credentialsrepofake.NewFakeCredentialStore()
		require.NoError(t, fake.Save(ctx, credentials.Bundle{AccessToken: "A1", RefreshToken: "R1"}))
		navigator := &navigation.Recorder{}
		manager := session.New(nil, failingStore{FakeCredentialStore: fake, saveErr: storeErr}, navigator, testConfig{baseURL: server.URL})

		token, err := manager.Refresh(ctx)
		require.Empty(t, token)
		require.True(t, errors.Is(err, errors.ErrRefreshFailed))
		require.True(t, errors.Is(err, errors.ErrStoreUnavailable))
		require.Equal(t, []string{"/login"}, navigator.Paths())

		b, err := fake.Load(ctx)
		require.NoError(t, err)
		require.True(t, b.IsEmpty())
	})
}
