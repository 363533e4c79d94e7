package service_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/huddleapp/backend/internal/auth"
	"github.com/huddleapp/backend/internal/authz"
	"github.com/huddleapp/backend/internal/server"
	"github.com/huddleapp/backend/internal/service"
	"github.com/huddleapp/backend/internal/storage/sqlite"
)

// testServer runs the real route table over a temp sqlite database.
type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "huddle-svc-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret-not-for-production", time.Hour)
	checker := authz.NewChecker(store)

	routes := server.Routes(server.Services{
		Auth:     service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store),
		Calendar: service.NewCalendarService(store, checker),
		Event:    service.NewEventService(store, checker),
		Group:    service.NewGroupService(store, checker),
		Friend:   service.NewFriendService(store),
	})

	srv := httptest.NewServer(server.Handler(routes, jwtManager))
	t.Cleanup(srv.Close)

	return &testServer{t: t, srv: srv}
}

// session is a registered user with their token.
type session struct {
	UserID string
	Token  string
}

// register creates an account and returns its session.
func (ts *testServer) register(username string) session {
	ts.t.Helper()

	resp := ts.do("POST", "/auth/register", "", map[string]string{
		"username":    username,
		"displayName": username,
		"password":    "correct-horse-battery",
	})
	defer resp.Body.Close()
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode)

	var body struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(ts.t, json.NewDecoder(resp.Body).Decode(&body))
	return session{UserID: body.User.ID, Token: body.Token}
}

// do issues a request with an optional bearer token and JSON body.
func (ts *testServer) do(method, path, token string, body interface{}) *http.Response {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(ts.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(ts.t, err)
	return resp
}

// decodeBody decodes the response body into v and closes it.
func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
