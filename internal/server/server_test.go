package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailywee/internal/config"
	"dailywee/internal/db"
	"dailywee/internal/engine"
	"dailywee/internal/engine/auth"
	"dailywee/internal/migrate"
	"dailywee/internal/schedule"
)

const testSecret = "test-secret"

type testServer struct {
	URL    string
	Engine engine.Engine
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn, config.Default())
	e.Now = func() time.Time { return time.Date(2026, 1, 7, 9, 30, 0, 0, time.UTC) }
	handler, err := New(Config{Engine: e, BasePath: "/v0", Auth: AuthConfig{JWTSecret: testSecret}})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Engine: e,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func bearer(t *testing.T, roles ...string) map[string]string {
	t.Helper()
	tok, err := auth.Issue(testSecret, "mod-1", roles, time.Hour, time.Now())
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + tok}
}

func submit(t *testing.T, srv *testServer, day int, name string, score int) ScoreResponse {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/scores", map[string]any{
		"seed": "SEED", "day_number": day, "player_name": name, "score": score,
	}, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(data))
	var s ScoreResponse
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func TestHealth(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestSubmitAndLeaderboard(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	submit(t, srv, 2, "ann", 100)
	submit(t, srv, 2, "bob", 300)
	submit(t, srv, 3, "cid", 50)

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/scores?day=2", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var board LeaderboardResponse
	require.NoError(t, json.Unmarshal(data, &board))
	require.Len(t, board.Scores, 2)
	assert.Equal(t, "bob", board.Scores[0].PlayerName)
	assert.Equal(t, "ann", board.Scores[1].PlayerName)

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/scores/winners", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var winners WinnersResponse
	require.NoError(t, json.Unmarshal(data, &winners))
	require.Len(t, winners.Winners, 2)
	assert.Equal(t, 3, winners.Winners[0].DayNumber)
	assert.Equal(t, "bob", winners.Winners[1].PlayerName)
}

func TestSubmitRejectsInvalidScore(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/scores", map[string]any{
		"seed": "SEED", "day_number": 1, "player_name": "this name is far too long", "score": 1,
	}, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode, string(data))
	var env struct {
		Error apiErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "invalid_score", env.Error.Code)
}

func TestDeleteScoreRequiresModerator(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	s := submit(t, srv, 1, "cheater", 999)
	url := srv.URL + "/v0/scores/" + s.ID

	res, _ := doJSON(t, srv.Client(), http.MethodDelete, url, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = doJSON(t, srv.Client(), http.MethodDelete, url, nil, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, data := doJSON(t, srv.Client(), http.MethodDelete, url, nil, bearer(t, "player"))
	require.Equal(t, http.StatusForbidden, res.StatusCode, string(data))

	res, data = doJSON(t, srv.Client(), http.MethodDelete, url, nil, bearer(t, auth.RoleModerator))
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))

	res, _ = doJSON(t, srv.Client(), http.MethodDelete, url, nil, bearer(t, auth.RoleModerator))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDailyLookup(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	cal := schedule.Calendar{
		{ID: "DAYONE", Theme: "Twosday", Label: "Joker", Score: 10, Twos: 17},
		{ID: "DAYTWO", Theme: "Wee Wednesday", Label: "Wee Joker", Score: 20, WeeA1: 1},
	}
	_, err := srv.Engine.Deploy(context.Background(), cal, "tester")
	require.NoError(t, err)

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/daily/1", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var d DailyResponse
	require.NoError(t, json.Unmarshal(data, &d))
	assert.Equal(t, "DAYONE", d.Seed)
	assert.Equal(t, "2026-01-06", d.Date)
	assert.Equal(t, 17, d.Entry.Twos)

	// the test clock sits on the second day after launch
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/daily/today", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &d))
	assert.Equal(t, 2, d.Day)
	assert.Equal(t, "DAYTWO", d.Seed)
	assert.Equal(t, 1, d.Entry.WeeA1)

	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/daily/9", nil, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/daily?from=1&to=5", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var list DeployedDaysResponse
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Len(t, list.Items, 2)
}

func TestOpenAPIDocument(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/openapi.json", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/v0/scores/{id}")
	assert.Contains(t, paths, "/v0/daily/today")
}

func TestOpenAPIPathFollowsBasePath(t *testing.T) {
	assert.Equal(t, "/v0/openapi.json", OpenAPIPath(""))
	assert.Equal(t, "/api/openapi.json", OpenAPIPath("api"))
	assert.Equal(t, "/api/openapi.json", OpenAPIPath("/api/"))
}
