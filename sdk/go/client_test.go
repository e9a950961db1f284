package dailyweesdk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
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
	"dailywee/internal/server"
)

func newAPI(t *testing.T) (*httptest.Server, engine.Engine) {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrate.Migrate(context.Background(), conn))
	e := engine.New(conn, config.Default())
	e.Now = func() time.Time { return time.Date(2026, 1, 6, 8, 0, 0, 0, time.UTC) }
	handler, err := server.New(server.Config{Engine: e, Auth: server.AuthConfig{JWTSecret: "sdk-secret"}})
	require.NoError(t, err)
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts, e
}

func TestClientRoundTrip(t *testing.T) {
	ts, e := newAPI(t)
	ctx := context.Background()
	_, err := e.Deploy(ctx, schedule.Calendar{{ID: "FIRST", Theme: "Twosday", Label: "Joker", Twos: 18}}, "sdk")
	require.NoError(t, err)

	c := New(ts.URL)
	today, err := c.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, today.Day)
	assert.Equal(t, "FIRST", today.Entry.ID)
	assert.Equal(t, 18, today.Entry.Twos)

	s, err := c.SubmitScore(ctx, today.Seed, today.Day, "ann", 4200)
	require.NoError(t, err)
	board, err := c.Leaderboard(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, s.ID, board[0].ID)

	winners, err := c.Winners(ctx)
	require.NoError(t, err)
	require.Len(t, winners, 1)

	_, err = c.DeleteScore(ctx, s.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "unauthorized", apiErr.Code)

	c.BearerToken, err = auth.Issue("sdk-secret", "mod", []string{auth.RoleModerator}, time.Hour, time.Now())
	require.NoError(t, err)
	removed, err := c.DeleteScore(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann", removed.PlayerName)
}

func TestClientSurfacesNotFound(t *testing.T) {
	ts, _ := newAPI(t)
	_, err := New(ts.URL).Daily(context.Background(), 40)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "not_found", apiErr.Code)
}
