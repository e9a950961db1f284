package engine_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"dailywee/internal/config"
	"dailywee/internal/db"
	"dailywee/internal/engine"
	"dailywee/internal/events"
	"dailywee/internal/migrate"
	"dailywee/internal/repo"
	"dailywee/internal/schedule"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	ctx := context.Background()
	if err := migrate.Migrate(ctx, conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn, config.Default())
	clock := time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC)
	eng.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return testEnv{Engine: eng, Ctx: ctx}
}

func (env testEnv) submit(t *testing.T, day int, name string, score int) string {
	t.Helper()
	s, err := env.Engine.SubmitScore(env.Ctx, engine.SubmitScoreOptions{
		Seed: fmt.Sprintf("SEED%d", day), DayNumber: day, PlayerName: name, Score: score,
	}, "")
	if err != nil {
		t.Fatalf("submit %s: %v", name, err)
	}
	return s.ID
}

func TestSubmitScoreValidation(t *testing.T) {
	env := newTestEnv(t)
	cases := map[string]engine.SubmitScoreOptions{
		"no seed":       {DayNumber: 1, PlayerName: "ann", Score: 1},
		"day zero":      {Seed: "A", DayNumber: 0, PlayerName: "ann", Score: 1},
		"empty name":    {Seed: "A", DayNumber: 1, PlayerName: "   ", Score: 1},
		"long name":     {Seed: "A", DayNumber: 1, PlayerName: strings.Repeat("x", 21), Score: 1},
		"negative":      {Seed: "A", DayNumber: 1, PlayerName: "ann", Score: -1},
		"above maximum": {Seed: "A", DayNumber: 1, PlayerName: "ann", Score: 1_000_000_000},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.Engine.SubmitScore(env.Ctx, opts, "")
			if !errors.Is(err, engine.ErrInvalidScore) {
				t.Fatalf("expected ErrInvalidScore, got %v", err)
			}
		})
	}

	s, err := env.Engine.SubmitScore(env.Ctx, engine.SubmitScoreOptions{
		Seed: " A ", DayNumber: 1, PlayerName: strings.Repeat("é", 20), Score: 999_999_999,
	}, "")
	if err != nil {
		t.Fatalf("boundary submission: %v", err)
	}
	if s.Seed != "A" || s.ID == "" {
		t.Fatalf("unexpected score %+v", s)
	}
}

func TestLeaderboardOrdersByScore(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, 1, "low", 10)
	env.submit(t, 1, "high", 300)
	env.submit(t, 1, "mid", 200)
	env.submit(t, 2, "other", 999)

	top, err := env.Engine.Leaderboard(env.Ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].PlayerName != "high" || top[1].PlayerName != "mid" {
		t.Fatalf("unexpected leaderboard %+v", top)
	}
	all, err := env.Engine.Leaderboard(env.Ctx, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(all))
	}
	if _, err := env.Engine.Leaderboard(env.Ctx, 0, 0); !errors.Is(err, engine.ErrInvalidScore) {
		t.Fatalf("expected invalid day error, got %v", err)
	}
}

func TestWinnersCoverLatestDays(t *testing.T) {
	env := newTestEnv(t)
	for day := 1; day <= 9; day++ {
		env.submit(t, day, fmt.Sprintf("runner%d", day), day*10)
		env.submit(t, day, fmt.Sprintf("best%d", day), day*100)
	}
	winners, err := env.Engine.Winners(env.Ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(winners) != 7 {
		t.Fatalf("expected 7 winners, got %d", len(winners))
	}
	for i, w := range winners {
		day := 9 - i
		if w.DayNumber != day || w.PlayerName != fmt.Sprintf("best%d", day) {
			t.Fatalf("winner %d: got %+v", i, w)
		}
	}
}

func TestRemoveScore(t *testing.T) {
	env := newTestEnv(t)
	id := env.submit(t, 3, "cheater", 999)
	removed, err := env.Engine.RemoveScore(env.Ctx, id, "mod-1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.PlayerName != "cheater" {
		t.Fatalf("unexpected removed score %+v", removed)
	}
	if _, err := env.Engine.Repo.GetScore(env.Ctx, id); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found after removal, got %v", err)
	}
	if _, err := env.Engine.RemoveScore(env.Ctx, id, "mod-1"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found on second removal, got %v", err)
	}

	evts, err := env.Engine.Repo.TailEvents(env.Ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(evts) != 2 || evts[0].Type != events.ScoreRemoved || evts[0].ActorID != "mod-1" || evts[1].Type != events.ScoreSubmitted {
		t.Fatalf("unexpected events %+v", evts)
	}
}

func calendarOf(ids ...string) schedule.Calendar {
	cal := make(schedule.Calendar, len(ids))
	for i, id := range ids {
		if id == "" {
			continue
		}
		cal[i] = &schedule.Entry{ID: id, Theme: "Twosday", Label: "Joker", Score: i}
	}
	return cal
}

func TestDeployIsIncremental(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Engine.Deploy(env.Ctx, calendarOf("A", "B", "", "D", "E"), "")
	if err != nil {
		t.Fatalf("first deploy: %v", err)
	}
	if res.Inserted != 4 || res.Missing != 1 || res.Skipped != 0 || res.LastDay != 5 {
		t.Fatalf("unexpected first deploy %+v", res)
	}

	res, err = env.Engine.Deploy(env.Ctx, calendarOf("X", "Y", "", "Z", "W", "F", "G"), "")
	if err != nil {
		t.Fatalf("second deploy: %v", err)
	}
	if res.PreviousMax != 5 || res.Inserted != 2 || res.Skipped != 4 || res.LastDay != 7 {
		t.Fatalf("unexpected second deploy %+v", res)
	}

	d, err := env.Engine.DailySeed(env.Ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if d.Seed != "A" {
		t.Fatalf("day 1 must keep the first deploy, got %s", d.Seed)
	}
	d, err = env.Engine.DailySeed(env.Ctx, 6)
	if err != nil {
		t.Fatal(err)
	}
	entry, err := engine.DecodeEntry(d)
	if err != nil {
		t.Fatal(err)
	}
	if entry.ID != "F" || entry.Theme != "Twosday" || entry.Score != 5 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if _, err := env.Engine.DailySeed(env.Ctx, 3); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("null day must not be deployed, got %v", err)
	}
}

func TestDeployNothingNewRecordsNoEvent(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.Deploy(env.Ctx, calendarOf("A", "B"), "ci"); err != nil {
		t.Fatal(err)
	}
	res, err := env.Engine.Deploy(env.Ctx, calendarOf("A", "B"), "ci")
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 0 || res.Skipped != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	evts, err := env.Engine.Repo.TailEvents(env.Ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(evts) != 1 || evts[0].Type != events.SeedsDeployed {
		t.Fatalf("expected a single deploy event, got %+v", evts)
	}
}

func TestTodayCountsFromLaunch(t *testing.T) {
	env := newTestEnv(t)
	env.Engine.Now = func() time.Time { return time.Date(2026, 1, 7, 23, 59, 0, 0, time.UTC) }
	day, err := env.Engine.Today()
	if err != nil {
		t.Fatal(err)
	}
	if day != 2 {
		t.Fatalf("expected day 2, got %d", day)
	}
}
