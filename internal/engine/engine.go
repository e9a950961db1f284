package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"dailywee/internal/config"
	"dailywee/internal/domain"
	"dailywee/internal/events"
	"dailywee/internal/repo"
	"dailywee/internal/schedule"
)

// ErrInvalidScore is wrapped by every submission validation failure.
var ErrInvalidScore = errors.New("invalid score")

type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Now    func() time.Time
}

func New(db *sql.DB, cfg *config.Config) Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// SubmitScoreOptions are the fields of a leaderboard submission.
type SubmitScoreOptions struct {
	Seed       string
	DayNumber  int
	PlayerName string
	Score      int
}

func (e Engine) validateSubmission(opts *SubmitScoreOptions) error {
	lb := e.Config.Leaderboard
	opts.Seed = strings.TrimSpace(opts.Seed)
	opts.PlayerName = strings.TrimSpace(opts.PlayerName)
	if opts.Seed == "" {
		return fmt.Errorf("%w: seed is required", ErrInvalidScore)
	}
	if opts.DayNumber < 1 {
		return fmt.Errorf("%w: day_number must be >= 1", ErrInvalidScore)
	}
	if n := utf8.RuneCountInString(opts.PlayerName); n == 0 || n > lb.MaxNameLength {
		return fmt.Errorf("%w: player_name must be 1..%d characters", ErrInvalidScore, lb.MaxNameLength)
	}
	if opts.Score < 0 || opts.Score > lb.MaxScore {
		return fmt.Errorf("%w: score must be within 0..%d", ErrInvalidScore, lb.MaxScore)
	}
	return nil
}

func (e Engine) SubmitScore(ctx context.Context, opts SubmitScoreOptions, actorID string) (domain.Score, error) {
	if err := e.validateSubmission(&opts); err != nil {
		return domain.Score{}, err
	}
	s := domain.Score{
		ID:          uuid.NewString(),
		Seed:        opts.Seed,
		DayNumber:   opts.DayNumber,
		PlayerName:  opts.PlayerName,
		Score:       opts.Score,
		SubmittedAt: e.now().UTC().Format(time.RFC3339Nano),
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Score{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertScoreTx(ctx, tx, s); err != nil {
		return domain.Score{}, fmt.Errorf("insert score: %w", err)
	}
	if err := e.Events.Append(ctx, tx, events.ScoreSubmitted, "score", s.ID, actorOrDefault(actorID, s.PlayerName), events.EventPayload{
		"day_number": s.DayNumber, "score": s.Score, "seed": s.Seed,
	}); err != nil {
		return domain.Score{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Score{}, err
	}
	return s, nil
}

// Leaderboard returns the top scores of a day.
func (e Engine) Leaderboard(ctx context.Context, day, limit int) ([]domain.Score, error) {
	if day < 1 {
		return nil, fmt.Errorf("%w: day must be >= 1", ErrInvalidScore)
	}
	if limit <= 0 || limit > e.Config.Leaderboard.TopN {
		limit = e.Config.Leaderboard.TopN
	}
	return e.Repo.TopScores(ctx, day, limit)
}

// Winners returns the best score of each of the latest days.
func (e Engine) Winners(ctx context.Context) ([]domain.Score, error) {
	return e.Repo.DailyWinners(ctx, e.Config.Leaderboard.WinnerDays)
}

func (e Engine) RemoveScore(ctx context.Context, id, actorID string) (domain.Score, error) {
	s, err := e.Repo.GetScore(ctx, id)
	if err != nil {
		return domain.Score{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Score{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.DeleteScoreTx(ctx, tx, id); err != nil {
		return domain.Score{}, err
	}
	if err := e.Events.Append(ctx, tx, events.ScoreRemoved, "score", id, actorOrDefault(actorID, "moderator"), events.EventPayload{
		"day_number": s.DayNumber, "player_name": s.PlayerName, "score": s.Score,
	}); err != nil {
		return domain.Score{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Score{}, err
	}
	return s, nil
}

// Today returns the 1-based calendar day for the engine clock.
func (e Engine) Today() (int, error) {
	epoch, err := e.Config.Epoch()
	if err != nil {
		return 0, err
	}
	return schedule.DayOffset(epoch, e.now()) + 1, nil
}

func (e Engine) DailySeed(ctx context.Context, day int) (domain.DailySeed, error) {
	if day < 1 {
		return domain.DailySeed{}, fmt.Errorf("invalid day %d: must be >= 1", day)
	}
	return e.Repo.GetDailySeed(ctx, day)
}

func actorOrDefault(actorID, fallback string) string {
	if actorID != "" {
		return actorID
	}
	return fallback
}
