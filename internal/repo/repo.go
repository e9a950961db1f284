package repo

import (
	"context"
	"database/sql"
	"errors"

	"dailywee/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r Repo) conn(tx *sql.Tx) execer {
	if tx != nil {
		return tx
	}
	return r.DB
}

const scoreColumns = `id,seed,day_number,player_name,score,submitted_at`

func scanScores(rows *sql.Rows) ([]domain.Score, error) {
	defer rows.Close()
	var res []domain.Score
	for rows.Next() {
		var s domain.Score
		if err := rows.Scan(&s.ID, &s.Seed, &s.DayNumber, &s.PlayerName, &s.Score, &s.SubmittedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (r Repo) InsertScoreTx(ctx context.Context, tx *sql.Tx, s domain.Score) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO scores(`+scoreColumns+`) VALUES (?,?,?,?,?,?)`,
		s.ID, s.Seed, s.DayNumber, s.PlayerName, s.Score, s.SubmittedAt)
	return err
}

func (r Repo) GetScore(ctx context.Context, id string) (domain.Score, error) {
	var s domain.Score
	err := r.DB.QueryRowContext(ctx, `SELECT `+scoreColumns+` FROM scores WHERE id=?`, id).
		Scan(&s.ID, &s.Seed, &s.DayNumber, &s.PlayerName, &s.Score, &s.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrNotFound
	}
	return s, err
}

// TopScores returns the best scores of a day, highest first. Ties keep
// submission order.
func (r Repo) TopScores(ctx context.Context, day, limit int) ([]domain.Score, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+scoreColumns+` FROM scores WHERE day_number=? ORDER BY score DESC, submitted_at ASC, id ASC LIMIT ?`, day, limit)
	if err != nil {
		return nil, err
	}
	return scanScores(rows)
}

// DailyWinners returns the best score of each of the latest days that have
// submissions, newest day first.
func (r Repo) DailyWinners(ctx context.Context, days int) ([]domain.Score, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT s.id,s.seed,s.day_number,s.player_name,s.score,s.submitted_at
		FROM scores s
		WHERE s.day_number > 0
		  AND s.id = (
			SELECT b.id FROM scores b
			WHERE b.day_number = s.day_number
			ORDER BY b.score DESC, b.submitted_at ASC, b.id ASC
			LIMIT 1
		  )
		ORDER BY s.day_number DESC
		LIMIT ?`, days)
	if err != nil {
		return nil, err
	}
	return scanScores(rows)
}

func (r Repo) DeleteScoreTx(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := r.conn(tx).ExecContext(ctx, `DELETE FROM scores WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
