package repo

import (
	"context"
	"database/sql"
	"errors"

	"dailywee/internal/domain"
)

// MaxDay returns the highest deployed day, 0 when nothing is deployed.
func (r Repo) MaxDay(ctx context.Context, tx *sql.Tx) (int, error) {
	var max sql.NullInt64
	if err := r.conn(tx).QueryRowContext(ctx, `SELECT MAX(day) FROM daily_seeds`).Scan(&max); err != nil {
		return 0, err
	}
	return int(max.Int64), nil
}

func (r Repo) InsertDailySeedTx(ctx context.Context, tx *sql.Tx, d domain.DailySeed) error {
	_, err := r.conn(tx).ExecContext(ctx, `INSERT INTO daily_seeds(day,seed,theme,entry_json,deployed_at) VALUES (?,?,?,?,?)`,
		d.Day, d.Seed, d.Theme, d.EntryJSON, d.DeployedAt)
	return err
}

func (r Repo) GetDailySeed(ctx context.Context, day int) (domain.DailySeed, error) {
	var d domain.DailySeed
	err := r.DB.QueryRowContext(ctx, `SELECT day,seed,theme,entry_json,deployed_at FROM daily_seeds WHERE day=?`, day).
		Scan(&d.Day, &d.Seed, &d.Theme, &d.EntryJSON, &d.DeployedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrNotFound
	}
	return d, err
}

// ListDailySeeds returns deployed days in [from, to], ascending.
func (r Repo) ListDailySeeds(ctx context.Context, from, to int) ([]domain.DailySeed, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT day,seed,theme,entry_json,deployed_at FROM daily_seeds WHERE day BETWEEN ? AND ? ORDER BY day`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.DailySeed
	for rows.Next() {
		var d domain.DailySeed
		if err := rows.Scan(&d.Day, &d.Seed, &d.Theme, &d.EntryJSON, &d.DeployedAt); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}
