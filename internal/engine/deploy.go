package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dailywee/internal/domain"
	"dailywee/internal/events"
	"dailywee/internal/schedule"
)

// DeployResult summarizes an incremental deploy.
type DeployResult struct {
	PreviousMax int `json:"previous_max"`
	Inserted    int `json:"inserted"`
	Skipped     int `json:"skipped"`
	Missing     int `json:"missing"`
	LastDay     int `json:"last_day"`
}

// Deploy publishes every non-null calendar day whose 1-based number is past
// the highest day already stored. Everything happens in one transaction.
func (e Engine) Deploy(ctx context.Context, cal schedule.Calendar, actorID string) (DeployResult, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return DeployResult{}, err
	}
	defer tx.Rollback()

	maxDay, err := e.Repo.MaxDay(ctx, tx)
	if err != nil {
		return DeployResult{}, fmt.Errorf("read deployed days: %w", err)
	}
	res := DeployResult{PreviousMax: maxDay, LastDay: maxDay}
	deployedAt := e.now().UTC().Format(time.RFC3339)
	for i, entry := range cal {
		day := i + 1
		if entry == nil {
			res.Missing++
			continue
		}
		if day <= maxDay {
			res.Skipped++
			continue
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			return DeployResult{}, fmt.Errorf("encode day %d: %w", day, err)
		}
		if err := e.Repo.InsertDailySeedTx(ctx, tx, domain.DailySeed{
			Day:        day,
			Seed:       entry.ID,
			Theme:      entry.Theme,
			EntryJSON:  string(raw),
			DeployedAt: deployedAt,
		}); err != nil {
			return DeployResult{}, fmt.Errorf("insert day %d: %w", day, err)
		}
		res.Inserted++
		res.LastDay = day
	}
	if res.Inserted > 0 {
		if err := e.Events.Append(ctx, tx, events.SeedsDeployed, "daily_seeds", "", actorOrDefault(actorID, "local-user"), events.EventPayload{
			"from": res.PreviousMax + 1, "to": res.LastDay, "inserted": res.Inserted,
		}); err != nil {
			return DeployResult{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return DeployResult{}, err
	}
	return res, nil
}

// DecodeEntry returns the calendar entry stored with a deployed day.
func DecodeEntry(d domain.DailySeed) (*schedule.Entry, error) {
	var entry schedule.Entry
	if err := json.Unmarshal([]byte(d.EntryJSON), &entry); err != nil {
		return nil, fmt.Errorf("decode day %d: %w", d.Day, err)
	}
	return &entry, nil
}
