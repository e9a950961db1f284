// Package curate builds a calendar from a hand-edited day-to-seed sheet.
package curate

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dailywee/internal/pool"
	"dailywee/internal/schedule"
)

// Assignment pins one seed to a 1-based calendar day.
type Assignment struct {
	Day  int
	Seed string
	Line int
}

// LoadAssignments reads an assignment sheet from disk.
func LoadAssignments(path string) ([]Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curation sheet: %w", err)
	}
	return ParseAssignments(bytes.NewReader(data))
}

// ParseAssignments reads a CSV with "Day" and "Seed" columns (any case or
// punctuation). Rows with an empty seed are dropped.
func ParseAssignments(r io.Reader) ([]Assignment, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("curation sheet is empty")
		}
		return nil, fmt.Errorf("parse curation header: %w", err)
	}
	dayCol, seedCol := -1, -1
	for i, h := range header {
		switch pool.NormalizeHeader(h) {
		case "day":
			dayCol = i
		case "seed":
			seedCol = i
		}
	}
	if dayCol < 0 || seedCol < 0 {
		return nil, errors.New("curation sheet needs Day and Seed columns")
	}
	var out []Assignment
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse curation sheet: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if seedCol >= len(row) || dayCol >= len(row) {
			continue
		}
		seed := pool.CleanID(row[seedCol])
		if seed == "" {
			continue
		}
		day, err := strconv.Atoi(strings.TrimSpace(row[dayCol]))
		if err != nil {
			return nil, fmt.Errorf("curation sheet line %d: invalid day %q", line, row[dayCol])
		}
		out = append(out, Assignment{Day: day, Seed: seed, Line: line})
	}
	return out, nil
}

// DefaultMaxDay bounds curated days when Builder.MaxDay is unset.
const DefaultMaxDay = 3660

// Builder turns assignments into a calendar.
type Builder struct {
	Epoch time.Time
	// MaxDay is the highest accepted day; later rows are warned and skipped.
	MaxDay int
	Log    zerolog.Logger
}

func (b Builder) maxDay() int {
	if b.MaxDay > 0 {
		return b.MaxDay
	}
	return DefaultMaxDay
}

// Build places each assignment at index Day-1. The calendar is as long as
// the highest assigned day; unassigned days and seeds missing from the pool
// become nil entries and are warned.
func (b Builder) Build(p *pool.Pool, rows []Assignment) schedule.Calendar {
	limit := b.maxDay()
	maxDay := 0
	for _, a := range rows {
		if a.Day > maxDay && a.Day <= limit {
			maxDay = a.Day
		}
	}
	cal := make(schedule.Calendar, maxDay)
	assigned := make([]bool, maxDay)
	for _, a := range rows {
		if a.Day < 1 {
			b.Log.Warn().Int("line", a.Line).Int("day", a.Day).Str("seed", a.Seed).Msg("day must be 1 or later, skipping")
			continue
		}
		if a.Day > limit {
			b.Log.Warn().Int("line", a.Line).Int("day", a.Day).Int("max_day", limit).Str("seed", a.Seed).Msg("day beyond the horizon, skipping")
			continue
		}
		if assigned[a.Day-1] {
			b.Log.Warn().Int("day", a.Day).Str("seed", a.Seed).Msg("day assigned more than once, keeping the later row")
		}
		assigned[a.Day-1] = true
		rec, ok := p.Lookup(a.Seed)
		if !ok {
			b.Log.Warn().Int("day", a.Day).Str("seed", a.Seed).Msg("seed not found in pool")
			cal[a.Day-1] = nil
			continue
		}
		th := schedule.WeekdayTheme(schedule.DateOf(b.Epoch, a.Day-1))
		cal[a.Day-1] = schedule.Project(rec, th)
	}
	for i, ok := range assigned {
		if !ok {
			b.Log.Warn().Int("day", i+1).Msg("day has no seed")
		}
	}
	return cal
}
