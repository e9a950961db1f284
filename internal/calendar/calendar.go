// Package calendar reads and writes the baked calendar artifact: a JSON array
// with one element per day offset, either null or a compact entry object.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	dwlog "dailywee/internal/log"
	"dailywee/internal/schedule"
)

// Encode renders the calendar. Output is byte-identical for equal calendars.
func Encode(cal schedule.Calendar) ([]byte, error) {
	if cal == nil {
		cal = schedule.Calendar{}
	}
	data, err := json.Marshal(cal)
	if err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return data, nil
}

// Decode parses a calendar artifact.
func Decode(data []byte) (schedule.Calendar, error) {
	var cal schedule.Calendar
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}
	return cal, nil
}

// Write atomically replaces path with the encoded calendar and returns the
// number of bytes written. Readers see either the previous file or the new
// one, never a partial write.
func Write(ctx context.Context, path string, cal schedule.Calendar) (int, error) {
	logger := dwlog.FromContext(ctx)
	data, err := Encode(cal)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create calendar dir: %w", err)
	}
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return 0, fmt.Errorf("create pending calendar file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending calendar file")
		}
	}()
	if _, err := pendingFile.Write(data); err != nil {
		return 0, fmt.Errorf("write calendar data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return 0, fmt.Errorf("atomically replace calendar file: %w", err)
	}
	return len(data), nil
}

// Read loads a calendar artifact from disk.
func Read(path string) (schedule.Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}
	return Decode(data)
}
