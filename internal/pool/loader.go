package pool

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	dwlog "dailywee/internal/log"
)

// ErrNoRecords is returned when a pool contains no usable seed rows.
var ErrNoRecords = errors.New("seed pool has no usable records")

// Pool is the loaded seed table.
type Pool struct {
	Records []Record
	Header  []string
	// Skipped counts data rows dropped for a missing or duplicate identifier.
	Skipped int

	index map[string]int
}

// Lookup returns the record with the given identifier after control
// characters are stripped from both sides.
func (p *Pool) Lookup(id string) (Record, bool) {
	i, ok := p.index[CleanID(id)]
	if !ok {
		return Record{}, false
	}
	return p.Records[i], true
}

// Len returns the number of usable records.
func (p *Pool) Len() int { return len(p.Records) }

// Load reads a seed pool from a CSV file. A missing file is reported with an
// error wrapping os.ErrNotExist.
func Load(ctx context.Context, path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed pool: %w", err)
	}
	return Parse(ctx, bytes.NewReader(data))
}

// doubledQuote matches the `""` separator the seed search CLI sometimes writes
// between header cells instead of `","`.
var doubledQuote = regexp.MustCompile(`([^,])""([^,])`)

// RepairHeader fixes the first line of a pool export before CSV parsing.
func RepairHeader(raw []byte) []byte {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	end := bytes.IndexByte(raw, '\n')
	if end < 0 {
		end = len(raw)
	}
	header := raw[:end]
	// Matches consume the first rune of the next cell, so one-character
	// cells need another pass.
	for {
		fixed := doubledQuote.ReplaceAll(header, []byte(`$1","$2`))
		if bytes.Equal(fixed, header) {
			break
		}
		header = fixed
	}
	out := make([]byte, 0, len(raw)+len(header)-end)
	out = append(out, header...)
	return append(out, raw[end:]...)
}

// Parse reads a seed pool table from r.
func Parse(ctx context.Context, r io.Reader) (*Pool, error) {
	logger := dwlog.FromContext(ctx).With().Str("component", "pool").Logger()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed pool: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(RepairHeader(raw)))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("seed pool is empty: %w", ErrNoRecords)
		}
		return nil, fmt.Errorf("parse seed pool header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.Trim(strings.TrimSpace(h), `"`)
	}
	cols := resolveColumns(header)
	if len(cols.text[fieldID]) == 0 {
		return nil, fmt.Errorf("seed pool header has no identifier column (want one of %s)", strings.Join(textAliases[fieldID], ", "))
	}

	p := &Pool{Header: header, index: map[string]int{}}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				logger.Warn().Int("line", perr.Line).Err(perr.Err).Msg("skipping malformed row")
				p.Skipped++
				continue
			}
			return nil, fmt.Errorf("parse seed pool: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rec := cols.record(row)
		if rec.ID == "" {
			logger.Warn().Int("line", line).Msg("skipping row without seed identifier")
			p.Skipped++
			continue
		}
		if _, dup := p.index[rec.ID]; dup {
			logger.Warn().Int("line", line).Str("seed", rec.ID).Msg("skipping duplicate seed identifier")
			p.Skipped++
			continue
		}
		p.index[rec.ID] = len(p.Records)
		p.Records = append(p.Records, rec)
	}
	if len(p.Records) == 0 {
		return nil, ErrNoRecords
	}
	return p, nil
}

// columns holds the alias table resolved against one header row.
type columns struct {
	numeric map[Attr][]int
	text    map[string][]int
}

func resolveColumns(header []string) columns {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		if _, seen := byName[key]; !seen {
			byName[key] = i
		}
	}
	lookup := func(aliases []string) []int {
		var idx []int
		seen := map[int]bool{}
		for _, a := range aliases {
			if i, ok := byName[NormalizeHeader(a)]; ok && !seen[i] {
				idx = append(idx, i)
				seen[i] = true
			}
		}
		return idx
	}
	c := columns{numeric: map[Attr][]int{}, text: map[string][]int{}}
	for attr, aliases := range Aliases {
		if idx := lookup(aliases); len(idx) > 0 {
			c.numeric[attr] = idx
		}
	}
	for field, aliases := range textAliases {
		if idx := lookup(aliases); len(idx) > 0 {
			c.text[field] = idx
		}
	}
	return c
}

func firstCell(row []string, idx []int) (string, bool) {
	for _, i := range idx {
		if i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			return v, true
		}
	}
	return "", false
}

func (c columns) record(row []string) Record {
	rec := Record{attrs: make(map[Attr]int, len(c.numeric))}
	if v, ok := firstCell(row, c.text[fieldID]); ok {
		rec.ID = CleanID(v)
	}
	rec.Category, _ = firstCell(row, c.text[fieldCategory])
	rec.ThemeName, _ = firstCell(row, c.text[fieldThemeName])
	rec.ThemeLabel, _ = firstCell(row, c.text[fieldThemeLabel])
	for attr, idx := range c.numeric {
		if v, ok := firstCell(row, idx); ok {
			rec.attrs[attr] = parseCell(v)
		}
	}
	return rec
}
