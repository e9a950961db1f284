// Package bake runs the offline calendar pipeline: load the seed pool,
// classify it into buckets, shuffle every bucket from one seeded source,
// assemble the calendar and write it atomically.
package bake

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dailywee/internal/calendar"
	"dailywee/internal/classify"
	"dailywee/internal/config"
	dwlog "dailywee/internal/log"
	"dailywee/internal/pool"
	"dailywee/internal/schedule"
	"dailywee/internal/shuffle"
)

// Options configures one bake run.
type Options struct {
	PoolPath     string
	CalendarPath string
	Seed         uint32
	Thresholds   classify.Thresholds
	Schedule     schedule.Options
	// DryRun skips the write.
	DryRun bool
}

// OptionsFromConfig resolves bake options from the workspace config.
func OptionsFromConfig(cfg *config.Config, workspace string) (Options, error) {
	epoch, err := cfg.Epoch()
	if err != nil {
		return Options{}, err
	}
	return Options{
		PoolPath:     config.Resolve(workspace, cfg.Paths.Pool),
		CalendarPath: config.Resolve(workspace, cfg.Paths.Calendar),
		Seed:         cfg.Ritual.ShuffleSeed,
		Thresholds: classify.Thresholds{
			TwosThreshold:    cfg.Classifier.TwosThreshold,
			UltimateMinHacks: cfg.Classifier.UltimateMinHacks,
		},
		Schedule: schedule.Options{
			Epoch:              epoch,
			HorizonDays:        cfg.Ritual.HorizonDays,
			UltimateDayOfMonth: cfg.Ritual.UltimateDayOfMonth,
		},
	}, nil
}

// BucketStat is the size of one bucket.
type BucketStat struct {
	Bucket classify.Bucket `json:"bucket"`
	Size   int             `json:"size"`
}

// Result summarizes a run.
type Result struct {
	RunID    string            `json:"run_id"`
	Records  int               `json:"records"`
	Skipped  int               `json:"skipped"`
	Buckets  []BucketStat      `json:"buckets"`
	Days     int               `json:"days"`
	Missing  []int             `json:"missing,omitempty"`
	Bytes    int               `json:"bytes"`
	Output   string            `json:"output,omitempty"`
	Calendar schedule.Calendar `json:"-"`
}

// ShuffleBuckets shuffles every bucket in classify.Order from one source, so
// each bucket's permutation also depends on the buckets shuffled before it.
func ShuffleBuckets(b classify.Buckets, seed uint32) {
	src := shuffle.NewSource(seed)
	for _, name := range classify.Order {
		shuffle.Shuffle(src, b[name])
	}
}

// Build runs every stage except the write.
func Build(ctx context.Context, opts Options) (Result, error) {
	p, err := pool.Load(ctx, opts.PoolPath)
	if err != nil {
		return Result{}, err
	}
	return BuildFromPool(ctx, p, opts), nil
}

// BuildFromPool classifies, shuffles and schedules an already loaded pool.
func BuildFromPool(ctx context.Context, p *pool.Pool, opts Options) Result {
	logger := dwlog.FromContext(ctx)
	clf := classify.New(opts.Thresholds, logger.With().Str("component", "classify").Logger())
	buckets := clf.Partition(p.Records)
	ShuffleBuckets(buckets, opts.Seed)

	res := Result{Records: p.Len(), Skipped: p.Skipped}
	for _, name := range classify.Order {
		res.Buckets = append(res.Buckets, BucketStat{Bucket: name, Size: len(buckets[name])})
		logger.Info().Str("bucket", string(name)).Int("seeds", len(buckets[name])).Msg("bucket")
	}

	gen := schedule.Generator{Options: opts.Schedule, Log: logger.With().Str("component", "schedule").Logger()}
	cal := gen.Generate(buckets)
	res.Calendar = cal
	res.Days = len(cal)
	res.Missing = cal.Missing()
	return res
}

// Run executes the whole pipeline. Nothing is written unless every stage
// succeeds, so a failed run leaves the previous calendar in place.
func Run(ctx context.Context, opts Options) (Result, error) {
	runID := uuid.NewString()
	logger := dwlog.FromContext(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	res, err := Build(ctx, opts)
	if err != nil {
		return Result{}, err
	}
	res.RunID = runID
	if opts.DryRun {
		data, err := calendar.Encode(res.Calendar)
		if err != nil {
			return Result{}, err
		}
		res.Bytes = len(data)
		return res, nil
	}
	n, err := calendar.Write(ctx, opts.CalendarPath, res.Calendar)
	if err != nil {
		return Result{}, fmt.Errorf("write calendar: %w", err)
	}
	res.Bytes = n
	res.Output = opts.CalendarPath
	logger.Info().Int("days", res.Days).Int("missing", len(res.Missing)).Str("output", opts.CalendarPath).Msg("calendar baked")
	return res, nil
}
