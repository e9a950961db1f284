package classify

import (
	"github.com/rs/zerolog"

	"dailywee/internal/pool"
)

// Rule assigns a bucket to every record its predicate accepts.
type Rule struct {
	Name   string
	Bucket Bucket
	Match  func(pool.Record) bool
}

// Thresholds tunes the numeric rules.
type Thresholds struct {
	TwosThreshold    int
	UltimateMinHacks int
}

// DefaultThresholds match the launch calendar.
var DefaultThresholds = Thresholds{TwosThreshold: 16, UltimateMinHacks: 2}

// Rules returns the priority-ordered rule set. Rarer combinations come first
// so a record is never demoted to a broader bucket.
func Rules(th Thresholds) []Rule {
	return []Rule{
		{
			Name:   "ultimate",
			Bucket: Ultimate,
			Match: func(r pool.Record) bool {
				hacks := r.Value(pool.HackA1) + r.Value(pool.HackA2)
				return r.Value(pool.Perkeo) > 0 && r.Value(pool.Showman) > 0 && hacks >= th.UltimateMinHacks
			},
		},
		{
			Name:   "editions",
			Bucket: Friday,
			Match:  anyPositive(pool.PolychromeWee, pool.HolographicWee, pool.FoilWee),
		},
		{
			Name:   "negative",
			Bucket: Monday,
			Match:  anyPositive(pool.NegativeChad, pool.NegativeHack, pool.NegativeWee),
		},
		{
			Name:   "high-twos",
			Bucket: Tuesday,
			Match: func(r pool.Record) bool {
				return r.TwosCount() >= th.TwosThreshold
			},
		},
		{
			Name:   "multiplier",
			Bucket: Thursday,
			Match:  anyPositive(pool.Showman),
		},
		{
			Name:   "copy",
			Bucket: Wednesday,
			Match:  anyPositive(pool.Blueprint, pool.Brainstorm),
		},
	}
}

func anyPositive(attrs ...pool.Attr) func(pool.Record) bool {
	return func(r pool.Record) bool {
		for _, a := range attrs {
			if r.Value(a) > 0 {
				return true
			}
		}
		return false
	}
}

// Classifier places records into buckets.
type Classifier struct {
	Rules   []Rule
	Default Bucket
	Log     zerolog.Logger
}

// New returns a classifier with the standard rule set.
func New(th Thresholds, logger zerolog.Logger) Classifier {
	return Classifier{Rules: Rules(th), Default: Default, Log: logger}
}

// Match returns the bucket and the name of the rule that placed the record.
// A pre-assigned category label wins over every rule; the rule name is then
// "label", or "label-fallback" when the label is not a known bucket.
func (c Classifier) Match(r pool.Record) (Bucket, string) {
	if r.Category != "" {
		if b, ok := ParseBucket(r.Category); ok {
			return b, "label"
		}
		return c.defaultBucket(), "label-fallback"
	}
	for _, rule := range c.Rules {
		if rule.Match(r) {
			return rule.Bucket, rule.Name
		}
	}
	return c.defaultBucket(), "default"
}

// Classify returns the single bucket for a record.
func (c Classifier) Classify(r pool.Record) Bucket {
	b, _ := c.Match(r)
	return b
}

func (c Classifier) defaultBucket() Bucket {
	if c.Default == "" {
		return Default
	}
	return c.Default
}

// Partition classifies every record, preserving input order within each
// bucket. Unrecognized category labels are warned and fall back to the
// default bucket.
func (c Classifier) Partition(records []pool.Record) Buckets {
	out := NewBuckets()
	for _, r := range records {
		b, rule := c.Match(r)
		if rule == "label-fallback" {
			c.Log.Warn().Str("seed", r.ID).Str("label", r.Category).Str("bucket", string(b)).
				Msg("unknown category label, using default bucket")
		}
		out[b] = append(out[b], r)
	}
	return out
}
