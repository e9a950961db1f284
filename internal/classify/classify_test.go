package classify

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailywee/internal/pool"
)

func rec(id string, attrs map[pool.Attr]int) pool.Record {
	return pool.NewRecord(id, attrs)
}

func TestClassifyRuleByRule(t *testing.T) {
	c := New(DefaultThresholds, zerolog.Nop())
	cases := []struct {
		name  string
		attrs map[pool.Attr]int
		want  Bucket
		rule  string
	}{
		{"ultimate", map[pool.Attr]int{pool.Perkeo: 1, pool.Showman: 1, pool.HackA1: 1, pool.HackA2: 1}, Ultimate, "ultimate"},
		{"ultimate two hacks in one ante", map[pool.Attr]int{pool.Perkeo: 1, pool.Showman: 1, pool.HackA1: 2}, Ultimate, "ultimate"},
		{"ultimate missing hack", map[pool.Attr]int{pool.Perkeo: 1, pool.Showman: 1, pool.HackA1: 1}, Thursday, "multiplier"},
		{"poly", map[pool.Attr]int{pool.PolychromeWee: 1}, Friday, "editions"},
		{"holo", map[pool.Attr]int{pool.HolographicWee: 1}, Friday, "editions"},
		{"foil", map[pool.Attr]int{pool.FoilWee: 2}, Friday, "editions"},
		{"negative chad", map[pool.Attr]int{pool.NegativeChad: 1}, Monday, "negative"},
		{"negative hack", map[pool.Attr]int{pool.NegativeHack: 1}, Monday, "negative"},
		{"negative wee", map[pool.Attr]int{pool.NegativeWee: 1}, Monday, "negative"},
		{"high twos", map[pool.Attr]int{pool.Twos: 16}, Tuesday, "high-twos"},
		{"twos below threshold", map[pool.Attr]int{pool.Twos: 15}, Weekend, "default"},
		{"showman", map[pool.Attr]int{pool.Showman: 1}, Thursday, "multiplier"},
		{"blueprint", map[pool.Attr]int{pool.Blueprint: 1}, Wednesday, "copy"},
		{"brainstorm", map[pool.Attr]int{pool.Brainstorm: 1}, Wednesday, "copy"},
		{"nothing", nil, Weekend, "default"},
		{"zero values", map[pool.Attr]int{pool.Showman: 0, pool.Blueprint: 0}, Weekend, "default"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, rule := c.Match(rec("X", tc.attrs))
			assert.Equal(t, tc.want, b)
			assert.Equal(t, tc.rule, rule)
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	c := New(DefaultThresholds, zerolog.Nop())
	// satisfies ultimate and high-twos
	r := rec("X", map[pool.Attr]int{pool.Perkeo: 1, pool.Showman: 1, pool.HackA1: 1, pool.HackA2: 1, pool.Twos: 20})
	assert.Equal(t, Ultimate, c.Classify(r))

	// satisfies editions, negative, high-twos, multiplier and copy
	r = rec("Y", map[pool.Attr]int{pool.FoilWee: 1, pool.NegativeHack: 1, pool.Twos: 18, pool.Showman: 1, pool.Blueprint: 1})
	assert.Equal(t, Friday, c.Classify(r))

	r = rec("Z", map[pool.Attr]int{pool.Twos: 18, pool.Showman: 1})
	assert.Equal(t, Tuesday, c.Classify(r))
}

func TestClassifyLabelOverride(t *testing.T) {
	var buf bytes.Buffer
	c := New(DefaultThresholds, zerolog.New(&buf))

	r := rec("X", map[pool.Attr]int{pool.Perkeo: 1, pool.Showman: 1, pool.HackA1: 2})
	r.Category = "wednesday"
	b, rule := c.Match(r)
	assert.Equal(t, Wednesday, b)
	assert.Equal(t, "label", rule)

	r.Category = "Caturday"
	buckets := c.Partition([]pool.Record{r})
	assert.Len(t, buckets[Weekend], 1)
	assert.Contains(t, buf.String(), "unknown category label")
}

func TestPartitionIsTotal(t *testing.T) {
	c := New(DefaultThresholds, zerolog.Nop())
	var records []pool.Record
	attrs := []pool.Attr{pool.Perkeo, pool.Showman, pool.HackA1, pool.HackA2, pool.FoilWee, pool.NegativeChad, pool.Blueprint, pool.Twos}
	for mask := 0; mask < 1<<len(attrs); mask++ {
		m := map[pool.Attr]int{}
		for i, a := range attrs {
			if mask&(1<<i) != 0 {
				m[a] = 1
				if a == pool.Twos {
					m[a] = 16
				}
			}
		}
		records = append(records, rec("r", m))
	}
	buckets := c.Partition(records)
	require.Equal(t, len(records), buckets.Total())
	known := map[Bucket]bool{}
	for _, b := range Order {
		known[b] = true
	}
	for name := range buckets {
		assert.True(t, known[name], "unexpected bucket %s", name)
	}
}

func TestParseBucket(t *testing.T) {
	b, ok := ParseBucket(" ULTIMATE ")
	assert.True(t, ok)
	assert.Equal(t, Ultimate, b)
	_, ok = ParseBucket("sunday")
	assert.False(t, ok)
}
