package schedule

import (
	"time"

	"github.com/rs/zerolog"

	"dailywee/internal/classify"
)

// Options fixes the calendar window.
type Options struct {
	Epoch              time.Time
	HorizonDays        int
	UltimateDayOfMonth int
}

// Generator assembles calendars from shuffled buckets.
type Generator struct {
	Options
	Log zerolog.Logger
}

// ThemeFor resolves the theme of a date: the weekday table, replaced by the
// ultimate theme on the override day-of-month when the ultimate bucket has
// records.
func (g Generator) ThemeFor(date time.Time, buckets classify.Buckets) Theme {
	th := WeekdayTheme(date)
	if g.UltimateDayOfMonth > 0 && date.UTC().Day() == g.UltimateDayOfMonth && len(buckets[classify.Ultimate]) > 0 {
		th = UltimateTheme
	}
	return th
}

// Generate returns exactly HorizonDays entries. Day d takes
// bucket[d mod len(bucket)] from its theme's bucket; the index is the global
// day offset, not a per-bucket counter. A day whose bucket is empty is nil.
func (g Generator) Generate(buckets classify.Buckets) Calendar {
	if g.HorizonDays <= 0 {
		return Calendar{}
	}
	cal := make(Calendar, g.HorizonDays)
	for d := 0; d < g.HorizonDays; d++ {
		date := DateOf(g.Epoch, d)
		th := g.ThemeFor(date, buckets)
		list := buckets[th.Bucket]
		if len(list) == 0 {
			g.Log.Warn().Int("day", d+1).Str("date", date.Format("2006-01-02")).Str("bucket", string(th.Bucket)).
				Msg("no seeds for bucket")
			continue
		}
		cal[d] = Project(list[d%len(list)], th)
	}
	return cal
}
