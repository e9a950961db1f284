package schedule

import (
	"time"

	"dailywee/internal/classify"
)

// Theme is the presentation of one calendar day: a display name, the label
// of its signature joker, and the bucket that supplies its seed.
type Theme struct {
	Name   string
	Label  string
	Bucket classify.Bucket
}

// Weekly maps time.Weekday to its theme. Saturday and Sunday share one.
var Weekly = [7]Theme{
	time.Sunday:    {Name: "Weekend Ritual", Label: "Joker", Bucket: classify.Weekend},
	time.Monday:    {Name: "Madness Monday", Label: "Madness", Bucket: classify.Monday},
	time.Tuesday:   {Name: "Twosday", Label: "Joker", Bucket: classify.Tuesday},
	time.Wednesday: {Name: "Wee Wednesday", Label: "Wee Joker", Bucket: classify.Wednesday},
	time.Thursday:  {Name: "Threshold Thursday", Label: "Joker", Bucket: classify.Thursday},
	time.Friday:    {Name: "Foil Friday", Label: "Joker", Bucket: classify.Friday},
	time.Saturday:  {Name: "Weekend Ritual", Label: "Joker", Bucket: classify.Weekend},
}

// UltimateTheme replaces the weekday theme on the monthly override day.
var UltimateTheme = Theme{Name: "THE ULTIMATE WEE", Label: "Perkeo", Bucket: classify.Ultimate}

// WeekdayTheme returns the weekday theme for a UTC date.
func WeekdayTheme(date time.Time) Theme {
	return Weekly[date.UTC().Weekday()]
}

// DateOf returns the UTC date of a day offset.
func DateOf(epoch time.Time, offset int) time.Time {
	return epoch.UTC().Add(time.Duration(offset) * 24 * time.Hour)
}

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// DayOffset is floor((now - epoch) / 86400000) over UTC milliseconds, the
// index a reader of the calendar uses for "today". It is negative before
// launch.
func DayOffset(epoch, now time.Time) int {
	ms := now.UTC().Sub(epoch.UTC()).Milliseconds()
	d := ms / dayMillis
	if ms%dayMillis != 0 && ms < 0 {
		d--
	}
	return int(d)
}
