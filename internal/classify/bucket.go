package classify

import (
	"strings"

	"dailywee/internal/pool"
)

// Bucket names a thematic category. Weekday buckets carry the day whose theme
// they feed.
type Bucket string

const (
	Monday    Bucket = "Monday"
	Tuesday   Bucket = "Tuesday"
	Wednesday Bucket = "Wednesday"
	Thursday  Bucket = "Thursday"
	Friday    Bucket = "Friday"
	Weekend   Bucket = "Weekend"
	Ultimate  Bucket = "Ultimate"
)

// Default receives every record no rule claims.
const Default = Weekend

// Order is the declaration order of buckets. Shuffling walks buckets in this
// order, so it is part of the calendar's reproducibility contract.
var Order = []Bucket{Monday, Tuesday, Wednesday, Thursday, Friday, Weekend, Ultimate}

// ParseBucket matches a label case-insensitively against known bucket names.
func ParseBucket(label string) (Bucket, bool) {
	label = strings.TrimSpace(label)
	for _, b := range Order {
		if strings.EqualFold(string(b), label) {
			return b, true
		}
	}
	return "", false
}

// Buckets holds the records assigned to each bucket, in assignment order until
// shuffled.
type Buckets map[Bucket][]pool.Record

// NewBuckets returns a Buckets with every known bucket present and empty.
func NewBuckets() Buckets {
	b := make(Buckets, len(Order))
	for _, name := range Order {
		b[name] = nil
	}
	return b
}

// Sizes returns the record count per bucket.
func (b Buckets) Sizes() map[Bucket]int {
	out := make(map[Bucket]int, len(b))
	for name, list := range b {
		out[name] = len(list)
	}
	return out
}

// Total returns the number of records across all buckets.
func (b Buckets) Total() int {
	n := 0
	for _, list := range b {
		n += len(list)
	}
	return n
}
