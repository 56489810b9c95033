package types

import (
	"fmt"
	"strings"
	"time"
)

// ChangeFrequency is the sitemap protocol hint for how often a page changes.
type ChangeFrequency string

// Frequencies, from most to least frequent.
const (
	FrequencyAlways  ChangeFrequency = "always"
	FrequencyHourly  ChangeFrequency = "hourly"
	FrequencyDaily   ChangeFrequency = "daily"
	FrequencyWeekly  ChangeFrequency = "weekly"
	FrequencyMonthly ChangeFrequency = "monthly"
	FrequencyYearly  ChangeFrequency = "yearly"
	FrequencyNever   ChangeFrequency = "never"
)

// frequencyBucket maps a frequency to the maximum page age it covers.
type frequencyBucket struct {
	Frequency ChangeFrequency
	MaxAge    time.Duration
}

// frequencyTable is ordered always→never; ceilings increase monotonically.
var frequencyTable = []frequencyBucket{
	{FrequencyAlways, 3600 * time.Second},      // 1 hour
	{FrequencyHourly, 86400 * time.Second},     // 1 day
	{FrequencyDaily, 604800 * time.Second},     // 1 week
	{FrequencyWeekly, 2678400 * time.Second},   // 1 month
	{FrequencyMonthly, 31536000 * time.Second}, // 1 year
	{FrequencyYearly, 63072000 * time.Second},  // 2 years
	{FrequencyNever, 94608000 * time.Second},   // 3 years
}

// Frequencies returns every frequency in table order.
func Frequencies() []ChangeFrequency {
	out := make([]ChangeFrequency, len(frequencyTable))
	for i, b := range frequencyTable {
		out[i] = b.Frequency
	}
	return out
}

// FrequencyForAge returns the first frequency whose ceiling exceeds age.
// ok is false when age is beyond every ceiling.
func FrequencyForAge(age time.Duration) (ChangeFrequency, bool) {
	for _, b := range frequencyTable {
		if age < b.MaxAge {
			return b.Frequency, true
		}
	}
	return "", false
}

// ParseChangeFrequency parses a frequency label, ignoring case and surrounding space.
func ParseChangeFrequency(s string) (ChangeFrequency, error) {
	f := ChangeFrequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown change frequency %q", s)
	}
	return f, nil
}

// Valid reports whether f is one of the protocol frequencies.
func (f ChangeFrequency) Valid() bool {
	return f.rank() >= 0
}

// IsSet reports whether a frequency has been assigned.
func (f ChangeFrequency) IsSet() bool {
	return f != ""
}

// MaxAge returns the age ceiling of f, or 0 for an unknown frequency.
func (f ChangeFrequency) MaxAge() time.Duration {
	if i := f.rank(); i >= 0 {
		return frequencyTable[i].MaxAge
	}
	return 0
}

// LessFrequentThan reports whether f has a larger age ceiling than other.
func (f ChangeFrequency) LessFrequentThan(other ChangeFrequency) bool {
	return f.MaxAge() > other.MaxAge()
}

func (f ChangeFrequency) String() string {
	return string(f)
}

func (f ChangeFrequency) rank() int {
	for i, b := range frequencyTable {
		if b.Frequency == f {
			return i
		}
	}
	return -1
}
