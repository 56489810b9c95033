package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jonathan/sitemap-creator/internal/types"
)

// Options configures a scoring Policy. It is read-only for the duration of a run.
type Options struct {
	PriorityMode  types.PriorityMode
	MinPriority   float64
	FrequencyMode types.FrequencyMode
	MinFrequency  types.ChangeFrequency
}

// DefaultOptions returns the default scoring behavior: crawled-first priorities and
// last-modified frequencies with no effective floors.
func DefaultOptions() Options {
	return Options{
		PriorityMode:  types.PriorityCrawledFirst,
		MinPriority:   0,
		FrequencyMode: types.FrequencyLastModified,
		MinFrequency:  types.FrequencyNever,
	}
}

// Policy scores the records of a single run. A Policy caches the depth of the site root, so
// it must not be shared between runs.
type Policy struct {
	opts      Options
	now       time.Time
	rootDepth int
}

// New creates a Policy that measures page ages against now.
func New(opts Options, now time.Time) *Policy {
	if opts.MinFrequency == "" {
		opts.MinFrequency = types.FrequencyNever
	}
	return &Policy{opts: opts, now: now}
}

// Score returns a copy of records[index] with its priority and change frequency assigned.
// total is the number of records in the run and must be positive.
func (p *Policy) Score(records []types.PageRecord, index, total int) (types.PageRecord, error) {
	if total <= 0 || index < 0 || index >= len(records) || index >= total {
		return types.PageRecord{}, fmt.Errorf("%w: index %d outside run of %d records", ErrInvalidRecord, index, total)
	}

	rec := records[index].Clone()

	priority, err := p.priority(records, rec, index, total)
	if err != nil {
		return types.PageRecord{}, err
	}
	if priority != nil {
		rec.Priority = priority
	}

	if freq := p.frequency(rec, index); freq != "" {
		rec.ChangeFrequency = freq
	}

	return rec, nil
}

// priority computes the record priority, or nil when priorities are disabled.
func (p *Policy) priority(records []types.PageRecord, rec types.PageRecord, index, total int) (*float64, error) {
	if p.opts.PriorityMode == types.PriorityDisabled {
		return nil, nil
	}

	// The site root always ranks highest.
	if index == 0 {
		v := 1.0
		return &v, nil
	}

	var v float64
	switch p.opts.PriorityMode {
	case types.PriorityURLStructure:
		if p.rootDepth == 0 {
			p.rootDepth = URLDepth(records[0].URL)
		}
		depth := URLDepth(rec.URL)
		if depth == 0 || p.rootDepth == 0 {
			return nil, fmt.Errorf("%w: record %d has no URL segments", ErrInvalidRecord, index)
		}
		// Pages as shallow as the root would otherwise score above the protocol maximum.
		v = math.Min(round1((1/float64(depth))*float64(p.rootDepth)+0.1), 1.0)
	default:
		v = round1(float64(total-index) / float64(total))
	}

	if v < p.opts.MinPriority {
		v = p.opts.MinPriority
	}
	return &v, nil
}

// frequency computes the record change frequency, or "" to leave it untouched.
func (p *Policy) frequency(rec types.PageRecord, index int) types.ChangeFrequency {
	if p.opts.FrequencyMode == types.FrequencyDisabled {
		return ""
	}

	if index == 0 {
		return types.FrequencyAlways
	}

	var freq types.ChangeFrequency
	switch p.opts.FrequencyMode {
	case types.FrequencyPriority:
		freq = FrequencyForPriority(rec.PriorityValue())
	default:
		if rec.LastModified == nil {
			return ""
		}
		f, ok := types.FrequencyForAge(p.now.Sub(*rec.LastModified))
		if !ok {
			return ""
		}
		freq = f
	}

	if freq.LessFrequentThan(p.opts.MinFrequency) {
		freq = p.opts.MinFrequency
	}
	return freq
}

// FrequencyForPriority maps a priority onto a change frequency through fixed thresholds.
func FrequencyForPriority(priority float64) types.ChangeFrequency {
	switch {
	case priority >= 0.9:
		return types.FrequencyAlways
	case priority >= 0.7:
		return types.FrequencyHourly
	case priority >= 0.6:
		return types.FrequencyDaily
	case priority >= 0.4:
		return types.FrequencyWeekly
	case priority >= 0.2:
		return types.FrequencyMonthly
	case priority >= 0.1:
		return types.FrequencyYearly
	default:
		return types.FrequencyNever
	}
}

// URLDepth counts the "/"-delimited segments of u, empty segments included.
// "http://a.com/" has 4 segments; the empty string has none.
func URLDepth(u string) int {
	if u == "" {
		return 0
	}
	return strings.Count(u, "/") + 1
}

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
