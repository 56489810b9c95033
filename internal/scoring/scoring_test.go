package scoring

import (
	"errors"
	"testing"
	"time"

	"github.com/jonathan/sitemap-creator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func records(urls ...string) []types.PageRecord {
	out := make([]types.PageRecord, len(urls))
	for i, u := range urls {
		out[i] = types.PageRecord{URL: u}
	}
	return out
}

func scoreAll(t *testing.T, p *Policy, recs []types.PageRecord) []types.PageRecord {
	t.Helper()
	out := make([]types.PageRecord, len(recs))
	for i := range recs {
		rec, err := p.Score(recs, i, len(recs))
		require.NoError(t, err)
		out[i] = rec
	}
	return out
}

func TestURLDepth(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"http://a.com", 3},
		{"http://a.com/", 4},
		{"http://a.com/x/y", 5},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, URLDepth(tt.url))
		})
	}
}

func TestScore_CrawledFirst(t *testing.T) {
	p := New(Options{PriorityMode: types.PriorityCrawledFirst}, fixedNow)
	recs := records("http://a.com/", "http://a.com/1", "http://a.com/2", "http://a.com/3")

	scored := scoreAll(t, p, recs)

	want := []float64{1.0, 0.8, 0.5, 0.3}
	for i, rec := range scored {
		require.NotNil(t, rec.Priority, "record %d", i)
		assert.InDelta(t, want[i], *rec.Priority, 1e-9, "record %d", i)
	}
}

func TestScore_CrawledFirstNonIncreasing(t *testing.T) {
	p := New(Options{PriorityMode: types.PriorityCrawledFirst}, fixedNow)
	recs := make([]types.PageRecord, 37)
	for i := range recs {
		recs[i] = types.PageRecord{URL: "http://a.com/p"}
	}

	scored := scoreAll(t, p, recs)

	assert.Equal(t, 1.0, *scored[0].Priority)
	for i := 1; i < len(scored); i++ {
		assert.LessOrEqual(t, *scored[i].Priority, *scored[i-1].Priority, "record %d", i)
		assert.InDelta(t, round1(*scored[i].Priority), *scored[i].Priority, 1e-9)
	}
}

func TestScore_URLStructure(t *testing.T) {
	p := New(Options{PriorityMode: types.PriorityURLStructure}, fixedNow)
	recs := records("http://a.com/", "http://a.com/x/y", "http://a.com/x", "http://a.com/x/y/z/w")

	scored := scoreAll(t, p, recs)

	assert.Equal(t, 1.0, *scored[0].Priority, "root is always 1.0")
	assert.InDelta(t, 0.9, *scored[1].Priority, 1e-9)
	assert.InDelta(t, 1.0, *scored[2].Priority, 1e-9, "capped at protocol maximum")
	assert.InDelta(t, 0.7, *scored[3].Priority, 1e-9)
}

func TestScore_URLStructureEmptyURL(t *testing.T) {
	p := New(Options{PriorityMode: types.PriorityURLStructure}, fixedNow)
	recs := records("http://a.com/", "")

	_, err := p.Score(recs, 1, len(recs))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRecord))
}

func TestScore_IndexOutOfRange(t *testing.T) {
	p := New(DefaultOptions(), fixedNow)
	recs := records("http://a.com/")

	_, err := p.Score(recs, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = p.Score(recs, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestScore_MinPriorityFloor(t *testing.T) {
	p := New(Options{PriorityMode: types.PriorityCrawledFirst, MinPriority: 0.5}, fixedNow)
	recs := make([]types.PageRecord, 10)
	for i := range recs {
		recs[i] = types.PageRecord{URL: "http://a.com/p"}
	}

	scored := scoreAll(t, p, recs)

	for i, rec := range scored {
		assert.GreaterOrEqual(t, *rec.Priority, 0.5, "record %d", i)
	}
	assert.InDelta(t, 0.9, *scored[1].Priority, 1e-9, "floor never lowers a higher score")
}

func TestScore_PriorityDisabled(t *testing.T) {
	p := New(Options{PriorityMode: types.PriorityDisabled, FrequencyMode: types.FrequencyDisabled}, fixedNow)
	existing := 0.4
	recs := []types.PageRecord{{URL: "http://a.com/", Priority: &existing}}

	rec, err := p.Score(recs, 0, 1)
	require.NoError(t, err)
	require.NotNil(t, rec.Priority)
	assert.Equal(t, 0.4, *rec.Priority, "disabled mode leaves priority untouched")
	assert.False(t, rec.ChangeFrequency.IsSet())
}

func TestScore_DoesNotMutateInput(t *testing.T) {
	p := New(DefaultOptions(), fixedNow)
	recs := records("http://a.com/", "http://a.com/x")

	_, err := p.Score(recs, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, recs[1].Priority)
	assert.False(t, recs[1].ChangeFrequency.IsSet())
}

func TestScore_LastModifiedBuckets(t *testing.T) {
	p := New(Options{FrequencyMode: types.FrequencyLastModified, MinFrequency: types.FrequencyNever}, fixedNow)

	tests := []struct {
		name string
		age  time.Duration
		want types.ChangeFrequency
	}{
		{"minutes old", 10 * time.Minute, types.FrequencyAlways},
		{"exactly one hour", time.Hour, types.FrequencyHourly},
		{"half a day", 12 * time.Hour, types.FrequencyHourly},
		{"three days", 72 * time.Hour, types.FrequencyDaily},
		{"two weeks", 14 * 24 * time.Hour, types.FrequencyWeekly},
		{"six months", 180 * 24 * time.Hour, types.FrequencyMonthly},
		{"eighteen months", 540 * 24 * time.Hour, types.FrequencyYearly},
		{"thirty months", 900 * 24 * time.Hour, types.FrequencyNever},
		{"five years", 5 * 365 * 24 * time.Hour, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modified := fixedNow.Add(-tt.age)
			recs := []types.PageRecord{{URL: "http://a.com/"}, {URL: "http://a.com/x", LastModified: &modified}}

			rec, err := p.Score(recs, 1, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.ChangeFrequency)
		})
	}
}

func TestScore_LastModifiedMissingTimestamp(t *testing.T) {
	p := New(DefaultOptions(), fixedNow)
	recs := records("http://a.com/", "http://a.com/x")

	scored := scoreAll(t, p, recs)

	assert.Equal(t, types.FrequencyAlways, scored[0].ChangeFrequency, "root is always 'always'")
	assert.False(t, scored[1].ChangeFrequency.IsSet())
}

func TestScore_MinFrequencyClamp(t *testing.T) {
	p := New(Options{FrequencyMode: types.FrequencyLastModified, MinFrequency: types.FrequencyWeekly}, fixedNow)
	old := fixedNow.Add(-400 * 24 * time.Hour)
	recent := fixedNow.Add(-2 * time.Hour)
	recs := []types.PageRecord{
		{URL: "http://a.com/"},
		{URL: "http://a.com/old", LastModified: &old},
		{URL: "http://a.com/new", LastModified: &recent},
	}

	scored := scoreAll(t, p, recs)

	assert.Equal(t, types.FrequencyWeekly, scored[1].ChangeFrequency, "yearly is clamped up to weekly")
	assert.Equal(t, types.FrequencyHourly, scored[2].ChangeFrequency, "more frequent values are kept")
}

func TestScore_PriorityDerived(t *testing.T) {
	p := New(Options{PriorityMode: types.PriorityDisabled, FrequencyMode: types.FrequencyPriority, MinFrequency: types.FrequencyNever}, fixedNow)

	tests := []struct {
		priority *float64
		want     types.ChangeFrequency
	}{
		{ptr(0.95), types.FrequencyAlways},
		{ptr(0.9), types.FrequencyAlways},
		{ptr(0.7), types.FrequencyHourly},
		{ptr(0.6), types.FrequencyDaily},
		{ptr(0.5), types.FrequencyWeekly},
		{ptr(0.2), types.FrequencyMonthly},
		{ptr(0.1), types.FrequencyYearly},
		{ptr(0.0), types.FrequencyNever},
		{nil, types.FrequencyNever},
	}

	for _, tt := range tests {
		recs := []types.PageRecord{{URL: "http://a.com/"}, {URL: "http://a.com/x", Priority: tt.priority}}
		rec, err := p.Score(recs, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, tt.want, rec.ChangeFrequency)
	}
}

func TestScore_PriorityDerivedUsesComputedPriority(t *testing.T) {
	p := New(Options{PriorityMode: types.PriorityCrawledFirst, FrequencyMode: types.FrequencyPriority}, fixedNow)
	recs := records("http://a.com/", "http://a.com/a", "http://a.com/b", "http://a.com/c", "http://a.com/d")

	scored := scoreAll(t, p, recs)

	// Priorities 1.0, 0.8, 0.6, 0.4, 0.2.
	assert.Equal(t, types.FrequencyAlways, scored[0].ChangeFrequency)
	assert.Equal(t, types.FrequencyHourly, scored[1].ChangeFrequency)
	assert.Equal(t, types.FrequencyDaily, scored[2].ChangeFrequency)
	assert.Equal(t, types.FrequencyWeekly, scored[3].ChangeFrequency)
	assert.Equal(t, types.FrequencyMonthly, scored[4].ChangeFrequency)
}

func ptr(v float64) *float64 { return &v }
