package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyTable_MonotonicCeilings(t *testing.T) {
	freqs := Frequencies()
	require.Len(t, freqs, 7)
	assert.Equal(t, FrequencyAlways, freqs[0])
	assert.Equal(t, FrequencyNever, freqs[6])

	for i := 1; i < len(freqs); i++ {
		assert.Greater(t, freqs[i].MaxAge(), freqs[i-1].MaxAge(), "%s should have a larger ceiling than %s", freqs[i], freqs[i-1])
	}
}

func TestChangeFrequency_MaxAge(t *testing.T) {
	assert.Equal(t, time.Hour, FrequencyAlways.MaxAge())
	assert.Equal(t, 86400*time.Second, FrequencyHourly.MaxAge())
	assert.Equal(t, 94608000*time.Second, FrequencyNever.MaxAge())
	assert.Equal(t, time.Duration(0), ChangeFrequency("sometimes").MaxAge())
}

func TestFrequencyForAge(t *testing.T) {
	tests := []struct {
		name   string
		age    time.Duration
		want   ChangeFrequency
		wantOK bool
	}{
		{"fresh", 10 * time.Minute, FrequencyAlways, true},
		{"future timestamp", -time.Hour, FrequencyAlways, true},
		{"exactly one hour", time.Hour, FrequencyHourly, true},
		{"three days", 72 * time.Hour, FrequencyDaily, true},
		{"two weeks", 14 * 24 * time.Hour, FrequencyWeekly, true},
		{"six months", 180 * 24 * time.Hour, FrequencyMonthly, true},
		{"eighteen months", 540 * 24 * time.Hour, FrequencyYearly, true},
		{"thirty months", 900 * 24 * time.Hour, FrequencyNever, true},
		{"beyond every ceiling", 94608000 * time.Second, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FrequencyForAge(tt.age)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChangeFrequency(t *testing.T) {
	f, err := ParseChangeFrequency("  Weekly ")
	require.NoError(t, err)
	assert.Equal(t, FrequencyWeekly, f)

	_, err = ParseChangeFrequency("fortnightly")
	assert.Error(t, err)
}

func TestChangeFrequency_LessFrequentThan(t *testing.T) {
	assert.True(t, FrequencyNever.LessFrequentThan(FrequencyYearly))
	assert.False(t, FrequencyDaily.LessFrequentThan(FrequencyWeekly))
	assert.False(t, FrequencyDaily.LessFrequentThan(FrequencyDaily))
}
