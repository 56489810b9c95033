package types

import (
	"fmt"
	"strings"
)

// PriorityMode selects how page priorities are computed.
type PriorityMode int

const (
	// PriorityDisabled leaves priorities untouched.
	PriorityDisabled PriorityMode = iota
	// PriorityCrawledFirst gives pages discovered earlier a higher priority.
	PriorityCrawledFirst
	// PriorityURLStructure gives deeper paths a lower priority.
	PriorityURLStructure
)

var priorityModeNames = map[PriorityMode]string{
	PriorityDisabled:     "disabled",
	PriorityCrawledFirst: "crawled_first",
	PriorityURLStructure: "url_structure",
}

func (m PriorityMode) String() string {
	if s, ok := priorityModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("PriorityMode(%d)", int(m))
}

// ParsePriorityMode parses the text form of a priority mode. Empty input selects the default.
func ParsePriorityMode(s string) (PriorityMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityCrawledFirst, nil
	}
	for m, name := range priorityModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown priority mode %q", s)
}

// FrequencyMode selects how change frequencies are computed.
type FrequencyMode int

const (
	// FrequencyDisabled leaves change frequencies untouched.
	FrequencyDisabled FrequencyMode = iota
	// FrequencyLastModified derives the frequency from the page age.
	FrequencyLastModified
	// FrequencyPriority derives the frequency from the page priority.
	FrequencyPriority
)

var frequencyModeNames = map[FrequencyMode]string{
	FrequencyDisabled:     "disabled",
	FrequencyLastModified: "last_modified",
	FrequencyPriority:     "priority",
}

func (m FrequencyMode) String() string {
	if s, ok := frequencyModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("FrequencyMode(%d)", int(m))
}

// ParseFrequencyMode parses the text form of a frequency mode. Empty input selects the default.
func ParseFrequencyMode(s string) (FrequencyMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FrequencyLastModified, nil
	}
	for m, name := range frequencyModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown frequency mode %q", s)
}
