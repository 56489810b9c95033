// Package types provides type definitions for structured data used throughout the sitemap-creator system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// PageRecord is one discovered page. Its position in the input sequence is its identity:
// scoring depends on the order in which records were discovered.
type PageRecord struct {
	URL             string          `json:"url"`
	LastModified    *time.Time      `json:"last_modified,omitempty"`
	Priority        *float64        `json:"priority,omitempty"`
	ChangeFrequency ChangeFrequency `json:"change_frequency,omitempty"` // empty means unset
}

// HasPriority reports whether a priority has been assigned.
func (r PageRecord) HasPriority() bool {
	return r.Priority != nil
}

// PriorityValue returns the assigned priority, or 0 when unset.
func (r PageRecord) PriorityValue() float64 {
	if r.Priority == nil {
		return 0
	}
	return *r.Priority
}

// WithPriority returns a copy of the record carrying priority p.
func (r PageRecord) WithPriority(p float64) PageRecord {
	r.Priority = &p
	return r
}

// Clone returns a copy that shares no pointers with r.
func (r PageRecord) Clone() PageRecord {
	out := r
	if r.LastModified != nil {
		t := *r.LastModified
		out.LastModified = &t
	}
	if r.Priority != nil {
		p := *r.Priority
		out.Priority = &p
	}
	return out
}
