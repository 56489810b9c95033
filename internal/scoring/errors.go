// Package scoring assigns sitemap priorities and change frequencies to page records.
package scoring

import "errors"

// ErrInvalidRecord is returned when a record cannot be scored, such as an empty URL under
// URL-structure scoring or an index outside the batch.
var ErrInvalidRecord = errors.New("invalid record")
