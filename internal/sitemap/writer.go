package sitemap

import (
	"fmt"
	"time"

	"github.com/jonathan/sitemap-creator/internal/storage"
	"github.com/jonathan/sitemap-creator/internal/types"
)

// Writer groups records into fixed-capacity batches and stores each full batch as a numbered
// urlset document. Batches are positional: batch N always covers input positions
// [(N-1)*capacity, N*capacity), including records skipped for having no URL.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	store    storage.Store
	capacity int

	pending  []types.PageRecord
	produced int
	written  int
	skipped  int
}

// NewWriter creates a Writer that stores batches of up to capacity records.
func NewWriter(store storage.Store, capacity int) (*Writer, error) {
	if store == nil {
		return nil, fmt.Errorf("sitemap writer requires a store")
	}
	if capacity < 1 || capacity > MaxEntriesPerSitemap {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidCapacity, capacity, MaxEntriesPerSitemap)
	}
	return &Writer{
		store:    store,
		capacity: capacity,
		pending:  make([]types.PageRecord, 0, capacity),
	}, nil
}

// Append adds the next record and flushes once the batch is full.
func (w *Writer) Append(rec types.PageRecord) error {
	w.pending = append(w.pending, rec)
	if len(w.pending) >= w.capacity {
		return w.Flush()
	}
	return nil
}

// Flush stores the pending batch under the next sequence number. It is a no-op when nothing
// is pending. Storage errors are returned as-is and leave the batch pending.
func (w *Writer) Flush() error {
	if len(w.pending) == 0 {
		return nil
	}

	doc, err := EncodeURLSet(w.pending)
	if err != nil {
		return err
	}

	if err := w.store.Write(BatchName(w.produced+1), doc); err != nil {
		return err
	}

	for _, rec := range w.pending {
		if rec.URL == "" {
			w.skipped++
		} else {
			w.written++
		}
	}
	w.produced++
	w.pending = w.pending[:0]
	return nil
}

// Produced returns the number of batches stored so far.
func (w *Writer) Produced() int {
	return w.produced
}

// Written returns the number of URL entries stored so far.
func (w *Writer) Written() int {
	return w.written
}

// Skipped returns the number of stored positions that had no URL.
func (w *Writer) Skipped() int {
	return w.skipped
}

// WriteIndex stores the sitemap index covering every produced batch.
func (w *Writer) WriteIndex(resolve func(seq int) string, generatedAt time.Time) error {
	doc, err := BuildIndex(w.produced, resolve, generatedAt)
	if err != nil {
		return err
	}
	return w.store.Write(IndexName, doc)
}
