package sitemap

import (
	"encoding/xml"
	"time"
)

// BuildIndex serializes a sitemap index with one entry per batch 1..batchCount. resolve maps
// a batch sequence number to its public URL. Every entry carries the same generation time.
func BuildIndex(batchCount int, resolve func(seq int) string, generatedAt time.Time) ([]byte, error) {
	if batchCount < 1 {
		return nil, ErrNoBatches
	}

	lastMod := FormatTime(generatedAt)
	idx := XMLSitemapIndex{Xmlns: Namespace, Sitemaps: make([]XMLSitemap, 0, batchCount)}
	for seq := 1; seq <= batchCount; seq++ {
		idx.Sitemaps = append(idx.Sitemaps, XMLSitemap{Loc: resolve(seq), LastMod: lastMod})
	}
	return marshalDocument(idx)
}

// DecodeIndex parses a sitemap index document.
func DecodeIndex(data []byte) ([]XMLSitemap, error) {
	var idx XMLSitemapIndex
	if err := xml.Unmarshal(data, &idx); err != nil {
		return nil, &EncodeError{Message: "failed to parse sitemap index", Cause: err}
	}
	return idx.Sitemaps, nil
}
