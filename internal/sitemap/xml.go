package sitemap

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/sitemap-creator/internal/types"
)

// Namespace is the sitemap protocol XML namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// TimeFormat is the W3C datetime layout used for lastmod values, always in UTC.
const TimeFormat = "2006-01-02T15:04:05+00:00"

// MaxEntriesPerSitemap is the protocol limit on URLs in one document.
const MaxEntriesPerSitemap = 50000

// XMLURL represents a <url> element
type XMLURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// XMLURLSet represents a <urlset> document
type XMLURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	URLs    []XMLURL `xml:"url"`
}

// XMLSitemap represents a <sitemap> element of an index
type XMLSitemap struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// XMLSitemapIndex represents a <sitemapindex> document
type XMLSitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Xmlns    string       `xml:"xmlns,attr,omitempty"`
	Sitemaps []XMLSitemap `xml:"sitemap"`
}

// FormatTime renders t as a lastmod value.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// FormatPriority renders p with one decimal place.
func FormatPriority(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}

// toXMLURL converts a record; ok is false for records without a URL.
func toXMLURL(rec types.PageRecord) (XMLURL, bool) {
	if rec.URL == "" {
		return XMLURL{}, false
	}
	u := XMLURL{Loc: rec.URL}
	if rec.LastModified != nil {
		u.LastMod = FormatTime(*rec.LastModified)
	}
	if rec.ChangeFrequency.IsSet() {
		u.ChangeFreq = rec.ChangeFrequency.String()
	}
	if rec.Priority != nil {
		u.Priority = FormatPriority(*rec.Priority)
	}
	return u, true
}

// EncodeURLSet serializes records into a urlset document. Records without a URL are skipped.
func EncodeURLSet(records []types.PageRecord) ([]byte, error) {
	set := XMLURLSet{Xmlns: Namespace, URLs: make([]XMLURL, 0, len(records))}
	for _, rec := range records {
		if u, ok := toXMLURL(rec); ok {
			set.URLs = append(set.URLs, u)
		}
	}
	return marshalDocument(set)
}

func marshalDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, &EncodeError{Message: "failed to marshal document", Cause: err}
	}
	if err := enc.Close(); err != nil {
		return nil, &EncodeError{Message: "failed to flush document", Cause: err}
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// DecodeURLSet parses a urlset document back into page records.
func DecodeURLSet(data []byte) ([]types.PageRecord, error) {
	var set XMLURLSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, &EncodeError{Message: "failed to parse urlset", Cause: err}
	}

	records := make([]types.PageRecord, 0, len(set.URLs))
	for _, u := range set.URLs {
		rec := types.PageRecord{URL: strings.TrimSpace(u.Loc)}
		if u.LastMod != "" {
			t, err := ParseTime(u.LastMod)
			if err != nil {
				return nil, &EncodeError{Message: "invalid lastmod for " + rec.URL, Cause: err}
			}
			rec.LastModified = &t
		}
		if u.ChangeFreq != "" {
			f, err := types.ParseChangeFrequency(u.ChangeFreq)
			if err != nil {
				return nil, &EncodeError{Message: "invalid changefreq for " + rec.URL, Cause: err}
			}
			rec.ChangeFrequency = f
		}
		if u.Priority != "" {
			p, err := strconv.ParseFloat(strings.TrimSpace(u.Priority), 64)
			if err != nil {
				return nil, &EncodeError{Message: "invalid priority for " + rec.URL, Cause: err}
			}
			rec.Priority = &p
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseTime accepts the W3C datetime forms used in lastmod values.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
