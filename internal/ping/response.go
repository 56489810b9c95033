package ping

import (
	"bytes"
	"fmt"
	"mime"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/htmlindex"
)

var statusPattern = regexp.MustCompile(`(?:^|\s)([0-9]{3})(?:\s+(.*))?$`)

// allowedStatus holds the status codes that do not fail a ping.
var allowedStatus = map[int]bool{
	200: true,
	301: true,
	302: true,
}

// parseStatus extracts the status code and reason phrase from a header line without a colon.
func parseStatus(line string) (code int, reason string, ok bool) {
	m := statusPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return code, strings.TrimSpace(m[2]), true
}

// splitHeader splits "Name: value" into a lower-cased name and trimmed value.
func splitHeader(line string) (name, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(line[:i])), strings.TrimSpace(line[i+1:]), true
}

// decodeBody converts body to UTF-8 using the charset declared in contentType.
// Unknown charsets leave the body unchanged.
func decodeBody(body []byte, contentType string) string {
	if contentType == "" {
		return string(body)
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(body)
	}
	name := strings.ToLower(strings.TrimSpace(params["charset"]))
	if name == "" || name == "utf-8" || name == "utf8" {
		return string(body)
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// isHTML reports whether contentType names an HTML document.
func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// Summarize returns a one-line description of an HTML ping response: its title followed by
// the first heading or paragraph text, truncated to maxLen runes.
func Summarize(body string, maxLen int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(body)))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	title := collapse(doc.Find("title").First().Text())
	var detail string
	doc.Find("h1, h2, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		detail = collapse(s.Text())
		return detail == ""
	})

	var parts []string
	for _, p := range []string{title, detail} {
		if p != "" && (len(parts) == 0 || parts[0] != p) {
			parts = append(parts, p)
		}
	}
	summary := strings.Join(parts, ": ")

	if maxLen > 0 {
		if r := []rune(summary); len(r) > maxLen {
			summary = string(r[:maxLen]) + "..."
		}
	}
	return summary, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
