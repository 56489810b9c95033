// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/sitemap-creator/internal/ping"
	"github.com/jonathan/sitemap-creator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer

	box   lipgloss.Style
	title lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
	dim   lipgloss.Style
}

// NewPrinter creates a new Printer that writes to the given writer. Colors are used only
// when the writer is a terminal.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out: out,
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1).
			Width(boxWidth),
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
		fail:  r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("#A0AEC0")),
	}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = truncate(line, boxWidth-4)
	}
	body := p.title.Render(title) + "\n\n" + strings.Join(lines, "\n")
	fmt.Fprintln(p.out, p.box.Render(body))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// RunSummary is the outcome of one sitemap run as shown to the user.
type RunSummary struct {
	Site     string
	RunID    string
	Records  int
	Batches  int
	Entries  int
	Skipped  int
	IndexURL string
	Dir      string
}

// PrintRunSummary outputs the counts and locations of a finished run.
func (p *Printer) PrintRunSummary(s RunSummary) {
	var sb strings.Builder
	if s.Site != "" {
		sb.WriteString(fmt.Sprintf("Site:      %s\n", s.Site))
	}
	if s.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run:       %s\n", s.RunID))
	}
	sb.WriteString(fmt.Sprintf("Records:   %d\n", s.Records))
	sb.WriteString(fmt.Sprintf("Sitemaps:  %d\n", s.Batches))
	sb.WriteString(fmt.Sprintf("Entries:   %d", s.Entries))
	if s.Skipped > 0 {
		sb.WriteString(fmt.Sprintf(" (%d without URL skipped)", s.Skipped))
	}
	sb.WriteString("\n")
	if s.Dir != "" {
		sb.WriteString(fmt.Sprintf("Directory: %s\n", s.Dir))
	}
	sb.WriteString(fmt.Sprintf("Index:     %s", s.IndexURL))

	p.printBox("SITEMAP RUN", sb.String())
}

// PrintScoredRecords outputs the first scored records with their priority and frequency.
func (p *Printer) PrintScoredRecords(records []types.PageRecord) {
	if len(records) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scored %d records:\n\n", len(records)))

	count := min(len(records), maxItemsToShow)
	for i := 0; i < count; i++ {
		rec := records[i]
		url := rec.URL
		if url == "" {
			url = p.dim.Render("(no URL)")
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, url))

		details := []string{}
		if rec.HasPriority() {
			details = append(details, fmt.Sprintf("priority %.1f", rec.PriorityValue()))
		}
		if rec.ChangeFrequency.IsSet() {
			details = append(details, rec.ChangeFrequency.String())
		}
		if rec.LastModified != nil {
			details = append(details, "modified "+rec.LastModified.UTC().Format("2006-01-02"))
		}
		if len(details) > 0 {
			sb.WriteString(fmt.Sprintf("   [%s]\n", strings.Join(details, ", ")))
		}
	}

	if len(records) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more records", len(records)-maxItemsToShow))
	}

	p.printBox("SCORED RECORDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPingResults outputs one line per engine, in the given order.
func (p *Printer) PrintPingResults(names []string, results map[string]ping.Result) {
	if len(names) == 0 {
		return
	}

	var sb strings.Builder
	for i, name := range names {
		res, ok := results[name]
		switch {
		case !ok:
			sb.WriteString(fmt.Sprintf("%s %s", p.dim.Render("-"), name))
		case res.OK():
			sb.WriteString(fmt.Sprintf("%s %s (%d", p.ok.Render("✓"), name, res.StatusCode))
			if res.Redirects > 0 {
				sb.WriteString(fmt.Sprintf(", %d redirects", res.Redirects))
			}
			sb.WriteString(")")
			if res.Summary != "" {
				sb.WriteString("\n  " + p.dim.Render(res.Summary))
			}
		default:
			sb.WriteString(fmt.Sprintf("%s %s\n  %v", p.fail.Render("✗"), name, res.Err))
		}
		if i < len(names)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SEARCH ENGINE PINGS", sb.String())
}
