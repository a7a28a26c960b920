// Package report renders enumeration results into shareable documents:
// plain markdown, a standalone HTML page, or a JSON envelope.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/DavidJovino/deivao-recon/internal/output"
	"github.com/DavidJovino/deivao-recon/internal/recon"
	"github.com/DavidJovino/deivao-recon/internal/version"
)

const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatJSON     = "json"

	generatorName = "deivao-recon"
)

// Formats lists the supported report formats.
func Formats() []string {
	return []string{FormatMarkdown, FormatHTML, FormatJSON}
}

// ValidFormat reports whether a format name is one Generate accepts.
func ValidFormat(format string) bool {
	for _, f := range Formats() {
		if f == format {
			return true
		}
	}
	return false
}

// Details holds the host and tool listings of a report.
type Details struct {
	Subdomains       []string `json:"subdomains"`
	ActiveSubdomains []string `json:"active_subdomains"`
	ToolsUsed        []string `json:"tools_used"`
}

// Record is the renderable content of one report, independent of the
// output format.
type Record struct {
	Title   string            `json:"title"`
	Date    string            `json:"date"`
	Domain  string            `json:"domain"`
	Summary string            `json:"summary"`
	Stats   map[string]string `json:"statistics"`
	Details Details           `json:"details"`
}

// FromRunResult shapes an enumeration result into a report record.
func FromRunResult(res *recon.Result) Record {
	found := len(res.Subdomains)
	active := len(res.Active)

	rate := "N/A"
	if found > 0 {
		rate = fmt.Sprintf("%.1f%%", float64(active)/float64(found)*100)
	}

	return Record{
		Title:  "Bug Bounty Report - " + res.Domain,
		Date:   res.StartedAt.Format("2006-01-02 15:04:05"),
		Domain: res.Domain,
		Summary: fmt.Sprintf(
			"Subdomain reconnaissance against %s found %d unique subdomains, %d of them responding to probes.",
			res.Domain, found, active),
		Stats: map[string]string{
			"Scan duration":     fmt.Sprintf("%.1f minutes", res.Duration.Minutes()),
			"Subdomains found":  strconv.Itoa(found),
			"Active subdomains": strconv.Itoa(active),
			"Success rate":      rate,
		},
		Details: Details{
			Subdomains:       res.Subdomains,
			ActiveSubdomains: res.Active,
			ToolsUsed:        res.ToolsUsed,
		},
	}
}

// Filename builds the conventional report file name for a domain.
func Filename(domain, format string, at time.Time) string {
	return fmt.Sprintf("bug_bounty_report_%s_%s.%s", domain, at.Format("20060102_150405"), format)
}

// Generate renders a record in the given format and writes it to path,
// creating parent directories as needed. An empty format means markdown.
func Generate(rec Record, format, path string) error {
	if format == "" {
		format = FormatMarkdown
	}

	var data []byte
	var err error
	switch format {
	case FormatMarkdown:
		data = []byte(Markdown(rec))
	case FormatHTML:
		data, err = HTML(rec)
	case FormatJSON:
		data, err = JSON(rec)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
	if err != nil {
		return err
	}

	if err := output.EnsureParent(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Markdown renders the record as deterministic markdown: same record,
// same bytes.
func Markdown(rec Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", rec.Title)
	fmt.Fprintf(&b, "**Date:** %s\n\n", rec.Date)
	b.WriteString("## Summary\n\n")
	b.WriteString(rec.Summary)
	b.WriteString("\n\n## Statistics\n\n")

	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	keys := make([]string, 0, len(rec.Stats))
	for k := range rec.Stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "| %s | %s |\n", k, rec.Stats[k])
	}

	writeListSection(&b, "Subdomains", rec.Details.Subdomains)
	writeListSection(&b, "Active Subdomains", rec.Details.ActiveSubdomains)
	writeListSection(&b, "Tools Used", rec.Details.ToolsUsed)

	return b.String()
}

func writeListSection(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "\n## %s\n\n", title)
	if len(items) == 0 {
		b.WriteString("None.\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

const pageStyle = `body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.8rem; text-align: left; }
h1, h2 { color: #1a3c5e; }
`

// HTML renders the markdown through goldmark into a minimal standalone
// page.
func HTML(rec Record) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(rec)), &body); err != nil {
		return nil, fmt.Errorf("rendering report html: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(rec.Title))
	page.WriteString("<style>\n" + pageStyle + "</style>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

type jsonEnvelope struct {
	Metadata jsonMetadata `json:"metadata"`
	Data     Record       `json:"data"`
}

type jsonMetadata struct {
	GeneratedAt string `json:"generated_at"`
	Generator   string `json:"generator"`
	Version     string `json:"version"`
}

// JSON renders the record inside a metadata envelope, indented for
// human eyes.
func JSON(rec Record) ([]byte, error) {
	env := jsonEnvelope{
		Metadata: jsonMetadata{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Generator:   generatorName,
			Version:     version.Number,
		},
		Data: rec,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
