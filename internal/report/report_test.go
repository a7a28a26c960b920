package report_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DavidJovino/deivao-recon/internal/recon"
	"github.com/DavidJovino/deivao-recon/internal/report"
)

func sampleRecord() report.Record {
	return report.Record{
		Title:   "Bug Bounty Report - example.com",
		Date:    "2026-08-23 14:05:02",
		Domain:  "example.com",
		Summary: "Two hosts, one live.",
		Stats: map[string]string{
			"Subdomains found":  "2",
			"Active subdomains": "1",
		},
		Details: report.Details{
			Subdomains:       []string{"a.example.com", "b.example.com"},
			ActiveSubdomains: []string{"a.example.com"},
			ToolsUsed:        []string{"crtsh"},
		},
	}
}

func TestMarkdown(t *testing.T) {
	want := `# Bug Bounty Report - example.com

**Date:** 2026-08-23 14:05:02

## Summary

Two hosts, one live.

## Statistics

| Metric | Value |
|--------|-------|
| Active subdomains | 1 |
| Subdomains found | 2 |

## Subdomains

- a.example.com
- b.example.com

## Active Subdomains

- a.example.com

## Tools Used

- crtsh
`
	got := report.Markdown(sampleRecord())
	if got != want {
		t.Errorf("Markdown mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if again := report.Markdown(sampleRecord()); again != got {
		t.Error("two renders of the same record differ")
	}
}

func TestMarkdownEmptyLists(t *testing.T) {
	rec := sampleRecord()
	rec.Details = report.Details{}

	md := report.Markdown(rec)
	if !strings.Contains(md, "## Subdomains\n\nNone.\n") {
		t.Errorf("markdown missing the empty-section marker:\n%s", md)
	}
}

func TestHTML(t *testing.T) {
	page, err := report.HTML(sampleRecord())
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	s := string(page)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Bug Bounty Report - example.com</title>",
		"<h1>Bug Bounty Report - example.com</h1>",
		"<table>",
		"</html>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("page missing %q:\n%s", want, s)
		}
	}
}

func TestHTMLEscapesTitle(t *testing.T) {
	rec := sampleRecord()
	rec.Title = "a <b> c"

	page, err := report.HTML(rec)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(string(page), "<title>a &lt;b&gt; c</title>") {
		t.Errorf("title not escaped:\n%s", page)
	}
}

func TestJSONEnvelope(t *testing.T) {
	data, err := report.JSON(sampleRecord())
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("JSON output lacks a trailing newline")
	}

	var env struct {
		Metadata struct {
			GeneratedAt string `json:"generated_at"`
			Generator   string `json:"generator"`
			Version     string `json:"version"`
		} `json:"metadata"`
		Data report.Record `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if env.Metadata.Generator != "deivao-recon" {
		t.Errorf("generator = %q, want deivao-recon", env.Metadata.Generator)
	}
	if env.Metadata.Version == "" {
		t.Error("version is empty")
	}
	if _, err := time.Parse(time.RFC3339, env.Metadata.GeneratedAt); err != nil {
		t.Errorf("generated_at %q is not RFC3339: %v", env.Metadata.GeneratedAt, err)
	}
	if env.Data.Domain != "example.com" {
		t.Errorf("data.domain = %q, want example.com", env.Data.Domain)
	}
	if len(env.Data.Details.Subdomains) != 2 {
		t.Errorf("data.details.subdomains = %v, want 2 entries", env.Data.Details.Subdomains)
	}
}

func TestFromRunResult(t *testing.T) {
	res := &recon.Result{
		Domain:     "example.com",
		Subdomains: []string{"a.example.com", "b.example.com", "c.example.com", "d.example.com"},
		Active:     []string{"a.example.com", "b.example.com"},
		ToolsUsed:  []string{"subfinder", "crtsh"},
		StartedAt:  time.Date(2026, 8, 23, 14, 5, 2, 0, time.UTC),
		Duration:   3*time.Minute + 30*time.Second,
	}

	rec := report.FromRunResult(res)
	if rec.Title != "Bug Bounty Report - example.com" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Date != "2026-08-23 14:05:02" {
		t.Errorf("Date = %q", rec.Date)
	}
	wantStats := map[string]string{
		"Scan duration":     "3.5 minutes",
		"Subdomains found":  "4",
		"Active subdomains": "2",
		"Success rate":      "50.0%",
	}
	for k, want := range wantStats {
		if got := rec.Stats[k]; got != want {
			t.Errorf("Stats[%q] = %q, want %q", k, got, want)
		}
	}
}

func TestFromRunResultEmpty(t *testing.T) {
	rec := report.FromRunResult(&recon.Result{Domain: "example.com"})
	if got := rec.Stats["Success rate"]; got != "N/A" {
		t.Errorf("Success rate = %q, want N/A for an empty run", got)
	}
}

func TestGenerateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "report.json")
	if err := report.Generate(sampleRecord(), report.FormatJSON, path); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Errorf("generated file is not valid JSON: %v", err)
	}
}

func TestGenerateDefaultsToMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	if err := report.Generate(sampleRecord(), "", path); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Bug Bounty Report") {
		t.Errorf("file = %q, want markdown", data[:min(40, len(data))])
	}
}

func TestGenerateUnknownFormat(t *testing.T) {
	err := report.Generate(sampleRecord(), "pdf", filepath.Join(t.TempDir(), "r.pdf"))
	if err == nil || !strings.Contains(err.Error(), "pdf") {
		t.Fatalf("Generate error = %v, want unknown format", err)
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 8, 23, 14, 5, 2, 0, time.UTC)
	got := report.Filename("example.com", report.FormatHTML, at)
	want := "bug_bounty_report_example.com_20260823_140502.html"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range report.Formats() {
		if !report.ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = false", f)
		}
	}
	if report.ValidFormat("pdf") {
		t.Error("ValidFormat(pdf) = true")
	}
}
