package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/asynkron/tpo/internal/dupes"
)

// Report formats accepted by --format.
const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatJSON     = "json"
	formatYAML     = "yaml"
)

var reportFormats = []string{formatText, formatMarkdown, formatJSON, formatYAML}

// ReportMember is one entry of a duplicate group.
type ReportMember struct {
	MsgID    string `json:"msgid" yaml:"msgid"`
	Text     string `json:"text" yaml:"text"`
	Location string `json:"location" yaml:"location"`
}

// ReportGroup is a duplicate group with the words all members share.
type ReportGroup struct {
	Index       int          `json:"index" yaml:"index"`
	Size        int          `json:"size" yaml:"size"`
	SharedWords []string     `json:"shared_words" yaml:"shared_words"`
	Members     []ReportMember `json:"members" yaml:"members"`
}

// ReportLanguage holds the scan of one catalog.
type ReportLanguage struct {
	Language string      `json:"language" yaml:"language"`
	File     string      `json:"file" yaml:"file"`
	Entries  int         `json:"entries" yaml:"entries"`
	Skipped  int         `json:"skipped" yaml:"skipped"`
	Groups   []ReportGroup `json:"groups" yaml:"groups"`
}

// Report is the machine-readable scan result, encoded as JSON or YAML.
type Report struct {
	Mode        string         `json:"mode" yaml:"mode"`
	TotalGroups int            `json:"total_groups" yaml:"total_groups"`
	Languages   []ReportLanguage `json:"languages" yaml:"languages"`
}

func buildReport(results []dupes.Result, opts dupes.Options) Report {
	out := Report{
		Mode:        opts.String(),
		TotalGroups: dupes.TotalGroups(results),
		Languages:   make([]ReportLanguage, 0, len(results)),
	}
	for _, r := range results {
		lang := ReportLanguage{
			Language: r.Language,
			File:     r.File,
			Entries:  r.Stats.Entries,
			Skipped:  r.Stats.Skipped,
			Groups:   make([]ReportGroup, 0, len(r.Groups)),
		}
		for i, g := range r.Groups {
			members := make([]ReportMember, len(g.Members))
			for j, m := range g.Members {
				members[j] = ReportMember{MsgID: m.Entry.MsgID, Text: m.Text(), Location: m.Location()}
			}
			lang.Groups = append(lang.Groups, ReportGroup{
				Index:       i + 1,
				Size:        g.Size(),
				SharedWords: slices.Sorted(maps.Keys(dupes.SharedTokens(g))),
				Members:     members,
			})
		}
		out.Languages = append(out.Languages, lang)
	}
	return out
}

// writeReport renders the scan results to w in the requested format.
func writeReport(w io.Writer, format string, results []dupes.Result, opts dupes.Options, elapsed time.Duration) error {
	switch format {
	case formatText:
		newPrinter(w).PrintResults(results, elapsed)
		return nil
	case formatMarkdown:
		return renderMarkdown(w, markdownReport(results, opts))
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(buildReport(results, opts))
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(buildReport(results, opts)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (expected one of %s)", format, strings.Join(reportFormats, ", "))
	}
}

var markdownEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`)

func markdownReport(results []dupes.Result, opts dupes.Options) string {
	var sb strings.Builder
	sb.WriteString("# Duplicate translations\n\n")
	fmt.Fprintf(&sb, "**Mode:** %s  **Groups:** %d\n\n", opts.String(), dupes.TotalGroups(results))

	bold := func(s string) string { return "**" + markdownEscaper.Replace(s) + "**" }
	for _, r := range results {
		fmt.Fprintf(&sb, "## %s\n\n", r.Language)
		if !r.HasDuplicates() {
			sb.WriteString("No duplicates found.\n\n")
			continue
		}
		fmt.Fprintf(&sb, "`%s`: %d duplicate groups\n\n", r.File, len(r.Groups))
		for i, g := range r.Groups {
			fmt.Fprintf(&sb, "### %d. Duplicate (%d)\n\n", i+1, g.Size())
			shared := dupes.SharedTokens(g)
			for _, m := range g.Members {
				text := dupes.Render(dupes.Highlight(m.Text(), shared), bold, markdownEscaper.Replace)
				fmt.Fprintf(&sb, "- %s  `%s`\n", text, m.Location())
			}
			sb.WriteString("\n")
		}
		sb.WriteString("---\n\n")
	}
	return sb.String()
}

// renderMarkdown renders markdown through glamour, falling back to the raw
// text when rendering fails.
func renderMarkdown(w io.Writer, markdown string) error {
	style := glamour.WithStandardStyle("notty")
	if isTerminal(w) {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(0))
	if err == nil {
		var out string
		if out, err = r.Render(markdown); err == nil {
			_, err = io.WriteString(w, out)
			return err
		}
	}
	_, err = io.WriteString(w, markdown)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WriteJSONResults writes the report to a JSON file.
func WriteJSONResults(report Report, outputPath string) error {
	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
		return fmt.Errorf("writing JSON file: %w", err)
	}
	return nil
}
