package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/asynkron/tpo/internal/catalog"
	"github.com/asynkron/tpo/internal/dupes"
	"github.com/asynkron/tpo/internal/translate"
)

const separator = "-----------------------------------------------------------"

// Theme defines the color scheme for console output
type Theme struct {
	Language lipgloss.Style
	Heading  lipgloss.Style
	Shared   lipgloss.Style
	Location lipgloss.Style
	Summary  lipgloss.Style
	Warn     lipgloss.Style
	Success  lipgloss.Style
	Dim      lipgloss.Style
}

// newTheme builds the theme for w. Colors are dropped when w is not a terminal.
func newTheme(w io.Writer) Theme {
	r := lipgloss.NewRenderer(w)
	return Theme{
		Language: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Heading:  r.NewStyle().Bold(true),
		Shared:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Location: r.NewStyle().Foreground(lipgloss.Color("245")),
		Summary:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
		Warn:     r.NewStyle().Foreground(lipgloss.Color("221")),
		Success:  r.NewStyle().Foreground(lipgloss.Color("42")),
		Dim:      r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// printer writes the human-readable console report.
type printer struct {
	w     io.Writer
	theme Theme
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, theme: newTheme(w)}
}

// PrintResults prints every language section followed by the total line.
func (p *printer) PrintResults(results []dupes.Result, elapsed time.Duration) {
	for _, r := range results {
		p.PrintLanguage(r)
	}
	p.PrintTotalSummary(results, elapsed)
}

// PrintLanguage prints the duplicate groups of one language.
func (p *printer) PrintLanguage(r dupes.Result) {
	if !r.HasDuplicates() {
		fmt.Fprintf(p.w, "%s No duplicates found 🎉\n", p.theme.Success.Render("["+r.Language+"]"))
		return
	}

	fmt.Fprintf(p.w, "\n%s\n\n", p.theme.Heading.Render("🌍 Language: "+p.theme.Language.Render(r.Language)))
	fmt.Fprintf(p.w, "%s\n", p.theme.Dim.Render(separator))
	fmt.Fprintf(p.w, "%s %s\n\n",
		p.theme.Warn.Render(fmt.Sprintf("❗ Found %s", english.Plural(len(r.Groups), "duplicate group", "duplicate groups"))),
		p.theme.Location.Render(r.File))

	for i, g := range r.Groups {
		p.PrintGroup(i+1, g)
	}
}

// PrintGroup prints one group with its shared words highlighted.
func (p *printer) PrintGroup(index int, g dupes.Group) {
	fmt.Fprintf(p.w, "%d. Duplicate (%d)\n", index, g.Size())
	shared := dupes.SharedTokens(g)
	for _, m := range g.Members {
		text := dupes.Render(dupes.Highlight(m.Text(), shared), func(s string) string { return p.theme.Shared.Render(s) }, nil)
		fmt.Fprintf(p.w, "   %s  %s\n", text, p.theme.Location.Render(m.Location()))
	}
	fmt.Fprintln(p.w)
}

// PrintTotalSummary prints the final summary line
func (p *printer) PrintTotalSummary(results []dupes.Result, elapsed time.Duration) {
	total := dupes.TotalGroups(results)
	if total == 0 {
		fmt.Fprintf(p.w, "\n%s\n", p.theme.Success.Render("🎉 No duplicates found in any language"))
		return
	}

	entries := 0
	for _, r := range results {
		entries += r.Stats.Entries
	}
	fmt.Fprintf(p.w, "%s\n", p.theme.Dim.Render(separator))
	fmt.Fprintf(p.w, "Total: %s in %s (%s entries) in %s\n",
		p.theme.Summary.Render(english.Plural(total, "duplicate group", "duplicate groups")),
		p.theme.Summary.Render(english.Plural(len(results), "language", "languages")),
		p.theme.Summary.Render(humanize.Comma(int64(entries))),
		p.theme.Summary.Render(elapsed.Round(time.Millisecond).String()))
}

// PrintTranslationSummary prints the per-language translation status table.
func (p *printer) PrintTranslationSummary(diffs []catalog.Diff) {
	rows := make([][]string, 0, len(diffs))
	for _, d := range diffs {
		untranslated := p.theme.Warn.Render(humanize.Comma(int64(d.Untranslated)))
		if d.Complete() {
			untranslated = p.theme.Success.Render("✔ 0")
		}
		rows = append(rows, []string{
			d.Language,
			p.theme.Dim.Render(strconv.Itoa(d.Total)),
			untranslated,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.theme.Dim).
		Headers("Language", "Total", "Untranslated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.theme.Language.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	fmt.Fprintf(p.w, "\n📊 Translation Summary:\n\n%s\n", t.Render())
}

// PrintOutcomes prints what the translation run changed.
func (p *printer) PrintOutcomes(outcomes []translate.Outcome) {
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(p.w, "%s %s: %v\n", p.theme.Warn.Render("✗"), o.Language, o.Err)
			continue
		}
		fmt.Fprintf(p.w, "%s %s: %s translated %s\n",
			p.theme.Success.Render("✔"), o.Language,
			english.Plural(o.Translated, "entry", "entries"),
			p.theme.Location.Render(o.Path))
	}
}
