package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	codeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))
)

func init() {
	// Plain text when stdout is piped or redirected
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		for _, s := range []*lipgloss.Style{&titleStyle, &labelStyle, &codeStyle, &valueStyle, &dimStyle, &errorStyle} {
			*s = lipgloss.NewStyle()
		}
	}
}

// printer writes either styled text or JSON.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON}
}

// emit prints v as JSON, or calls human to print it as text.
func (p *printer) emit(v any, human func()) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human()
	return nil
}

func (p *printer) title(s string) {
	fmt.Fprintln(p.w, titleStyle.Render(s))
}

func (p *printer) field(label string, value any) {
	fmt.Fprintf(p.w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label+":")), valueStyle.Render(fmt.Sprint(value)))
}

func (p *printer) code(label, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label+":")), codeStyle.Render(value))
}

func (p *printer) note(s string) {
	fmt.Fprintln(p.w, dimStyle.Render(s))
}

func (p *printer) table(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := lipgloss.Width(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style.Render(cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
		fmt.Fprintln(p.w, "  "+strings.Join(parts, "  "))
	}
	line(header, labelStyle)
	for _, row := range rows {
		line(row, valueStyle)
	}
}
