package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/1F47E/nato-grid/pkg/bench"
	"github.com/1F47E/nato-grid/pkg/coordparse"
	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/1F47E/nato-grid/pkg/models"
	"github.com/1F47E/nato-grid/pkg/share"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	historySize = 5
	benchSteps  = 10
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))
)

// entry is one evaluated input.
type entry struct {
	input    string
	encoded  bool
	code     gridcode.Code
	location models.Location
	shareURL string
	links    share.MapLinks
}

type benchStepMsg struct {
	step   int
	result bench.Result
	err    error
}

type model struct {
	codec   *gridcode.Codec
	baseURL string
	queries int

	input    textinput.Model
	spinner  spinner.Model
	progress progress.Model

	current *entry
	err     error
	history []entry

	benchmarking bool
	benchStep    int
	benchTotal   bench.Result
	benchDone    bool

	width int
}

func initialModel(codec *gridcode.Codec, baseURL string, queries int) model {
	ti := textinput.New()
	ti.Placeholder = "52.1677 N, 22.2903 E  or  November Victor Sierra Oscar"
	ti.CharLimit = 256
	ti.Width = 60
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		codec:    codec,
		baseURL:  baseURL,
		queries:  queries,
		input:    ti,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
		width:    80,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 10
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			e, err := evaluate(m.codec, m.baseURL, text)
			m.err = err
			if err == nil {
				m.current = &e
				m.history = append([]entry{e}, m.history...)
				if len(m.history) > historySize {
					m.history = m.history[:historySize]
				}
			}
			m.input.SetValue("")
			return m, nil

		case tea.KeyUp:
			if len(m.history) > 0 {
				m.input.SetValue(m.history[0].input)
				m.input.CursorEnd()
			}
			return m, nil

		case tea.KeyCtrlB:
			if m.benchmarking {
				return m, nil
			}
			m.benchmarking = true
			m.benchDone = false
			m.benchStep = 0
			m.benchTotal = bench.Result{Operation: bench.OpRoundTrip}
			return m, tea.Batch(m.progress.SetPercent(0), runBenchStep(m.codec, 0, m.queries/benchSteps))
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case benchStepMsg:
		if msg.err != nil {
			m.benchmarking = false
			m.err = msg.err
			return m, nil
		}
		m.benchTotal = merge(m.benchTotal, msg.result)
		m.benchStep = msg.step + 1

		cmd := m.progress.SetPercent(float64(m.benchStep) / benchSteps)
		if m.benchStep >= benchSteps {
			m.benchmarking = false
			m.benchDone = true
			return m, cmd
		}
		return m, tea.Batch(cmd, runBenchStep(m.codec, m.benchStep, m.queries/benchSteps))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// evaluate encodes text when it reads as coordinates and decodes it otherwise.
func evaluate(codec *gridcode.Codec, baseURL, text string) (entry, error) {
	e := entry{input: text}

	if loc, err := coordparse.Parse(text); err == nil {
		code, err := codec.Encode(loc.Lat, loc.Lon)
		if err != nil {
			return e, err
		}
		e.encoded = true
		e.code = code
		e.location = loc
	} else {
		code, loc, err := codec.Resolve(text)
		if err != nil {
			return e, fmt.Errorf("not a coordinate or a code: %w", err)
		}
		e.code = code
		e.location = loc
	}

	if link, err := share.ShareURL(baseURL, e.code); err == nil {
		e.shareURL = link
	}
	e.links = share.Links(e.location)
	return e, nil
}

func runBenchStep(codec *gridcode.Codec, step, queries int) tea.Cmd {
	return func() tea.Msg {
		result, err := bench.Run(context.Background(), codec, bench.Options{
			Operation: bench.OpRoundTrip,
			Queries:   queries,
			Seed:      int64(step + 1),
		})
		return benchStepMsg{step: step, result: result, err: err}
	}
}

// merge folds one benchmark batch into the running total.
func merge(total, r bench.Result) bench.Result {
	if total.TotalQueries == 0 {
		return r
	}
	n := total.TotalQueries + r.TotalQueries
	total.AvgDuration = (total.AvgDuration*time.Duration(total.TotalQueries) +
		r.AvgDuration*time.Duration(r.TotalQueries)) / time.Duration(n)
	total.TotalQueries = n
	total.TotalDuration += r.TotalDuration
	total.QueriesPerSec = float64(n) / total.TotalDuration.Seconds()
	total.MinDuration = min(total.MinDuration, r.MinDuration)
	total.MaxDuration = max(total.MaxDuration, r.MaxDuration)
	total.Failures += r.Failures
	total.Workers = r.Workers
	return total
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("NATO Grid"))
	b.WriteString("\n")

	box := m.codec.Bounds()
	latRes, lonRes := m.codec.Resolution()
	b.WriteString(dimStyle.Render(fmt.Sprintf("grid lat [%g, %g] lon [%g, %g], %d %s words, cell %.2g° x %.2g°",
		box.BottomLeft.Lat, box.TopRight.Lat, box.BottomLeft.Lon, box.TopRight.Lon,
		m.codec.Length(), m.codec.Alphabet().Name(), latRes, lonRes)))
	b.WriteString("\n\n")

	b.WriteString(subtitleStyle.Render("Coordinates or code"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("✗ " + m.err.Error()))
		b.WriteString("\n")
	}

	if m.current != nil {
		b.WriteString(renderEntry(*m.current))
	}

	if m.benchmarking {
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + fmt.Sprintf(" Round-tripping %d random points...\n\n", m.queries))
		b.WriteString(m.progress.View())
		b.WriteString("\n")
	} else if m.benchDone {
		b.WriteString(renderBench(m.benchTotal))
	}

	if len(m.history) > 1 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Recent:"))
		b.WriteString("\n")
		for _, e := range m.history[1:] {
			b.WriteString(dimStyle.Render(fmt.Sprintf("• %s  %s", e.code.Short(), coordparse.Format(e.location))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: convert • ↑: recall • ctrl+b: benchmark • esc: quit"))
	return b.String()
}

func renderEntry(e entry) string {
	heading := "Decoded"
	if e.encoded {
		heading = "Encoded"
	}

	content := fmt.Sprintf(
		"%s\n\n%s\n%s\n\n%s %s\n",
		successStyle.Render(heading),
		statStyle.Render(e.code.String()),
		infoStyle.Render(e.code.Short()),
		dimStyle.Render("location"),
		coordparse.Format(e.location),
	)
	if e.shareURL != "" {
		content += fmt.Sprintf("%s %s\n", dimStyle.Render("share   "), e.shareURL)
	}
	content += fmt.Sprintf("%s %s\n%s %s\n%s %s",
		dimStyle.Render("apple   "), e.links.Apple,
		dimStyle.Render("google  "), e.links.Google,
		dimStyle.Render("waze    "), e.links.Waze,
	)
	return boxStyle.Render(content)
}

func renderBench(r bench.Result) string {
	content := fmt.Sprintf(
		"✓ Round trips: %s\n"+
			"✓ Total time: %s\n"+
			"✓ Per second: %s\n"+
			"✓ Average: %s\n"+
			"✓ Outside source cell: %s",
		statStyle.Render(fmt.Sprintf("%d", r.TotalQueries)),
		statStyle.Render(r.TotalDuration.String()),
		statStyle.Render(fmt.Sprintf("%.0f", r.QueriesPerSec)),
		statStyle.Render(r.AvgDuration.String()),
		statStyle.Render(fmt.Sprintf("%d", r.Failures)),
	)
	return boxStyle.Render(successStyle.Render("Benchmark Complete!\n\n") + content)
}
