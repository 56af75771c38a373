package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/wavebuoy/internal/optim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const historyLen = 60

// RunFunc runs an optimization, reporting each generation through progress.
type RunFunc func(ctx context.Context, progress func(optim.Progress)) (optim.Result, error)

type progressMsg optim.Progress

type doneMsg struct {
	result optim.Result
	err    error
}

type tickMsg time.Time

type model struct {
	title   string
	maxIter int
	labels  []string
	cancel  context.CancelFunc

	latest  optim.Progress
	seen    bool
	history []float64
	started time.Time
	elapsed time.Duration

	done     bool
	canceled bool
	result   optim.Result
	err      error

	width int
}

func newModel(title string, maxIter int, labels []string, cancel context.CancelFunc) model {
	return model{
		title:   title,
		maxIter: maxIter,
		labels:  labels,
		cancel:  cancel,
		history: make([]float64, 0, historyLen),
		started: time.Now(),
		width:   80,
	}
}

func (m model) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.done {
				m.canceled = true
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case progressMsg:
		m.latest = optim.Progress(msg)
		m.seen = true
		m.history = append(m.history, msg.F)
		if len(m.history) > historyLen {
			m.history = m.history[1:]
		}
		return m, nil
	case doneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		m.elapsed = time.Since(m.started)
		return m, tea.Quit
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.elapsed = time.Since(m.started)
		return m, tick()
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	switch {
	case m.err != nil:
		statusIcon = red.Render("✕")
		statusText = red.Render("failed")
	case m.done:
		statusIcon = cyan.Render("◆")
		statusText = cyan.Render("done")
	case m.canceled:
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("canceling")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n",
		statusIcon, cyan.Render(m.title), statusText, dim.Render(m.elapsed.Truncate(100*time.Millisecond).String())))

	progress := 0.0
	if m.maxIter > 0 {
		progress = math.Min(float64(m.latest.Generation)/float64(m.maxIter), 1)
	}
	if m.done {
		progress = 1
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	genStr := fmt.Sprintf("gen %d/%d", m.latest.Generation, m.maxIter)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar, dim.Render(genStr), dim.Render(fmt.Sprintf("%d evals", m.latest.Evaluations))))

	if m.seen {
		b.WriteString(fmt.Sprintf("   %s %s   %s %s\n",
			dim.Render("best"), white.Render(fmt.Sprintf("%.6g", m.latest.F)),
			dim.Render("spread"), magenta.Render(fmt.Sprintf("%.3g", m.latest.Spread))))
		var xs strings.Builder
		xs.WriteString("   ")
		for i, v := range m.latest.Best {
			label := fmt.Sprintf("x%d", i)
			if i < len(m.labels) {
				label = m.labels[i]
			}
			xs.WriteString(dim.Render(label + "="))
			xs.WriteString(white.Render(fmt.Sprintf("%.4g", v)))
			xs.WriteString("  ")
		}
		b.WriteString(xs.String() + "\n")
	} else {
		b.WriteString("   " + dim.Render("initializing population") + "\n")
	}

	if len(m.history) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("f"), cyan.Render(sparkline(m.history, 24))))
	}

	if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("   q cancel") + "\n")
	return b.String()
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := max(len(data)/width, 1)
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		idx = min(max(idx, 0), 7)
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

// Watch runs fn while showing its progress. Quitting the view cancels the
// context passed to fn; Watch still waits for fn to return.
func Watch(ctx context.Context, title string, maxIter int, labels []string, fn RunFunc) (optim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(title, maxIter, labels, cancel))
	done := make(chan doneMsg, 1)
	go func() {
		res, err := fn(ctx, func(pr optim.Progress) { p.Send(progressMsg(pr)) })
		done <- doneMsg{result: res, err: err}
		p.Send(doneMsg{result: res, err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return optim.Result{}, fmt.Errorf("tui: %w", err)
	}
	cancel()
	d := <-done
	return d.result, d.err
}
