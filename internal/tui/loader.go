package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrLoaderCanceled is returned when the user quits the loader before the
// work finishes.
var ErrLoaderCanceled = errors.New("canceled by user")

var (
	primaryColor = lipgloss.Color("#6366F1")
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#93C5FD"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Options configures a loader run.
type Options struct {
	Output   io.Writer
	Input    io.Reader
	Now      func() time.Time
	Title    string
	Moment   string
	Steps    []string
	Interval time.Duration
	// Headless disables the renderer, for tests and non-interactive output.
	Headless bool
}

type tickMsg time.Time

type doneMsg[T any] struct {
	err   error
	value T
}

// Loader is the bubbletea model that shows a spinner and cycling messages
// until the work it wraps reports back.
type Loader[T any] struct {
	err      error
	now      func() time.Time
	started  time.Time
	cancel   context.CancelFunc
	work     tea.Cmd
	value    T
	title    string
	moment   string
	steps    []string
	spinner  spinner.Model
	interval time.Duration
	message  string
	done     bool
	quitting bool
}

func newLoader[T any](opts Options, work tea.Cmd, cancel context.CancelFunc) Loader[T] {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = MessageInterval
	}

	return Loader[T]{
		spinner:  s,
		now:      now,
		started:  now(),
		cancel:   cancel,
		work:     work,
		title:    opts.Title,
		moment:   opts.Moment,
		steps:    opts.Steps,
		interval: interval,
		message:  MessageAt(0, interval, opts.Steps),
	}
}

// Init starts the spinner, the message ticker and the work.
func (m Loader[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tick(), m.work)
}

func (m Loader[T]) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages.
func (m Loader[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg[T]:
		m.done = true
		m.value = msg.value
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" || msg.Type == tea.KeyEsc {
			m.quitting = true
			m.cancel()
		}
		return m, nil

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.message = MessageAt(m.now().Sub(m.started), m.interval, m.steps)
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the loader. It renders nothing once the work is done so the
// final frame does not linger above the results.
func (m Loader[T]) View() string {
	if m.done {
		return ""
	}
	view := m.spinner.View() + " " + titleStyle.Render(m.title)
	if m.message != "" {
		view += "\n  " + stepStyle.Render(m.message)
	}
	if m.moment != "" {
		view += "\n  " + subtleStyle.Render(m.moment)
	}
	return view + "\n"
}

// Run executes work while the loader is displayed and returns its result.
// Pressing ctrl+c, esc or q cancels the work context.
func Run[T any](ctx context.Context, opts Options, work func(context.Context) (T, error)) (T, error) {
	var zero T

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := func() tea.Msg {
		v, err := work(workCtx)
		return doneMsg[T]{value: v, err: err}
	}

	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	programOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(opts.Output)}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Headless {
		programOpts = append(programOpts, tea.WithoutRenderer())
	}

	final, err := tea.NewProgram(newLoader[T](opts, cmd, cancel), programOpts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, fmt.Errorf("loader failed: %w", err)
	}

	m, ok := final.(Loader[T])
	if !ok || !m.done {
		return zero, ErrLoaderCanceled
	}
	if m.err != nil && m.quitting && errors.Is(m.err, context.Canceled) {
		return zero, fmt.Errorf("%w: %w", ErrLoaderCanceled, m.err)
	}
	return m.value, m.err
}
