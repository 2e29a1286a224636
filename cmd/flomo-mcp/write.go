package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/germanamz/flomo-mcp/pkg/config"
	"github.com/germanamz/flomo-mcp/pkg/notetool"
)

// maxStdinSize caps note content read from stdin (1MB).
const maxStdinSize = 1 << 20

var errNoContent = errors.New("no content: pass the note as arguments or pipe it on stdin")

type writeOptions struct {
	yes         bool
	in          io.Reader
	out         io.Writer
	stdinTTY    bool
	interactive bool
}

// runWrite submits one note through the write_note tool. On a terminal it
// previews the note, asks for confirmation, and shows a spinner.
func runWrite(ctx context.Context, cfg config.Config, log *slog.Logger, args []string, opts writeOptions) error {
	content, err := readContent(args, opts.in, opts.stdinTTY)
	if err != nil {
		return err
	}

	w, err := newWriter(cfg, log)
	if err != nil {
		return err
	}

	if opts.interactive {
		_, _ = fmt.Fprintln(opts.out, renderMarkdown(content))

		if !opts.yes {
			ok, err := confirmSend()
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintln(opts.out, dimStyle.Render("Cancelled."))
				return nil
			}
		}
	}

	input, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("write: marshal input: %w", err)
	}

	submit := func(ctx context.Context) (string, error) {
		return w.Call(ctx, notetool.ToolName, input)
	}

	var result string
	if opts.interactive {
		result, err = submitWithSpinner(ctx, submit)
	} else {
		result, err = submit(ctx)
	}

	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(opts.out, successStyle.Render("✓")+" "+result)

	return nil
}

// readContent returns the note text from args, or from in when args is "-"
// or empty with a non-terminal stdin.
func readContent(args []string, in io.Reader, stdinTTY bool) (string, error) {
	useStdin := (len(args) == 1 && args[0] == "-") || (len(args) == 0 && !stdinTTY)

	if !useStdin {
		if len(args) == 0 {
			return "", errNoContent
		}
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(io.LimitReader(in, maxStdinSize))
	if err != nil {
		return "", fmt.Errorf("write: read stdin: %w", err)
	}

	content := strings.TrimRight(string(data), "\r\n")
	if content == "" {
		return "", errNoContent
	}

	return content, nil
}

func confirmSend() (bool, error) {
	ok := true
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title("Send this note to flomo?").Value(&ok),
	)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}

	return ok, err
}

// --- spinner ---

type submitDoneMsg struct {
	result string
	err    error
}

// submitModel shows a spinner while a note is being submitted.
type submitModel struct {
	spinner spinner.Model
	run     func() tea.Msg
	result  string
	err     error
	done    bool
}

func newSubmitModel(run func() tea.Msg) submitModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return submitModel{spinner: s, run: run}
}

func (m submitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m submitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submitDoneMsg:
		m.result, m.err, m.done = msg.result, msg.err, true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err, m.done = context.Canceled, true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m submitModel) View() string {
	if m.done {
		return ""
	}

	return m.spinner.View() + " Writing note to flomo...\n"
}

func submitWithSpinner(ctx context.Context, submit func(context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newSubmitModel(func() tea.Msg {
		result, err := submit(ctx)
		return submitDoneMsg{result: result, err: err}
	})

	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("write: %w", err)
	}

	m, ok := final.(submitModel)
	if !ok {
		return "", errors.New("write: unexpected model")
	}

	return m.result, m.err
}
