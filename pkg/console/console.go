// Package console implements the interactive REPL for controlling a
// macro while it runs.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"github.com/keyfire/keyfire/pkg/engine"
	"github.com/keyfire/keyfire/pkg/schema"
)

// State glyphs and colors match terminal capabilities via lipgloss.
var (
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func styledState(st engine.State) string {
	switch st {
	case engine.StateRunning:
		return runningStyle.Render(st.String())
	case engine.StatePaused:
		return pausedStyle.Render(st.String())
	case engine.StateError:
		return errorStyle.Render(st.String())
	default:
		return dimStyle.Render(st.String())
	}
}

// Console provides an interactive loop for pausing, resuming, and
// stopping an in-flight macro.
type Console struct {
	macro  *schema.Macro
	engine *engine.Engine
	output io.Writer
	rl     *readline.Instance
}

// New creates a console bound to the given engine and macro.
func New(m *schema.Macro, eng *engine.Engine) *Console {
	return &Console{
		macro:  m,
		engine: eng,
		output: os.Stdout,
	}
}

// Run starts the interactive loop. It returns when the user quits or
// input reaches EOF; the macro keeps running unless explicitly stopped.
func (c *Console) Run() error {
	commands := []string{"state", "pause", "resume", "stop", "steps", "report", "help", "quit"}

	var completer = readline.NewPrefixCompleter()
	for _, cmd := range commands {
		completer.Children = append(completer.Children,
			readline.PcItem(cmd))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          c.buildPrompt(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	c.rl = rl
	defer rl.Close()

	fmt.Fprintf(c.output, "keyfire console — %s, %d steps, repeat=%d\n", c.macro.Name, len(c.macro.Steps), c.macro.Repeat)
	fmt.Fprintf(c.output, "Type 'help' for available commands, 'stop' to halt the macro.\n\n")

	for {
		rl.SetPrompt(c.buildPrompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch strings.Fields(line)[0] {
		case "state", "st":
			c.handleState()
		case "pause", "p":
			c.handlePause()
		case "resume", "r":
			c.handleResume()
		case "stop":
			c.handleStop()
		case "steps":
			c.handleSteps()
		case "report":
			c.handleReport()
		case "help", "?":
			c.handleHelp()
		case "quit", "q":
			fmt.Fprintf(c.output, "Exiting console.\n")
			return nil
		default:
			fmt.Fprintf(c.output, "Unknown command: %q. Type 'help' for available commands.\n", line)
		}
	}
}

// buildPrompt creates the prompt string: keyfire[state]>
func (c *Console) buildPrompt() string {
	return fmt.Sprintf("keyfire[%s]> ", c.engine.State())
}

func (c *Console) handleState() {
	st := c.engine.State()
	fmt.Fprintf(c.output, "State: %s\n", styledState(st))
	if st == engine.StateError {
		fmt.Fprintf(c.output, "Reason: %s\n", errorStyle.Render(c.engine.Reason()))
	}
}

func (c *Console) handlePause() {
	if c.engine.State() != engine.StateRunning {
		fmt.Fprintf(c.output, "Nothing running to pause.\n")
		return
	}
	c.engine.Pause()
	fmt.Fprintf(c.output, "Paused. The current step finishes first; waits freeze at the boundary.\n")
}

func (c *Console) handleResume() {
	if c.engine.State() != engine.StatePaused {
		fmt.Fprintf(c.output, "Not paused.\n")
		return
	}
	c.engine.Resume()
	fmt.Fprintf(c.output, "Resumed.\n")
}

func (c *Console) handleStop() {
	if !c.engine.IsRunning() {
		fmt.Fprintf(c.output, "Nothing running to stop.\n")
		return
	}
	c.engine.Stop()
	fmt.Fprintf(c.output, "Stopped (state: %s).\n", styledState(c.engine.State()))
}

func (c *Console) handleSteps() {
	for i, s := range c.macro.Steps {
		detail := stepDetail(&c.macro.Steps[i])
		fmt.Fprintf(c.output, "  [%d] %s%s\n", i+1, s.Kind, detail)
	}
}

func (c *Console) handleReport() {
	rep := c.engine.Report()
	if rep == nil {
		fmt.Fprintf(c.output, "No finished run yet.\n")
		return
	}
	fmt.Fprintf(c.output, "Last run: %s in %s, %d passes, %d steps executed\n",
		rep.State, rep.Duration().Round(0), rep.PassesCompleted, rep.StepsExecuted)
	if rep.Reason != "" {
		fmt.Fprintf(c.output, "Reason: %s\n", rep.Reason)
	}
}

func (c *Console) handleHelp() {
	fmt.Fprintf(c.output, `Commands:
  state, st     show the current execution state
  pause, p      pause at the next step or wait boundary
  resume, r     continue a paused macro
  stop          halt the macro (waits for acknowledgement)
  steps         list the macro's steps
  report        show the last finished run summary
  help, ?       this help
  quit, q       leave the console (macro keeps running)
`)
}

func stepDetail(s *schema.Step) string {
	switch s.Kind {
	case schema.KindKeyPress, schema.KindKeyDown, schema.KindKeyUp:
		return fmt.Sprintf(" key=%s", s.Key)
	case schema.KindKeySequence:
		text := s.Text
		if len(text) > 24 {
			text = text[:24] + "..."
		}
		return fmt.Sprintf(" text=%q", text)
	case schema.KindMouseMove:
		if !s.HasPosition() {
			return ""
		}
		return fmt.Sprintf(" (%d,%d)", *s.X, *s.Y)
	case schema.KindMouseClick:
		return fmt.Sprintf(" button=%s", s.Button)
	case schema.KindMouseScroll:
		if s.ScrollAmount == nil {
			return ""
		}
		return fmt.Sprintf(" amount=%d", *s.ScrollAmount)
	case schema.KindDelay:
		return fmt.Sprintf(" %dms", s.DurationMs)
	}
	return ""
}
