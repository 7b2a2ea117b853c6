package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/keyfire/keyfire/pkg/schema"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("51")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

var showCmd = &cobra.Command{
	Use:   "show [macro.yaml]",
	Short: "Display a macro's metadata and steps",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	doc, err := schema.LoadFile(args[0])
	if err != nil {
		return err
	}
	m := &doc.Macro

	fmt.Println(titleStyle.Render(m.Name))
	fmt.Println(dimStyle.Render(fmt.Sprintf("id=%s repeat=%d enabled=%t", m.ID, m.Repeat, m.IsEnabled())))

	if m.Description != "" {
		fmt.Println(renderMarkdown(m.Description))
	}
	fmt.Println()

	// Column width from the widest kind, so details line up.
	width := 0
	for _, s := range m.Steps {
		if w := runewidth.StringWidth(string(s.Kind)); w > width {
			width = w
		}
	}
	for i := range m.Steps {
		s := &m.Steps[i]
		kind := runewidth.FillRight(string(s.Kind), width)
		line := fmt.Sprintf("  %2d. %s %s", i+1, kindStyle.Render(kind), stepSummary(s))
		if s.When != "" {
			line += dimStyle.Render("  when: " + s.When)
		}
		fmt.Println(line)
	}
	return nil
}

// renderMarkdown converts a markdown string to styled terminal output.
// Falls back to the raw input if rendering fails.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func stepSummary(s *schema.Step) string {
	switch s.Kind {
	case schema.KindKeyPress, schema.KindKeyUp:
		return s.Key
	case schema.KindKeyDown:
		if s.DurationMs > 0 {
			return fmt.Sprintf("%s (hold %dms)", s.Key, s.DurationMs)
		}
		return s.Key
	case schema.KindKeySequence:
		text := s.Text
		if len(text) > 40 {
			text = text[:40] + "..."
		}
		return fmt.Sprintf("%q", text)
	case schema.KindMouseMove:
		// The document may not have been validated yet; never assume
		// the coordinates are present.
		if s.HasPosition() {
			return fmt.Sprintf("(%d, %d)", *s.X, *s.Y)
		}
		return "(missing coordinates)"
	case schema.KindMouseClick:
		if s.HasPosition() {
			return fmt.Sprintf("%s at (%d, %d)", s.Button, *s.X, *s.Y)
		}
		return s.Button
	case schema.KindMouseScroll:
		if s.ScrollAmount == nil {
			return "(missing scroll_amount)"
		}
		return fmt.Sprintf("%+d", *s.ScrollAmount)
	case schema.KindDelay:
		if s.JitterMs > 0 {
			return fmt.Sprintf("%dms ± %dms", s.DurationMs, s.JitterMs)
		}
		return fmt.Sprintf("%dms", s.DurationMs)
	}
	return ""
}
