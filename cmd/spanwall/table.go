package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/spanwall/internal/geometry"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// formatOutputs renders listing rows as an aligned table. Styled output
// colours the header and dims inactive outputs.
func formatOutputs(rows []geometry.Listing, styled bool) string {
	header := []string{"NAME", "ACTIVE", "MODE", "POSITION", "SCALE", "TRANSFORM", "EFFECTIVE"}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		active := "yes"
		effective := fmt.Sprintf("%dx%d", r.EffectiveWidth, r.EffectiveHeight)
		if !r.Active {
			active = "no"
			effective = "-"
		}
		cells = append(cells, []string{
			r.Name,
			active,
			fmt.Sprintf("%dx%d", r.Width, r.Height),
			fmt.Sprintf("%d,%d", r.X, r.Y),
			fmt.Sprintf("%g", r.ScaleOrDefault()),
			r.Transform.String(),
			effective,
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range cells {
		for i, c := range row {
			widths[i] = max(widths[i], len(c))
		}
	}

	line := func(row []string) string {
		parts := make([]string, len(row))
		for i, c := range row {
			if i == len(row)-1 {
				parts[i] = c
			} else {
				parts[i] = fmt.Sprintf("%-*s", widths[i], c)
			}
		}
		return strings.Join(parts, "  ")
	}

	var sb strings.Builder
	head := line(header)
	if styled {
		head = headerStyle.Render(head)
	}
	sb.WriteString(head)
	sb.WriteString("\n")
	for i, row := range cells {
		l := line(row)
		if styled && !rows[i].Active {
			l = inactiveStyle.Render(l)
		}
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	return sb.String()
}
