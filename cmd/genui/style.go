package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFBA08"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", successStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func printFailure(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render("✗"), fmt.Sprintf(format, args...))
}

func printNote(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf(format, args...)))
}
