package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/kass/geofencer/pkg/region"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))
)

func init() {
	// Plain output when piped
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		plain := lipgloss.NewStyle()
		titleStyle = plain
		successStyle = plain
		errorStyle = plain
		infoStyle = plain
		dimStyle = plain
		statStyle = plain
	}
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, infoStyle.Render("• "+fmt.Sprintf(format, args...)))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, errorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// printRegions writes one line per region with its index for remove/edit
func printRegions(w io.Writer, regions []region.Region) {
	if len(regions) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no regions"))
		return
	}

	for i, r := range regions {
		c := r.Circle()
		points := make([]string, 0, len(r.Points()))
		for _, p := range r.Points() {
			points = append(points, region.FormatPoint(p))
		}

		fmt.Fprintf(w, "%s %s %s\n",
			statStyle.Render(fmt.Sprintf("[%d]", i)),
			titleStyle.Render(r.Title()),
			dimStyle.Render(fmt.Sprintf("(%s) center %s radius %.0fm",
				strings.Join(points, " → "), region.FormatPoint(c.Center), c.RadiusMeters)),
		)
	}
}
