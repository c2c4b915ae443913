package discovery

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// PrintManifest prints the discovered route listing with colorful formatting.
// Routes appear in the same lexicographic order the completion exporter uses,
// so help output is stable across runs against an unchanged server.
func PrintManifest(w io.Writer, m *RouteManifest) {
	// Style definitions
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Align(lipgloss.Center).
		Padding(0, 2).
		Margin(1, 0).
		Border(lipgloss.RoundedBorder())

	methodStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF6B6B")).
		Bold(true)

	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ECDC4"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#626262")).
		Italic(true)

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2).
		Margin(1, 0)

	fmt.Fprintf(w, "\n%s\n\n", containerStyle.Render(
		renderManifest(m, titleStyle, methodStyle, pathStyle, descStyle)))
}

// PrintManifestASCII prints the route listing using ASCII characters only.
func PrintManifestASCII(w io.Writer, m *RouteManifest) {
	lipgloss.SetColorProfile(termenv.Ascii)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Padding(0, 2).
		Margin(1, 0).
		Border(lipgloss.ASCIIBorder())

	methodStyle := lipgloss.NewStyle().Bold(true)
	pathStyle := lipgloss.NewStyle()
	descStyle := lipgloss.NewStyle().Italic(true)

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.ASCIIBorder()).
		Padding(1, 2).
		Margin(1, 0)

	fmt.Fprintf(w, "\n%s\n\n", containerStyle.Render(
		renderManifest(m, titleStyle, methodStyle, pathStyle, descStyle)))
}

func renderManifest(m *RouteManifest, title, method, path, desc lipgloss.Style) string {
	var content strings.Builder

	content.WriteString(title.Render(m.BaseURL))
	content.WriteString("\n\n")

	routes := m.Sorted()
	methodWidth := 0
	pathWidth := 0
	for _, r := range routes {
		if len(r.Method) > methodWidth {
			methodWidth = len(r.Method)
		}
		if len(r.Path) > pathWidth {
			pathWidth = len(r.Path)
		}
	}

	for _, r := range routes {
		styledMethod := method.Render(fmt.Sprintf("%-*s", methodWidth, r.Method))
		styledPath := path.Render(fmt.Sprintf("%-*s", pathWidth, r.Path))
		line := fmt.Sprintf("  %s  %s", styledMethod, styledPath)
		if r.Description != "" {
			line += "  " + desc.Render(r.Description)
		}
		content.WriteString(line)
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("  %d routes. Call any of them with \"route <path>\".", len(routes)))
	return content.String()
}
