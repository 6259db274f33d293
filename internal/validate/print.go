package validate

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/kabirdoha/dohakit/internal/extension"
	"github.com/pterm/pterm"
)

var (
	passStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1FA382"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
)

// NextSteps is printed after a passing report.
var NextSteps = []string{
	"Open Chrome and go to " + extension.ExtensionsURL,
	"Enable Developer mode",
	"Click 'Load unpacked' and select this directory",
	"Open a new tab to test the extension",
}

// Print writes a human-readable report to w.
func Print(w io.Writer, r *Report) {
	pterm.Fprintln(w, pterm.Bold.Sprint("Testing Kabir Doha extension"))
	pterm.Fprintln(w, strings.Repeat("=", 50))

	for _, c := range r.Categories {
		pterm.Fprintln(w)
		pterm.Fprintln(w, pterm.Bold.Sprintf("Testing %s...", c.Title))
		for _, f := range c.Findings {
			printFinding(w, f)
		}
	}

	pterm.Fprintln(w)
	pterm.Fprintln(w, strings.Repeat("=", 50))
	if !r.Passed() {
		pterm.Fprintln(w, failStyle.Render(fmt.Sprintf("Some tests failed (%d problems in %d categories). Please fix the issues above.",
			len(r.Failures()), len(r.FailedCategories()))))
		return
	}

	pterm.Fprintln(w, passStyle.Render("All tests passed! Extension is ready for deployment."))
	if n := len(r.Warnings()); n > 0 {
		pterm.Warning.WithWriter(w).Printf("%d warning(s) above are worth a look\n", n)
	}
	pterm.Fprintln(w)
	pterm.Fprintln(w, "Next steps:")
	for i, step := range NextSteps {
		pterm.Fprintln(w, fmt.Sprintf("%d. %s", i+1, step))
	}
}

func printFinding(w io.Writer, f Finding) {
	switch {
	case f.Kind == KindOK:
		pterm.Success.WithWriter(w).Println(f.Message)
	case f.Kind == KindInfo:
		pterm.Info.WithWriter(w).Println(f.Message)
	case f.Kind == KindWarning:
		pterm.Warning.WithWriter(w).Println(f.Message)
	default:
		pterm.Error.WithWriter(w).Println(f.Message)
	}
}
