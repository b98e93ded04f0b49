package update

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/eikon/internal/enrich"
)

var (
	countStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true)

	questionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("78"))
)

// writeReport prints the end-of-run summary: how many images were
// added, the provenance of each one, and where the output went.
func writeReport(w io.Writer, added []enrich.Provenance, outputPath, mediaDir string) {
	fmt.Fprintf(w, "\n%s\n", countStyle.Render(fmt.Sprintf("Images added: %d", len(added))))

	if len(added) == 0 {
		fmt.Fprintln(w, "No new images were added.")
	} else {
		fmt.Fprintln(w, "Questions that received new images:")
		for _, entry := range added {
			fmt.Fprintf(w, "- %s %s\n", labelStyle.Render("Question:"), questionStyle.Render(entry.Question))
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Full answer:"), entry.Answer)
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Search field used:"), entry.SearchField)
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Search text:"), entry.SearchText)
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Search URL:"), urlStyle.Render(entry.SearchURL))
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Image URL:"), urlStyle.Render(entry.ImageURL))
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Saved as:"), entry.Filename)
		}
	}

	fmt.Fprintf(w, "\n%s\n", successStyle.Render(fmt.Sprintf("✅ Success! Updated deck saved to: %s", outputPath)))
	fmt.Fprintf(w, "%s\n", successStyle.Render(fmt.Sprintf("📁 Images saved to: %s", mediaDir)))
}
