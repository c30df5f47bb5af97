package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/spherical/question-agent/internal/domain"
)

// Box displays text in a box with borders.
func Box(w io.Writer, title string, content string) {
	lines := strings.Split(content, "\n")
	maxWidth := len([]rune(title))
	for _, line := range lines {
		if n := len([]rune(line)); n > maxWidth {
			maxWidth = n
		}
	}
	if maxWidth < 40 {
		maxWidth = 40
	}

	fmt.Fprintf(w, "┌%s┐\n", strings.Repeat("─", maxWidth+2))
	if title != "" {
		fmt.Fprintf(w, "│ %s │\n", pad(title, maxWidth))
		fmt.Fprintf(w, "├%s┤\n", strings.Repeat("─", maxWidth+2))
	}
	for _, line := range lines {
		fmt.Fprintf(w, "│ %s │\n", pad(line, maxWidth))
	}
	fmt.Fprintf(w, "└%s┘\n", strings.Repeat("─", maxWidth+2))
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// ErrorBox displays an error message in a box.
func ErrorBox(title, message string) {
	fmt.Fprintln(os.Stderr)
	Box(os.Stderr, "✗ "+title, message)
	fmt.Fprintln(os.Stderr)
}

// KeyValue displays a key-value pair in a formatted way.
func KeyValue(key, value string) {
	fmt.Fprintf(os.Stdout, "  %s: %s\n", key, value)
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Question prints a graded question. Correct options are green.
func Question(w io.Writer, q *domain.StructuredQuestion, correctLabel, incorrectLabel string) {
	color.New(color.Bold).Fprintln(w, q.QuestionText)
	fmt.Fprintln(w)

	for _, opt := range q.Options {
		mark, label, c := "✗", incorrectLabel, color.New(color.FgRed)
		if opt.IsCorrect {
			mark, label, c = "✓", correctLabel, color.New(color.FgGreen)
		}
		c.Fprintf(w, "  %s %s\n", mark, opt.Label)
		fmt.Fprintf(w, "      %s: %s\n", label, opt.Explanation)
	}
}
