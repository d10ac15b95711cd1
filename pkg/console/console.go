// Package console formats user-facing messages for terminal output.
//
// Messages are styled with lipgloss when stdout is a terminal and left as
// plain text otherwise, so redirected output and tests see stable strings.
package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nrdb/cardlint/pkg/tty"
)

var (
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D73737", Dark: "#FF5555"}).Bold(true)
	styleWarning  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B58900", Dark: "#F1FA8C"})
	styleInfo     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2F6FB3", Dark: "#8BE9FD"})
	styleSuccess  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#50FA7B"})
	styleVerbose  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#9A9A9A"}).Italic(true)
	styleProgress = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"})
	styleLocation = lipgloss.NewStyle().Bold(true)
)

// isTTY reports whether styling should be applied. Replaced in tests.
var isTTY = tty.IsStdoutTerminal

func applyStyle(style lipgloss.Style, text string) string {
	if !isTTY() {
		return text
	}
	return style.Render(text)
}

// FormatErrorMessage formats an error message.
func FormatErrorMessage(message string) string {
	return applyStyle(styleError, "✗ ") + message
}

// FormatWarningMessage formats a warning message.
func FormatWarningMessage(message string) string {
	return applyStyle(styleWarning, "⚠ ") + message
}

// FormatInfoMessage formats an informational message.
func FormatInfoMessage(message string) string {
	return applyStyle(styleInfo, "ℹ ") + message
}

// FormatSuccessMessage formats a success message.
func FormatSuccessMessage(message string) string {
	return applyStyle(styleSuccess, "✓ ") + message
}

// FormatVerboseMessage formats per-item detail shown at the highest verbosity.
func FormatVerboseMessage(message string) string {
	return applyStyle(styleVerbose, message)
}

// FormatProgressMessage formats a stage progress message.
func FormatProgressMessage(message string) string {
	return applyStyle(styleProgress, "→ ") + message
}

// FormatFileMessage prefixes a message with the file it concerns, as "path: message".
func FormatFileMessage(path, message string) string {
	if path == "" {
		return message
	}
	return applyStyle(styleLocation, path+":") + " " + message
}

// IndentDetail indents every line of a multi-line diagnostic (for example a
// schema engine error) so it reads as belonging to the preceding message.
func IndentDetail(detail string) string {
	detail = strings.TrimRight(detail, "\n")
	if detail == "" {
		return ""
	}
	lines := strings.Split(detail, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}

// FormatSummary renders the final run summary line.
func FormatSummary(formatting, validation int) string {
	message := fmt.Sprintf("Found %d formatting and %d validation errors", formatting, validation)
	if formatting == 0 && validation == 0 {
		return FormatSuccessMessage(message)
	}
	return FormatErrorMessage(message)
}
