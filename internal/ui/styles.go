package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): Primary text
// - Accent (soft purple #A78BFA): Highlights, paths, interactive elements
// - Muted (gray): Secondary info, line numbers
// - No colored success/error/warning - use unicode symbols only

var (
	// Accent style for file paths, task references, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	// Muted style for secondary info, hints, line numbers
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")).Bold(true)
)

// accentColor is the configured accent color override, empty when unset.
var accentColor string

// ConfigureTheme applies a user-configured accent color to the shared styles.
// Accepts ANSI color codes ("0" to "255") and hex colors ("#RRGGBB" or "#RGB").
// "none", "off", and "default" disable the accent.
func ConfigureTheme(accent string) {
	color, ok := normalizeAccentColor(accent)
	if !ok {
		accentColor = ""
		return
	}

	accentColor = color
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// AccentColor returns the configured accent color, if any.
func AccentColor() (string, bool) {
	if accentColor == "" {
		return "", false
	}
	return accentColor, true
}

func normalizeAccentColor(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}

	switch strings.ToLower(trimmed) {
	case "none", "off", "default":
		return "", false
	}

	// ANSI 256-color code
	if n, err := strconv.Atoi(trimmed); err == nil {
		if n < 0 || n > 255 {
			return "", false
		}
		return strconv.Itoa(n), true
	}

	// Hex color, #RGB expands to #RRGGBB
	if strings.HasPrefix(trimmed, "#") {
		hex := strings.ToLower(trimmed[1:])
		if !isHex(hex) {
			return "", false
		}
		switch len(hex) {
		case 3:
			var sb strings.Builder
			for _, c := range hex {
				sb.WriteRune(c)
				sb.WriteRune(c)
			}
			return "#" + sb.String(), true
		case 6:
			return "#" + hex, true
		}
		return "", false
	}

	return "", false
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
