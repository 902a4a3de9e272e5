package ui

import (
	"fmt"
	"strings"

	"ble-pulse.klederson.com/internal/config"
	"github.com/charmbracelet/lipgloss"
)

// RenderMenuBar renders the top menu bar. The radio toggle key is only
// offered in demo mode, where the radio is simulated.
func RenderMenuBar(width int, identity string, advertising, demo bool) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"↑↓", " select"},
	}
	if demo {
		keys = append(keys, struct{ key, label string }{"B", "luetooth"})
	}
	keys = append(keys, struct{ key, label string }{"Q", "uit"})

	menu := ""
	for _, k := range keys {
		menu += "  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label)
	}

	status := StyleStatusOff.Render("SILENT")
	if advertising {
		status = StyleStatusOn.Render("ADVERTISING")
	}
	if demo {
		status = StyleStatusOff.Render("DEMO") + " " + status
	}

	identInfo := StyleMenuLabel.Render(fmt.Sprintf("As: %s", identity))

	left := StyleMenuKey.Render(title) + menu
	right := status + "  " + identInfo + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
