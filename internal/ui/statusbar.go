package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the bottom bar reports.
type Status struct {
	Radio    string
	Ready    bool
	Error    string // why the radio is unusable, shown while not ready
	Scanning bool
	Sensor   bool
	Peers    int
	Pulses   [3]int
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	var radio string
	switch {
	case !s.Ready:
		radio = StyleStatusError.Render("[" + strings.ToUpper(s.Radio) + "]")
	case s.Scanning:
		radio = StyleStatusOn.Render("[SCANNING]")
	default:
		radio = StyleStatusOff.Render("[IDLE]")
	}

	sensor := StyleStatusOn.Render(" [SENSOR]")
	if !s.Sensor {
		sensor = StyleStatusError.Render(" [NO SENSOR]")
	}

	info := fmt.Sprintf(" Peers: %d  Pulses X:%d Y:%d Z:%d",
		s.Peers, s.Pulses[0], s.Pulses[1], s.Pulses[2])

	content := radio + sensor + StyleStatusBar.Foreground(ColorGreen).Render(info)

	if !s.Ready && s.Error != "" {
		room := width - lipgloss.Width(content) - 4
		if msg := s.Error; room > 0 {
			if len(msg) > room {
				msg = msg[:room]
			}
			content += "  " + StyleStatusError.Render(msg)
		}
	}

	// The bar's own padding takes two columns.
	gap := width - 2 - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}

	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
