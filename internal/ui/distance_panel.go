package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Distance is what the distance panel shows about the primary peer.
type Distance struct {
	Text    string // headline, e.g. "Distance: 1.23 meters"
	Found   bool
	RSSI    int16
	Meters  float64
	History []float64 // RSSI samples, oldest first
}

// RenderDistancePanel renders the distance readout with a signal bar and an
// RSSI sparkline.
func RenderDistancePanel(d Distance, width, height int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	lines := []string{
		StylePanelTitle.Render("DISTANCE"),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
		"",
	}

	headline := StyleValue.Render(d.Text)
	if !d.Found {
		headline = StyleHelp.Render(d.Text)
	}
	pad := (innerW - lipgloss.Width(headline)) / 2
	if pad < 0 {
		pad = 0
	}
	lines = append(lines, strings.Repeat(" ", pad)+headline, "")

	if d.Found {
		barWidth := innerW - 18
		if barWidth < 10 {
			barWidth = 10
		}
		lines = append(lines, StyleLabel.Render("  Signal ")+renderSignalBar(float64(d.RSSI), barWidth)+
			StyleValue.Render(fmt.Sprintf(" %ddBm", d.RSSI)))
	}

	if len(d.History) > 0 {
		sparkW := innerW - 4
		if sparkW < 10 {
			sparkW = 10
		}
		lines = append(lines, "", StyleLabel.Render("  RSSI History:"),
			"  "+lipgloss.NewStyle().Foreground(ColorGreen).Render(renderSparkline(d.History, sparkW)))
	}

	for len(lines) < height-2 {
		lines = append(lines, "")
	}
	if len(lines) > height-2 {
		lines = lines[:height-2]
	}

	style := StylePanelBorder
	if d.Found {
		style = StylePanelActive
	}
	return style.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

func renderSignalBar(rssi float64, width int) string {
	// Map RSSI -100..-30 to 0..width filled bars
	ratio := math.Max(0, math.Min(1, (rssi+100.0)/70.0))
	filled := int(math.Round(ratio * float64(width)))

	filledPart := lipgloss.NewStyle().Foreground(proximityColor(rssi)).Render(strings.Repeat("|", filled))
	emptyPart := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(strings.Repeat("-", width-filled))
	return StyleHelp.Render("[") + filledPart + emptyPart + StyleHelp.Render("]")
}

func proximityColor(rssi float64) lipgloss.Color {
	switch {
	case rssi > -50:
		return ColorMatrixGreen
	case rssi > -70:
		return ColorGreen
	case rssi > -85:
		return ColorWarning
	default:
		return ColorError
	}
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	// Take last `width` values
	start := 0
	if len(values) > width {
		start = len(values) - width
	}

	var sb strings.Builder
	for i := start; i < len(values); i++ {
		idx := int((values[i] - minV) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		sb.WriteByte(chars[idx])
	}
	return sb.String()
}
