package radar

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ble-pulse.klederson.com/internal/config"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorBright = lipgloss.Color("#00FF41")
	colorMid    = lipgloss.Color("#008F11")
	colorDim    = lipgloss.Color("#004A0A")

	styleCenter = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleAxis   = lipgloss.NewStyle().Foreground(colorDim)
	styleRest   = lipgloss.NewStyle().Foreground(colorMid)
	styleLegend = lipgloss.NewStyle().Foreground(colorMid)
)

// Opacities below this are not drawn.
const minVisible = 0.05

// Circle is one axis circle in field coordinates. DX/DY offset the center
// from the field center, Radius is in columns.
type Circle struct {
	Label   rune
	DX, DY  float64
	Radius  float64
	Opacity float64
	Color   lipgloss.Color
}

// Render produces the pulse field as a styled string. Later circles are
// drawn over earlier ones. A faint outline marks the resting circle so the
// field is never blank.
func Render(width, height int, circles []Circle) string {
	if width < 10 || height < 5 {
		return ""
	}

	centerX, centerY, fieldRadius := Bounds(width, height)
	rest := RestRadius(fieldRadius)

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			sb.WriteString(renderCell(col, row, centerX, centerY, rest, circles))
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func renderCell(col, row, centerX, centerY int, rest float64, circles []Circle) string {
	cx, cy := float64(centerX), float64(centerY)

	for i := len(circles) - 1; i >= 0; i-- {
		c := circles[i]
		if c.Opacity < minVisible {
			continue
		}
		ox := cx + c.DX
		oy := cy + c.DY*config.AspectRatio

		// Axis letter sits on top of its circle.
		if col == int(math.Round(ox)) && row == int(math.Round(oy-c.Radius*config.AspectRatio)) {
			return shade(c.Color, c.Opacity).Bold(true).Render(string(c.Label))
		}
		if math.Abs(CellDistance(col, row, ox, oy)-c.Radius) < 0.6 {
			ch := RingChar(CellAngle(col, row, ox, oy))
			return shade(c.Color, c.Opacity).Render(string(ch))
		}
	}

	if col == centerX && row == centerY {
		return styleCenter.Render("+")
	}
	if math.Abs(CellDistance(col, row, cx, cy)-rest) < 0.5 {
		return styleRest.Render("·")
	}
	if col == centerX || row == centerY {
		return styleAxis.Render(".")
	}
	return " "
}

// shade dims a hex color toward black by opacity.
func shade(c lipgloss.Color, opacity float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Dim(c, opacity))
}

// Dim scales each channel of a #RRGGBB color by f in [0,1]. Other color
// forms are returned unchanged.
func Dim(c lipgloss.Color, f float64) lipgloss.Color {
	s := string(c)
	if len(s) != 7 || s[0] != '#' {
		return c
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return c
	}
	f = math.Max(0, math.Min(1, f))
	r := uint8(float64(v>>16&0xFF) * f)
	g := uint8(float64(v>>8&0xFF) * f)
	b := uint8(float64(v&0xFF) * f)
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, b))
}

// RenderLegend produces the axis legend line.
func RenderLegend(width int) string {
	parts := make([]string, 0, len(AxisColors))
	for i, c := range AxisColors {
		parts = append(parts, lipgloss.NewStyle().Foreground(c).Render("● "+string(axisLabels[i])))
	}
	legend := strings.Join(parts, "  ") + styleLegend.Render("   · rest")

	pad := (width - lipgloss.Width(legend)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + legend
}
