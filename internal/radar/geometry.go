package radar

import (
	"math"

	"ble-pulse.klederson.com/internal/config"
)

// FramePoints is the side of the square frame a resting circle is drawn in.
// Circle offsets are published in the same points.
const FramePoints = 100.0

// CellDistance computes the distance from a cell to a center point,
// accounting for terminal aspect ratio.
func CellDistance(col, row int, centerX, centerY float64) float64 {
	dx := float64(col) - centerX
	dy := (float64(row) - centerY) / config.AspectRatio
	return math.Sqrt(dx*dx + dy*dy)
}

// CellAngle computes the angle from a center point to a cell.
// Returns radians in [0, 2π), where 0=north, increasing clockwise.
func CellAngle(col, row int, centerX, centerY float64) float64 {
	dx := float64(col) - centerX
	dy := (float64(row) - centerY) / config.AspectRatio
	return NormalizeAngle(math.Atan2(dx, -dy)) // 0=north, clockwise
}

// RingChar returns the appropriate character for a ring at the given angle.
func RingChar(angle float64) rune {
	// 8 sectors for character selection
	sector := int(math.Round(NormalizeAngle(angle)/(math.Pi/4))) % 8

	switch sector {
	case 0, 4: // North, South
		return '-'
	case 1, 5: // NE, SW
		return '/'
	case 2, 6: // East, West
		return '|'
	case 3, 7: // SE, NW
		return '\\'
	default:
		return '.'
	}
}

// NormalizeAngle wraps an angle to [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Bounds returns the field center and the largest radius (in columns) that
// fits a width x height cell area.
func Bounds(width, height int) (centerX, centerY int, radius float64) {
	centerX = width / 2
	centerY = height / 2
	radius = math.Min(float64(centerX-1), float64(centerY-1)/config.AspectRatio)
	if radius < 3 {
		radius = 3
	}
	return centerX, centerY, radius
}

// RestRadius is the radius of a resting circle. It leaves room for the peak
// scale plus a full-g offset inside the field.
func RestRadius(fieldRadius float64) float64 {
	return fieldRadius / (config.PeakScale + config.OffsetFactor*2/FramePoints)
}

// PointsToCells converts a distance in frame points to columns for a circle
// whose resting radius is restRadius columns.
func PointsToCells(points, restRadius float64) float64 {
	return points / (FramePoints / 2) * restRadius
}
