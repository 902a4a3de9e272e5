package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout puts the pulse panel on the left, distance and peer panels
// stacked on the right, with menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, pulsePanel, distancePanel, peerList, statusBar string) string {
	side := lipgloss.JoinVertical(lipgloss.Left, distancePanel, peerList)
	middle := lipgloss.JoinHorizontal(lipgloss.Top, pulsePanel, side)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}
