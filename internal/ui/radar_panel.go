package ui

// RenderPulsePanel wraps the pulse field with a styled border. The field is
// rendered by the radar package.
func RenderPulsePanel(width, height int, field, legend string) string {
	content := StylePanelTitle.Render("MOTION") + "\n" + field + "\n" + legend
	return StylePanelBorder.Width(width - 2).Height(height - 2).Render(content)
}
