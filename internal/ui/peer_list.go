package ui

import (
	"fmt"
	"strings"
	"time"

	"ble-pulse.klederson.com/internal/bluetooth"
)

// RenderPeerList renders the scrollable list of matching peers. The first
// peer drives the distance readout and is marked as primary.
func RenderPeerList(peers []bluetooth.Peer, width, height, cursor int, now time.Time) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}

	title := StylePanelTitle.Render(fmt.Sprintf("PEERS [%d]", len(peers)))
	separator := StyleSeparator.Render(strings.Repeat("-", innerW))
	headerLines := []string{title, separator}

	innerH := height - 2
	if innerH < len(headerLines)+1 {
		innerH = len(headerLines) + 1
	}
	space := innerH - len(headerLines)

	var lines []string
	if len(peers) == 0 {
		lines = append(lines, "", StyleHelp.Render(" No peers yet..."), StyleHelp.Render(" Waiting for advertisement"))
	} else {
		const linesPerPeer = 3 // 2 content + 1 blank
		maxVisible := space / linesPerPeer
		if maxVisible < 1 {
			maxVisible = 1
		}

		// Keep the cursor in view.
		viewStart := 0
		if cursor >= maxVisible {
			viewStart = cursor - maxVisible + 1
		}

		for i := viewStart; i < len(peers) && len(lines) < space; i++ {
			lines = append(lines, renderPeerEntry(peers[i], innerW, i == 0, i == cursor, now)...)
		}
	}

	if len(lines) > space {
		lines = lines[:space]
	}
	for len(lines) < space {
		lines = append(lines, "")
	}

	content := strings.Join(append(headerLines, lines...), "\n")
	rendered := StylePanelBorder.Width(width - 2).Height(innerH).Render(content)

	// lipgloss Height() only sets a minimum; clamp overflow ourselves.
	out := strings.Split(rendered, "\n")
	if len(out) > height {
		out = out[:height]
	}
	for len(out) < height {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

func renderPeerEntry(p bluetooth.Peer, maxW int, primary, isCursor bool, now time.Time) []string {
	marker := "  "
	if primary {
		marker = "* "
	}
	if isCursor {
		marker = ">>"
	}

	id := p.ID
	if len(id) > maxW-4 {
		id = id[:maxW-4]
	}
	dist := "~?m"
	if p.Distance >= 0 {
		dist = fmt.Sprintf("~%.1fm", p.Distance)
	}
	rssi := fmt.Sprintf("%ddBm", p.RSSI)
	seen := formatAge(now.Sub(p.LastSeen))
	if p.Vendor != "" {
		seen += "  " + p.Vendor
	}

	if isCursor {
		raw1 := truncRaw(fmt.Sprintf("%s %s", marker, id), maxW)
		raw2 := truncRaw(fmt.Sprintf("    %s  %s  %s", rssi, dist, seen), maxW)
		return []string{StyleCursorLine.Render(raw1), StyleCursorLine.Render(raw2), ""}
	}

	line1 := StylePeerName.Render(marker) + " " + StylePeerID.Render(id)
	line2 := "    " + StylePeerRSSI.Render(rssi) + "  " + StylePeerDist.Render(dist) + "  " + StyleHelp.Render(seen)
	return []string{line1, line2, ""}
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	default:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
}

// truncRaw pads or truncates a raw string to exactly w characters.
func truncRaw(s string, w int) string {
	if len(s) > w {
		return s[:w]
	}
	return s + strings.Repeat(" ", w-len(s))
}
