package ui

import (
	"strings"
	"testing"
	"time"

	"ble-pulse.klederson.com/internal/bluetooth"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestRenderSparkline(t *testing.T) {
	assert.Empty(t, renderSparkline(nil, 10))
	assert.Equal(t, "_^", renderSparkline([]float64{-90, -50}, 10))
	assert.Equal(t, "___", renderSparkline([]float64{-60, -60, -60}, 10), "flat history stays on the floor")
	assert.Len(t, renderSparkline(make([]float64, 50), 12), 12)
}

func TestRenderSignalBar(t *testing.T) {
	for _, rssi := range []float64{-120, -100, -65, -30, 0} {
		bar := renderSignalBar(rssi, 20)
		assert.Equal(t, 22, lipgloss.Width(bar), "rssi %v", rssi)
	}
	assert.Equal(t, 20, strings.Count(renderSignalBar(-10, 20), "|"))
	assert.Equal(t, 0, strings.Count(renderSignalBar(-110, 20), "|"))
}

func TestRenderPeerList_ExactHeight(t *testing.T) {
	now := time.Now()
	var peers []bluetooth.Peer
	for i := 0; i < 20; i++ {
		peers = append(peers, bluetooth.Peer{ID: "AA:BB:CC:DD:EE:" + string(rune('A'+i)), RSSI: -60, Distance: 1.2, LastSeen: now})
	}

	for _, h := range []int{6, 12, 30} {
		out := RenderPeerList(peers, 40, h, 15, now)
		assert.Len(t, strings.Split(out, "\n"), h)
	}

	empty := RenderPeerList(nil, 40, 10, 0, now)
	assert.Contains(t, empty, "No peers yet")
	assert.Contains(t, empty, "PEERS [0]")
}

func TestRenderPeerList_MarksPrimary(t *testing.T) {
	now := time.Now()
	peers := []bluetooth.Peer{
		{ID: "first", RSSI: -70, Distance: 3.2, LastSeen: now, Vendor: "Apple"},
		{ID: "second", RSSI: 0, Distance: bluetooth.UnknownDistance, LastSeen: now.Add(-5 * time.Second)},
	}
	out := RenderPeerList(peers, 40, 12, 1, now)
	assert.Contains(t, out, "*  first")
	assert.Contains(t, out, "~3.2m")
	assert.Contains(t, out, "~?m")
	assert.Contains(t, out, "5s ago")
	assert.Contains(t, out, "Apple")
}

func TestRenderDistancePanel(t *testing.T) {
	searching := RenderDistancePanel(Distance{Text: "Searching for device..."}, 40, 10)
	assert.Contains(t, searching, "Searching for device...")
	assert.NotContains(t, searching, "Signal")

	found := RenderDistancePanel(Distance{
		Text:    "Distance: 1.00 meters",
		Found:   true,
		RSSI:    -59,
		Meters:  1,
		History: []float64{-70, -65, -59},
	}, 50, 12)
	assert.Contains(t, found, "Distance: 1.00 meters")
	assert.Contains(t, found, "-59dBm")
	assert.Contains(t, found, "RSSI History")
	assert.Len(t, strings.Split(found, "\n"), 12)
}

func TestRenderStatusBar(t *testing.T) {
	out := RenderStatusBar(80, Status{Radio: "powered-on", Ready: true, Scanning: true, Sensor: true, Peers: 2, Pulses: [3]int{1, 0, 4}})
	assert.Contains(t, out, "[SCANNING]")
	assert.Contains(t, out, "Peers: 2")
	assert.Contains(t, out, "X:1 Y:0 Z:4")

	off := RenderStatusBar(80, Status{Radio: "powered-off"})
	assert.Contains(t, off, "[POWERED-OFF]")
	assert.Contains(t, off, "[NO SENSOR]")
}

func TestRenderStatusBar_RadioError(t *testing.T) {
	s := Status{Radio: "unauthorized", Error: "bluetooth adapter unavailable: permission denied"}
	out := RenderStatusBar(120, s)
	assert.Contains(t, out, "bluetooth adapter unavailable")
	assert.NotContains(t, out, "\n")

	narrow := RenderStatusBar(70, s)
	assert.NotContains(t, narrow, "\n", "the error is cut to fit one line")
	assert.NotContains(t, narrow, "permission denied")

	s.Ready = true
	assert.NotContains(t, RenderStatusBar(120, s), "adapter unavailable")
}

func TestRenderMenuBar(t *testing.T) {
	demo := RenderMenuBar(100, "MyWatchApp", true, true)
	assert.Contains(t, demo, "DEMO")
	assert.Contains(t, demo, "ADVERTISING")
	assert.Contains(t, demo, "[B]")

	live := RenderMenuBar(100, "MyWatchApp", false, false)
	assert.Contains(t, live, "SILENT")
	assert.NotContains(t, live, "[B]")
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "now", formatAge(200*time.Millisecond))
	assert.Equal(t, "12s ago", formatAge(12*time.Second))
	assert.Equal(t, "3m ago", formatAge(3*time.Minute+10*time.Second))
}
