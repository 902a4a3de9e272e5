package app

import (
	"context"
	"time"

	"ble-pulse.klederson.com/internal/bluetooth"
	"ble-pulse.klederson.com/internal/config"
	"ble-pulse.klederson.com/internal/motion"
	"ble-pulse.klederson.com/internal/radar"
	"ble-pulse.klederson.com/internal/state"
	"ble-pulse.klederson.com/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// Options configures the terminal front end.
type Options struct {
	Identity string
	Demo     bool
	// ToggleRadio flips the simulated radio on and off. Nil outside demo mode.
	ToggleRadio func() bluetooth.Readiness
	// RadioError explains an adapter that could not be enabled.
	RadioError string
}

// shared holds state shared between the Bubble Tea model copies.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	field    *radar.Field
	history  *RSSIRing
	lastSeen time.Time
}

// AppModel is the root Bubble Tea model. It never touches services directly;
// everything it draws arrives as a SnapshotMsg.
type AppModel struct {
	width  int
	height int

	opts   Options
	cursor int
	snap   state.Snapshot

	shared *shared
}

// New creates a new AppModel starting from initial.
func New(opts Options, initial state.Snapshot) AppModel {
	m := AppModel{
		opts: opts,
		snap: initial,
		shared: &shared{
			field:   radar.NewField(),
			history: NewRSSIRing(config.HistorySize),
		},
	}
	m.shared.field.Update(initial, time.Now())
	return m
}

func (m AppModel) Init() tea.Cmd {
	return tickCmd()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		return m, tickCmd()

	case SnapshotMsg:
		m.apply(state.Snapshot(msg), time.Now())
		return m, nil
	}

	return m, nil
}

func (m *AppModel) apply(snap state.Snapshot, now time.Time) {
	m.snap = snap
	m.shared.field.Update(snap, now)

	if len(snap.Peers) == 0 {
		return
	}
	primary := snap.Peers[0]
	h := m.shared.history
	if h.Peer() != primary.ID {
		h.Track(primary.ID)
		m.shared.lastSeen = time.Time{}
	}
	// Snapshots also arrive for unrelated changes; only new sightings count.
	if primary.LastSeen.After(m.shared.lastSeen) {
		h.Push(float64(primary.RSSI))
		m.shared.lastSeen = primary.LastSeen
	}
	if m.cursor >= len(snap.Peers) {
		m.cursor = len(snap.Peers) - 1
	}
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "b", "B":
		if toggle := m.opts.ToggleRadio; toggle != nil {
			return m, func() tea.Msg {
				toggle()
				return nil
			}
		}

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.snap.Peers)-1 {
			m.cursor++
		}

	case "home":
		m.cursor = 0

	case "end":
		if len(m.snap.Peers) > 0 {
			m.cursor = len(m.snap.Peers) - 1
		}
	}

	return m, nil
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing " + config.AppName + "..."
	}

	const menuH, statusH = 1, 1
	bodyH := max(m.height-menuH-statusH, 8)

	pulseW := m.width * 3 / 5
	if pulseW < 30 {
		pulseW = 30
	}
	sideW := m.width - pulseW
	if sideW < 24 {
		sideW = 24
		pulseW = m.width - sideW
	}
	distH := min(bodyH/2, 12)
	peersH := bodyH - distH

	menuBar := ui.RenderMenuBar(m.width, m.opts.Identity, m.snap.Advertising, m.opts.Demo)

	// Border (2) + title and legend lines (2).
	innerW := max(pulseW-4, 5)
	innerH := max(bodyH-4, 3)
	now := time.Now()
	_, _, fieldRadius := radar.Bounds(innerW, innerH)
	field := radar.Render(innerW, innerH, m.shared.field.Circles(fieldRadius, now))
	pulsePanel := ui.RenderPulsePanel(pulseW, bodyH, field, radar.RenderLegend(innerW))

	dist := ui.Distance{
		Text:    m.snap.DistanceText(),
		Found:   m.snap.PeerFound() && m.snap.Distance >= 0,
		Meters:  m.snap.Distance,
		History: m.shared.history.Values(),
	}
	if len(m.snap.Peers) > 0 {
		dist.RSSI = m.snap.Peers[0].RSSI
	}
	distancePanel := ui.RenderDistancePanel(dist, sideW, distH)
	peerList := ui.RenderPeerList(m.snap.Peers, sideW, peersH, m.cursor, now)

	status := ui.Status{
		Radio:    m.snap.Radio.String(),
		Ready:    m.snap.Radio.Ready(),
		Error:    m.opts.RadioError,
		Scanning: m.snap.Scanning,
		Sensor:   m.snap.SensorActive,
		Peers:    len(m.snap.Peers),
	}
	for _, a := range motion.Axes {
		status.Pulses[a] = m.snap.Axis(a).Pulses
	}
	statusBar := ui.RenderStatusBar(m.width, status)

	return ui.ComposeLayout(menuBar, pulsePanel, distancePanel, peerList, statusBar)
}

// Feed forwards every store change to send until ctx ends. It is meant to
// run in its own goroutine with send bound to tea.Program.Send.
func Feed(ctx context.Context, store *state.Store, send func(tea.Msg)) {
	ch, cancel := store.Subscribe(16)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			send(SnapshotMsg(snap))
		}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
