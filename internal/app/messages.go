package app

import (
	"time"

	"ble-pulse.klederson.com/internal/state"
)

// TickMsg triggers a frame update for animation.
type TickMsg time.Time

// SnapshotMsg carries a newly published state.
type SnapshotMsg state.Snapshot
