package bluetooth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCal = Calibration{MeasuredPower: -59, PathLossExp: 2}

func TestPeerStore_UpsertUpdatesInPlace(t *testing.T) {
	s := NewPeerStore(testCal)
	t0 := time.Now()

	p, created := s.Upsert("P", -70, "", t0)
	require.True(t, created)
	assert.Equal(t, int16(-70), p.RSSI)

	p, created = s.Upsert("P", -65, "", t0.Add(time.Second))
	require.False(t, created)
	assert.Equal(t, int16(-65), p.RSSI)

	peers := s.Snapshot()
	require.Len(t, peers, 1)
	assert.Equal(t, "P", peers[0].ID)
	assert.Equal(t, int16(-65), peers[0].RSSI)
	assert.Equal(t, t0, peers[0].FirstSeen)
	assert.Equal(t, t0.Add(time.Second), peers[0].LastSeen)
	assert.Equal(t, 2, peers[0].Sightings)
	assert.InDelta(t, testCal.Distance(-65), peers[0].Distance, 1e-12)
}

func TestPeerStore_InsertionOrder(t *testing.T) {
	s := NewPeerStore(testCal)
	now := time.Now()

	s.Upsert("far", -90, "", now)
	s.Upsert("near", -40, "", now)
	s.Upsert("mid", -60, "", now)
	s.Upsert("far", -91, "", now) // update does not move it

	var ids []string
	for _, p := range s.Snapshot() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"far", "near", "mid"}, ids)

	primary, ok := s.Primary()
	require.True(t, ok)
	assert.Equal(t, "far", primary.ID)

	closest, ok := s.Closest()
	require.True(t, ok)
	assert.Equal(t, "near", closest.ID)
	assert.Equal(t, 3, s.Count())
}

func TestPeerStore_ClosestSkipsUnknown(t *testing.T) {
	s := NewPeerStore(testCal)
	s.Upsert("blank", 0, "", time.Now())

	_, ok := s.Closest()
	assert.False(t, ok)

	s.Upsert("real", -80, "", time.Now())
	closest, ok := s.Closest()
	require.True(t, ok)
	assert.Equal(t, "real", closest.ID)
}

func TestPeerStore_SnapshotIsACopy(t *testing.T) {
	s := NewPeerStore(testCal)
	s.Upsert("P", -70, "", time.Now())

	snap := s.Snapshot()
	snap[0].RSSI = 0

	assert.Equal(t, int16(-70), s.Snapshot()[0].RSSI)
}

func TestPeerStore_Empty(t *testing.T) {
	s := NewPeerStore(testCal)
	_, ok := s.Primary()
	assert.False(t, ok)
	assert.Empty(t, s.Snapshot())
	assert.Zero(t, s.Count())
}

func TestPeerStore_UpsertVendor(t *testing.T) {
	s := NewPeerStore(testCal)
	now := time.Now()

	p, _ := s.Upsert("P", -70, "", now)
	assert.Empty(t, p.Vendor)

	p, _ = s.Upsert("P", -68, "Apple", now)
	assert.Equal(t, "Apple", p.Vendor, "the returned copy carries this sighting's vendor")

	// A sighting without manufacturer data keeps the known vendor.
	p, _ = s.Upsert("P", -66, "", now)
	assert.Equal(t, "Apple", p.Vendor)

	p, created := s.Upsert("Q", -80, "Garmin", now)
	require.True(t, created)
	assert.Equal(t, "Garmin", p.Vendor)
	assert.Equal(t, 2, s.Count())
}

func TestVendorName(t *testing.T) {
	assert.Equal(t, "Apple", VendorName(0x004C))
	assert.Empty(t, VendorName(0xFFFF))
	assert.Equal(t, "Garmin", firstVendor(0xFFFF, 0x038F, 0x004C))
	assert.Empty(t, firstVendor())
}
