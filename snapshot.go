package lcloud

import "github.com/ordlucas/lcloud/internal/statusapi"

// Snapshot implements statusapi.StatsProvider, giving the read-only
// admin HTTP surface a point-in-time view of session state without
// exposing the mutable Session itself.
func (s *Session) Snapshot() statusapi.Snapshot {
	snap := statusapi.Snapshot{
		Powered:   s.powered,
		OpenFiles: 0,
	}
	for _, f := range s.files {
		if f.Open {
			snap.OpenFiles++
		}
	}
	for _, d := range s.devices {
		snap.Devices = append(snap.Devices, statusapi.DeviceStatus{
			ID:      d.ID,
			NumSec:  d.NumSec,
			NumBlk:  d.NumBlk,
			NextSec: d.NextSec,
			NextBlk: d.NextBlk,
			Full:    d.Full,
		})
	}
	if s.cacheP != nil {
		stats := s.cacheP.Stats()
		snap.CacheHits = stats.Hits
		snap.CacheMisses = stats.Misses
		snap.CacheRatio = stats.Ratio
	}
	return snap
}
