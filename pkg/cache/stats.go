package cache

import "time"

// Stats counts store activity since creation.
type Stats struct {
	Slots         int    `json:"slots"`
	Entries       int    `json:"entries"`
	ByteBudget    int    `json:"byteBudget"`
	ObjectCeiling int    `json:"objectCeiling"`
	BytesUsed     int    `json:"bytesUsed"`
	BytesLeft     int    `json:"bytesLeft"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Insertions    uint64 `json:"insertions"`
	Evictions     uint64 `json:"evictions"`
	Rejected      uint64 `json:"rejected"`
}

// EntryInfo describes an occupied slot without exposing its content.
type EntryInfo struct {
	Slot        int       `json:"slot"`
	Method      string    `json:"method"`
	Host        string    `json:"host"`
	Port        string    `json:"port"`
	Path        string    `json:"path"`
	Version     string    `json:"version"`
	ContentType string    `json:"contentType"`
	Length      int       `json:"length"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// Stats returns the counters together with current occupancy.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	out.Slots = len(s.slots)
	out.ByteBudget = s.budget
	out.ObjectCeiling = s.ceiling
	out.BytesLeft = s.bytesLeft
	out.BytesUsed = s.budget - s.bytesLeft
	for i := range s.slots {
		if s.slots[i].occupied {
			out.Entries++
		}
	}
	return out
}

// Snapshot lists occupied slots in slot order.
func (s *Store) Snapshot() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]EntryInfo, 0, len(s.slots))
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.occupied {
			continue
		}
		out = append(out, EntryInfo{
			Slot:        i,
			Method:      sl.Key.Method,
			Host:        sl.Key.Host,
			Port:        sl.Key.Port,
			Path:        sl.Key.Path,
			Version:     sl.Key.Version,
			ContentType: sl.ContentType,
			Length:      sl.Length,
			RecordedAt:  sl.RecordedAt,
		})
	}
	return out
}
