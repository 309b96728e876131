package accesslog

import (
	"sync"
	"time"
)

type Outcome string

const (
	// OutcomeHit was served from the cache.
	OutcomeHit Outcome = "hit"
	// OutcomeStored was relayed from upstream and stored.
	OutcomeStored Outcome = "stored"
	// OutcomeRelayed was relayed from upstream without being stored.
	OutcomeRelayed Outcome = "relayed"
	// OutcomeRejected got an error response from the proxy.
	OutcomeRejected Outcome = "rejected"
	// OutcomeAborted was closed without a response, e.g. unreachable upstream.
	OutcomeAborted Outcome = "aborted"
)

// Record describes one handled client connection.
type Record struct {
	Time    time.Time `json:"time"`
	Client  string    `json:"client"`
	Method  string    `json:"method"`
	URI     string    `json:"uri"`
	Outcome Outcome   `json:"outcome"`
	Status  int       `json:"status"`
	Bytes   int64     `json:"bytes"`
}

type Recorder interface {
	Record(Record)
}

// Multi hands every record to each recorder in turn.
type Multi []Recorder

func (m Multi) Record(r Record) {
	for _, rec := range m {
		rec.Record(r)
	}
}

type nop struct{}

func (nop) Record(Record) {}

// Nop discards records.
var Nop Recorder = nop{}

// Memory keeps the most recent records, newest first.
type Memory struct {
	mu      sync.RWMutex
	records []Record
	limit   int
}

func NewMemory(limit int) *Memory {
	return &Memory{
		records: make([]Record, 0, limit),
		limit:   limit,
	}
}

func (m *Memory) Record(r Record) {
	if m.limit <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append([]Record{r}, m.records...)
	if len(m.records) > m.limit {
		m.records = m.records[:m.limit]
	}
}

// Recent returns a copy of the stored records.
func (m *Memory) Recent() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}
