package cache

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// chunkSize is how much of the source is read per iteration while filling a slot.
const chunkSize = 8192

var (
	ErrTooLarge  = errors.New("cache: object exceeds size ceiling")
	ErrTruncated = errors.New("cache: response shorter than declared length")
	ErrOverflow  = errors.New("cache: response longer than declared length")
	ErrExists    = errors.New("cache: key already stored")
	ErrLength    = errors.New("cache: negative length")
)

// Key identifies a cached response. All fields compare as exact strings.
type Key struct {
	Method  string
	Host    string
	Port    string
	Path    string
	Version string
}

// Entry is a stored response body. Content is never modified after insertion.
type Entry struct {
	Key         Key
	Content     []byte
	ContentType string
	Length      int
	RecordedAt  time.Time
}

type slot struct {
	Entry
	occupied bool
}

// Store is a fixed set of slots sharing a byte budget. Every operation,
// including the copy of a response body into a slot, runs under one mutex,
// so a half-filled entry is never visible and cacheable transfers are
// serialized across all connections.
//
// Eviction removes the largest entry (lowest slot on ties). RecordedAt is
// kept for inspection only and plays no part in eviction.
type Store struct {
	mu        sync.Mutex
	slots     []slot
	capacity  int
	budget    int
	ceiling   int
	bytesLeft int
	now       func() time.Time
	log       zerolog.Logger
	stats     Stats
}

// NewStore creates a store. Capacity, budget and ceiling must be > 0 and the
// ceiling may not exceed the budget.
func NewStore(opts ...StoreOption) (*Store, error) {
	s := &Store{
		capacity: DefaultCapacity,
		budget:   DefaultByteBudget,
		ceiling:  DefaultObjectCeiling,
		now:      time.Now,
		log:      zerolog.Nop(),
	}

	for _, o := range opts {
		o(s)
	}

	switch {
	case s.capacity <= 0:
		return nil, errors.New("capacity must be > 0")
	case s.budget <= 0:
		return nil, errors.New("byte budget must be > 0")
	case s.ceiling <= 0:
		return nil, errors.New("object ceiling must be > 0")
	case s.ceiling > s.budget:
		return nil, fmt.Errorf("object ceiling %d exceeds byte budget %d", s.ceiling, s.budget)
	}

	s.slots = make([]slot, s.capacity)
	s.bytesLeft = s.budget
	return s, nil
}

// ObjectCeiling returns the largest length TryInsert accepts.
func (s *Store) ObjectCeiling() int {
	return s.ceiling
}

// Lookup scans every slot for an entry whose key equals k.
func (s *Store) Lookup(k Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(k); i >= 0 {
		s.stats.Hits++
		return s.slots[i].Entry, true
	}
	s.stats.Misses++
	return Entry{}, false
}

// TryInsert reads src to its end and stores what it read under k, provided
// exactly length bytes arrived. It makes room first by evicting entries.
// Whatever src does with the bytes it yields (relaying them to a client, say)
// has already happened when an error is returned; a failed insertion leaves
// the slot free and the byte budget untouched.
//
// Objects above the ceiling are rejected with ErrTooLarge before src is read.
func (s *Store) TryInsert(k Key, src io.Reader, length int, contentType string) (bool, error) {
	if length < 0 {
		return false, ErrLength
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if length > s.ceiling {
		s.stats.Rejected++
		return false, ErrTooLarge
	}
	if s.indexLocked(k) >= 0 {
		// Another connection stored the same response while this one was
		// being fetched. The body still has to flow through src.
		_, err := io.Copy(io.Discard, src)
		s.stats.Rejected++
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		return false, ErrExists
	}

	idx := s.reserveLocked(length)

	content, err := fill(src, length)
	if err != nil {
		s.stats.Rejected++
		s.log.Debug().Err(err).Str("host", k.Host).Str("path", k.Path).Msg("cache insertion aborted")
		return false, err
	}

	s.slots[idx] = slot{
		Entry: Entry{
			Key:         k,
			Content:     content,
			ContentType: contentType,
			Length:      length,
			RecordedAt:  s.now(),
		},
		occupied: true,
	}
	s.bytesLeft -= length
	s.stats.Insertions++
	return true, nil
}

// fill reads src until end of stream. The first length bytes are kept; any
// shortfall or surplus is reported as an error after src is exhausted.
func fill(src io.Reader, length int) ([]byte, error) {
	content := make([]byte, 0, length)
	chunk := make([]byte, chunkSize)
	total := 0
	for {
		n, err := src.Read(chunk)
		if n > 0 {
			if total < length {
				keep := min(n, length-total)
				content = append(content, chunk[:keep]...)
			}
			total += n
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w after %d of %d bytes: %v", ErrTruncated, total, length, err)
		}
	}

	switch {
	case total < length:
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrTruncated, total, length)
	case total > length:
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrOverflow, total, length)
	}
	return content, nil
}

// reserveLocked evicts until length bytes fit in the budget and a slot is
// free, and returns that slot. length must not exceed the ceiling.
func (s *Store) reserveLocked(length int) int {
	for {
		free := s.freeSlotLocked()
		if free >= 0 && length <= s.bytesLeft {
			return free
		}
		if !s.evictLocked() {
			// Only reachable with an empty store, where every slot is free.
			return s.freeSlotLocked()
		}
	}
}

// evictLocked releases the largest occupied slot, preferring the lowest index
// on ties. It reports false when nothing was occupied. Callers hold s.mu.
func (s *Store) evictLocked() bool {
	victim := -1
	for i := range s.slots {
		if !s.slots[i].occupied {
			continue
		}
		if victim == -1 || s.slots[i].Length > s.slots[victim].Length {
			victim = i
		}
	}
	if victim == -1 {
		return false
	}

	evicted := s.slots[victim].Entry
	s.bytesLeft += evicted.Length
	s.slots[victim] = slot{}
	s.stats.Evictions++
	s.log.Debug().
		Int("slot", victim).
		Int("length", evicted.Length).
		Str("host", evicted.Key.Host).
		Str("path", evicted.Key.Path).
		Msg("evicted cache entry")
	return true
}

func (s *Store) freeSlotLocked() int {
	for i := range s.slots {
		if !s.slots[i].occupied {
			return i
		}
	}
	return -1
}

func (s *Store) indexLocked(k Key) int {
	for i := range s.slots {
		if s.slots[i].occupied && s.slots[i].Key == k {
			return i
		}
	}
	return -1
}

// BytesUsed returns the content bytes held by occupied slots.
func (s *Store) BytesUsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget - s.bytesLeft
}

// BytesLeft returns how much of the byte budget is still free.
func (s *Store) BytesLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytesLeft
}

// Len returns the number of occupied slots.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.slots {
		if s.slots[i].occupied {
			n++
		}
	}
	return n
}
