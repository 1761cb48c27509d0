package state

import (
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/five82/karaflog/internal/filter"
	"github.com/five82/karaflog/internal/logparse"
	"github.com/five82/karaflog/internal/logtail"
)

// SourceStatus is what the store knows about one watched file.
type SourceStatus struct {
	logtail.Status
	ID      logparse.SourceID
	Opened  time.Time
	Records int
	// Pending is set while a provisional record of the source is shown.
	Pending bool
}

// Failing reports whether the last check of the file failed.
func (s SourceStatus) Failing() bool {
	return s.Err != nil
}

// IsOffline returns true when the file has been unreadable for several checks.
func (s SourceStatus) IsOffline() bool {
	return s.Failures >= 2
}

// Store holds the records of every open source in arrival order together
// with each source's watch status. A source may also have one provisional
// record, the record its watcher still holds open; queries list it after
// the committed records until the final version replaces it. The zero value
// is ready to use.
type Store struct {
	mu      sync.RWMutex
	records []logparse.Record
	pending map[logparse.SourceID]logparse.Record
	seq     uint64
	version uint64
	sources map[logparse.SourceID]*SourceStatus
	order   []logparse.SourceID
	subs    map[int]chan struct{}
	nextSub int
}

// Register adds a source. Records are only accepted for registered sources.
func (s *Store) Register(id logparse.SourceID, path string) {
	s.mu.Lock()
	if s.sources == nil {
		s.sources = make(map[logparse.SourceID]*SourceStatus)
	}
	if _, ok := s.sources[id]; ok {
		s.mu.Unlock()
		return
	}
	s.sources[id] = newSource(id, path)
	s.order = append(s.order, id)
	s.version++
	s.mu.Unlock()
	s.notify()
}

// Replace swaps a source for a fresh one at the same position, dropping the
// old source's records. Late events for the old id are ignored afterwards.
func (s *Store) Replace(old, id logparse.SourceID, path string) bool {
	s.mu.Lock()
	idx := slices.Index(s.order, old)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.clearLocked(old)
	delete(s.sources, old)
	s.sources[id] = newSource(id, path)
	s.order[idx] = id
	s.version++
	s.mu.Unlock()
	s.notify()
	return true
}

// Remove forgets a source and its records.
func (s *Store) Remove(id logparse.SourceID) bool {
	s.mu.Lock()
	if _, ok := s.sources[id]; !ok {
		s.mu.Unlock()
		return false
	}
	s.clearLocked(id)
	delete(s.sources, id)
	s.order = slices.DeleteFunc(s.order, func(v logparse.SourceID) bool { return v == id })
	s.version++
	s.mu.Unlock()
	s.notify()
	return true
}

// Append adds records in order, assigning sequence numbers. Records of
// unregistered sources are skipped. It returns the number accepted.
func (s *Store) Append(records ...logparse.Record) int {
	if len(records) == 0 {
		return 0
	}
	s.mu.Lock()
	n := s.appendLocked(records)
	if n > 0 {
		s.version++
	}
	s.mu.Unlock()
	if n > 0 {
		s.notify()
	}
	return n
}

// Clear drops every record of a source and returns how many were removed.
func (s *Store) Clear(id logparse.SourceID) int {
	s.mu.Lock()
	n := s.clearLocked(id)
	if n > 0 {
		s.version++
	}
	s.mu.Unlock()
	if n > 0 {
		s.notify()
	}
	return n
}

// SetStatus records the latest watch status of a source.
func (s *Store) SetStatus(id logparse.SourceID, status logtail.Status) bool {
	s.mu.Lock()
	src, ok := s.sources[id]
	if ok {
		src.Status = status
		s.version++
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
	return ok
}

// Apply applies a watcher event as one atomic change: readers see either
// none or all of it. Events of unknown sources are ignored and reported as
// not applied.
func (s *Store) Apply(ev logtail.Event) bool {
	s.mu.Lock()
	src, ok := s.sources[ev.Source]
	if !ok {
		s.mu.Unlock()
		return false
	}
	switch ev.Kind {
	case logtail.EventReset:
		s.clearLocked(ev.Source)
	case logtail.EventRecords:
		s.appendLocked(ev.Records)
		s.dropPendingLocked(src)
	case logtail.EventPending:
		s.dropPendingLocked(src)
		if len(ev.Records) > 0 {
			if s.pending == nil {
				s.pending = make(map[logparse.SourceID]logparse.Record)
			}
			rec := ev.Records[len(ev.Records)-1]
			rec.Source = ev.Source
			s.pending[ev.Source] = rec
			src.Pending = true
		}
	}
	src.Status = ev.Status
	s.version++
	s.mu.Unlock()
	s.notify()
	return true
}

// Query returns the records matching spec in arrival order, followed by the
// provisional records in source order. A provisional record carries the
// sequence number its final version will get if no other source commits
// first. The sequence is evaluated lazily against the records present when
// Query was called and yields the same result every time it is ranged over.
func (s *Store) Query(spec filter.Spec) iter.Seq[logparse.Record] {
	s.mu.RLock()
	records := s.records[:len(s.records):len(s.records)]
	var pending []logparse.Record
	for _, id := range s.order {
		if rec, ok := s.pending[id]; ok {
			rec.Seq = s.seq + uint64(len(pending)) + 1
			pending = append(pending, rec)
		}
	}
	s.mu.RUnlock()

	return func(yield func(logparse.Record) bool) {
		for _, batch := range [][]logparse.Record{records, pending} {
			for _, rec := range batch {
				if !spec.Match(rec) {
					continue
				}
				if !yield(rec) {
					return
				}
			}
		}
	}
}

// Len returns the number of committed records across all sources.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Version changes whenever the store is modified.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Sources returns a copy of every source status in registration order.
func (s *Store) Sources() []SourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SourceStatus, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneStatus(s.sources[id]))
	}
	return out
}

// Source returns a copy of one source status.
func (s *Store) Source(id logparse.SourceID) (SourceStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.sources[id]
	if !ok {
		return SourceStatus{}, false
	}
	return cloneStatus(src), true
}

// Subscribe returns a channel that receives a value after changes. Bursts of
// changes coalesce into one pending notification; the writer never blocks
// on a slow reader. Call the returned function to unsubscribe.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[int]chan struct{})
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Store) appendLocked(records []logparse.Record) int {
	n := 0
	for _, rec := range records {
		src, ok := s.sources[rec.Source]
		if !ok {
			continue
		}
		s.seq++
		rec.Seq = s.seq
		s.records = append(s.records, rec)
		src.Records++
		n++
	}
	return n
}

func (s *Store) dropPendingLocked(src *SourceStatus) bool {
	if !src.Pending {
		return false
	}
	delete(s.pending, src.ID)
	src.Pending = false
	return true
}

// clearLocked drops the committed and provisional records of a source and
// returns how many were removed.
func (s *Store) clearLocked(id logparse.SourceID) int {
	src, ok := s.sources[id]
	if !ok {
		return 0
	}
	removed := 0
	if s.dropPendingLocked(src) {
		removed++
	}
	if src.Records == 0 {
		return removed
	}
	kept := make([]logparse.Record, 0, len(s.records)-src.Records)
	for _, rec := range s.records {
		if rec.Source != id {
			kept = append(kept, rec)
		}
	}
	removed += len(s.records) - len(kept)
	s.records = kept
	src.Records = 0
	return removed
}

func newSource(id logparse.SourceID, path string) *SourceStatus {
	return &SourceStatus{
		ID:     id,
		Opened: time.Now(),
		Status: logtail.Status{Path: path},
	}
}

func cloneStatus(src *SourceStatus) SourceStatus {
	out := *src
	if src.Err != nil {
		out.Err = fmt.Errorf("%w", src.Err)
	}
	return out
}
