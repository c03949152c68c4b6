package service

import (
	"time"

	"github.com/ZebulonRouseFrantzich/ipaview/internal/archive"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/fspath"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/navigation"
	"github.com/ZebulonRouseFrantzich/ipaview/internal/tree"
)

// EventKind identifies what happened in a session.
type EventKind int

const (
	// EventOpenStarted fires before a source is materialized.
	EventOpenStarted EventKind = iota
	// EventProgress reports extraction progress (Key, Done, Total).
	EventProgress
	// EventOpened fires when a source is open (Source, Entry, Path, Breadcrumbs).
	EventOpened
	// EventOpenFailed fires when an open fails (Source, Err).
	EventOpenFailed
	// EventNavigated fires when the current directory changes (Path, Breadcrumbs).
	EventNavigated
	// EventListed carries a classified directory listing (Path, Entries).
	EventListed
	// EventEntryMissing fires when a recent entry was removed because its
	// path no longer exists (Source).
	EventEntryMissing
)

var eventKindNames = map[EventKind]string{
	EventOpenStarted:  "open-started",
	EventProgress:     "progress",
	EventOpened:       "opened",
	EventOpenFailed:   "open-failed",
	EventNavigated:    "navigated",
	EventListed:       "listed",
	EventEntryMissing: "entry-missing",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is a notification delivered to subscribers. Only the fields
// listed for its Kind are set.
type Event struct {
	Kind        EventKind
	Time        time.Time
	Source      string
	Key         string
	Entry       *archive.CacheEntry
	Path        fspath.Path
	Breadcrumbs []navigation.Item
	Entries     []tree.Entry
	Done        int
	Total       int
	Err         error
}

// Subscribe registers a subscriber with the given channel buffer and returns
// its channel plus a cancel function that unregisters and closes it.
// After Close the channel is returned already closed.
//
// Delivery never blocks the session: when the buffer is full the event is
// dropped for that subscriber and a warning is logged.
func (s *Session) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Event, buffer)

	s.subMu.Lock()
	if s.closed {
		s.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *Session) emit(ev Event) {
	ev.Time = s.clock.Now()

	s.subMu.Lock()
	defer s.subMu.Unlock()

	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("dropped session event", "kind", ev.Kind.String(), "subscriber", id)
		}
	}
}
