package playback

import (
	"sync"
	"time"

	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// Session holds the shared playback instant and the selected series, and
// broadcasts every change to its subscribers
type Session struct {
	logger ports.Logger

	mu          sync.RWMutex
	instant     series.PlaybackInstant
	seriesID    string
	subscribers map[int]chan series.PlaybackInstant
	nextID      int
}

// NewSession creates a session positioned at the initial instant
func NewSession(initial series.PlaybackInstant, logger ports.Logger) (*Session, error) {
	if err := initial.StepSize.Validate(); err != nil {
		return nil, errors.NewValidationError("invalid initial step size: " + err.Error())
	}
	if logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &Session{
		logger:      logger,
		instant:     initial,
		subscribers: make(map[int]chan series.PlaybackInstant),
	}, nil
}

// Instant returns the current playback instant
func (s *Session) Instant() series.PlaybackInstant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instant
}

// SelectedSeries returns the id of the series chosen for display
func (s *Session) SelectedSeries() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seriesID
}

// Set replaces the instant and notifies every subscriber
func (s *Session) Set(instant series.PlaybackInstant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.instant = instant
	s.broadcast(instant)
}

// Advance moves the instant one step forward under the lock, so a scrub
// cannot be lost between reading and writing the instant
func (s *Session) Advance() series.PlaybackInstant {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.instant = s.instant.Advance()
	s.broadcast(s.instant)
	return s.instant
}

// SetCurrent moves the instant to t keeping the step size
func (s *Session) SetCurrent(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.instant.Current = t.UTC()
	s.broadcast(s.instant)
}

// SelectSeries switches playback to the natural granularity of the series
// and snaps the current time onto that granularity
func (s *Session) SelectSeries(def series.Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seriesID = def.ID
	s.instant = series.PlaybackInstant{
		Current:  def.StepSize.Floor(s.instant.Current),
		StepSize: def.StepSize,
	}

	s.logger.Info("Series selected",
		ports.F("series", def.ID),
		ports.F("step", def.StepSize.String()))

	s.broadcast(s.instant)
}

// Subscribe registers a listener. Slow listeners lose their oldest pending
// instant rather than block the sender. The returned function unsubscribes
// and closes the channel.
func (s *Session) Subscribe(buffer int) (<-chan series.PlaybackInstant, func()) {
	if buffer < 1 {
		buffer = 1
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan series.PlaybackInstant, buffer)
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
	return ch, unsubscribe
}

// SubscriberCount returns the number of active listeners
func (s *Session) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// broadcast must be called with the write lock held
func (s *Session) broadcast(instant series.PlaybackInstant) {
	for _, ch := range s.subscribers {
		select {
		case ch <- instant:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- instant:
		default:
		}
	}
}
