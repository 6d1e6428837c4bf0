package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"solarviz.app/internal/core/series"
)

func newTestSession(t *testing.T, current time.Time, step series.StepSize) *Session {
	session, err := NewSession(series.PlaybackInstant{Current: current, StepSize: step}, quietLogger(t))
	require.NoError(t, err)
	return session
}

func TestNewSession_RejectsInvalidStep(t *testing.T) {
	_, err := NewSession(series.PlaybackInstant{Current: time.Now()}, quietLogger(t))
	assert.Error(t, err)
}

func TestSession_SetBroadcasts(t *testing.T) {
	start := time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)
	session := newTestSession(t, start, series.Hourly)

	first, unsubscribeFirst := session.Subscribe(4)
	defer unsubscribeFirst()
	second, unsubscribeSecond := session.Subscribe(4)
	defer unsubscribeSecond()

	next := series.PlaybackInstant{Current: start.Add(time.Hour), StepSize: series.Hourly}
	session.Set(next)

	assert.Equal(t, next, <-first)
	assert.Equal(t, next, <-second)
	assert.Equal(t, next, session.Instant())
}

func TestSession_SlowSubscriberKeepsLatest(t *testing.T) {
	start := time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)
	session := newTestSession(t, start, series.Hourly)

	ch, unsubscribe := session.Subscribe(1)
	defer unsubscribe()

	for i := 1; i <= 5; i++ {
		session.SetCurrent(start.Add(time.Duration(i) * time.Hour))
	}

	latest := <-ch
	assert.Equal(t, start.Add(5*time.Hour), latest.Current)
}

func TestSession_Unsubscribe(t *testing.T) {
	session := newTestSession(t, time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC), series.Hourly)

	ch, unsubscribe := session.Subscribe(1)
	assert.Equal(t, 1, session.SubscriberCount())

	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, session.SubscriberCount())

	// Broadcasting with no listeners must not panic
	session.SetCurrent(time.Date(2010, 6, 16, 0, 0, 0, 0, time.UTC))
}

func TestSession_SelectSeries(t *testing.T) {
	tests := []struct {
		name     string
		step     series.StepSize
		expected time.Time
	}{
		{"Hourly", series.Hourly, time.Date(2010, 6, 15, 13, 0, 0, 0, time.UTC)},
		{"Daily", series.Daily, time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"Monthly", series.Monthly, time.Date(2010, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"Yearly", series.Yearly, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newTestSession(t, time.Date(2010, 6, 15, 13, 0, 0, 0, time.UTC), series.Hourly)
			ch, unsubscribe := session.Subscribe(1)
			defer unsubscribe()

			session.SelectSeries(series.Definition{ID: "meas", StepSize: tt.step})

			instant := <-ch
			assert.Equal(t, tt.expected, instant.Current)
			assert.Equal(t, tt.step, instant.StepSize)
			assert.True(t, tt.step.Aligned(instant.Current))
			assert.Equal(t, "meas", session.SelectedSeries())
		})
	}
}

func TestSession_DrivenByClock(t *testing.T) {
	start := time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)
	session := newTestSession(t, start, series.Daily)
	ticker := newFakeTicker()

	clock, err := NewClock(time.Second, session.Instant, session.Set, quietLogger(t), WithTicker(ticker.start))
	require.NoError(t, err)

	ch, unsubscribe := session.Subscribe(4)
	defer unsubscribe()

	clock.Start()
	ticker.tick()

	select {
	case instant := <-ch:
		assert.Equal(t, start.AddDate(0, 0, 1), instant.Current)
	case <-time.After(2 * time.Second):
		t.Fatal("no instant broadcast")
	}
	clock.Stop()
}

func TestSession_AdvanceStepsFromLatestScrub(t *testing.T) {
	start := time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)
	session := newTestSession(t, start, series.Daily)

	ch, unsubscribe := session.Subscribe(4)
	defer unsubscribe()

	scrub := time.Date(2012, 3, 1, 0, 0, 0, 0, time.UTC)
	session.SetCurrent(scrub)
	next := session.Advance()

	assert.Equal(t, scrub.AddDate(0, 0, 1), next.Current)
	assert.Equal(t, next, session.Instant())
	assert.Equal(t, scrub, (<-ch).Current)
	assert.Equal(t, next, <-ch)
}

func TestSession_ConcurrentScrubIsNeverOverwritten(t *testing.T) {
	start := time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)
	session := newTestSession(t, start, series.Hourly)
	scrub := time.Date(2012, 3, 1, 0, 0, 0, 0, time.UTC)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			session.Advance()
		}
	}()
	session.SetCurrent(scrub)
	<-done

	// Every advance after the scrub builds on it, so the scrub survives
	current := session.Instant().Current
	assert.False(t, current.Before(scrub))
	assert.True(t, current.Sub(scrub) <= 1000*time.Hour)
}

func TestSession_DrivenByClockAdvance(t *testing.T) {
	start := time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)
	session := newTestSession(t, start, series.Daily)
	ticker := newFakeTicker()

	clock, err := NewClock(time.Second, session.Instant, session.Set, quietLogger(t),
		WithTicker(ticker.start), WithAdvance(session.Advance))
	require.NoError(t, err)

	ch, unsubscribe := session.Subscribe(4)
	defer unsubscribe()

	scrub := time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)
	session.SetCurrent(scrub)
	assert.Equal(t, scrub, (<-ch).Current)

	clock.Start()
	ticker.tick()

	select {
	case instant := <-ch:
		assert.Equal(t, scrub.AddDate(0, 0, 1), instant.Current)
	case <-time.After(2 * time.Second):
		t.Fatal("no instant broadcast")
	}
	clock.Stop()
}
