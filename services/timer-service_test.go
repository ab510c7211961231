package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newTestTimerService vraća servis sa ručno pomerljivim satom.
func newTestTimerService(start time.Time) (*TimerService, *time.Time) {
	current := start
	s := NewTimerService()
	s.now = func() time.Time { return current }
	return s, &current
}

func TestTimerStartAndElapsed(t *testing.T) {
	s, clock := newTestTimerService(time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC))
	defer s.Close()

	s.Start("task-1")
	*clock = clock.Add(5 * time.Second)

	elapsed, ok := s.Elapsed("task-1")
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, elapsed)

	_, ok = s.Elapsed("task-2")
	assert.False(t, ok)
}

func TestTimerStartIsIdempotent(t *testing.T) {
	s, clock := newTestTimerService(time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC))
	defer s.Close()

	s.Start("task-1")
	*clock = clock.Add(10 * time.Second)
	// Ponovni Start ne sme da resetuje početni trenutak.
	s.Start("task-1")
	*clock = clock.Add(5 * time.Second)

	elapsed, ok := s.Elapsed("task-1")
	assert.True(t, ok)
	assert.Equal(t, 15*time.Second, elapsed)
}

func TestTimersRunIndependently(t *testing.T) {
	s, clock := newTestTimerService(time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC))
	defer s.Close()

	s.Start("task-1")
	*clock = clock.Add(30 * time.Second)
	s.Start("task-2")
	*clock = clock.Add(30 * time.Second)

	first, _ := s.Elapsed("task-1")
	second, _ := s.Elapsed("task-2")
	assert.Equal(t, time.Minute, first)
	assert.Equal(t, 30*time.Second, second)

	// Gašenje jednog merača ne dira drugi.
	stopped, ok := s.Stop("task-2")
	assert.True(t, ok)
	assert.Equal(t, 30*time.Second, stopped)

	_, ok = s.Elapsed("task-2")
	assert.False(t, ok)
	first, ok = s.Elapsed("task-1")
	assert.True(t, ok)
	assert.Equal(t, time.Minute, first)
}

func TestTimerStopUnknownTask(t *testing.T) {
	s, _ := newTestTimerService(time.Now())
	defer s.Close()

	_, ok := s.Stop("missing")
	assert.False(t, ok)
}

func TestTimerActive(t *testing.T) {
	s, clock := newTestTimerService(time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC))
	defer s.Close()

	s.Start("task-1")
	s.Start("task-2")
	*clock = clock.Add(3 * time.Second)

	entries := s.Active()
	assert.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, 3*time.Second, entry.Elapsed)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "0h 0m 5s"},
		{61 * time.Second, "0h 1m 1s"},
		{90 * time.Minute, "1h 30m 0s"},
		{0, "0h 0m 0s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d))
	}
}
