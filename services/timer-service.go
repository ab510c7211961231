package services

import (
	"fmt"
	"sync"
	"time"
)

// TimerEntry je aktivan merač vremena za jedan task. Čisto prolazno stanje:
// ne preživljava restart procesa i ne upisuje se nigde sam od sebe.
type TimerEntry struct {
	TaskID    string        `json:"taskId"`
	StartedAt time.Time     `json:"startedAt"`
	Elapsed   time.Duration `json:"elapsed"`
}

// TimerService vodi sve aktivne merače. Jedan zajednički tiker od jedne
// sekunde preračunava elapsed za sve unose; po jedan tajmer po tasku bi bio
// rasipanje, a više istovremenih merača je dozvoljeno.
type TimerService struct {
	mu      sync.Mutex
	entries map[string]*TimerEntry
	ticker  *time.Ticker
	done    chan struct{}
	now     func() time.Time
}

func NewTimerService() *TimerService {
	s := &TimerService{
		entries: make(map[string]*TimerEntry),
		ticker:  time.NewTicker(1 * time.Second),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go s.run()
	return s
}

func (s *TimerService) run() {
	for {
		select {
		case <-s.ticker.C:
			s.recompute()
		case <-s.done:
			return
		}
	}
}

func (s *TimerService) recompute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, entry := range s.entries {
		entry.Elapsed = now.Sub(entry.StartedAt)
	}
}

// Start beleži početni trenutak za task. Ako merač već postoji, ostaje
// netaknut; merači za različite taskove rade nezavisno.
func (s *TimerService) Start(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[taskID]; ok {
		return
	}
	s.entries[taskID] = &TimerEntry{
		TaskID:    taskID,
		StartedAt: s.now(),
	}
}

// Elapsed vraća proteklo vreme i da li merač postoji.
func (s *TimerService) Elapsed(taskID string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[taskID]
	if !ok {
		return 0, false
	}
	return s.now().Sub(entry.StartedAt), true
}

// Stop uklanja merač i vraća konačno proteklo vreme. Upis trajanja u task
// je odgovornost pozivaoca; TimerService nikad ne piše u kolekciju.
func (s *TimerService) Stop(taskID string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[taskID]
	if !ok {
		return 0, false
	}
	delete(s.entries, taskID)
	return s.now().Sub(entry.StartedAt), true
}

// Active vraća kopije svih aktivnih unosa.
func (s *TimerService) Active() []TimerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	entries := make([]TimerEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		copied := *entry
		copied.Elapsed = now.Sub(entry.StartedAt)
		entries = append(entries, copied)
	}
	return entries
}

func (s *TimerService) Close() {
	s.ticker.Stop()
	close(s.done)
}

// FormatDuration formatira trajanje kao "0h 0m 5s" za actualTime polje.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
