// Package heartbeat decides when the screener should emit its periodic
// liveness message. A beat is due within the first minutes of each
// configured hour, at most once per hour window; the last-sent mark is
// persisted so restarts do not double-beat.
package heartbeat

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// windowMinutes is how far into a beat hour a beat may still fire.
const windowMinutes = 15

// BeatStore persists the last-sent beat mark across process restarts.
type BeatStore interface {
	// LastBeat returns the stored mark, or "" when none exists.
	LastBeat(ctx context.Context) (string, error)
	SetLastBeat(ctx context.Context, mark string) error
}

// MemoryStore is a process-local BeatStore used when no redis is
// configured. Restarting the process forgets the last beat, so a beat
// may repeat once after a restart inside the same window.
type MemoryStore struct {
	mu   sync.Mutex
	mark string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) LastBeat(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mark, nil
}

func (s *MemoryStore) SetLastBeat(ctx context.Context, mark string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mark = mark
	return nil
}

// Scheduler evaluates the beat schedule against a BeatStore.
type Scheduler struct {
	hours map[int]bool
	store BeatStore
}

// NewScheduler creates a scheduler that beats at the given UTC hours.
func NewScheduler(hours []int, store BeatStore) *Scheduler {
	set := make(map[int]bool, len(hours))
	for _, h := range hours {
		set[h] = true
	}
	return &Scheduler{hours: set, store: store}
}

// Mark formats the dedup key for the hour window containing t.
func Mark(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s-%d", t.Format("2006-01-02"), t.Hour())
}

// ShouldSend reports whether a beat is due at now: now falls in the
// first minutes of a configured hour and no beat was recorded for this
// hour window yet.
func (s *Scheduler) ShouldSend(ctx context.Context, now time.Time) (bool, error) {
	now = now.UTC()
	if !s.hours[now.Hour()] || now.Minute() >= windowMinutes {
		return false, nil
	}
	last, err := s.store.LastBeat(ctx)
	if err != nil {
		return false, fmt.Errorf("read last beat: %w", err)
	}
	return last != Mark(now), nil
}

// RecordSent persists the mark for now's hour window.
func (s *Scheduler) RecordSent(ctx context.Context, now time.Time) error {
	if err := s.store.SetLastBeat(ctx, Mark(now)); err != nil {
		return fmt.Errorf("store beat mark: %w", err)
	}
	return nil
}
