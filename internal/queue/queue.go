// Package queue keeps the per-guild FIFO of resolved tracks waiting to
// be announced. Playback itself happens elsewhere; this is bookkeeping
// only, so everything lives in memory.
package queue

import (
	"fmt"
	"sync"

	"jukebot/pkg/types"
)

// DefaultMaxPerGuild bounds each guild's pending tracks.
const DefaultMaxPerGuild = 200

// queueFullError signals a push past the per-guild bound.
type queueFullError struct{ guildID string }

func (e queueFullError) Error() string { return "queue full for guild " + e.guildID }

// IsQueueFull reports whether err indicates the guild queue is at its bound.
func IsQueueFull(err error) bool {
	_, ok := err.(queueFullError)
	return ok
}

// noReplayError signals a replay request before anything was popped.
type noReplayError struct{}

func (noReplayError) Error() string { return "nothing to replay" }

// IsNoReplay reports whether err indicates there is no track to replay.
func IsNoReplay(err error) bool {
	_, ok := err.(noReplayError)
	return ok
}

// badIndexError signals a remove/move position outside the queue.
type badIndexError struct{ index, size int }

func (e badIndexError) Error() string {
	return fmt.Sprintf("position %d out of range, queue has %d tracks", e.index+1, e.size)
}

// IsBadIndex reports whether err indicates an out-of-range queue position.
func IsBadIndex(err error) bool {
	_, ok := err.(badIndexError)
	return ok
}

type guildQueue struct {
	tracks []types.Track
	// last is the most recently popped track; ReplayLast re-enqueues
	// it at the front. Clear keeps it so replay still works.
	last *types.Track
}

// Manager holds one FIFO per guild, all guarded by a single mutex.
type Manager struct {
	mu      sync.Mutex
	max     int
	byGuild map[string]*guildQueue
}

// NewManager constructs a Manager; maxPerGuild <= 0 applies the default.
func NewManager(maxPerGuild int) *Manager {
	if maxPerGuild <= 0 {
		maxPerGuild = DefaultMaxPerGuild
	}
	return &Manager{max: maxPerGuild, byGuild: make(map[string]*guildQueue)}
}

func (m *Manager) guild(guildID string) *guildQueue {
	q, ok := m.byGuild[guildID]
	if !ok {
		q = &guildQueue{}
		m.byGuild[guildID] = q
	}
	return q
}

// Push appends a track to the guild queue.
func (m *Manager) Push(guildID string, t types.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.guild(guildID)
	if len(q.tracks) >= m.max {
		return queueFullError{guildID: guildID}
	}
	q.tracks = append(q.tracks, t)
	return nil
}

// Pop removes and returns the head of the guild queue.
func (m *Manager) Pop(guildID string) (types.Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.guild(guildID)
	if len(q.tracks) == 0 {
		return types.Track{}, false
	}
	head := q.tracks[0]
	q.tracks = append([]types.Track(nil), q.tracks[1:]...)
	q.last = &head
	return head, true
}

// Peek returns the head without removing it.
func (m *Manager) Peek(guildID string) (types.Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.guild(guildID)
	if len(q.tracks) == 0 {
		return types.Track{}, false
	}
	return q.tracks[0], true
}

// List returns a copy of up to n queued tracks in play order; n <= 0
// returns all of them.
func (m *Manager) List(guildID string, n int) []types.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.guild(guildID)
	if n <= 0 || n > len(q.tracks) {
		n = len(q.tracks)
	}
	out := make([]types.Track, n)
	copy(out, q.tracks[:n])
	return out
}

// Clear drops every pending track for a guild and returns how many were
// dropped. The replay slot survives.
func (m *Manager) Clear(guildID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.guild(guildID)
	dropped := len(q.tracks)
	q.tracks = nil
	return dropped
}

// Len returns the number of pending tracks for a guild.
func (m *Manager) Len(guildID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.guild(guildID).tracks)
}

// ReplayLast re-enqueues the most recently popped track at the front so
// it plays next. Replaying again before the next Pop enqueues the same
// track again.
func (m *Manager) ReplayLast(guildID string) (types.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.guild(guildID)
	if q.last == nil {
		return types.Track{}, noReplayError{}
	}
	if len(q.tracks) >= m.max {
		return types.Track{}, queueFullError{guildID: guildID}
	}
	q.tracks = append([]types.Track{*q.last}, q.tracks...)
	return *q.last, nil
}

// Remove deletes the track at a zero-based position and returns it.
func (m *Manager) Remove(guildID string, index int) (types.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.guild(guildID)
	if index < 0 || index >= len(q.tracks) {
		return types.Track{}, badIndexError{index: index, size: len(q.tracks)}
	}
	t := q.tracks[index]
	q.tracks = append(q.tracks[:index:index], q.tracks[index+1:]...)
	return t, nil
}

// Move relocates the track at from to position to, shifting the rest.
func (m *Manager) Move(guildID string, from, to int) (types.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.guild(guildID)
	if from < 0 || from >= len(q.tracks) {
		return types.Track{}, badIndexError{index: from, size: len(q.tracks)}
	}
	if to < 0 || to >= len(q.tracks) {
		return types.Track{}, badIndexError{index: to, size: len(q.tracks)}
	}
	t := q.tracks[from]
	rest := append(q.tracks[:from:from], q.tracks[from+1:]...)
	q.tracks = append(rest[:to:to], append([]types.Track{t}, rest[to:]...)...)
	return t, nil
}

// Stats reports how many guilds have state and the total pending tracks,
// for the status surface.
func (m *Manager) Stats() (guilds, tracks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.byGuild {
		tracks += len(q.tracks)
	}
	return len(m.byGuild), tracks
}
