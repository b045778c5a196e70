package ratelimit

import (
	"sort"
	"sync"
	"time"
)

//MemTracker is an in-memory Tracker used by tests. The Clock field may be
//replaced to simulate the passage of time.
type MemTracker struct {
	Clock func() time.Time

	mu     sync.Mutex
	states map[string]State
}

//NewMemTracker creates an empty in-memory rate limit tracker
func NewMemTracker() *MemTracker {
	return &MemTracker{
		Clock:  time.Now,
		states: make(map[string]State),
	}
}

//Check reports how long the provider remains blocked
func (m *MemTracker) Check(provider string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[provider]
	if !ok {
		return 0, nil
	}
	return state.Remaining(m.Clock()), nil
}

//Record notes a throttle signal, overwriting the prior cooldown
func (m *MemTracker) Record(provider string, retryAfter time.Duration) error {
	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.states[provider]
	state.Provider = provider
	state.HitAt = m.Clock()
	state.RetryAfter = int64(retryAfter / time.Second)
	state.HitCount++
	m.states[provider] = state
	return nil
}

//States returns the recorded cooldowns sorted by provider name
func (m *MemTracker) States() ([]State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	states := make([]State, 0, len(m.states))
	for _, state := range m.states {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].Provider < states[j].Provider
	})
	return states, nil
}
