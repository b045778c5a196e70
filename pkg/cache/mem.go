package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/ipvet/ipvet/pkg/data"
)

//MemRepository is an in-memory Repository used by tests and by commands
//which run without a database. The Clock field may be replaced to simulate
//the passage of time.
type MemRepository struct {
	Clock func() time.Time

	mu      sync.Mutex
	entries map[string]Entry
	pruned  time.Time
}

//NewMemRepository creates an empty in-memory result cache
func NewMemRepository() *MemRepository {
	return &MemRepository{
		Clock:   time.Now,
		entries: make(map[string]Entry),
	}
}

func memKey(ip string, provider string) string {
	return ip + "/" + provider
}

//Get returns the cached result for (ip, provider), treating expired rows
//as misses
func (m *MemRepository) Get(ip string, provider string) (*data.ProviderResult, bool, error) {
	if err := validateKey(ip, provider); err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[memKey(ip, provider)]
	if !ok || entry.Expired(m.Clock()) {
		return nil, false, nil
	}

	result := entry.Result
	result.Cached = true
	return &result, true, nil
}

//Put stores a successful result, overwriting any previous entry
func (m *MemRepository) Put(ip string, provider string, result *data.ProviderResult, ttl time.Duration) error {
	if err := validateKey(ip, provider); err != nil {
		return err
	}
	if result.Errored() {
		return fmt.Errorf("refusing to cache errored result for %s/%s", provider, ip)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := Entry{
		IP:       ip,
		Provider: provider,
		Result:   *result,
		CachedAt: m.Clock(),
		TTL:      int64(ttl / time.Second),
	}
	entry.Result.Cached = false
	m.entries[memKey(ip, provider)] = entry
	return nil
}

//Entries returns every cache row
func (m *MemRepository) Entries() ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, entry)
	}
	return entries, nil
}

//Prune removes expired rows, running at most once per pruneInterval
//unless forced
func (m *MemRepository) Prune(force bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Clock()
	if !force && now.Sub(m.pruned) < pruneInterval {
		return 0, nil
	}
	m.pruned = now

	removed := 0
	for key, entry := range m.entries {
		if entry.Expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

//Clear drops every cache row
func (m *MemRepository) Clear() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := len(m.entries)
	m.entries = make(map[string]Entry)
	return removed, nil
}
