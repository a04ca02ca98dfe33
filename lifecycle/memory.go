package lifecycle

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
)

// MemoryStore is a process-local Store used when no database is configured
// and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID uint
	byKey  map[int64]models.Switch
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byKey: map[int64]models.Switch{}}
}

func (m *MemoryStore) sorted() []models.Switch {
	out := make([]models.Switch, 0, len(m.byKey))
	for _, sw := range m.byKey {
		out = append(out, sw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniqueKey < out[j].UniqueKey })
	return out
}

func (m *MemoryStore) FindBySerial(_ context.Context, serial string, excludeKey int64) ([]models.Switch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Switch
	for _, sw := range m.sorted() {
		if excludeKey != 0 && sw.UniqueKey == excludeKey {
			continue
		}
		if sw.SerialNumber == serial || sw.OldSerialNumber == serial || sw.NewSerialNumber == serial {
			out = append(out, sw)
		}
	}
	return out, nil
}

func (m *MemoryStore) FindByKey(_ context.Context, key int64) (*models.Switch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sw, ok := m.byKey[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &sw, nil
}

func (m *MemoryStore) FindAll(_ context.Context) ([]models.Switch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(), nil
}

func (m *MemoryStore) Create(_ context.Context, sw *models.Switch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byKey[sw.UniqueKey]; dup {
		return &StoreError{Op: "create", Err: errDuplicateKey}
	}
	m.nextID++
	now := time.Now().UTC()
	sw.ID = m.nextID
	sw.CreatedAt, sw.UpdatedAt = now, now
	m.byKey[sw.UniqueKey] = *sw
	return nil
}

func (m *MemoryStore) Replace(_ context.Context, key int64, sw *models.Switch) (*models.Switch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byKey[key]
	if !ok {
		return nil, ErrNotFound
	}
	next := *sw
	next.ID, next.UniqueKey, next.CreatedAt = cur.ID, cur.UniqueKey, cur.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	m.byKey[key] = next
	return &next, nil
}

func (m *MemoryStore) Delete(_ context.Context, key int64) (*models.Switch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byKey[key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.byKey, key)
	return &cur, nil
}

func (m *MemoryStore) DeleteAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.byKey))
	m.byKey = map[int64]models.Switch{}
	return n, nil
}

func (m *MemoryStore) List(_ context.Context, f Filter, offset, limit int) ([]models.Switch, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var hits []models.Switch
	for _, sw := range m.sorted() {
		if f.Match(&sw) {
			hits = append(hits, sw)
		}
	}
	total := int64(len(hits))
	if offset >= len(hits) {
		return []models.Switch{}, total, nil
	}
	end := offset + limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[offset:end], total, nil
}

func (m *MemoryStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]models.Switch, 0, len(m.byKey))
	for _, sw := range m.byKey {
		all = append(all, sw)
	}
	return ComputeStats(all), nil
}

// ComputeStats aggregates records the same way the SQL store does.
func ComputeStats(all []models.Switch) *Stats {
	counts := map[models.Status]int64{}
	st := &Stats{Breakdown: []StatusCount{}}
	for i := range all {
		sw := &all[i]
		counts[sw.Status]++
		st.Total++
		if sw.Status != models.StatusFixed {
			continue
		}
		if sw.Provider == "" {
			st.NoProviderCount++
		}
		if sw.Delivery() == models.Delivered {
			st.DeliveredCount++
		} else {
			st.NotDeliveredCount++
		}
	}
	for _, s := range models.Statuses {
		if n := counts[s]; n > 0 {
			st.Breakdown = append(st.Breakdown, StatusCount{Status: s, Count: n})
		}
	}
	return st
}

// MemoryAllocator is an in-process Allocator. It is only correct for a
// single process.
type MemoryAllocator struct {
	seq atomic.Int64
}

func (a *MemoryAllocator) Next(context.Context) (int64, error) { return a.seq.Add(1), nil }

func (a *MemoryAllocator) Reset(context.Context) error {
	a.seq.Store(0)
	return nil
}
