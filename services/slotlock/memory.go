package slotlock

import (
	"context"
	"sort"
	"sync"
	"time"

	"labcart/models"
)

type memoryHold struct {
	holderID  string
	expiresAt time.Time
}

// memoryManager mirrors the Redis manager's semantics behind a single mutex.
// It backs local development and tests.
type memoryManager struct {
	mu     sync.Mutex
	holds  map[string]memoryHold
	booked map[string]map[string]struct{} // bookedKey -> set of times
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryManager builds an in-process Manager with the given hold TTL.
func NewMemoryManager(ttl time.Duration) Manager {
	return &memoryManager{
		holds:  make(map[string]memoryHold),
		booked: make(map[string]map[string]struct{}),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *memoryManager) isBooked(key models.SlotKey) bool {
	times, ok := m.booked[bookedKey(key.LabName, key.Date)]
	if !ok {
		return false
	}
	_, booked := times[key.Time]
	return booked
}

func (m *memoryManager) Acquire(ctx context.Context, key models.SlotKey, holderID string) (*models.SlotLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isBooked(key) {
		return nil, ErrSlotBooked
	}

	now := m.now()
	hk := holdKey(key)
	if hold, ok := m.holds[hk]; ok && hold.expiresAt.After(now) && hold.holderID != holderID {
		return nil, ErrSlotConflict
	}

	m.holds[hk] = memoryHold{holderID: holderID, expiresAt: now.Add(m.ttl)}
	return &models.SlotLock{
		Key:        key,
		HolderID:   holderID,
		AcquiredAt: now,
		ExpiresAt:  now.Add(m.ttl),
	}, nil
}

func (m *memoryManager) Release(ctx context.Context, key models.SlotKey, holderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hk := holdKey(key)
	if hold, ok := m.holds[hk]; ok && hold.holderID == holderID {
		delete(m.holds, hk)
	}
	return nil
}

func (m *memoryManager) Confirm(ctx context.Context, key models.SlotKey, holderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hk := holdKey(key)
	hold, ok := m.holds[hk]
	if !ok || hold.holderID != holderID || !hold.expiresAt.After(m.now()) {
		return ErrNotHolder
	}

	bk := bookedKey(key.LabName, key.Date)
	if m.booked[bk] == nil {
		m.booked[bk] = make(map[string]struct{})
	}
	m.booked[bk][key.Time] = struct{}{}
	delete(m.holds, hk)
	return nil
}

func (m *memoryManager) Unbook(ctx context.Context, key models.SlotKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if times, ok := m.booked[bookedKey(key.LabName, key.Date)]; ok {
		delete(times, key.Time)
	}
	return nil
}

func (m *memoryManager) ListUnavailable(ctx context.Context, labName, date string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var times []string
	for t := range m.booked[bookedKey(labName, date)] {
		times = append(times, t)
	}

	now := m.now()
	prefix := holdKey(models.SlotKey{LabName: labName, Date: date})
	// holdKey with an empty time yields the "lab|date|" prefix.
	for hk, hold := range m.holds {
		if len(hk) >= len(prefix) && hk[:len(prefix)] == prefix && hold.expiresAt.After(now) {
			times = append(times, hk[len(prefix):])
		}
	}
	sort.Strings(times)
	return times, nil
}
