// Package slotmap stores values under generation-tagged identifiers.
//
// An ID packs a slot index in its low 16 bits and the slot's generation in
// the next 15, so it always fits a non-negative int32. Removing a value bumps
// the generation of its slot: an ID that was removed never matches whatever
// is stored in that slot later.
package slotmap

import (
	"errors"
	"sync"
)

const (
	indexBits     = 16
	generationMax = 1<<15 - 1
	maxSlots      = 1 << indexBits
)

// ErrFull is returned by Insert when every slot is occupied or retired
var ErrFull = errors.New("slotmap: no free slots")

// ID identifies a value stored in a Map
type ID uint32

func makeID(index uint32, generation uint32) ID {
	return ID(generation<<indexBits | index)
}

func (id ID) index() uint32      { return uint32(id) & (maxSlots - 1) }
func (id ID) generation() uint32 { return uint32(id) >> indexBits }

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Map is safe for concurrent use. Lookups share a read lock.
type Map[T any] struct {
	mu    sync.RWMutex
	slots []slot[T]
	free  []uint32 // reusable slot indexes, used LIFO
	count int
}

// New returns an empty Map
func New[T any]() *Map[T] {
	return &Map[T]{}
}

// Insert stores value and returns its ID
func (m *Map[T]) Insert(value T) (ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var index uint32
	switch {
	case len(m.free) > 0:
		index = m.free[len(m.free)-1]
		m.free = m.free[:len(m.free)-1]
	case len(m.slots) < maxSlots:
		index = uint32(len(m.slots))
		m.slots = append(m.slots, slot[T]{})
	default:
		return 0, ErrFull
	}

	s := &m.slots[index]
	s.value = value
	s.occupied = true
	m.count++
	return makeID(index, s.generation), nil
}

// Get returns the value stored under id
func (m *Map[T]) Get(id ID) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.lookup(id)
	if !ok {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Remove deletes the value stored under id and returns it.
// The ID is dead afterwards, even if its slot is reused.
func (m *Map[T]) Remove(id ID) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.lookup(id)
	if !ok {
		var zero T
		return zero, false
	}

	value := s.value
	m.release(id.index())
	return value, true
}

// Len returns the number of stored values
func (m *Map[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// Drain removes every value and returns them with their IDs
func (m *Map[T]) Drain() map[ID]T {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[ID]T, m.count)
	for i := range m.slots {
		s := &m.slots[i]
		if s.occupied {
			out[makeID(uint32(i), s.generation)] = s.value
			m.release(uint32(i))
		}
	}
	return out
}

// release empties a slot and bumps its generation. A slot whose generation
// would wrap is retired for good.
func (m *Map[T]) release(index uint32) {
	var zero T
	s := &m.slots[index]
	s.value = zero
	s.occupied = false
	m.count--

	if s.generation < generationMax {
		s.generation++
		m.free = append(m.free, index)
	}
}

func (m *Map[T]) lookup(id ID) (*slot[T], bool) {
	index := id.index()
	if uint32(id)>>31 != 0 || index >= uint32(len(m.slots)) {
		return nil, false
	}
	s := &m.slots[index]
	if !s.occupied || s.generation != id.generation() {
		return nil, false
	}
	return s, true
}
