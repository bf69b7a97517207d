// Package kv provides key/value backends for persisting sticker and
// viewport transforms. Values are addressed by (container, slot, field).
// Both backends satisfy shelf.TransformStore.
package kv

import (
	"fmt"
	"sync"
)

// Key addresses one stored value.
type Key struct {
	ContainerID string
	Slot        int
	Field       string
}

// String returns "container/slot/field".
func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s", k.ContainerID, k.Slot, k.Field)
}

// Memory is an in-process store. The zero value is not usable; call
// NewMemory.
type Memory struct {
	mu     sync.RWMutex
	values map[Key]float64
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[Key]float64)}
}

// Get returns the stored value and whether it exists.
func (m *Memory) Get(containerID string, slot int, field string) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[Key{containerID, slot, field}]
	return v, ok, nil
}

// Set stores a value.
func (m *Memory) Set(containerID string, slot int, field string, value float64) error {
	m.mu.Lock()
	m.values[Key{containerID, slot, field}] = value
	m.mu.Unlock()
	return nil
}

// Delete removes a value. Deleting a missing key is not an error.
func (m *Memory) Delete(containerID string, slot int, field string) error {
	m.mu.Lock()
	delete(m.values, Key{containerID, slot, field})
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored values.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
