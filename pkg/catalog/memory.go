package catalog

import (
	"context"
	"sync"
)

// Memory is an in-memory Client. Records are kept in insertion order and
// matched by exact IdentifierValue. It is safe for concurrent use.
type Memory struct {
	mu         sync.Mutex
	records    []Record
	lookupErrs map[Identifier]error
	deleteErrs map[string]error
	lookups    map[Identifier]int
	deletes    []string
}

// NewMemory creates an in-memory catalog holding the given records.
func NewMemory(records ...Record) *Memory {
	m := &Memory{
		lookupErrs: make(map[Identifier]error),
		deleteErrs: make(map[string]error),
		lookups:    make(map[Identifier]int),
	}
	m.records = append(m.records, records...)
	return m
}

// Add appends records to the catalog.
func (m *Memory) Add(records ...Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
}

// FailLookup makes every lookup of id return err.
func (m *Memory) FailLookup(id Identifier, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupErrs[id] = err
}

// FailDelete makes every delete of recordID return err.
func (m *Memory) FailDelete(recordID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErrs[recordID] = err
}

// FindByIdentifier implements Finder.
func (m *Memory) FindByIdentifier(ctx context.Context, id Identifier) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lookups[id]++
	if err, ok := m.lookupErrs[id]; ok {
		return nil, err
	}

	matches := []Record{}
	for _, r := range m.records {
		if r.IdentifierValue == string(id) {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

// Delete implements Deleter.
func (m *Memory) Delete(ctx context.Context, recordID string) (DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return NotFound, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.deleteErrs[recordID]; ok {
		return NotFound, err
	}

	for i, r := range m.records {
		if r.ID == recordID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			m.deletes = append(m.deletes, recordID)
			return Deleted, nil
		}
	}
	return NotFound, nil
}

// Lookups returns how many times id was looked up.
func (m *Memory) Lookups(id Identifier) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups[id]
}

// Deletes returns the IDs removed so far, in call order.
func (m *Memory) Deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}

// Records returns a copy of the remaining records.
func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.records...)
}

var _ Client = (*Memory)(nil)
