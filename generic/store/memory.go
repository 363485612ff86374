// Package store provides AllocationStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/revenue-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	allocations map[generic.ContractID][]generic.AllocationRecord
}

func NewMemory() *Memory {
	return &Memory{
		allocations: make(map[generic.ContractID][]generic.AllocationRecord),
	}
}

// ReplaceAllocations swaps the contract's rows. The new rows are checked
// before anything is changed, so a rejected batch leaves the old rows intact.
func (m *Memory) ReplaceAllocations(_ context.Context, contractID generic.ContractID, recs []generic.AllocationRecord) error {
	seen := make(map[generic.YearMonth]bool, len(recs))
	for _, r := range recs {
		if seen[r.Month] {
			return generic.ErrDuplicateAllocation
		}
		seen[r.Month] = true
	}

	sorted := make([]generic.AllocationRecord, len(recs))
	copy(sorted, recs)
	for i := range sorted {
		sorted[i].ContractID = contractID
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Month.Before(sorted[j].Month)
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(sorted) == 0 {
		delete(m.allocations, contractID)
		return nil
	}
	m.allocations[contractID] = sorted
	return nil
}

func (m *Memory) DeleteAllocations(_ context.Context, contractID generic.ContractID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.allocations, contractID)
	return nil
}

func (m *Memory) LoadAllocations(_ context.Context, contractID generic.ContractID) ([]generic.AllocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]generic.AllocationRecord, len(m.allocations[contractID]))
	copy(result, m.allocations[contractID])
	return result, nil
}

// LoadMonth returns the month's rows ordered by contract id.
func (m *Memory) LoadMonth(_ context.Context, month generic.YearMonth) ([]generic.AllocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []generic.AllocationRecord
	for _, recs := range m.allocations {
		for _, r := range recs {
			if r.Month == month {
				result = append(result, r)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ContractID < result[j].ContractID
	})
	return result, nil
}

var _ generic.AllocationStore = (*Memory)(nil)
