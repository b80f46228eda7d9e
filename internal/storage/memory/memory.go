// Package memory provides an in-memory implementation of storage.Store.
// It is the default backend: the core is an in-memory system and durability
// is out of scope.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adhamsal/splitkit/internal/storage"
)

var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore keeps all records in maps guarded by a single RWMutex.
type MemoryStore struct {
	mu          sync.RWMutex
	groups      map[string]*storage.Group
	ledgers     map[string]map[string]int64
	expenses    map[string][]*storage.Expense    // keyed by group ID
	settlements map[string][]*storage.Settlement // keyed by group ID
}

// New creates an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{
		groups:      make(map[string]*storage.Group),
		ledgers:     make(map[string]map[string]int64),
		expenses:    make(map[string][]*storage.Expense),
		settlements: make(map[string][]*storage.Settlement),
	}
}

// CreateGroup stores a new group, generating its ID and timestamp when
// unset.
func (s *MemoryStore) CreateGroup(_ context.Context, g *storage.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	s.groups[g.ID] = copyGroup(g)
	return nil
}

// GetGroup retrieves a group by ID.
func (s *MemoryStore) GetGroup(_ context.Context, id string) (*storage.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	return copyGroup(g), nil
}

// ListGroups returns all groups sorted by creation time, newest first.
func (s *MemoryStore) ListGroups(_ context.Context) ([]*storage.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*storage.Group, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, copyGroup(g))
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].CreatedAt != groups[j].CreatedAt {
			return groups[i].CreatedAt > groups[j].CreatedAt
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

// DeleteGroup removes a group and everything attached to it.
func (s *MemoryStore) DeleteGroup(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	delete(s.groups, id)
	delete(s.ledgers, id)
	delete(s.expenses, id)
	delete(s.settlements, id)
	return nil
}

// AddGroupMember appends a member to a group's member list.
func (s *MemoryStore) AddGroupMember(_ context.Context, groupID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	for _, m := range g.Members {
		if m == memberID {
			return nil
		}
	}
	g.Members = append(g.Members, memberID)
	return nil
}

// RemoveGroupMember drops a member from a group's member list.
func (s *MemoryStore) RemoveGroupMember(_ context.Context, groupID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	kept := g.Members[:0]
	for _, m := range g.Members {
		if m != memberID {
			kept = append(kept, m)
		}
	}
	g.Members = kept
	return nil
}

// SaveLedger replaces the balance snapshot for a group.
func (s *MemoryStore) SaveLedger(_ context.Context, groupID string, balances map[string]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]int64, len(balances))
	for m, cents := range balances {
		snapshot[m] = cents
	}
	s.ledgers[groupID] = snapshot
	return nil
}

// LoadLedger returns the balance snapshot for a group.
func (s *MemoryStore) LoadLedger(_ context.Context, groupID string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.ledgers[groupID]
	if !ok {
		return nil, fmt.Errorf("ledger for group %s: %w", groupID, storage.ErrNotFound)
	}
	snapshot := make(map[string]int64, len(stored))
	for m, cents := range stored {
		snapshot[m] = cents
	}
	return snapshot, nil
}

// AppendExpense records an immutable expense.
func (s *MemoryStore) AppendExpense(_ context.Context, e *storage.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	s.expenses[e.GroupID] = append(s.expenses[e.GroupID], copyExpense(e))
	return nil
}

// ListExpensesByGroup returns a group's expenses in insertion order.
func (s *MemoryStore) ListExpensesByGroup(_ context.Context, groupID string) ([]*storage.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.expenses[groupID]
	expenses := make([]*storage.Expense, len(stored))
	for i, e := range stored {
		expenses[i] = copyExpense(e)
	}
	return expenses, nil
}

// AppendSettlement records an immutable settlement.
func (s *MemoryStore) AppendSettlement(_ context.Context, st *storage.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	if st.CreatedAt == 0 {
		st.CreatedAt = time.Now().Unix()
	}
	cp := *st
	s.settlements[st.GroupID] = append(s.settlements[st.GroupID], &cp)
	return nil
}

// ListSettlementsByGroup returns a group's settlements in insertion order.
func (s *MemoryStore) ListSettlementsByGroup(_ context.Context, groupID string) ([]*storage.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.settlements[groupID]
	settlements := make([]*storage.Settlement, len(stored))
	for i, st := range stored {
		cp := *st
		settlements[i] = &cp
	}
	return settlements, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func copyGroup(g *storage.Group) *storage.Group {
	cp := *g
	cp.Members = append([]string(nil), g.Members...)
	return &cp
}

func copyExpense(e *storage.Expense) *storage.Expense {
	cp := *e
	cp.Shares = append([]storage.Share(nil), e.Shares...)
	return &cp
}
