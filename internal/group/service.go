package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adhamsal/splitkit/internal/ledger"
	"github.com/adhamsal/splitkit/internal/money"
	"github.com/adhamsal/splitkit/internal/simplify"
	"github.com/adhamsal/splitkit/internal/storage"
	"github.com/adhamsal/splitkit/pkg/metrics"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberAlreadyExists = errors.New("member is already in this group")
	ErrGroupHasBalances    = errors.New("group still has outstanding balances")
	ErrValidation          = errors.New("invalid group request")
)

// Service handles group business logic. It also owns the live ledgers:
// one authoritative in-memory ledger per group, loaded lazily from
// storage and written back as a snapshot after each mutation.
type Service struct {
	store  storage.Store
	logger *slog.Logger

	mu      sync.Mutex
	ledgers map[string]*ledger.Ledger
}

// NewService creates a new group service
func NewService(store storage.Store, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		ledgers: make(map[string]*ledger.Ledger),
	}
}

// Create creates a new group with its initial members and an empty ledger.
func (s *Service) Create(ctx context.Context, req *CreateGroupRequest) (*Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}
	if len(req.Members) == 0 {
		return nil, fmt.Errorf("%w: at least one member is required", ErrValidation)
	}

	members := make([]string, 0, len(req.Members))
	seen := make(map[string]bool, len(req.Members))
	for _, m := range req.Members {
		m = strings.TrimSpace(m)
		if m == "" {
			return nil, fmt.Errorf("%w: member IDs must not be empty", ErrValidation)
		}
		if seen[m] {
			return nil, fmt.Errorf("%w: duplicate member %s", ErrValidation, m)
		}
		seen[m] = true
		members = append(members, m)
	}
	sort.Strings(members)

	g := &Group{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Currency:    currency,
		Members:     members,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateGroup(ctx, g.toRecord()); err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}

	l := ledger.New(currency, members)
	s.mu.Lock()
	s.ledgers[g.ID] = l
	s.mu.Unlock()
	s.persistLedger(ctx, g.ID, l)

	s.logger.Info("group created", "group_id", g.ID, "name", g.Name, "members", len(members))
	return g, nil
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Group, error) {
	rec, err := s.store.GetGroup(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return fromRecord(rec), nil
}

// List retrieves all groups
func (s *Service) List(ctx context.Context) ([]*Group, error) {
	recs, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	groups := make([]*Group, len(recs))
	for i, rec := range recs {
		groups[i] = fromRecord(rec)
	}
	return groups, nil
}

// Delete removes a group. A group with any outstanding balance cannot be
// deleted; it must be settled first.
func (s *Service) Delete(ctx context.Context, id string) error {
	l, err := s.ledgerFor(ctx, id)
	if err != nil {
		return err
	}
	for _, m := range l.Members() {
		if !l.IsSettled(m) {
			return fmt.Errorf("%w: %s", ErrGroupHasBalances, m)
		}
	}

	if err := s.store.DeleteGroup(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	s.mu.Lock()
	delete(s.ledgers, id)
	s.mu.Unlock()

	s.logger.Info("group deleted", "group_id", id)
	return nil
}

// AddMember adds a member to a group with a zero starting balance.
func (s *Service) AddMember(ctx context.Context, groupID, memberID string) error {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return fmt.Errorf("%w: member ID is required", ErrValidation)
	}

	l, err := s.ledgerFor(ctx, groupID)
	if err != nil {
		return err
	}
	if err := l.AddMember(memberID); err != nil {
		if errors.Is(err, ledger.ErrDuplicateMember) {
			return fmt.Errorf("%w: %s", ErrMemberAlreadyExists, memberID)
		}
		return err
	}

	if err := s.store.AddGroupMember(ctx, groupID, memberID); err != nil {
		return err
	}
	s.persistLedger(ctx, groupID, l)

	s.logger.Info("member added", "group_id", groupID, "member_id", memberID)
	return nil
}

// RemoveMember removes a member from a group. The member must be fully
// settled; removal with a nonzero balance would break conservation.
func (s *Service) RemoveMember(ctx context.Context, groupID, memberID string) error {
	l, err := s.ledgerFor(ctx, groupID)
	if err != nil {
		return err
	}
	if err := l.RemoveMember(memberID); err != nil {
		return err
	}

	if err := s.store.RemoveGroupMember(ctx, groupID, memberID); err != nil {
		return err
	}
	s.persistLedger(ctx, groupID, l)

	s.logger.Info("member removed", "group_id", groupID, "member_id", memberID)
	return nil
}

// Members retrieves the members of a group in sorted order.
func (s *Service) Members(ctx context.Context, groupID string) ([]string, error) {
	l, err := s.ledgerFor(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return l.Members(), nil
}

// Balances returns every member's net position, including settled members.
func (s *Service) Balances(ctx context.Context, groupID string) (map[string]money.Money, error) {
	l, err := s.ledgerFor(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return l.Balances(), nil
}

// SimplifyDebts computes a minimal-looking settlement plan for the group.
// The plan is advisory: it does not mutate the ledger, callers record the
// resulting payments as ordinary settlements.
func (s *Service) SimplifyDebts(ctx context.Context, groupID string) ([]simplify.Transaction, error) {
	l, err := s.ledgerFor(ctx, groupID)
	if err != nil {
		return nil, err
	}

	plan, err := simplify.Simplify(l.Balances())
	if err != nil {
		if errors.Is(err, simplify.ErrUnbalancedLedger) {
			// Conservation is enforced on every mutation, so this is
			// a corrupted snapshot, not a user error.
			s.logger.Error("ledger invariant violated", "group_id", groupID, "err", err)
			metrics.SimplifyRuns.WithLabelValues("unbalanced").Inc()
		}
		return nil, err
	}

	metrics.SimplifyRuns.WithLabelValues("ok").Inc()
	s.logger.Info("debts simplified", "group_id", groupID, "transactions", len(plan))
	return plan, nil
}

// Summary is an aggregate view of a group: the record itself, every
// balance, the current settle plan and the expense history totals.
type Summary struct {
	Group        *Group
	Balances     map[string]money.Money
	SettlePlan   []simplify.Transaction
	ExpenseCount int
	TotalSpent   money.Money
}

// DebtSummary is one member's position under the current settle plan.
type DebtSummary struct {
	MemberID  string
	OwesTo    []simplify.Transaction
	OwedBy    []simplify.Transaction
	TotalOwes money.Money
	TotalOwed money.Money
	Net       money.Money
}

// Summary builds the aggregate group view.
func (s *Service) Summary(ctx context.Context, groupID string) (*Summary, error) {
	g, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	l, err := s.ledgerFor(ctx, groupID)
	if err != nil {
		return nil, err
	}
	plan, err := s.SimplifyDebts(ctx, groupID)
	if err != nil {
		return nil, err
	}
	recs, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var totalCents int64
	for _, rec := range recs {
		totalCents += rec.TotalCents
	}
	return &Summary{
		Group:        g,
		Balances:     l.Balances(),
		SettlePlan:   plan,
		ExpenseCount: len(recs),
		TotalSpent:   money.New(totalCents, g.Currency),
	}, nil
}

// MemberDebtSummary reports what one member owes and is owed under the
// current settle plan. The net always equals the member's ledger balance
// because the plan conserves every balance it clears.
func (s *Service) MemberDebtSummary(ctx context.Context, groupID, memberID string) (*DebtSummary, error) {
	l, err := s.ledgerFor(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !l.HasMember(memberID) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownMember, memberID)
	}
	plan, err := s.SimplifyDebts(ctx, groupID)
	if err != nil {
		return nil, err
	}

	sum := &DebtSummary{MemberID: memberID}
	var owes, owed int64
	for _, tx := range plan {
		switch memberID {
		case tx.From:
			sum.OwesTo = append(sum.OwesTo, tx)
			owes += tx.Amount.Cents
		case tx.To:
			sum.OwedBy = append(sum.OwedBy, tx)
			owed += tx.Amount.Cents
		}
	}
	currency := l.Currency()
	sum.TotalOwes = money.New(owes, currency)
	sum.TotalOwed = money.New(owed, currency)
	sum.Net = money.New(owes-owed, currency)
	return sum, nil
}

// Ledger returns the live ledger for a group, loading it from storage on
// first use. Expense and settlement services mutate through this handle so
// every caller sees the same authoritative state.
func (s *Service) Ledger(ctx context.Context, groupID string) (*ledger.Ledger, error) {
	return s.ledgerFor(ctx, groupID)
}

// PersistLedger writes the group's current balance snapshot to storage.
// The in-memory ledger stays authoritative; a failed write is logged and
// retried on the next mutation rather than rolled back.
func (s *Service) PersistLedger(ctx context.Context, groupID string, l *ledger.Ledger) {
	s.persistLedger(ctx, groupID, l)
}

func (s *Service) ledgerFor(ctx context.Context, groupID string) (*ledger.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.ledgers[groupID]; ok {
		return l, nil
	}

	rec, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	balances, err := s.store.LoadLedger(ctx, groupID)
	var l *ledger.Ledger
	switch {
	case err == nil:
		l = ledger.Restore(rec.Currency, balances)
	case errors.Is(err, storage.ErrNotFound):
		l = ledger.New(rec.Currency, rec.Members)
	default:
		return nil, err
	}

	s.ledgers[groupID] = l
	return l, nil
}

func (s *Service) persistLedger(ctx context.Context, groupID string, l *ledger.Ledger) {
	if err := s.store.SaveLedger(ctx, groupID, l.Snapshot()); err != nil {
		s.logger.Error("failed to persist ledger snapshot", "group_id", groupID, "err", err)
	}
}
