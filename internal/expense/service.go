package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adhamsal/splitkit/internal/expense/split"
	"github.com/adhamsal/splitkit/internal/group"
	"github.com/adhamsal/splitkit/internal/ledger"
	"github.com/adhamsal/splitkit/internal/money"
	"github.com/adhamsal/splitkit/internal/storage"
	"github.com/adhamsal/splitkit/pkg/metrics"
)

// Common errors
var (
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrInvalidParticipant = errors.New("participant is not a member of this group")
	ErrCurrencyMismatch   = errors.New("expense currency does not match group currency")
	ErrValidation         = errors.New("invalid expense request")
)

// Service handles expense business logic
type Service struct {
	store        storage.Store
	groups       *group.Service
	splitFactory *split.Factory
	logger       *slog.Logger
}

// NewService creates a new expense service with dependencies injected
func NewService(store storage.Store, groups *group.Service, splitFactory *split.Factory, logger *slog.Logger) *Service {
	return &Service{
		store:        store,
		groups:       groups,
		splitFactory: splitFactory,
		logger:       logger,
	}
}

// Create computes the split for a new expense and applies it to the
// group ledger. The ledger validates everything before mutating, so a
// rejected expense leaves every balance untouched.
func (s *Service) Create(ctx context.Context, req *CreateExpenseRequest) (*Expense, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if strings.TrimSpace(req.PayerID) == "" {
		return nil, fmt.Errorf("%w: payer is required", ErrValidation)
	}

	g, err := s.groups.GetByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	// Group currency is normalized to upper case at creation; hold request
	// currencies to the same form before comparing.
	if cur := strings.ToUpper(strings.TrimSpace(req.Currency)); cur != "" && cur != g.Currency {
		return nil, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, cur, g.Currency)
	}

	cents, err := money.ParseDecimalToCents(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	total := money.New(cents, g.Currency)

	strategy, err := s.splitFactory.CreateFromString(req.SplitType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	l, err := s.groups.Ledger(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if !l.HasMember(req.PayerID) {
		return nil, fmt.Errorf("%w: payer %s", ErrInvalidParticipant, req.PayerID)
	}

	participants := make([]split.Participant, len(req.Participants))
	for i, p := range req.Participants {
		if !l.HasMember(p.MemberID) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidParticipant, p.MemberID)
		}
		participants[i], err = p.ToSplitParticipant()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	shares, err := strategy.Compute(total, participants)
	if err != nil {
		return nil, err
	}

	ledgerShares := make([]ledger.Share, len(shares))
	for i, sh := range shares {
		ledgerShares[i] = ledger.Share{MemberID: sh.MemberID, Amount: sh.Amount}
	}
	if err := l.ApplyExpense(req.PayerID, total, ledgerShares); err != nil {
		return nil, err
	}

	e := &Expense{
		ID:          uuid.NewString(),
		GroupID:     req.GroupID,
		PayerID:     req.PayerID,
		Description: strings.TrimSpace(req.Description),
		Total:       total,
		SplitType:   strategy.Kind(),
		Shares:      shares,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.AppendExpense(ctx, e.toRecord()); err != nil {
		s.logger.Error("failed to persist expense", "expense_id", e.ID, "group_id", e.GroupID, "err", err)
	}
	s.groups.PersistLedger(ctx, req.GroupID, l)

	metrics.ExpensesCreated.WithLabelValues(string(e.SplitType)).Inc()
	s.logger.Info("expense created",
		"expense_id", e.ID,
		"group_id", e.GroupID,
		"payer_id", e.PayerID,
		"amount", e.Total.String(),
		"split_type", e.SplitType)
	return e, nil
}

// ListByGroup retrieves the expense history for a group, oldest first.
func (s *Service) ListByGroup(ctx context.Context, groupID string) ([]*Expense, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	recs, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses := make([]*Expense, len(recs))
	for i, rec := range recs {
		expenses[i] = fromRecord(rec)
	}
	return expenses, nil
}
