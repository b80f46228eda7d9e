package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adhamsal/splitkit/internal/group"
	"github.com/adhamsal/splitkit/internal/money"
	"github.com/adhamsal/splitkit/internal/storage"
	"github.com/adhamsal/splitkit/pkg/metrics"
)

// Common errors
var (
	ErrSelfSettlement = errors.New("payer and payee must be different members")
	ErrValidation     = errors.New("invalid settlement request")
)

// Service handles settlement business logic
type Service struct {
	store  storage.Store
	groups *group.Service
	logger *slog.Logger
}

// NewService creates a new settlement service
func NewService(store storage.Store, groups *group.Service, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		groups: groups,
		logger: logger,
	}
}

// Create records a direct payment from payer to payee and applies it to
// the group ledger.
func (s *Service) Create(ctx context.Context, req *CreateSettlementRequest) (*Settlement, error) {
	payerID := strings.TrimSpace(req.PayerID)
	payeeID := strings.TrimSpace(req.PayeeID)
	if payerID == "" || payeeID == "" {
		return nil, fmt.Errorf("%w: payer and payee are required", ErrValidation)
	}
	if payerID == payeeID {
		return nil, ErrSelfSettlement
	}

	g, err := s.groups.GetByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	cents, err := money.ParseDecimalToCents(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	amount := money.New(cents, g.Currency)

	l, err := s.groups.Ledger(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if err := l.ApplySettlement(payerID, payeeID, amount); err != nil {
		return nil, err
	}

	stl := &Settlement{
		ID:        uuid.NewString(),
		GroupID:   req.GroupID,
		PayerID:   payerID,
		PayeeID:   payeeID,
		Amount:    amount,
		Note:      strings.TrimSpace(req.Note),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.AppendSettlement(ctx, stl.toRecord()); err != nil {
		s.logger.Error("failed to persist settlement", "settlement_id", stl.ID, "group_id", stl.GroupID, "err", err)
	}
	s.groups.PersistLedger(ctx, req.GroupID, l)

	metrics.SettlementsRecorded.Inc()
	s.logger.Info("settlement recorded",
		"settlement_id", stl.ID,
		"group_id", stl.GroupID,
		"payer_id", stl.PayerID,
		"payee_id", stl.PayeeID,
		"amount", stl.Amount.String())
	return stl, nil
}

// ListByGroup retrieves the settlement history for a group, oldest first.
func (s *Service) ListByGroup(ctx context.Context, groupID string) ([]*Settlement, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	recs, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements := make([]*Settlement, len(recs))
	for i, rec := range recs {
		settlements[i] = fromRecord(rec, g.Currency)
	}
	return settlements, nil
}
