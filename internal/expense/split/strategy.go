package split

import (
	"errors"
	"fmt"

	"github.com/adhamsal/splitkit/internal/money"
)

// Kind identifies a split strategy.
type Kind string

const (
	KindEqual      Kind = "EQUAL"
	KindExact      Kind = "EXACT"
	KindPercentage Kind = "PERCENTAGE"
)

// PercentageToleranceBps is how far the supplied percentages may deviate
// from 100.00%, in basis points. Percentages are user-entered decimals, so
// this is the one place a tolerance is legitimate; everything downstream is
// exact integer arithmetic.
const PercentageToleranceBps = 10

// Participant is one member of a split with the per-strategy parameter.
type Participant struct {
	MemberID    string `json:"member_id"`
	AmountCents *int64 `json:"amount_cents,omitempty"` // For EXACT splits
	BasisPoints *int64 `json:"basis_points,omitempty"` // For PERCENTAGE splits (10000 = 100%)
}

// Share is one participant's computed portion of the total. Shares are
// ordered and always sum exactly to the total, payer included; the ledger
// nets the payer's own share against their debit.
type Share struct {
	MemberID string      `json:"member_id"`
	Amount   money.Money `json:"amount"`
}

// Strategy is the interface all split strategies implement.
type Strategy interface {
	// Compute turns the total into an ordered list of per-member shares.
	Compute(total money.Money, participants []Participant) ([]Share, error)

	// Kind returns the type identifier for this strategy.
	Kind() Kind

	// Validate checks the inputs without computing shares.
	Validate(total money.Money, participants []Participant) error
}

// Factory creates split strategies by kind.
type Factory struct{}

// NewFactory creates a strategy factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy implementation for the given kind.
func (f *Factory) Create(kind Kind) (Strategy, error) {
	switch kind {
	case KindEqual:
		return &EqualStrategy{}, nil
	case KindExact:
		return &ExactStrategy{}, nil
	case KindPercentage:
		return &PercentageStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split kind: %s", kind)
	}
}

// CreateFromString creates a strategy from its string name, as carried in
// API requests.
func (f *Factory) CreateFromString(kind string) (Strategy, error) {
	return f.Create(Kind(kind))
}

var (
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrNonPositiveAmount    = errors.New("total amount must be positive")
	ErrSplitMismatch        = errors.New("split does not reconcile with the total")
	ErrMissingAmount        = errors.New("exact amount required for all participants")
	ErrMissingPercentage    = errors.New("percentage required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrDuplicateParticipant = errors.New("duplicate participant in split")
)

// validateCommon holds the checks shared by all strategies.
func validateCommon(total money.Money, participants []Participant) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if !total.IsPositive() {
		return ErrNonPositiveAmount
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if seen[p.MemberID] {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.MemberID)
		}
		seen[p.MemberID] = true
	}
	return nil
}
