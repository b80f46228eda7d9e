package split

import (
	"fmt"

	"github.com/adhamsal/splitkit/internal/money"
)

// PercentageStrategy divides the total by caller-supplied percentages,
// expressed in basis points (10000 = 100%) to keep the input integral.
// The basis points must sum to 10000 within PercentageToleranceBps; the
// computed shares are rounded to minor units with the same deterministic
// remainder rule as the equal split, so they sum exactly to the total.
type PercentageStrategy struct{}

// Kind returns the split type identifier.
func (s *PercentageStrategy) Kind() Kind {
	return KindPercentage
}

// Validate checks that every participant carries a percentage in range and
// the percentages reconcile to 100% within tolerance.
func (s *PercentageStrategy) Validate(total money.Money, participants []Participant) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	var sum int64
	for _, p := range participants {
		if p.BasisPoints == nil {
			return fmt.Errorf("%w: %s", ErrMissingPercentage, p.MemberID)
		}
		if *p.BasisPoints < 0 || *p.BasisPoints > 10000 {
			return fmt.Errorf("%w: %s has %d bp", ErrPercentageOutOfRange, p.MemberID, *p.BasisPoints)
		}
		sum += *p.BasisPoints
	}

	diff := sum - 10000
	if diff < 0 {
		diff = -diff
	}
	if diff > PercentageToleranceBps {
		return fmt.Errorf("%w: percentages sum to %d bp", ErrSplitMismatch, sum)
	}
	return nil
}

// Compute divides the total proportionally to each participant's basis
// points.
func (s *PercentageStrategy) Compute(total money.Money, participants []Participant) ([]Share, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	bps := make([]int64, len(participants))
	for i, p := range participants {
		bps[i] = *p.BasisPoints
	}

	amounts, err := total.AllocateBasisPoints(bps)
	if err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{MemberID: p.MemberID, Amount: amounts[i]}
	}
	return shares, nil
}
