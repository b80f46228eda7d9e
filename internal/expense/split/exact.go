package split

import (
	"fmt"

	"github.com/adhamsal/splitkit/internal/money"
)

// ExactStrategy lets the caller specify each participant's amount in minor
// units. The amounts must sum to the total exactly; once inputs are integer
// cents there is no tolerance to apply.
type ExactStrategy struct{}

// Kind returns the split type identifier.
func (s *ExactStrategy) Kind() Kind {
	return KindExact
}

// Validate checks that every participant carries an amount, no amount is
// negative, and the amounts reconcile exactly with the total.
func (s *ExactStrategy) Validate(total money.Money, participants []Participant) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	var sum int64
	for _, p := range participants {
		if p.AmountCents == nil {
			return fmt.Errorf("%w: %s", ErrMissingAmount, p.MemberID)
		}
		if *p.AmountCents < 0 {
			return fmt.Errorf("%w: %s has negative share", ErrSplitMismatch, p.MemberID)
		}
		sum += *p.AmountCents
	}
	if sum != total.Cents {
		return fmt.Errorf("%w: amounts sum to %s, total is %s",
			ErrSplitMismatch, money.FormatCents(sum), money.FormatCents(total.Cents))
	}
	return nil
}

// Compute returns the caller-supplied amounts as shares.
func (s *ExactStrategy) Compute(total money.Money, participants []Participant) ([]Share, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{
			MemberID: p.MemberID,
			Amount:   money.New(*p.AmountCents, total.Currency),
		}
	}
	return shares, nil
}
