package split

import "github.com/adhamsal/splitkit/internal/money"

// EqualStrategy divides the total equally among all participants. Remainder
// cents that do not divide evenly go one each to the first participants in
// input order, so the shares always sum exactly to the total.
type EqualStrategy struct{}

// Kind returns the split type identifier.
func (s *EqualStrategy) Kind() Kind {
	return KindEqual
}

// Validate checks the inputs for an equal split.
func (s *EqualStrategy) Validate(total money.Money, participants []Participant) error {
	return validateCommon(total, participants)
}

// Compute divides the total into one share per participant.
func (s *EqualStrategy) Compute(total money.Money, participants []Participant) ([]Share, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	amounts, err := total.Allocate(len(participants))
	if err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{MemberID: p.MemberID, Amount: amounts[i]}
	}
	return shares, nil
}
