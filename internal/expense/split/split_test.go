package split

import (
	"errors"
	"testing"

	"github.com/adhamsal/splitkit/internal/money"
)

func cents(v int64) *int64 { return &v }

func checkShares(t *testing.T, shares []Share, total int64, want map[string]int64) {
	t.Helper()
	var sum int64
	for _, s := range shares {
		if w, ok := want[s.MemberID]; ok && s.Amount.Cents != w {
			t.Errorf("share for %s = %d, want %d", s.MemberID, s.Amount.Cents, w)
		}
		sum += s.Amount.Cents
	}
	if sum != total {
		t.Errorf("shares sum to %d, want %d", sum, total)
	}
}

func TestEqualStrategy(t *testing.T) {
	s := &EqualStrategy{}
	if s.Kind() != KindEqual {
		t.Errorf("Kind = %s, want EQUAL", s.Kind())
	}

	tests := []struct {
		name         string
		totalCents   int64
		participants []Participant
		wantErr      error
		want         map[string]int64
	}{
		{
			name:         "three-way even",
			totalCents:   300,
			participants: []Participant{{MemberID: "alice"}, {MemberID: "bob"}, {MemberID: "carol"}},
			want:         map[string]int64{"alice": 100, "bob": 100, "carol": 100},
		},
		{
			name:         "remainder cents to first participants",
			totalCents:   100,
			participants: []Participant{{MemberID: "alice"}, {MemberID: "bob"}, {MemberID: "carol"}},
			want:         map[string]int64{"alice": 34, "bob": 33, "carol": 33},
		},
		{
			name:         "no participants",
			totalCents:   100,
			participants: nil,
			wantErr:      ErrNoParticipants,
		},
		{
			name:         "zero total",
			totalCents:   0,
			participants: []Participant{{MemberID: "alice"}},
			wantErr:      ErrNonPositiveAmount,
		},
		{
			name:         "negative total",
			totalCents:   -100,
			participants: []Participant{{MemberID: "alice"}},
			wantErr:      ErrNonPositiveAmount,
		},
		{
			name:         "duplicate participant",
			totalCents:   100,
			participants: []Participant{{MemberID: "alice"}, {MemberID: "alice"}},
			wantErr:      ErrDuplicateParticipant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := s.Compute(money.New(tt.totalCents, "USD"), tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Compute error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}
			checkShares(t, shares, tt.totalCents, tt.want)
		})
	}
}

func TestExactStrategy(t *testing.T) {
	s := &ExactStrategy{}

	shares, err := s.Compute(money.New(300, "USD"), []Participant{
		{MemberID: "alice", AmountCents: cents(120)},
		{MemberID: "bob", AmountCents: cents(180)},
	})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	checkShares(t, shares, 300, map[string]int64{"alice": 120, "bob": 180})

	// One cent short of the total must be rejected, no tolerance.
	_, err = s.Compute(money.New(300, "USD"), []Participant{
		{MemberID: "alice", AmountCents: cents(120)},
		{MemberID: "bob", AmountCents: cents(179)},
	})
	if !errors.Is(err, ErrSplitMismatch) {
		t.Errorf("off-by-one-cent error = %v, want ErrSplitMismatch", err)
	}

	_, err = s.Compute(money.New(300, "USD"), []Participant{
		{MemberID: "alice", AmountCents: cents(300)},
		{MemberID: "bob"},
	})
	if !errors.Is(err, ErrMissingAmount) {
		t.Errorf("missing amount error = %v, want ErrMissingAmount", err)
	}

	_, err = s.Compute(money.New(300, "USD"), []Participant{
		{MemberID: "alice", AmountCents: cents(400)},
		{MemberID: "bob", AmountCents: cents(-100)},
	})
	if !errors.Is(err, ErrSplitMismatch) {
		t.Errorf("negative share error = %v, want ErrSplitMismatch", err)
	}
}

func bps(v int64) *int64 { return &v }

func TestPercentageStrategy(t *testing.T) {
	s := &PercentageStrategy{}

	tests := []struct {
		name         string
		totalCents   int64
		participants []Participant
		wantErr      error
		want         map[string]int64
	}{
		{
			name:       "fifty twenty-five twenty-five",
			totalCents: 1000,
			participants: []Participant{
				{MemberID: "alice", BasisPoints: bps(5000)},
				{MemberID: "bob", BasisPoints: bps(2500)},
				{MemberID: "carol", BasisPoints: bps(2500)},
			},
			want: map[string]int64{"alice": 500, "bob": 250, "carol": 250},
		},
		{
			name:       "rounding remainder stays conserved",
			totalCents: 1001,
			participants: []Participant{
				{MemberID: "alice", BasisPoints: bps(3333)},
				{MemberID: "bob", BasisPoints: bps(3333)},
				{MemberID: "carol", BasisPoints: bps(3334)},
			},
			want: nil, // only the conservation check
		},
		{
			name:       "within tolerance",
			totalCents: 1000,
			participants: []Participant{
				{MemberID: "alice", BasisPoints: bps(5005)},
				{MemberID: "bob", BasisPoints: bps(5000)},
			},
		},
		{
			name:       "outside tolerance",
			totalCents: 1000,
			participants: []Participant{
				{MemberID: "alice", BasisPoints: bps(5000)},
				{MemberID: "bob", BasisPoints: bps(4980)},
			},
			wantErr: ErrSplitMismatch,
		},
		{
			name:       "percentage out of range",
			totalCents: 1000,
			participants: []Participant{
				{MemberID: "alice", BasisPoints: bps(10001)},
			},
			wantErr: ErrPercentageOutOfRange,
		},
		{
			name:       "missing percentage",
			totalCents: 1000,
			participants: []Participant{
				{MemberID: "alice", BasisPoints: bps(5000)},
				{MemberID: "bob"},
			},
			wantErr: ErrMissingPercentage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := s.Compute(money.New(tt.totalCents, "USD"), tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Compute error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}
			checkShares(t, shares, tt.totalCents, tt.want)
		})
	}
}

func TestFactory(t *testing.T) {
	f := NewFactory()

	for _, kind := range []Kind{KindEqual, KindExact, KindPercentage} {
		s, err := f.Create(kind)
		if err != nil {
			t.Fatalf("Create(%s) failed: %v", kind, err)
		}
		if s.Kind() != kind {
			t.Errorf("Create(%s).Kind() = %s", kind, s.Kind())
		}
	}

	if _, err := f.CreateFromString("RANDOM"); err == nil {
		t.Error("unknown kind should fail")
	}
}
