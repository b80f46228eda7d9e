package expense

import (
	"time"

	"github.com/adhamsal/splitkit/internal/expense/split"
	"github.com/adhamsal/splitkit/internal/money"
	"github.com/adhamsal/splitkit/internal/storage"
)

// Expense is an immutable record of a payment made on behalf of the group.
type Expense struct {
	ID          string
	GroupID     string
	PayerID     string
	Description string
	Total       money.Money
	SplitType   split.Kind
	Shares      []split.Share
	CreatedAt   time.Time
}

func fromRecord(rec *storage.Expense) *Expense {
	shares := make([]split.Share, len(rec.Shares))
	for i, s := range rec.Shares {
		shares[i] = split.Share{
			MemberID: s.MemberID,
			Amount:   money.New(s.AmountCents, rec.Currency),
		}
	}
	return &Expense{
		ID:          rec.ID,
		GroupID:     rec.GroupID,
		PayerID:     rec.PayerID,
		Description: rec.Description,
		Total:       money.New(rec.TotalCents, rec.Currency),
		SplitType:   split.Kind(rec.SplitType),
		Shares:      shares,
		CreatedAt:   time.Unix(rec.CreatedAt, 0).UTC(),
	}
}

func (e *Expense) toRecord() *storage.Expense {
	shares := make([]storage.Share, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = storage.Share{
			MemberID:    s.MemberID,
			AmountCents: s.Amount.Cents,
		}
	}
	return &storage.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Description: e.Description,
		TotalCents:  e.Total.Cents,
		Currency:    e.Total.Currency,
		SplitType:   string(e.SplitType),
		Shares:      shares,
		CreatedAt:   e.CreatedAt.Unix(),
	}
}
