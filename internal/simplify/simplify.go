// Package simplify reduces a balance snapshot to a short list of
// settling transactions.
//
// The algorithm is greedy largest-vs-largest matching: repeatedly pair the
// member who owes the most with the member who is owed the most and settle
// the smaller of the two magnitudes. Each step fully clears at least one
// party, so at most n-1 transactions are emitted for n members with
// non-zero balance. The result is O(n log n) and deterministic; it is not
// guaranteed globally minimal (subset-sum cancellations are not searched
// for), a trade-off accepted over NP-hard exact minimization.
package simplify

import (
	"container/heap"
	"errors"
	"sort"

	"github.com/adhamsal/splitkit/internal/money"
)

// ErrUnbalancedLedger means the snapshot does not sum to zero. That cannot
// result from valid input if the ledger is correct, so callers should treat
// it as a defect and surface it loudly rather than produce a wrong plan.
var ErrUnbalancedLedger = errors.New("balances do not sum to zero")

// Transaction is one payment of the settlement plan.
type Transaction struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount money.Money `json:"amount"`
}

// party is one side of a match: a member and the magnitude still open.
type party struct {
	memberID string
	cents    int64
}

// partyQueue is a max-heap on magnitude with member ID as the stable
// tie-break, so equal runs always produce the same plan.
type partyQueue []party

func (q partyQueue) Len() int { return len(q) }

func (q partyQueue) Less(i, j int) bool {
	if q[i].cents != q[j].cents {
		return q[i].cents > q[j].cents
	}
	return q[i].memberID < q[j].memberID
}

func (q partyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *partyQueue) Push(x any) { *q = append(*q, x.(party)) }

func (q *partyQueue) Pop() any {
	old := *q
	n := len(old)
	p := old[n-1]
	*q = old[:n-1]
	return p
}

// Simplify turns a balance snapshot into an ordered transaction list that
// zeroes every balance. Positive balances are debtors, negative are
// creditors; members at exactly zero are left out of the plan.
func Simplify(balances map[string]money.Money) ([]Transaction, error) {
	currency := ""
	var sum int64
	for _, b := range balances {
		sum += b.Cents
		if currency == "" {
			currency = b.Currency
		}
	}
	if sum != 0 {
		return nil, ErrUnbalancedLedger
	}

	// Seed the heaps in sorted member order; heap.Init is not order
	// sensitive but the initial slice should not depend on map iteration.
	members := make([]string, 0, len(balances))
	for m := range balances {
		members = append(members, m)
	}
	sort.Strings(members)

	debtors := &partyQueue{}
	creditors := &partyQueue{}
	for _, m := range members {
		switch b := balances[m]; {
		case b.Cents > 0:
			*debtors = append(*debtors, party{memberID: m, cents: b.Cents})
		case b.Cents < 0:
			*creditors = append(*creditors, party{memberID: m, cents: -b.Cents})
		}
	}
	heap.Init(debtors)
	heap.Init(creditors)

	var plan []Transaction
	for debtors.Len() > 0 && creditors.Len() > 0 {
		debtor := heap.Pop(debtors).(party)
		creditor := heap.Pop(creditors).(party)

		settle := debtor.cents
		if creditor.cents < settle {
			settle = creditor.cents
		}

		plan = append(plan, Transaction{
			From:   debtor.memberID,
			To:     creditor.memberID,
			Amount: money.New(settle, currency),
		})

		if remaining := debtor.cents - settle; remaining > 0 {
			heap.Push(debtors, party{memberID: debtor.memberID, cents: remaining})
		}
		if remaining := creditor.cents - settle; remaining > 0 {
			heap.Push(creditors, party{memberID: creditor.memberID, cents: remaining})
		}
	}

	// The zero-sum check above guarantees both sides drain together.
	if debtors.Len() > 0 || creditors.Len() > 0 {
		return nil, ErrUnbalancedLedger
	}
	return plan, nil
}
