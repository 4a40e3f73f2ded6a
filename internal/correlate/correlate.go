// Package correlate pairs up cross-account transfers and splits cashback
// components over the full statement batch, before per-item classification.
package correlate

import (
	"time"

	"github.com/mono2ledger/mono2ledger/internal/model"
)

// Kind tags what a correlation represents.
type Kind int

const (
	// KindSingle is an uncorrelated item that goes through classification.
	KindSingle Kind = iota
	// KindTransfer is a matched cross-account pair collapsed into one entry.
	KindTransfer
	// KindCashback is the cashback component split off a spend item.
	KindCashback
)

// Correlation is one element of the correlated batch, in emission order.
type Correlation struct {
	Kind Kind
	// Item is the statement item, or the debit side of a transfer pair.
	Item model.StatementItem
	// Counter is the credit side of a transfer pair, nil otherwise.
	Counter *model.StatementItem
	// Amount is the effective entry amount: the spend net of cashback for
	// singles, the split-off cashback for cashback correlations, and the
	// debit-side amount for transfers.
	Amount int64
}

// Ambiguity records a transfer match that had more than one equally good
// candidate. Pairing proceeds with the first candidate in batch order.
type Ambiguity struct {
	Item       model.StatementItem
	Candidates int
}

// AccountSet tells the correlator which account ids are configured.
type AccountSet interface {
	HasAccount(id string) bool
}

// Options controls correlation behavior.
type Options struct {
	// Tolerance widens transfer time matching beyond same-calendar-date.
	Tolerance time.Duration
	// RecordCashback enables splitting cashback into a separate entry.
	// When false the cashback stays folded into the spend amount.
	RecordCashback bool
}

// Result is the correlated batch plus collected warnings.
type Result struct {
	Correlations []Correlation
	Ambiguities  []Ambiguity
}

// Correlate walks the time-ordered batch, collapsing transfer pairs and
// splitting cashback. Items are never mutated; the same input always yields
// the same result.
func Correlate(items []model.StatementItem, accounts AccountSet, opts Options) Result {
	var res Result
	used := make([]bool, len(items))

	for i := range items {
		if used[i] {
			continue
		}
		item := items[i]

		if j, ties := findCounter(items, used, accounts, i, opts.Tolerance); j >= 0 {
			if ties > 1 {
				res.Ambiguities = append(res.Ambiguities, Ambiguity{Item: item, Candidates: ties})
			}
			used[i], used[j] = true, true
			debit, credit := item, items[j]
			if debit.Amount > 0 {
				debit, credit = credit, debit
			}
			counter := credit
			res.Correlations = append(res.Correlations, Correlation{
				Kind:    KindTransfer,
				Item:    debit,
				Counter: &counter,
				Amount:  debit.Amount,
			})
			continue
		}

		used[i] = true
		if item.Cashback != 0 && opts.RecordCashback {
			res.Correlations = append(res.Correlations,
				Correlation{Kind: KindSingle, Item: item, Amount: item.Amount + item.Cashback},
				Correlation{Kind: KindCashback, Item: item, Amount: item.Cashback},
			)
			continue
		}
		res.Correlations = append(res.Correlations, Correlation{
			Kind: KindSingle, Item: item, Amount: item.Amount,
		})
	}
	return res
}

// findCounter returns the index of the best transfer counterpart for
// items[i], or -1. The second return is the number of candidates tied for
// best, for ambiguity reporting. A source-provided counter hint takes
// precedence over the amount/time heuristic.
func findCounter(items []model.StatementItem, used []bool, accounts AccountSet, i int, tolerance time.Duration) (int, int) {
	item := items[i]

	for j := range items {
		if j == i || used[j] {
			continue
		}
		other := items[j]
		if other.AccountID == item.AccountID || other.Amount != -item.Amount {
			continue
		}
		if (item.CounterAccount != "" && item.CounterAccount == other.AccountID) ||
			(other.CounterAccount != "" && other.CounterAccount == item.AccountID) {
			return j, 1
		}
	}

	if !accounts.HasAccount(item.AccountID) {
		return -1, 0
	}

	best := -1
	var bestKey candidateKey
	ties := 0
	for j := range items {
		if j == i || used[j] {
			continue
		}
		other := items[j]
		if other.AccountID == item.AccountID || !accounts.HasAccount(other.AccountID) {
			continue
		}
		if other.Amount != -item.Amount {
			continue
		}
		if !closeInTime(item.Time, other.Time, tolerance) {
			continue
		}
		key := candidateKey{
			date: dateOf(other.Time),
			diff: abs64(item.Amount + other.Amount),
		}
		switch {
		case best < 0 || key.less(bestKey):
			best, bestKey, ties = j, key, 1
		case key == bestKey:
			ties++
		}
	}
	return best, ties
}

// candidateKey orders transfer candidates: earliest date, then smallest
// amount difference. Equal keys fall back to batch order.
type candidateKey struct {
	date time.Time
	diff int64
}

func (k candidateKey) less(other candidateKey) bool {
	if !k.date.Equal(other.date) {
		return k.date.Before(other.date)
	}
	return k.diff < other.diff
}

func closeInTime(a, b time.Time, tolerance time.Duration) bool {
	if dateOf(a).Equal(dateOf(b)) {
		return true
	}
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
