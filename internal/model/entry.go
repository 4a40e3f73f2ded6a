package model

import "time"

// Posting is one (account, signed amount) line within an entry.
type Posting struct {
	Account string
	Amount  int64 // minor currency units
}

// Entry is a finished ledger transaction. Postings always sum to zero.
type Entry struct {
	Date     time.Time
	Payee    string
	Postings []Posting
}

// Balanced reports whether the posting amounts sum to zero.
func (e Entry) Balanced() bool {
	var sum int64
	for _, p := range e.Postings {
		sum += p.Amount
	}
	return sum == 0
}
