package model

import "time"

// StatementItem is one row from a bank statement feed. Amounts are signed
// minor currency units: negative = outflow, positive = inflow.
type StatementItem struct {
	AccountID   string
	Time        time.Time
	Amount      int64
	Description string
	MCC         int   // 0 when the source reports none
	Cashback    int64 // non-zero only on debit items
	// CounterAccount is the configured account id of the other side of a
	// cross-account transfer, when the source reports one. Empty otherwise.
	CounterAccount string
}
