// Package synth turns correlated statement items into balanced ledger
// entries.
package synth

import (
	"github.com/mono2ledger/mono2ledger/internal/correlate"
	"github.com/mono2ledger/mono2ledger/internal/model"
	"github.com/mono2ledger/mono2ledger/internal/rules"
)

// Classifier is the rule store surface synthesis needs.
type Classifier interface {
	Classify(item model.StatementItem) rules.Bundle
	AccountName(id string) (string, error)
}

// Options holds the fixed payees and accounts for transfer and cashback
// entries.
type Options struct {
	TransferPayee         string
	CashbackPayee         string
	CashbackAssetAccount  string
	CashbackIncomeAccount string
}

// Unresolved records an item that fell through all matchers with no ledger
// account and no ignore. The batch still succeeds; the item produces no
// entry.
type Unresolved struct {
	Item model.StatementItem
}

// Build produces one entry per non-ignored correlation. Unknown source
// accounts are fatal: nothing is returned so no partial batch is ever
// emitted. Unresolved classifications are collected, not fatal.
func Build(batch []correlate.Correlation, store Classifier, opts Options) ([]model.Entry, []Unresolved, error) {
	var entries []model.Entry
	var unresolved []Unresolved

	for _, c := range batch {
		switch c.Kind {
		case correlate.KindTransfer:
			entry, err := transferEntry(c, store, opts)
			if err != nil {
				return nil, nil, err
			}
			entries = append(entries, entry)

		case correlate.KindCashback:
			entries = append(entries, model.Entry{
				Date:  c.Item.Time,
				Payee: opts.CashbackPayee,
				Postings: []model.Posting{
					{Account: opts.CashbackAssetAccount, Amount: c.Amount},
					{Account: opts.CashbackIncomeAccount, Amount: -c.Amount},
				},
			})

		default:
			bundle := store.Classify(c.Item)
			if bundle.Ignored() {
				continue
			}
			source, err := store.AccountName(c.Item.AccountID)
			if err != nil {
				return nil, nil, err
			}
			if bundle.LedgerAccount == nil {
				unresolved = append(unresolved, Unresolved{Item: c.Item})
				continue
			}
			entries = append(entries, model.Entry{
				Date:  c.Item.Time,
				Payee: bundle.PayeeOr(c.Item.Description),
				Postings: []model.Posting{
					{Account: *bundle.LedgerAccount, Amount: -c.Amount},
					{Account: source + bundle.Suffix(), Amount: c.Amount},
				},
			})
		}
	}
	return entries, unresolved, nil
}

func transferEntry(c correlate.Correlation, store Classifier, opts Options) (model.Entry, error) {
	debitName, err := store.AccountName(c.Item.AccountID)
	if err != nil {
		return model.Entry{}, err
	}
	creditName, err := store.AccountName(c.Counter.AccountID)
	if err != nil {
		return model.Entry{}, err
	}
	return model.Entry{
		Date:  c.Item.Time,
		Payee: opts.TransferPayee,
		Postings: []model.Posting{
			{Account: debitName, Amount: c.Amount},
			{Account: creditName, Amount: -c.Amount},
		},
	}, nil
}
