// Package pipeline runs the full correlate-classify-synthesize pass over a
// merged statement batch.
package pipeline

import (
	"slices"
	"time"

	"github.com/mono2ledger/mono2ledger/internal/config"
	"github.com/mono2ledger/mono2ledger/internal/correlate"
	"github.com/mono2ledger/mono2ledger/internal/model"
	"github.com/mono2ledger/mono2ledger/internal/rules"
	"github.com/mono2ledger/mono2ledger/internal/synth"
)

// Options bundles correlation and synthesis settings.
type Options struct {
	Correlate correlate.Options
	Synth     synth.Options
}

// OptionsFrom maps config settings onto pipeline options.
func OptionsFrom(s config.Settings) Options {
	return Options{
		Correlate: correlate.Options{
			Tolerance:      time.Duration(s.TransferTolerance),
			RecordCashback: s.RecordCashback == nil || *s.RecordCashback,
		},
		Synth: synth.Options{
			TransferPayee:         s.TransferPayee,
			CashbackPayee:         s.CashbackPayee,
			CashbackAssetAccount:  s.CashbackAssetAccount,
			CashbackIncomeAccount: s.CashbackIncomeAccount,
		},
	}
}

// Result is the ordered entry sequence plus collected warnings.
type Result struct {
	Entries     []model.Entry
	Ambiguities []correlate.Ambiguity
	Unresolved  []synth.Unresolved
}

// Run sorts the batch chronologically, correlates it, and synthesizes
// entries. A fatal error returns before any output: the batch is
// all-or-nothing. The input slice is not modified.
func Run(items []model.StatementItem, store *rules.Store, opts Options) (*Result, error) {
	sorted := make([]model.StatementItem, len(items))
	copy(sorted, items)
	slices.SortStableFunc(sorted, func(a, b model.StatementItem) int {
		if !a.Time.Equal(b.Time) {
			return a.Time.Compare(b.Time)
		}
		switch {
		case a.Amount < b.Amount:
			return -1
		case a.Amount > b.Amount:
			return 1
		}
		return 0
	})

	correlated := correlate.Correlate(sorted, store, opts.Correlate)
	entries, unresolved, err := synth.Build(correlated.Correlations, store, opts.Synth)
	if err != nil {
		return nil, err
	}
	return &Result{
		Entries:     entries,
		Ambiguities: correlated.Ambiguities,
		Unresolved:  unresolved,
	}, nil
}
