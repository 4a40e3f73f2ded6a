// Package ledger renders entries as ledger-format text and reads just
// enough of an existing ledger file to find where the last import stopped.
package ledger

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mono2ledger/mono2ledger/internal/model"
)

// Options controls text formatting. These are cosmetic: stored amounts stay
// integer minor units.
type Options struct {
	DateFormat       string // Go time layout
	Currency         string
	TrimLeadingZeros bool // print whole amounts without ".00"
}

const accountColumn = 60

// Write renders entries separated by blank lines.
func Write(w io.Writer, entries []model.Entry, opts Options) error {
	for i, e := range entries {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeEntry(w, e, opts); err != nil {
			return err
		}
	}
	return nil
}

// WriteBlock renders entries wrapped in the converter's comment header and
// footer, so consecutive imports are visible in the ledger file.
func WriteBlock(w io.Writer, entries []model.Entry, opts Options, now time.Time) error {
	if _, err := fmt.Fprintf(w, "\n;; Begin mono2ledger output\n;; Date and time: %s\n\n",
		now.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	if err := Write(w, entries, opts); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n;; End mono2ledger output\n"); err != nil {
		return err
	}
	return nil
}

// writeEntry prints one entry. Every posting but the last carries an
// explicit amount; the final one is elided and left for ledger to infer.
func writeEntry(w io.Writer, e model.Entry, opts Options) error {
	if _, err := fmt.Fprintf(w, "%s %s\n", e.Date.Format(opts.DateFormat), e.Payee); err != nil {
		return err
	}
	for i, p := range e.Postings {
		if i == len(e.Postings)-1 {
			if _, err := fmt.Fprintf(w, "\t%s\n", p.Account); err != nil {
				return err
			}
			continue
		}
		amount := FormatAmount(p.Amount, opts.TrimLeadingZeros)
		if _, err := fmt.Fprintf(w, "\t%-*s %8s %s\n", accountColumn, p.Account, amount, opts.Currency); err != nil {
			return err
		}
	}
	return nil
}

// FormatAmount renders minor currency units as a major-unit string, e.g.
// -950 -> "-9.50". With trim enabled, whole amounts drop the fraction.
func FormatAmount(minor int64, trim bool) string {
	d := decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
	if trim && minor%100 == 0 {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}
