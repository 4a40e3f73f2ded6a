package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mono2ledger/mono2ledger/internal/model"
)

// MonoCSVParser parses Monobank statement CSV exports.
type MonoCSVParser struct{}

const (
	monoDateFormat  = "02.01.2006 15:04:05"
	monoNumFields   = 9
	monoColDate     = 0
	monoColDesc     = 1
	monoColMCC      = 2
	monoColAmount   = 3
	monoColCashback = 8
	// monoEmpty marks an empty cell in the export.
	monoEmpty = "—"
)

// Format returns the parser name.
func (p *MonoCSVParser) Format() string { return "mono-csv" }

// Parse reads a Monobank CSV export. The export carries no account id, so
// the caller names the account the file belongs to.
func (p *MonoCSVParser) Parse(r io.Reader, accountID string) ([]model.StatementItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = monoNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading monobank CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var items []model.StatementItem
	for i, rec := range records[1:] {
		item, err := parseMonoRow(rec, accountID)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func parseMonoRow(rec []string, accountID string) (model.StatementItem, error) {
	ts, err := time.Parse(monoDateFormat, rec[monoColDate])
	if err != nil {
		return model.StatementItem{}, fmt.Errorf("parsing date %q: %w", rec[monoColDate], err)
	}

	amount, err := minorUnits(rec[monoColAmount])
	if err != nil {
		return model.StatementItem{}, fmt.Errorf("parsing amount %q: %w", rec[monoColAmount], err)
	}

	var mcc int
	if cell := rec[monoColMCC]; cell != monoEmpty && cell != "" {
		mcc, err = strconv.Atoi(cell)
		if err != nil {
			return model.StatementItem{}, fmt.Errorf("parsing mcc %q: %w", cell, err)
		}
	}

	var cashback int64
	if cell := rec[monoColCashback]; cell != monoEmpty && cell != "" {
		cashback, err = minorUnits(cell)
		if err != nil {
			return model.StatementItem{}, fmt.Errorf("parsing cashback %q: %w", cell, err)
		}
	}

	return model.StatementItem{
		AccountID:   accountID,
		Time:        ts,
		Amount:      amount,
		Description: rec[monoColDesc],
		MCC:         mcc,
		Cashback:    cashback,
	}, nil
}

// minorUnits converts a major-unit decimal string like "-9.50" to minor
// currency units.
func minorUnits(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart(), nil
}
