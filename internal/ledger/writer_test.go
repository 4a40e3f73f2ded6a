package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mono2ledger/mono2ledger/internal/model"
)

var testOpts = Options{
	DateFormat: "2006/01/02",
	Currency:   "UAH",
}

func entry(day int, payee string, postings ...model.Posting) model.Entry {
	return model.Entry{
		Date:     time.Date(2025, 3, day, 14, 30, 0, 0, time.UTC),
		Payee:    payee,
		Postings: postings,
	}
}

func TestWrite_SingleEntry(t *testing.T) {
	var sb strings.Builder
	err := Write(&sb, []model.Entry{
		entry(2, "Silpo",
			model.Posting{Account: "Expenses:Food", Amount: 950},
			model.Posting{Account: "Assets:Mono:Black", Amount: -950},
		),
	}, testOpts)
	require.NoError(t, err)

	lines := strings.Split(sb.String(), "\n")
	assert.Equal(t, "2025/03/02 Silpo", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "\tExpenses:Food"))
	assert.True(t, strings.HasSuffix(lines[1], "9.50 UAH"))
	assert.Equal(t, "\tAssets:Mono:Black", lines[2], "last posting amount is elided")
}

func TestWrite_EntriesSeparatedByBlankLine(t *testing.T) {
	var sb strings.Builder
	err := Write(&sb, []model.Entry{
		entry(1, "A",
			model.Posting{Account: "Expenses:X", Amount: 100},
			model.Posting{Account: "Assets:Y", Amount: -100}),
		entry(2, "B",
			model.Posting{Account: "Expenses:X", Amount: 200},
			model.Posting{Account: "Assets:Y", Amount: -200}),
	}, testOpts)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "\tAssets:Y\n\n2025/03/02 B\n")
}

func TestWrite_CustomDateFormat(t *testing.T) {
	var sb strings.Builder
	opts := testOpts
	opts.DateFormat = "2006-01-02"
	err := Write(&sb, []model.Entry{
		entry(7, "X",
			model.Posting{Account: "Expenses:X", Amount: 100},
			model.Posting{Account: "Assets:Y", Amount: -100}),
	}, opts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sb.String(), "2025-03-07 X\n"))
}

func TestWriteBlock_HeaderAndFooter(t *testing.T) {
	var sb strings.Builder
	now := time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC)
	err := WriteBlock(&sb, []model.Entry{
		entry(2, "Silpo",
			model.Posting{Account: "Expenses:Food", Amount: 950},
			model.Posting{Account: "Assets:Mono:Black", Amount: -950}),
	}, testOpts, now)
	require.NoError(t, err)

	out := sb.String()
	assert.Contains(t, out, ";; Begin mono2ledger output\n")
	assert.Contains(t, out, ";; Date and time: 2025-03-10 09:15:00\n")
	assert.True(t, strings.HasSuffix(out, ";; End mono2ledger output\n"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "-9.50", FormatAmount(-950, false))
	assert.Equal(t, "9.50", FormatAmount(950, false))
	assert.Equal(t, "0.05", FormatAmount(5, false))
	assert.Equal(t, "10.00", FormatAmount(1000, false))
}

func TestFormatAmount_TrimLeadingZeros(t *testing.T) {
	assert.Equal(t, "10", FormatAmount(1000, true), "whole amounts drop the fraction")
	assert.Equal(t, "-10", FormatAmount(-1000, true))
	assert.Equal(t, "10.50", FormatAmount(1050, true), "fractional amounts keep it")
}
