package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mono2ledger/mono2ledger/internal/config"
	"github.com/mono2ledger/mono2ledger/internal/model"
)

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func item(mcc int, desc string) model.StatementItem {
	return model.StatementItem{AccountID: "acc-1", Amount: -1000, MCC: mcc, Description: desc}
}

func compile(t *testing.T, cfg *config.Config) *Store {
	t.Helper()
	store, err := Compile(cfg)
	require.NoError(t, err)
	return store
}

func TestClassify_FirstMatchWins(t *testing.T) {
	store := compile(t, &config.Config{
		Match: []config.Matcher{
			{MCC: config.IntList{1}, Values: config.Values{Payee: strptr("First")}},
			{Values: config.Values{Payee: strptr("CatchAll")}}, // matches everything
		},
	})

	got := store.Classify(item(1, "anything"))
	assert.Equal(t, "First", got.PayeeOr(""))

	got = store.Classify(item(2, "anything"))
	assert.Equal(t, "CatchAll", got.PayeeOr(""))
}

func TestClassify_SubmatcherOverride(t *testing.T) {
	store := compile(t, &config.Config{
		Match: []config.Matcher{
			{
				MCC:    config.IntList{5411},
				Values: config.Values{LedgerAccount: strptr("Expenses:Food")},
				Match: []config.Matcher{
					{Description: config.StringList{"ATB"}, Values: config.Values{Payee: strptr("ATB")}},
				},
			},
		},
	})

	got := store.Classify(item(5411, "ATB store 42"))
	require.NotNil(t, got.LedgerAccount)
	assert.Equal(t, "Expenses:Food", *got.LedgerAccount, "parent account inherited")
	assert.Equal(t, "ATB", got.PayeeOr(""), "child payee overrides")
}

func TestClassify_NestedDepth(t *testing.T) {
	store := compile(t, &config.Config{
		Match: []config.Matcher{
			{
				Values: config.Values{LedgerAccount: strptr("Expenses:Misc"), Payee: strptr("Top")},
				Match: []config.Matcher{
					{
						Description: config.StringList{"shop"},
						Values:      config.Values{Payee: strptr("Mid")},
						Match: []config.Matcher{
							{Description: config.StringList{"shop deep"}, Values: config.Values{Payee: strptr("Deep")}},
						},
					},
				},
			},
		},
	})

	got := store.Classify(item(0, "shop deep discount"))
	assert.Equal(t, "Deep", got.PayeeOr(""))
	assert.Equal(t, "Expenses:Misc", *got.LedgerAccount)

	got = store.Classify(item(0, "shop only"))
	assert.Equal(t, "Mid", got.PayeeOr(""))

	got = store.Classify(item(0, "other"))
	assert.Equal(t, "Top", got.PayeeOr(""))
}

func TestClassify_PredicateConditionsAreANDed(t *testing.T) {
	store := compile(t, &config.Config{
		Match: []config.Matcher{
			{
				MCC:         config.IntList{5411},
				Description: config.StringList{"Silpo", "ATB"},
				Values:      config.Values{Payee: strptr("Groceries")},
			},
		},
	})

	assert.Equal(t, "Groceries", store.Classify(item(5411, "ATB")).PayeeOr(""))
	// Right MCC, wrong description: falls through to raw description.
	assert.Equal(t, "Bakery", store.Classify(item(5411, "Bakery")).PayeeOr(""))
	// Right description, wrong MCC: also falls through.
	assert.Equal(t, "ATB store", store.Classify(item(5999, "ATB store")).PayeeOr(""))
}

func TestClassify_CategoryDefaultsOverlaidByOwnValues(t *testing.T) {
	store := compile(t, &config.Config{
		Categories: map[string]config.Values{
			"food": {LedgerAccount: strptr("Expenses:Food"), Payee: strptr("Generic food")},
		},
		Match: []config.Matcher{
			{Category: "food", MCC: config.IntList{5411}, Values: config.Values{Payee: strptr("Silpo")}},
			{Category: "food", MCC: config.IntList{5812}},
		},
	})

	got := store.Classify(item(5411, "x"))
	assert.Equal(t, "Silpo", got.PayeeOr(""), "own value overrides category default")
	assert.Equal(t, "Expenses:Food", *got.LedgerAccount)

	got = store.Classify(item(5812, "x"))
	assert.Equal(t, "Generic food", got.PayeeOr(""))
}

func TestClassify_IgnoreIsOverridden_NotORed(t *testing.T) {
	store := compile(t, &config.Config{
		Match: []config.Matcher{
			{
				Values: config.Values{Ignore: boolptr(true), LedgerAccount: strptr("Expenses:Misc")},
				Match: []config.Matcher{
					{Description: config.StringList{"keep me"}, Values: config.Values{Ignore: boolptr(false)}},
				},
			},
		},
	})

	assert.True(t, store.Classify(item(0, "drop me")).Ignored())
	assert.False(t, store.Classify(item(0, "keep me")).Ignored(), "child ignore=false overrides parent")
}

func TestClassify_NoMatchFallsThrough(t *testing.T) {
	store := compile(t, &config.Config{
		Match: []config.Matcher{
			{MCC: config.IntList{1}, Values: config.Values{Payee: strptr("Never")}},
		},
	})

	got := store.Classify(item(2, "Corner shop"))
	assert.Equal(t, "Corner shop", got.PayeeOr(""), "raw description becomes payee")
	assert.Nil(t, got.LedgerAccount)
	assert.False(t, got.Ignored())
}

func TestClassify_Deterministic(t *testing.T) {
	store := compile(t, &config.Config{
		Categories: map[string]config.Values{
			"food": {LedgerAccount: strptr("Expenses:Food")},
		},
		Match: []config.Matcher{
			{Category: "food", MCC: config.IntList{5411}, Match: []config.Matcher{
				{Description: config.StringList{"ATB"}, Values: config.Values{Payee: strptr("ATB")}},
			}},
		},
	})

	it := item(5411, "ATB 7")
	first := store.Classify(it)
	second := store.Classify(it)
	assert.Equal(t, first, second)
}

func TestCompile_UnknownCategory(t *testing.T) {
	_, err := Compile(&config.Config{
		Match: []config.Matcher{{Category: "nope"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCompile_UnknownCategoryInChild(t *testing.T) {
	_, err := Compile(&config.Config{
		Categories: map[string]config.Values{"food": {}},
		Match: []config.Matcher{
			{Category: "food", Match: []config.Matcher{{Category: "nope"}}},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCompile_InvalidPattern(t *testing.T) {
	_, err := Compile(&config.Config{
		Match: []config.Matcher{{Description: config.StringList{"("}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling pattern")
}

func TestAccountName(t *testing.T) {
	store := compile(t, &config.Config{
		Settings: config.Settings{IgnoredAccounts: []string{"ignored-1"}},
		Accounts: map[string]string{"acc-1": "Assets:Mono:Black"},
	})

	name, err := store.AccountName("acc-1")
	require.NoError(t, err)
	assert.Equal(t, "Assets:Mono:Black", name)

	_, err = store.AccountName("acc-2")
	assert.ErrorIs(t, err, ErrUnknownAccount)

	assert.True(t, store.IgnoredAccount("ignored-1"))
	assert.False(t, store.IgnoredAccount("acc-1"))
	assert.True(t, store.HasAccount("acc-1"))
	assert.False(t, store.HasAccount("ignored-1"))
}
