package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBundleMerge(t *testing.T) {
	base := Bundle{
		Payee:         strptr("Base"),
		LedgerAccount: strptr("Expenses:Base"),
	}
	over := Bundle{Payee: strptr("Over"), Ignore: boolptr(true)}

	got := base.Merge(over)
	assert.Equal(t, "Over", *got.Payee)
	assert.Equal(t, "Expenses:Base", *got.LedgerAccount, "unset field inherits")
	assert.True(t, got.Ignored())

	// Merge does not mutate the receiver.
	assert.Equal(t, "Base", *base.Payee)
	assert.Nil(t, base.Ignore)
}

func TestBundleMerge_EmptyOverlay(t *testing.T) {
	base := Bundle{LedgerAccount: strptr("Expenses:Food"), Ignore: boolptr(true)}
	got := base.Merge(Bundle{})
	assert.Equal(t, base, got)
}

func TestBundleAccessors(t *testing.T) {
	var b Bundle
	assert.Equal(t, "fallback", b.PayeeOr("fallback"))
	assert.Equal(t, "", b.Suffix())
	assert.False(t, b.Ignored())

	b = Bundle{Payee: strptr("P"), SourceSuffix: strptr(":Cash")}
	assert.Equal(t, "P", b.PayeeOr("fallback"))
	assert.Equal(t, ":Cash", b.Suffix())
}
