package rules

// Bundle is the resolvable, overridable attribute set produced by
// classification. A nil field is "unset" and inherits from the enclosing
// level; a set field always overrides, including Ignore.
type Bundle struct {
	Payee         *string
	LedgerAccount *string
	SourceSuffix  *string
	Ignore        *bool
}

// Merge returns b overlaid with over's set fields.
func (b Bundle) Merge(over Bundle) Bundle {
	if over.Payee != nil {
		b.Payee = over.Payee
	}
	if over.LedgerAccount != nil {
		b.LedgerAccount = over.LedgerAccount
	}
	if over.SourceSuffix != nil {
		b.SourceSuffix = over.SourceSuffix
	}
	if over.Ignore != nil {
		b.Ignore = over.Ignore
	}
	return b
}

// Ignored reports whether the bundle resolves to ignore=true.
func (b Bundle) Ignored() bool {
	return b.Ignore != nil && *b.Ignore
}

// PayeeOr returns the resolved payee, or fallback when unset.
func (b Bundle) PayeeOr(fallback string) string {
	if b.Payee != nil {
		return *b.Payee
	}
	return fallback
}

// Suffix returns the source account suffix, or "" when unset.
func (b Bundle) Suffix() string {
	if b.SourceSuffix != nil {
		return *b.SourceSuffix
	}
	return ""
}
