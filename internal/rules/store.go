// Package rules holds the compiled classification configuration and the
// matcher engine that resolves a statement item to a value bundle.
package rules

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/mono2ledger/mono2ledger/internal/config"
	"github.com/mono2ledger/mono2ledger/internal/model"
)

var (
	// ErrUnknownAccount means a statement account id has no configured
	// ledger account name and is not in the ignore list.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrUnknownCategory means a matcher references an undefined category.
	ErrUnknownCategory = errors.New("unknown category")
)

// Store is the read-only rule configuration for one run: the account name
// map, the ignore list, and the compiled ordered matcher tree.
type Store struct {
	accounts map[string]string
	ignored  map[string]bool
	matchers []matcher
}

// matcher is one compiled node of the rule tree. values already carries the
// category defaults overlaid by the node's own fields.
type matcher struct {
	mccs     map[int]bool
	patterns []*regexp.Regexp
	values   Bundle
	children []matcher
}

// Compile builds a Store from raw configuration. Undefined category
// references and invalid patterns are fatal here, before any item is
// processed.
func Compile(cfg *config.Config) (*Store, error) {
	s := &Store{
		accounts: make(map[string]string, len(cfg.Accounts)),
		ignored:  make(map[string]bool, len(cfg.Settings.IgnoredAccounts)),
	}
	for id, name := range cfg.Accounts {
		s.accounts[id] = name
	}
	for _, id := range cfg.Settings.IgnoredAccounts {
		s.ignored[id] = true
	}

	matchers, err := compileMatchers(cfg.Match, cfg.Categories)
	if err != nil {
		return nil, err
	}
	s.matchers = matchers
	return s, nil
}

func compileMatchers(raw []config.Matcher, categories map[string]config.Values) ([]matcher, error) {
	var out []matcher
	for i, rm := range raw {
		var values Bundle
		if rm.Category != "" {
			cat, ok := categories[rm.Category]
			if !ok {
				return nil, fmt.Errorf("matcher %d: %w: %q", i, ErrUnknownCategory, rm.Category)
			}
			values = values.Merge(bundleFrom(cat))
		}
		values = values.Merge(bundleFrom(rm.Values))

		m := matcher{values: values}
		if len(rm.MCC) > 0 {
			m.mccs = make(map[int]bool, len(rm.MCC))
			for _, mcc := range rm.MCC {
				m.mccs[mcc] = true
			}
		}
		for _, expr := range rm.Description {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("matcher %d: compiling pattern %q: %w", i, expr, err)
			}
			m.patterns = append(m.patterns, re)
		}

		children, err := compileMatchers(rm.Match, categories)
		if err != nil {
			return nil, fmt.Errorf("matcher %d: %w", i, err)
		}
		m.children = children
		out = append(out, m)
	}
	return out, nil
}

func bundleFrom(v config.Values) Bundle {
	return Bundle{
		Payee:         v.Payee,
		LedgerAccount: v.LedgerAccount,
		SourceSuffix:  v.SourceSuffix,
		Ignore:        v.Ignore,
	}
}

// matches reports whether the item satisfies every condition kind present
// on this node. A node with no conditions matches everything.
func (m matcher) matches(item model.StatementItem) bool {
	if m.mccs != nil && !m.mccs[item.MCC] {
		return false
	}
	if len(m.patterns) > 0 {
		found := false
		for _, re := range m.patterns {
			if re.MatchString(item.Description) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// AccountName returns the configured ledger account name for a statement
// account id.
func (s *Store) AccountName(id string) (string, error) {
	name, ok := s.accounts[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAccount, id)
	}
	return name, nil
}

// HasAccount reports whether the account id has a configured name.
func (s *Store) HasAccount(id string) bool {
	_, ok := s.accounts[id]
	return ok
}

// IgnoredAccount reports whether the account id is on the ignore list.
func (s *Store) IgnoredAccount(id string) bool {
	return s.ignored[id]
}

// Classify resolves an item against the ordered matcher tree. Evaluation is
// first-match-wins at each level; a matching node's children are descended
// for override resolution. When nothing matches, the result carries the raw
// description as payee and an unset ledger account.
func (s *Store) Classify(item model.StatementItem) Bundle {
	resolved, ok := classify(s.matchers, item, Bundle{})
	if !ok {
		desc := item.Description
		return Bundle{Payee: &desc}
	}
	return resolved
}

func classify(matchers []matcher, item model.StatementItem, base Bundle) (Bundle, bool) {
	for _, m := range matchers {
		if !m.matches(item) {
			continue
		}
		resolved := base.Merge(m.values)
		if deeper, ok := classify(m.children, item, resolved); ok {
			return deeper, true
		}
		return resolved, true
	}
	return base, false
}
