package ledger

import (
	"bufio"
	"io"
	"regexp"
	"time"
)

var (
	datePattern    = regexp.MustCompile(`\d{4}[/-]\d{2}[/-]\d{2}`)
	commentPattern = regexp.MustCompile(`^\s*[;#*]`)
)

// LastTransactionDate returns the date of the last transaction in a ledger
// file, skipping comment lines and hledger comment/end comment blocks.
// The date must parse with the given layout; ok is false when no
// transaction date was found.
func LastTransactionDate(r io.Reader, layout string) (date time.Time, ok bool) {
	scanner := bufio.NewScanner(r)
	inComment := false
	var last string
	for scanner.Scan() {
		line := scanner.Text()
		if !inComment && line == "comment" {
			inComment = true
			continue
		}
		if inComment {
			if line == "end comment" {
				inComment = false
			}
			continue
		}
		if commentPattern.MatchString(line) {
			continue
		}
		if m := datePattern.FindString(line); m != "" {
			last = m
		}
	}
	if last == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(layout, last)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
