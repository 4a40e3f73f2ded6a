package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backup copies the ledger file into dir before new entries are appended.
// Returns the backup path, or "" when there is nothing to back up yet.
func Backup(ledgerFile, dir string, now time.Time) (string, error) {
	data, err := os.ReadFile(ledgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading ledger file: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}

	base := filepath.Base(ledgerFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("backup-%s-%s.ledger", stem, now.Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	return path, nil
}
