package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mono2ledger/mono2ledger/internal/config"
	"github.com/mono2ledger/mono2ledger/internal/importer"
	"github.com/mono2ledger/mono2ledger/internal/ledger"
	"github.com/mono2ledger/mono2ledger/internal/model"
	"github.com/mono2ledger/mono2ledger/internal/mono"
	"github.com/mono2ledger/mono2ledger/internal/pipeline"
	"github.com/mono2ledger/mono2ledger/internal/rules"
)

const flagDateFormat = "2006-01-02"

// tokenEnv is the environment variable holding the Monobank API token.
const tokenEnv = "MONO2LEDGER_TOKEN"

type importOptions struct {
	configPath string
	files      []string
	account    string
	since      string
	until      string
	toStdout   bool
}

func newImportCommand() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Fetch statements and append ledger entries",
		Long: "Fetches statement items from the Monobank API (or reads CSV exports),\n" +
			"classifies them with the configured rules, and appends the resulting\n" +
			"ledger entries to the ledger file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default: user config dir)")
	cmd.Flags().StringSliceVar(&opts.files, "file", nil, "CSV export to convert instead of fetching from the API")
	cmd.Flags().StringVar(&opts.account, "account", "", "account id for --file input")
	cmd.Flags().StringVar(&opts.since, "since", "", "start of the fetch window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.until, "until", "", "end of the fetch window (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.toStdout, "stdout", false, "print entries instead of appending to the ledger file")

	return cmd
}

func runImport(cmd *cobra.Command, opts importOptions) error {
	cfgPath := opts.configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	store, err := rules.Compile(cfg)
	if err != nil {
		return fmt.Errorf("compiling rules: %w", err)
	}

	ledgerPath, err := expandHome(cfg.Settings.LedgerFile)
	if err != nil {
		return err
	}

	var items []model.StatementItem
	if len(opts.files) > 0 {
		items, err = readFiles(opts.files, opts.account)
	} else {
		items, err = fetchItems(cmd.Context(), cfg, store, ledgerPath, opts)
	}
	if err != nil {
		return err
	}

	result, err := pipeline.Run(items, store, pipeline.OptionsFrom(cfg.Settings))
	if err != nil {
		return err
	}
	reportWarnings(result)

	writerOpts := ledger.Options{
		DateFormat:       cfg.Settings.LedgerDateFormat,
		Currency:         cfg.Settings.Currency,
		TrimLeadingZeros: cfg.Settings.TrimLeadingZeros,
	}

	if opts.toStdout || ledgerPath == "" {
		return ledger.WriteBlock(cmd.OutOrStdout(), result.Entries, writerOpts, time.Now())
	}
	return appendToLedger(ledgerPath, cfg.Settings.BackupDir, result.Entries, writerOpts)
}

func readFiles(files []string, account string) ([]model.StatementItem, error) {
	if account == "" {
		return nil, errors.New("--account is required with --file")
	}
	parser := importer.DefaultRegistry().Get("mono-csv")

	var items []model.StatementItem
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening statement file: %w", err)
		}
		parsed, err := parser.Parse(f, account)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		logrus.WithFields(logrus.Fields{"file": path, "items": len(parsed)}).Info("Parsed statement export")
		items = append(items, parsed...)
	}
	return items, nil
}

func fetchItems(ctx context.Context, cfg *config.Config, store *rules.Store, ledgerPath string, opts importOptions) ([]model.StatementItem, error) {
	token := os.Getenv(tokenEnv)
	if token == "" {
		token = cfg.Settings.APIToken
	}
	if token == "" {
		return nil, fmt.Errorf("no API token: set %s or settings.api_token", tokenEnv)
	}

	until := time.Now()
	if opts.until != "" {
		var err error
		until, err = time.Parse(flagDateFormat, opts.until)
		if err != nil {
			return nil, fmt.Errorf("parsing --until: %w", err)
		}
	}
	since, err := resolveSince(cfg, ledgerPath, opts.since, until)
	if err != nil {
		return nil, err
	}

	client := mono.NewClient(token)
	accounts, err := client.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	var active []mono.Account
	for _, a := range accounts {
		if store.IgnoredAccount(a.ID) {
			continue
		}
		active = append(active, a)
	}
	logrus.WithFields(logrus.Fields{
		"accounts": len(active),
		"since":    since.Format(flagDateFormat),
		"until":    until.Format(flagDateFormat),
	}).Info("Fetching statements")

	return client.FetchStatements(ctx, active, since, until)
}

// resolveSince picks the start of the fetch window: the --since flag, the
// last transaction date in the ledger file, or 30 days before the window
// end.
func resolveSince(cfg *config.Config, ledgerPath, flag string, until time.Time) (time.Time, error) {
	if flag != "" {
		since, err := time.Parse(flagDateFormat, flag)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing --since: %w", err)
		}
		return since, nil
	}
	if ledgerPath != "" {
		f, err := os.Open(ledgerPath)
		if err == nil {
			defer f.Close()
			if last, ok := ledger.LastTransactionDate(f, cfg.Settings.LedgerDateFormat); ok {
				return last, nil
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, fmt.Errorf("opening ledger file: %w", err)
		}
	}
	return until.AddDate(0, 0, -30), nil
}

func reportWarnings(result *pipeline.Result) {
	for _, a := range result.Ambiguities {
		logrus.WithFields(logrus.Fields{
			"account":     a.Item.AccountID,
			"date":        a.Item.Time.Format(flagDateFormat),
			"amount":      a.Item.Amount,
			"description": a.Item.Description,
			"candidates":  a.Candidates,
		}).Warn("Ambiguous transfer match, using first candidate in batch order")
	}
	for _, u := range result.Unresolved {
		logrus.WithFields(logrus.Fields{
			"account":     u.Item.AccountID,
			"date":        u.Item.Time.Format(flagDateFormat),
			"amount":      u.Item.Amount,
			"mcc":         u.Item.MCC,
			"description": u.Item.Description,
		}).Warn("No ledger account resolved, item skipped; extend the match rules")
	}
}

func appendToLedger(path, backupDir string, entries []model.Entry, opts ledger.Options) error {
	now := time.Now()
	if backupDir != "" {
		dir, err := expandHome(backupDir)
		if err != nil {
			return err
		}
		backup, err := ledger.Backup(path, dir, now)
		if err != nil {
			return err
		}
		if backup != "" {
			logrus.WithField("path", backup).Info("Backed up ledger file")
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger file: %w", err)
	}
	defer f.Close()

	if err := ledger.WriteBlock(f, entries, opts, now); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"path": path, "entries": len(entries)}).Info("Appended entries")
	return nil
}

// expandHome resolves a leading "~/" against the user home directory.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
