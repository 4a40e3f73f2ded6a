// Package mono is a thin client for the Monobank personal API.
package mono

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mono2ledger/mono2ledger/internal/model"
)

const (
	defaultBaseURL = "https://api.monobank.ua"
	// statementWindow is the longest range one statement request may cover.
	statementWindow = 30 * 24 * time.Hour
	// requestPause is the wait between statement requests; the API allows
	// one statement call per minute.
	requestPause = 60 * time.Second
)

// Account is one account from /personal/client-info.
type Account struct {
	ID           string `json:"id"`
	IBAN         string `json:"iban"`
	CurrencyCode int    `json:"currencyCode"`
	Type         string `json:"type"`
}

type clientInfo struct {
	Accounts []Account `json:"accounts"`
}

// statementRow is one item from /personal/statement. Amounts are minor
// currency units.
type statementRow struct {
	ID              string `json:"id"`
	Time            int64  `json:"time"`
	Description     string `json:"description"`
	MCC             int    `json:"mcc"`
	Amount          int64  `json:"amount"`
	OperationAmount int64  `json:"operationAmount"`
	CurrencyCode    int    `json:"currencyCode"`
	CashbackAmount  int64  `json:"cashbackAmount"`
	CounterIBAN     string `json:"counterIban"`
}

// Client calls the Monobank API with a personal token.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	pause   func(time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithPause overrides the inter-request wait, for tests.
func WithPause(f func(time.Duration)) Option {
	return func(c *Client) { c.pause = f }
}

// NewClient creates a Client.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		pause:   time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Accounts fetches the client's accounts.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var info clientInfo
	if err := c.get(ctx, "/personal/client-info", &info); err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", err)
	}
	return info.Accounts, nil
}

// FetchStatements fetches statement items for all given accounts over
// [from, to), split into 30-day windows, pacing requests to stay under the
// API rate limit. Counterparty IBANs that belong to one of the given
// accounts are resolved to that account's id on the returned items.
func (c *Client) FetchStatements(ctx context.Context, accounts []Account, from, to time.Time) ([]model.StatementItem, error) {
	ibanToID := make(map[string]string, len(accounts))
	for _, a := range accounts {
		if a.IBAN != "" {
			ibanToID[a.IBAN] = a.ID
		}
	}

	var items []model.StatementItem
	first := true
	for _, acct := range accounts {
		for _, window := range intervals(from, to) {
			if !first {
				c.pause(requestPause)
			}
			first = false

			path := fmt.Sprintf("/personal/statement/%s/%d/%d",
				acct.ID, window[0].Unix(), window[1].Unix())
			var rows []statementRow
			if err := c.get(ctx, path, &rows); err != nil {
				return nil, fmt.Errorf("fetching statement for account %s: %w", acct.ID, err)
			}
			for _, row := range rows {
				items = append(items, model.StatementItem{
					AccountID:      acct.ID,
					Time:           time.Unix(row.Time, 0),
					Amount:         row.Amount,
					Description:    row.Description,
					MCC:            row.MCC,
					Cashback:       row.CashbackAmount,
					CounterAccount: ibanToID[row.CounterIBAN],
				})
			}
		}
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-Token", c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("GET %s: %s: %s", path, resp.Status, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// intervals splits [from, to) into windows no longer than statementWindow.
func intervals(from, to time.Time) [][2]time.Time {
	var out [][2]time.Time
	for from.Before(to) {
		end := from.Add(statementWindow)
		if end.After(to) {
			end = to
		}
		out = append(out, [2]time.Time{from, end})
		from = end
	}
	return out
}
