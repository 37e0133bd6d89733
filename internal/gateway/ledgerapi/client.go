// Package ledgerapi is the HTTP client for the remote ledger store. All
// record sets are keyed by the configured user email; requests carry a bearer
// token when one is configured.
package ledgerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finwatch/fintrack/internal/record"
)

const requestTimeout = 10 * time.Second

// Client represents a remote ledger store API client
type Client struct {
	baseURL    string
	email      string
	token      string
	httpClient *http.Client
}

// NewClient creates a new ledger store client for one user
func NewClient(baseURL, email, token string) *Client {
	return &Client{
		baseURL: baseURL,
		email:   email,
		token:   token,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// transactionDTO is the transaction wire format
type transactionDTO struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Email    string  `json:"email,omitempty"`
}

// investmentDTO is the investment wire format
type investmentDTO struct {
	ID            string  `json:"id,omitempty"`
	Symbol        string  `json:"symbol"`
	Shares        float64 `json:"shares"`
	PurchasePrice float64 `json:"purchasePrice"`
	PurchaseDate  string  `json:"purchaseDate"`
	Email         string  `json:"email,omitempty"`
}

// deleteRequest is the body of DELETE calls
type deleteRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ListTransactions fetches the user's full transaction list
func (c *Client) ListTransactions(ctx context.Context) ([]record.Transaction, error) {
	var dtos []transactionDTO
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, &dtos); err != nil {
		return nil, err
	}

	txs := make([]record.Transaction, 0, len(dtos))
	for _, dto := range dtos {
		tx, err := dto.toRecord()
		if err != nil {
			return nil, fmt.Errorf("invalid transaction %q: %w", dto.ID, err)
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// CreateTransaction persists a new transaction
func (c *Client) CreateTransaction(ctx context.Context, tx record.Transaction) error {
	return c.do(ctx, http.MethodPost, "/transactions", c.transactionBody(tx), nil)
}

// UpdateTransaction persists changes to an existing transaction
func (c *Client) UpdateTransaction(ctx context.Context, tx record.Transaction) error {
	return c.do(ctx, http.MethodPatch, "/transactions", c.transactionBody(tx), nil)
}

// DeleteTransaction removes a transaction by id
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/transactions", deleteRequest{ID: id, Email: c.email}, nil)
}

// ListInvestments fetches the user's full investment list
func (c *Client) ListInvestments(ctx context.Context) ([]record.Investment, error) {
	var dtos []investmentDTO
	if err := c.do(ctx, http.MethodGet, "/investments", nil, &dtos); err != nil {
		return nil, err
	}

	invs := make([]record.Investment, 0, len(dtos))
	for _, dto := range dtos {
		inv, err := dto.toRecord()
		if err != nil {
			return nil, fmt.Errorf("invalid investment %q: %w", dto.ID, err)
		}
		invs = append(invs, inv)
	}

	return invs, nil
}

// createInvestmentResponse carries the server-issued id. The id is decoded
// loosely because the store is not strict about its type.
type createInvestmentResponse struct {
	Item struct {
		ID any `json:"id"`
	} `json:"item"`
}

// CreateInvestment persists a new investment and returns the server-issued
// id; empty when the response omits one.
func (c *Client) CreateInvestment(ctx context.Context, inv record.Investment) (string, error) {
	body := c.investmentBody(inv)
	body.ID = "" // server issues the id on create

	var resp createInvestmentResponse
	if err := c.do(ctx, http.MethodPost, "/investments", body, &resp); err != nil {
		return "", err
	}

	switch id := resp.Item.ID.(type) {
	case string:
		return id, nil
	case float64:
		return fmt.Sprintf("%.0f", id), nil
	default:
		return "", nil
	}
}

// UpdateInvestment persists changes to an existing investment
func (c *Client) UpdateInvestment(ctx context.Context, inv record.Investment) error {
	return c.do(ctx, http.MethodPatch, "/investments", c.investmentBody(inv), nil)
}

// DeleteInvestment removes an investment by id
func (c *Client) DeleteInvestment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/investments", deleteRequest{ID: id, Email: c.email}, nil)
}

// do builds, authenticates and executes one request. GET requests carry the
// email as a query parameter, everything else in the body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	reqURL := c.baseURL + path
	if method == http.MethodGet {
		params := url.Values{}
		params.Set("email", c.email)
		reqURL = fmt.Sprintf("%s?%s", reqURL, params.Encode())
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) transactionBody(tx record.Transaction) transactionDTO {
	return transactionDTO{
		ID:       tx.ID,
		Amount:   tx.Amount.InexactFloat64(),
		Category: string(tx.Category),
		Date:     tx.Date.Format(record.DateOnly),
		Email:    c.email,
	}
}

func (c *Client) investmentBody(inv record.Investment) investmentDTO {
	return investmentDTO{
		ID:            inv.ID,
		Symbol:        inv.Symbol,
		Shares:        inv.Shares.InexactFloat64(),
		PurchasePrice: inv.PurchasePrice.InexactFloat64(),
		PurchaseDate:  inv.PurchaseDate.Format(record.DateOnly),
		Email:         c.email,
	}
}

func (d transactionDTO) toRecord() (record.Transaction, error) {
	date, err := time.Parse(record.DateOnly, d.Date)
	if err != nil {
		return record.Transaction{}, fmt.Errorf("bad date %q: %w", d.Date, err)
	}

	return record.Transaction{
		ID:       d.ID,
		Amount:   decimal.NewFromFloat(d.Amount),
		Category: record.ParseCategory(d.Category),
		Date:     date,
	}, nil
}

func (d investmentDTO) toRecord() (record.Investment, error) {
	date, err := time.Parse(record.DateOnly, d.PurchaseDate)
	if err != nil {
		return record.Investment{}, fmt.Errorf("bad purchase date %q: %w", d.PurchaseDate, err)
	}

	return record.Investment{
		ID:            d.ID,
		Symbol:        d.Symbol,
		Shares:        decimal.NewFromFloat(d.Shares),
		PurchasePrice: decimal.NewFromFloat(d.PurchasePrice),
		PurchaseDate:  date,
	}, nil
}
