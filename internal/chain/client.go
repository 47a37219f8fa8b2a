// Package chain talks to the external wallet/token network API. Everything it
// returns is advisory display data; application wallet balances live in the
// store and are never derived from chain state.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type TokenBalance struct {
	Symbol   string          `json:"symbol"`
	Amount   decimal.Decimal `json:"amount"`
	Decimals int             `json:"decimals"`
}

// SignedTransfer is an already-signed transfer instruction. The service relays
// it untouched; signing happens on the client side.
type SignedTransfer struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Symbol    string `json:"symbol"`
	Amount    string `json:"amount"`
	Signature string `json:"signature"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) TokenBalances(ctx context.Context, address string) ([]TokenBalance, error) {
	url := fmt.Sprintf("%s/v1/wallets/%s/balances", c.baseURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data struct {
		Balances []TokenBalance `json:"balances"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	return data.Balances, nil
}

// SubmitTransfer relays a signed transfer and returns the transaction hash.
func (c *Client) SubmitTransfer(ctx context.Context, t SignedTransfer) (string, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/v1/transfers"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data struct {
		TxHash string `json:"tx_hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("error decoding resp.Body: %w", err)
	}

	return data.TxHash, nil
}
