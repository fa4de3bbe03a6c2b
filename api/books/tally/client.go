package tally

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"TallyBridge/api/constants"
)

// WireTransaction is the shape the Tally connector accepts for one row. The
// dedup key is stable across retries so the connector can drop re-sent rows
// after a lost acknowledgement.
type WireTransaction struct {
	ID              int64   `json:"id"`
	TransactionDate string  `json:"transaction_date"`
	TransactionType string  `json:"transaction_type"`
	Description     string  `json:"description"`
	Amount          float64 `json:"amount"`
	BankAccount     string  `json:"bank_account"`
	AssignedLedger  string  `json:"assigned_ledger"`
	DedupKey        string  `json:"dedup_key"`
}

// ConnectorError reports a failed exchange with the Tally connector. The
// caller may retry manually; nothing retries automatically.
type ConnectorError struct {
	Msg   string
	Cause error
}

func (e *ConnectorError) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

func (e *ConnectorError) Unwrap() error { return e.Cause }

// Client talks to the external Tally connector over HTTP with a bounded
// timeout; connector unavailability is a reportable failure, never a hang.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// FormatCompanyName normalizes a company name for the connector: trimmed,
// internal runs of whitespace collapsed to single spaces.
func FormatCompanyName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// SendTransactions forwards one validated batch and returns the connector's
// raw acknowledgement.
func (c *Client) SendTransactions(ctx context.Context, company string, data []WireTransaction) (map[string]interface{}, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"company": company,
		"data":    data,
	})
	if err != nil {
		return nil, fmt.Errorf("connector payload marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/tallyConnector", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set(constants.ContentTypeText, constants.ContentTypeJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &ConnectorError{Msg: constants.ErrConnectorUnreachable, Cause: err}
	}
	defer resp.Body.Close()

	var ack map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		ack = nil
	}
	if resp.StatusCode != http.StatusOK {
		return ack, &ConnectorError{
			Msg: fmt.Sprintf("%s (status %d)", constants.ErrConnectorSendFailed, resp.StatusCode),
		}
	}
	return ack, nil
}

// Health calls the connector's health endpoint.
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &ConnectorError{Msg: constants.ErrConnectorUnreachable, Cause: err}
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		body = nil
	}
	if resp.StatusCode != http.StatusOK {
		return body, &ConnectorError{
			Msg: fmt.Sprintf("%s (status %d)", constants.ErrConnectorUnreachable, resp.StatusCode),
		}
	}
	return body, nil
}
