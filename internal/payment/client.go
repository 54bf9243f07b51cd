package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

type IntentStatus string

const (
	IntentRequiresPayment IntentStatus = "requires_payment"
	IntentSucceeded       IntentStatus = "succeeded"
	IntentCanceled        IntentStatus = "canceled"
)

// Intent mirrors the gateway's payment-intent resource; ClientSecret is
// handed to the storefront client to drive card confirmation.
type Intent struct {
	ID           string       `json:"id"`
	ClientSecret string       `json:"client_secret"`
	Status       IntentStatus `json:"status"`
	AmountCents  int64        `json:"amount"`
	Currency     string       `json:"currency"`
}

type CreateIntentRequest struct {
	AmountCents    int64             `json:"amount"`
	Currency       string            `json:"currency"`
	IdempotencyKey string            `json:"-"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Client is the slice of the card gateway the checkout flow uses.
type Client interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)
	CancelIntent(ctx context.Context, id string) error
}

// HTTPClient talks to the gateway's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment_intents", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, snippet)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}
	return &intent, nil
}

func (c *HTTPClient) CancelIntent(ctx context.Context, id string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment_intents/"+id+"/cancel", nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
