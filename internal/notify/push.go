package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

// Notifier fans order events out to the admin devices.
type Notifier interface {
	OrderPaid(ctx context.Context, order *model.Order) error
}

// PushClient sends admin alerts through the push provider's REST API.
type PushClient struct {
	url    string
	appID  string
	apiKey string
	client *http.Client
}

func NewPushClient(url, appID, apiKey string) *PushClient {
	return &PushClient{
		url:    url,
		appID:  appID,
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type pushPayload struct {
	AppID            string            `json:"app_id"`
	IncludedSegments []string          `json:"included_segments"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
	Data             map[string]string `json:"data,omitempty"`
}

func (c *PushClient) OrderPaid(ctx context.Context, order *model.Order) error {
	payload := pushPayload{
		AppID:            c.appID,
		IncludedSegments: []string{"Admins"},
		Headings:         map[string]string{"en": "New paid order"},
		Contents: map[string]string{
			"en": fmt.Sprintf("%s paid $%.2f (%s)", order.CustomerName, float64(order.Totals.TotalCents)/100, order.Fulfillment),
		},
		Data: map[string]string{"order_id": order.ID},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push provider returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
