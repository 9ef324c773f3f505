package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
	"github.com/courierly/wallet-backend/internal/dto"
	"github.com/shopspring/decimal"
)

// Client talks to the external courier booking API over HTTP/JSON. The saga
// wraps every call in a deadline context; the embedded http.Client carries no
// timeout of its own so the context stays the single source of truth.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a courier API client.
func NewClient(baseURL string, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

var _ portssvc.CourierAdapter = (*Client)(nil)

type createShipmentRequest struct {
	UserID          string          `json:"userID"`
	WeightKg        decimal.Decimal `json:"weightKg"`
	LengthCm        decimal.Decimal `json:"lengthCm"`
	WidthCm         decimal.Decimal `json:"widthCm"`
	HeightCm        decimal.Decimal `json:"heightCm"`
	DestinationZone string          `json:"destinationZone"`
	ServiceLevel    string          `json:"serviceLevel"`
}

type createShipmentResponse struct {
	TrackingNumber string          `json:"trackingNumber"`
	LabelPayload   string          `json:"labelPayload"`
	ActualCost     decimal.Decimal `json:"actualCost"`
}

// CreateShipment books a shipment and returns the tracking number, label and
// the courier's actual cost.
func (c *Client) CreateShipment(ctx context.Context, userID string, details dto.ShipmentDetails) (*portssvc.CourierShipmentResult, error) {
	body := createShipmentRequest{
		UserID:          userID,
		WeightKg:        details.WeightKg,
		LengthCm:        details.LengthCm,
		WidthCm:         details.WidthCm,
		HeightCm:        details.HeightCm,
		DestinationZone: details.DestinationZone,
		ServiceLevel:    details.ServiceLevel,
	}

	var out createShipmentResponse
	if err := c.do(ctx, http.MethodPost, "/v1/shipments", body, &out); err != nil {
		return nil, err
	}
	if out.TrackingNumber == "" {
		return nil, fmt.Errorf("courier returned no tracking number")
	}
	if !out.ActualCost.IsPositive() {
		// A zero or negative cost would turn the reconciliation credit into
		// free balance.
		return nil, fmt.Errorf("courier returned non-positive actual cost %s", out.ActualCost.String())
	}
	return &portssvc.CourierShipmentResult{
		TrackingNumber: out.TrackingNumber,
		LabelPayload:   out.LabelPayload,
		ActualCost:     out.ActualCost,
	}, nil
}

// CancelShipment cancels a booked shipment by tracking number.
func (c *Client) CancelShipment(ctx context.Context, trackingNumber string) error {
	path := "/v1/shipments/" + trackingNumber + "/cancel"
	return c.do(ctx, http.MethodPost, path, struct{}{}, nil)
}

func (c *Client) do(ctx context.Context, method string, path string, in any, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode courier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build courier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("courier request failed after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("courier returned status %d: %s", resp.StatusCode, string(snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode courier response: %w", err)
	}
	return nil
}
