package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// API is the device-side client for the ordering endpoints. The
// transport timeout doubles as the implicit bound on every call so a
// hung request can never freeze a polling loop.
type API struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// APIError is a response the server actually produced, as opposed to a
// connectivity failure where no response arrived.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsConnectivityError distinguishes transport failures (no response at
// all) from server rejections. Only the former are safe to queue and
// retry; rejections are terminal for the request.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	return !errors.As(err, &apiErr)
}

type SessionResponse struct {
	SessionToken string `json:"sessionToken"`
	ExpiresAt    string `json:"expiresAt"`
}

// EnsureSession calls POST /sessions.
func (a *API) EnsureSession(ctx context.Context, restaurantID, tableID string, persistent bool) (*SessionResponse, error) {
	body := map[string]interface{}{
		"restaurantId": restaurantID,
		"tableId":      tableID,
		"persistent":   persistent,
	}
	var out SessionResponse
	if err := a.do(ctx, http.MethodPost, "/sessions", body, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type OrderItemPayload struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

type OrderPayload struct {
	RestaurantID string             `json:"restaurantId"`
	TableID      string             `json:"tableId"`
	SessionToken string             `json:"sessionToken"`
	Items        []OrderItemPayload `json:"items"`
	AllergyNotes *string            `json:"allergyNotes,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
	Subtotal     float64            `json:"subtotal"`
	Tax          float64            `json:"tax"`
	Total        float64            `json:"total"`
}

// SubmitOrder calls POST /orders and returns the created order id.
func (a *API) SubmitOrder(ctx context.Context, payload OrderPayload) (string, error) {
	var out struct {
		OrderID string `json:"orderId"`
	}
	if err := a.do(ctx, http.MethodPost, "/orders", payload, nil, &out); err != nil {
		return "", err
	}
	return out.OrderID, nil
}

type OrderLine struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

type Order struct {
	ID           string      `json:"id"`
	TableID      string      `json:"table_id"`
	Status       string      `json:"status"`
	Items        []OrderLine `json:"items"`
	AllergyNotes *string     `json:"allergy_notes"`
	Notes        *string     `json:"notes"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ListOrders calls GET /orders, optionally filtered by status.
func (a *API) ListOrders(ctx context.Context, restaurantID, status string) ([]Order, error) {
	query := url.Values{"restaurantId": {restaurantID}}
	if status != "" {
		query.Set("status", status)
	}
	var out struct {
		Orders []Order `json:"orders"`
	}
	if err := a.do(ctx, http.MethodGet, "/orders", nil, query, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// AdvanceOrder calls PATCH /orders and returns the persisted status.
func (a *API) AdvanceOrder(ctx context.Context, restaurantID, orderID, nextStatus string) (string, error) {
	body := map[string]string{
		"restaurantId": restaurantID,
		"orderId":      orderID,
		"nextStatus":   nextStatus,
	}
	var out struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	if err := a.do(ctx, http.MethodPatch, "/orders", body, nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (a *API) do(ctx context.Context, method, path string, body interface{}, query url.Values, out interface{}) error {
	endpoint := a.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "request failed"}
		var detail struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&detail) == nil && detail.Message != "" {
			apiErr.Message = detail.Message
		}
		return apiErr
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
