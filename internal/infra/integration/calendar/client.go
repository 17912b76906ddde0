package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("calendar integration not configured")

type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		apiToken:   apiToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateBookingLink asks the scheduling service for a one-off link the
// patient can use to book a call.
func (c *Client) CreateBookingLink(ctx context.Context, input BookingLinkInput) (string, error) {
	if c.baseURL == "" || c.apiToken == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("encode booking request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/booking-links", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calendar request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create booking link: %d - %s", resp.StatusCode, string(body))
	}

	var result bookingLinkResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode booking response: %w", err)
	}
	if result.URL == "" {
		return "", errors.New("calendar returned an empty booking url")
	}
	return result.URL, nil
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
