// Package push sends notifications through the Expo push service.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quickcart/internal/config"
	"quickcart/internal/model"

	"github.com/rs/zerolog"
)

// maxBatch is the largest batch the Expo API accepts.
const maxBatch = 100

// Sender publishes push messages and returns one ticket per message.
type Sender interface {
	Publish(ctx context.Context, messages []model.PushMessage) ([]model.PushTicket, error)
}

// Client talks to the Expo push endpoint.
type Client struct {
	url         string
	accessToken string
	batchSize   int
	http        *http.Client
	logger      zerolog.Logger
}

// NewClient creates an Expo push client. A nil httpClient gets a default
// with a request timeout.
func NewClient(cfg config.PushConfig, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	batch := cfg.BatchSize
	if batch <= 0 || batch > maxBatch {
		batch = maxBatch
	}
	return &Client{
		url:         cfg.URL,
		accessToken: cfg.AccessToken,
		batchSize:   batch,
		http:        httpClient,
		logger:      logger.With().Str("component", "expo").Logger(),
	}
}

// Publish sends messages in sequential chunks of at most the batch size and
// concatenates the tickets in message order. It stops at the first failed
// chunk and returns the tickets collected so far with the error.
func (c *Client) Publish(ctx context.Context, messages []model.PushMessage) ([]model.PushTicket, error) {
	tickets := make([]model.PushTicket, 0, len(messages))
	for start := 0; start < len(messages); start += c.batchSize {
		end := start + c.batchSize
		if end > len(messages) {
			end = len(messages)
		}

		chunk, err := c.send(ctx, messages[start:end])
		if err != nil {
			c.logger.Error().
				Err(err).
				Int("offset", start).
				Int("size", end-start).
				Msg("push chunk failed")
			return tickets, err
		}
		tickets = append(tickets, chunk...)
	}

	c.logger.Debug().Int("messages", len(messages)).Int("tickets", len(tickets)).Msg("push messages published")
	return tickets, nil
}

type expoResponse struct {
	Data   []model.PushTicket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) send(ctx context.Context, chunk []model.PushMessage) ([]model.PushTicket, error) {
	body, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("failed to encode push messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read push response: %w", err)
	}

	var out expoResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode push response (status %d): %w", res.StatusCode, err)
	}

	if res.StatusCode != http.StatusOK {
		if len(out.Errors) > 0 {
			return nil, fmt.Errorf("push service returned %d: %s: %s", res.StatusCode, out.Errors[0].Code, out.Errors[0].Message)
		}
		return nil, fmt.Errorf("push service returned %d", res.StatusCode)
	}

	if len(out.Data) != len(chunk) {
		return nil, fmt.Errorf("push service returned %d tickets for %d messages", len(out.Data), len(chunk))
	}

	return out.Data, nil
}
