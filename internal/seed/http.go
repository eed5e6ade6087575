package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/armandov/sellerpulse/pkg/logger"
)

// HTTP status code constants.
const (
	statusOK       = 200
	statusAccepted = 202
)

const workerChannelMultiplier = 2

// HTTPClient wraps http.Client with a timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// getJSON performs a GET request and decodes the JSON response into v.
func (c *HTTPClient) getJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != statusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

// submission is one record bound for a specific endpoint.
type submission struct {
	url  string
	body any
}

// submitRecords submits deals and meetings concurrently using a worker pool
func submitRecords(ctx context.Context, config *Config, deals []DealRecord, meetings []MeetingRecord, stats *Stats) error {
	total := len(deals) + len(meetings)
	logger.Get().Info(ctx, "submitting records",
		logger.Int("total", total),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	dealsURL := config.BaseURL + "/deals"
	meetingsURL := config.BaseURL + "/meetings"

	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	work := make(chan submission, config.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range work {
				select {
				case <-ctx.Done():
					return
				default:
				}
				result := submitSingle(ctx, client, s.url, s.body)

				atomic.AddInt64(&submitted, 1)
				switch result {
				case "success":
					atomic.AddInt64(&successful, 1)
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, d := range deals {
			select {
			case <-ctx.Done():
				return
			case work <- submission{url: dealsURL, body: d}:
			}
		}
		for _, m := range meetings {
			select {
			case <-ctx.Done():
				return
			case work <- submission{url: meetingsURL, body: m}:
			}
		}
	}()

	wg.Wait()

	stats.RecordsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.RecordsSuccessful = int(atomic.LoadInt64(&successful))
	stats.RecordsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.RecordsFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "record submission completed",
		logger.Int("successful", stats.RecordsSuccessful),
		logger.Int("duplicate", stats.RecordsDuplicate),
		logger.Int("failed", stats.RecordsFailed))

	if stats.RecordsFailed > 0 {
		return fmt.Errorf("%d of %d records failed", stats.RecordsFailed, stats.RecordsSubmitted)
	}
	return nil
}

// submitSingle submits one record and classifies the result
func submitSingle(ctx context.Context, client *HTTPClient, url string, body any) string {
	resp, err := client.Post(ctx, url, body)
	if err != nil {
		return "failed"
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case statusAccepted:
		return "success"
	case statusOK:
		var ack AckResponse
		if err := json.Unmarshal(raw, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}
