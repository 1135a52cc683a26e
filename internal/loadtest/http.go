package loadtest

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

	"github.com/tidwall/gjson"

	"github.com/okian/psyscale/pkg/logger"
)

// HTTP status code constants.
const (
	statusOK                 = 200
	statusCreated            = 201
	statusServiceUnavailable = 503
)

// workerChannelMultiplier sizes the job channel relative to the worker count.
const workerChannelMultiplier = 2

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request and returns the status and body.
func (c *HTTPClient) Get(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// PostJSON performs a POST request with a JSON body and request id.
func (c *HTTPClient) PostJSON(ctx context.Context, url, requestID string, body any) (int, []byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// fetchInstruments reads GET /api/instruments.
func fetchInstruments(ctx context.Context, client *HTTPClient, baseURL string) ([]Instrument, error) {
	status, body, err := client.Get(ctx, baseURL+"/api/instruments")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch instruments: %w", err)
	}
	if status != statusOK {
		return nil, fmt.Errorf("%w: instruments status %d", ErrUnexpectedResponse, status)
	}
	return parseInstruments(body)
}

func parseInstruments(body []byte) ([]Instrument, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: instruments body is not JSON", ErrUnexpectedResponse)
	}
	list := gjson.ParseBytes(body)
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: instruments body is not an array", ErrUnexpectedResponse)
	}

	var out []Instrument
	list.ForEach(func(_, v gjson.Result) bool {
		out = append(out, Instrument{
			ID:   int(v.Get("id").Int()),
			Path: v.Get("path").String(),
			Name: v.Get("name").String(),
		})
		return true
	})
	if len(out) == 0 {
		return nil, ErrNoInstruments
	}
	return out, nil
}

// fetchStatistics reads GET /api/statistics as name -> count.
func fetchStatistics(ctx context.Context, client *HTTPClient, baseURL string) (map[string]uint64, error) {
	status, body, err := client.Get(ctx, baseURL+"/api/statistics")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statistics: %w", err)
	}
	if status != statusOK {
		return nil, fmt.Errorf("%w: statistics status %d", ErrUnexpectedResponse, status)
	}
	return parseStatistics(body)
}

func parseStatistics(body []byte) (map[string]uint64, error) {
	stats := gjson.GetBytes(body, "statistics")
	if !stats.IsObject() {
		return nil, fmt.Errorf("%w: missing statistics object", ErrUnexpectedResponse)
	}
	out := make(map[string]uint64)
	stats.ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = v.Uint()
		return true
	})
	return out, nil
}

type submitResult int

const (
	resultSuccess submitResult = iota
	resultBusy
	resultFailed
)

// submitCompletions posts completions through a worker pool and returns the
// number of successful submissions per instrument path.
func submitCompletions(ctx context.Context, config *Config, completions []Completion, stats *Stats) map[string]int {
	logger.Get().Info(ctx, "submitting completions",
		logger.Int("count", len(completions)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)

	var (
		submitted  atomic.Int64
		successful atomic.Int64
		busy       atomic.Int64
		failed     atomic.Int64
		mu         sync.Mutex
		byPath     = make(map[string]int)
	)

	jobs := make(chan Completion, config.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				if ctx.Err() != nil {
					return
				}
				res := submitSingle(ctx, client, config.BaseURL, c)
				n := submitted.Add(1)
				switch res {
				case resultSuccess:
					successful.Add(1)
					mu.Lock()
					byPath[c.Path]++
					mu.Unlock()
				case resultBusy:
					busy.Add(1)
				case resultFailed:
					failed.Add(1)
				}
				if config.Verbose && n%1000 == 0 {
					logger.Get().Debug(ctx, "progress",
						logger.Int64("submitted", n),
						logger.Int("total", len(completions)))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, c := range completions {
			select {
			case <-ctx.Done():
				return
			case jobs <- c:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Successful = int(successful.Load())
	stats.Busy = int(busy.Load())
	stats.Failed = int(failed.Load())

	logger.Get().Info(ctx, "completion submission finished",
		logger.Int("successful", stats.Successful),
		logger.Int("busy", stats.Busy),
		logger.Int("failed", stats.Failed))
	return byPath
}

func submitSingle(ctx context.Context, client *HTTPClient, baseURL string, c Completion) submitResult {
	url := baseURL + "/api/instruments/" + c.Path + "/completions"
	status, body, err := client.PostJSON(ctx, url, c.RequestID, completionBody{ClientType: c.ClientType})
	if err != nil {
		return resultFailed
	}
	switch status {
	case statusCreated:
		if gjson.GetBytes(body, "status").String() == "recorded" {
			return resultSuccess
		}
		return resultFailed
	case statusServiceUnavailable:
		return resultBusy
	default:
		return resultFailed
	}
}
