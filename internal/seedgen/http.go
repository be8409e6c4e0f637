package seedgen

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

	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/domain/types"
	"github.com/agonhq/agon/pkg/logger"
)

// HTTPClient wraps http.Client with a shared timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// getJSON performs a GET and decodes the body into out.
func getJSON(ctx context.Context, client *HTTPClient, url string, out any) error {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("get %s: status %d: %s", url, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// submitCompetitions loads the competition catalog synchronously.
func submitCompetitions(ctx context.Context, client *HTTPClient, cfg *Config, comps []model.Competition) error {
	url := cfg.BaseURL + "/competitions"
	for _, c := range comps {
		resp, err := client.Post(ctx, url, c)
		if err != nil {
			return fmt.Errorf("submit competition %d: %w", c.ID, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("submit competition %d: status %d", c.ID, resp.StatusCode)
		}
	}
	logger.Get().Info(ctx, "competitions stored", logger.Int("count", len(comps)))
	return nil
}

// submitEvents pushes match events concurrently through the ingestion API.
func submitEvents(ctx context.Context, client *HTTPClient, cfg *Config, events []model.MatchEvent, stats *Stats) error {
	url := cfg.BaseURL + "/matches"

	var successful, duplicate, failed, submitted int64

	eventChan := make(chan model.MatchEvent, cfg.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for event := range eventChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				atomic.AddInt64(&submitted, 1)
				switch submitSingleEvent(ctx, client, url, event) {
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
		defer close(eventChan)
		for _, event := range events {
			select {
			case <-ctx.Done():
				return
			case eventChan <- event:
			}
		}
	}()

	wg.Wait()

	stats.EventsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.EventsSuccessful = int(atomic.LoadInt64(&successful))
	stats.EventsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.EventsFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "event submission completed",
		logger.Int("successful", stats.EventsSuccessful),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("failed", stats.EventsFailed),
	)
	if stats.EventsFailed > 0 {
		return fmt.Errorf("%d of %d events failed to submit", stats.EventsFailed, stats.EventsSubmitted)
	}
	return nil
}

func submitSingleEvent(ctx context.Context, client *HTTPClient, url string, event model.MatchEvent) string {
	resp, err := client.Post(ctx, url, event)
	if err != nil {
		return "failed"
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		return "success"
	case http.StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}

// fetchCompetitionView queries one page of a competition's matches.
func fetchCompetitionView(ctx context.Context, client *HTTPClient, cfg *Config, id int64, page, limit int) (types.CompetitionMatches, error) {
	var out types.CompetitionMatches
	url := fmt.Sprintf("%s/competitions/%d/matches?page=%d&limit=%d", cfg.BaseURL, id, page, limit)
	if err := getJSON(ctx, client, url, &out); err != nil {
		return types.CompetitionMatches{}, err
	}
	return out, nil
}

// fetchStudentView queries one page of a student's matches.
func fetchStudentView(ctx context.Context, client *HTTPClient, cfg *Config, id int64, page, limit int) (types.StudentMatches, error) {
	var out types.StudentMatches
	url := fmt.Sprintf("%s/students/%d/matches?page=%d&limit=%d", cfg.BaseURL, id, page, limit)
	if err := getJSON(ctx, client, url, &out); err != nil {
		return types.StudentMatches{}, err
	}
	return out, nil
}
