// internal/notifier/notifier.go
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lucasbarros/cardclash/internal/config"
	"github.com/lucasbarros/cardclash/internal/models"
	"github.com/lucasbarros/cardclash/internal/monitor"
)

// Summary is the finished-match report accepted by the statistics ledger.
// The ledger treats ExternalMatchID as an idempotency key, so resubmitting
// the same summary is always safe.
type Summary struct {
	ExternalMatchID   string             `json:"external_match_id"`
	Player1ExternalID string             `json:"player1_external_id"`
	Player2ExternalID string             `json:"player2_external_id"`
	WinnerExternalID  *string            `json:"winner_external_id"`
	Player1Score      int                `json:"player1_score"`
	Player2Score      int                `json:"player2_score"`
	Turns             []models.TurnEntry `json:"turns"`
}

// Client reports finished matches to the external ledger with bounded retries
// and exponential backoff. Delivery is best effort: match state never depends
// on the ledger being reachable.
type Client struct {
	baseURL  string
	apiKey   string
	attempts int
	base     int
	maxWait  time.Duration

	http *http.Client

	// sleep is swapped out in tests to observe backoff without waiting.
	sleep func(time.Duration)
}

// New builds a ledger client from config. Each HTTP attempt is bounded by the
// configured per-call timeout, independent of the overall retry budget.
func New(cfg config.Ledger) *Client {
	return &Client{
		baseURL:  cfg.URL,
		apiKey:   cfg.APIKey,
		attempts: cfg.MaxRetryAttempts,
		base:     cfg.BackoffBase,
		maxWait:  cfg.MaxRetryWait,
		http:     &http.Client{Timeout: cfg.Timeout},
		sleep:    time.Sleep,
	}
}

// FinalizeMatch POSTs the summary to the ledger's /matches endpoint. It
// retries on any non-2xx status, timeout or connection error, waiting
// min(base^attempt, maxWait) between attempts. Returns true as soon as the
// ledger acknowledges; false once all attempts are exhausted.
func (c *Client) FinalizeMatch(ctx context.Context, summary Summary) bool {
	body, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("failed to marshal match summary %s: %v", summary.ExternalMatchID, err)
		return false
	}

	url := c.baseURL + "/matches"

	for attempt := 1; attempt <= c.attempts; attempt++ {
		monitor.NotifierAttempts.Inc()

		if ok, detail := c.post(ctx, url, body); ok {
			log.Infof("match %s finalized on the ledger", summary.ExternalMatchID)
			return true
		} else {
			log.WithFields(log.Fields{
				"match":   summary.ExternalMatchID,
				"attempt": fmt.Sprintf("%d/%d", attempt, c.attempts),
			}).Warnf("ledger finalize failed: %s", detail)
		}

		if attempt < c.attempts {
			c.sleep(c.backoff(attempt))
		}
	}

	monitor.NotifierFailures.Inc()
	log.Errorf("failed to finalize match %s after %d attempts; result may never reach player stats",
		summary.ExternalMatchID, c.attempts)
	return false
}

// post performs one delivery attempt. The second return value describes the
// failure for logging.
func (c *Client) post(ctx context.Context, url string, body []byte) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Sprintf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Sprintf("request error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true, ""
	}
	return false, fmt.Sprintf("status %d", resp.StatusCode)
}

// backoff computes the wait after the given (1-based) failed attempt.
func (c *Client) backoff(attempt int) time.Duration {
	wait := time.Duration(math.Pow(float64(c.base), float64(attempt))) * time.Second
	if wait > c.maxWait {
		wait = c.maxWait
	}
	return wait
}
