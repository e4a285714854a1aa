// Package checker actively polls monitors that declare an api block
// and feeds the results through the same ingestion path webhooks use.
package checker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/itchyny/gojq"

	"github.com/rajnandan1/kener-sub002/internal/ingest"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

const defaultTimeout = 30 * time.Second

// Checker polls monitor APIs and records observations.
type Checker struct {
	Writer *ingest.Writer

	client  *http.Client
	queries map[string]*gojq.Query
}

// New makes a Checker, compiling each monitor's eval expression once.
// A monitor with a broken expression is rejected here rather than
// failing silently on every poll.
func New(w *ingest.Writer, monitors []api.Monitor) (*Checker, error) {
	c := &Checker{
		Writer:  w,
		client:  &http.Client{},
		queries: make(map[string]*gojq.Query),
	}

	for _, m := range monitors {
		if m.API == nil || m.API.Eval == "" {
			continue
		}
		q, err := gojq.Parse(m.API.Eval)
		if err != nil {
			return nil, fmt.Errorf("invalid eval expression for %s: %w", m.Tag, err)
		}
		c.queries[m.Tag] = q
	}

	return c, nil
}

// Check polls one monitor once and records the outcome. A request
// failure is a DOWN observation, not an error; only recording
// problems propagate.
func (c *Checker) Check(ctx context.Context, m api.Monitor) error {
	if m.API == nil {
		return nil
	}

	status, latency := c.poll(ctx, m)

	_, err := c.Writer.Ingest(ingest.Payload{
		Tag:     m.Tag,
		Status:  status.String(),
		Latency: latency,
	})
	return err
}

func (c *Checker) poll(ctx context.Context, m api.Monitor) (api.Status, float64) {
	timeout := defaultTimeout
	if m.API.TimeoutMs > 0 {
		timeout = time.Duration(m.API.TimeoutMs) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, m.API.HTTPMethod(), m.API.URL, nil)
	if err != nil {
		return api.StatusDown, 0
	}
	for key, value := range m.API.Headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	latency := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		return api.StatusDown, latency
	}
	defer resp.Body.Close()

	var body any
	json.NewDecoder(resp.Body).Decode(&body)

	if q, ok := c.queries[m.Tag]; ok {
		return evaluate(q, resp.StatusCode, latency, body)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return api.StatusUp, latency
	}
	return api.StatusDown, latency
}

// evaluate runs the monitor's gojq expression over
// {"status": httpStatus, "latency": ms, "body": decodedBody} and
// expects {"status": "UP"|"DOWN"|"DEGRADED", "latency": n?} back.
// Anything else counts as DOWN.
func evaluate(q *gojq.Query, httpStatus int, latency float64, body any) (api.Status, float64) {
	input := map[string]any{
		"status":  httpStatus,
		"latency": latency,
		"body":    body,
	}

	iter := q.Run(input)
	v, ok := iter.Next()
	if !ok {
		return api.StatusDown, latency
	}
	if _, isErr := v.(error); isErr {
		return api.StatusDown, latency
	}

	out, ok := v.(map[string]any)
	if !ok {
		return api.StatusDown, latency
	}

	statusText, _ := out["status"].(string)
	status := api.ParseStatus(statusText)
	if !status.IsObservable() {
		return api.StatusDown, latency
	}

	switch n := out["latency"].(type) {
	case float64:
		latency = n
	case int:
		latency = float64(n)
	}

	return status, latency
}
