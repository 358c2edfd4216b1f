// Package telemetry reports visitor events to an external collector. The
// collector is best effort: delivery failures are logged at debug level and
// never surfaced to callers.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

const defaultTimeout = 3 * time.Second

var reporterSeq atomic.Int64

// Reporter delivers visit events over HTTP.
type Reporter struct {
	endpoint string
	client   *http.Client
	logger   *log.Logger

	attempts  *expvar.Int
	delivered *expvar.Int
}

// NewReporter constructs a reporter posting to endpoint. An empty endpoint
// yields a reporter that drops every event, so callers can wire it
// unconditionally.
func NewReporter(endpoint string, logger *log.Logger) *Reporter {
	if logger == nil {
		logger = log.Default()
	}
	prefix := fmt.Sprintf("catalog_telemetry_%d", reporterSeq.Add(1))
	return &Reporter{
		endpoint:  endpoint,
		client:    &http.Client{Timeout: defaultTimeout},
		logger:    logger,
		attempts:  expvar.NewInt(prefix + "_attempts"),
		delivered: expvar.NewInt(prefix + "_delivered"),
	}
}

type visitEvent struct {
	VisitorID  string    `json:"visitor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ReportVisit posts a visit event for the visitor. It blocks for at most the
// client timeout and swallows every failure.
func (r *Reporter) ReportVisit(ctx context.Context, visitorID string) {
	if r.endpoint == "" || visitorID == "" {
		return
	}
	r.attempts.Add(1)

	payload, err := json.Marshal(visitEvent{VisitorID: visitorID, OccurredAt: time.Now().UTC()})
	if err != nil {
		r.logger.Debug("encode visit event", "err", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		r.logger.Debug("build visit request", "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("deliver visit event", "err", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		r.logger.Debug("collector rejected visit event", "status", resp.StatusCode)
		return
	}
	r.delivered.Add(1)
}

// Attempts returns how many deliveries were attempted.
func (r *Reporter) Attempts() int64 { return r.attempts.Value() }

// Delivered returns how many deliveries the collector accepted.
func (r *Reporter) Delivered() int64 { return r.delivered.Value() }
