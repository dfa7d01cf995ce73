package rankctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	service "github.com/okian/talentmatch/internal/app"
	"github.com/okian/talentmatch/internal/domain/types"
	"github.com/okian/talentmatch/pkg/logger"
)

const percentile95 = 0.95

// ProbeOptions drives a concurrent check of a running server.
type ProbeOptions struct {
	BaseURL  string
	Brief    service.Request
	Requests int
	Workers  int
	Timeout  time.Duration
}

// ProbeStats summarizes a probe run.
type ProbeStats struct {
	Sent    int64
	OK      int64
	Failed  int64
	Invalid int64
	P50     time.Duration
	P95     time.Duration
	Max     time.Duration
}

type rankBody struct {
	Results []types.RankedTalent `json:"results"`
}

// Probe checks /healthz, then issues Requests GET /rank calls over Workers
// goroutines and verifies every response.
func Probe(ctx context.Context, opts ProbeOptions, out io.Writer) (ProbeStats, error) {
	var stats ProbeStats
	if opts.Requests <= 0 || opts.Workers <= 0 {
		return stats, fmt.Errorf("%w: --requests and --workers must be positive", ErrInvalidFlags)
	}
	log := logger.Named("probe")
	client := &http.Client{Timeout: opts.Timeout}

	if err := checkHealth(ctx, client, opts.BaseURL); err != nil {
		return stats, err
	}

	target := opts.BaseURL + "/rank?" + url.Values{
		"segment":     {opts.Brief.Segment},
		"industry":    {opts.Brief.Industry},
		"budget_band": {opts.Brief.BudgetBand},
	}.Encode()

	var (
		sent, ok, failed, invalid atomic.Int64
		mu                        sync.Mutex
		latencies                 = make([]time.Duration, 0, opts.Requests)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := 0; i < opts.Requests; i++ {
		g.Go(func() error {
			start := time.Now()
			results, err := fetchRank(gctx, client, target)
			elapsed := time.Since(start)
			sent.Add(1)
			mu.Lock()
			latencies = append(latencies, elapsed)
			mu.Unlock()

			if err != nil {
				failed.Add(1)
				log.Warn(gctx, "rank request failed", logger.Error(err))
				return gctx.Err()
			}
			if verr := Verify(results); verr != nil {
				invalid.Add(1)
				log.Warn(gctx, "rank response rejected", logger.Error(verr))
				return gctx.Err()
			}
			ok.Add(1)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("probe aborted: %w", err)
	}

	stats = ProbeStats{Sent: sent.Load(), OK: ok.Load(), Failed: failed.Load(), Invalid: invalid.Load()}
	stats.P50, stats.P95, stats.Max = summarize(latencies)

	_, _ = fmt.Fprintf(out, "sent=%d ok=%d failed=%d invalid=%d p50=%s p95=%s max=%s\n",
		stats.Sent, stats.OK, stats.Failed, stats.Invalid, stats.P50, stats.P95, stats.Max)
	if stats.Failed > 0 || stats.Invalid > 0 {
		return stats, fmt.Errorf("%w: %d failed, %d invalid", ErrInvalidResult, stats.Failed, stats.Invalid)
	}
	return stats, nil
}

func checkHealth(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

func fetchRank(ctx context.Context, client *http.Client, target string) ([]types.RankedTalent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build rank request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rank request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rank request: status %d", resp.StatusCode)
	}
	var body rankBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rank response: %w", err)
	}
	return body.Results, nil
}

func summarize(latencies []time.Duration) (p50, p95, maxLatency time.Duration) {
	if len(latencies) == 0 {
		return 0, 0, 0
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	at := func(q float64) time.Duration {
		return latencies[int(q*float64(len(latencies)-1))]
	}
	return at(0.5), at(percentile95), latencies[len(latencies)-1]
}
