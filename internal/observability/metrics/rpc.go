// Package metrics keeps counters and latency histograms for RPC dispatch
// and renders them in Prometheus text exposition format.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type requestKey struct {
	method string
	code   string
}

type errorKey struct {
	method string
}

type latencyKey struct {
	method string
}

type histogram struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type collector struct {
	mu       sync.Mutex
	requests map[requestKey]uint64
	errors   map[errorKey]uint64
	latency  map[latencyKey]*histogram
}

var rpcCollector = &collector{
	requests: make(map[requestKey]uint64),
	errors:   make(map[errorKey]uint64),
	latency:  make(map[latencyKey]*histogram),
}

// OKCode labels a successful dispatch in the requests counter.
const OKCode = "OK"

// ObserveRPCRequest records one dispatched RPC call. code is OKCode on
// success or the error code otherwise.
func ObserveRPCRequest(method, code string, duration time.Duration) {
	rpcCollector.observe(method, code, duration)
}

func (c *collector) observe(method, code string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reqKey := requestKey{method: method, code: code}
	c.requests[reqKey]++
	if code != OKCode {
		errKey := errorKey{method: method}
		c.errors[errKey]++
	}

	latKey := latencyKey{method: method}
	hist := c.latency[latKey]
	if hist == nil {
		hist = newHistogram()
		c.latency[latKey] = hist
	}
	hist.observe(duration.Seconds())
}

func newHistogram() *histogram {
	buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) observe(value float64) {
	h.count++
	h.sum += value
	for idx, bound := range h.buckets {
		if value <= bound {
			for i := idx; i < len(h.counts); i++ {
				h.counts[i]++
			}
			break
		}
	}
	// Values above the last bucket only land in the +Inf bucket via h.count.
}

// Handler exposes the metrics in Prometheus text exposition format.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = fmt.Fprint(w, rpcCollector.render())
	})
}

func (c *collector) render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	type requestMetric struct {
		requestKey
		value uint64
	}
	type errorMetric struct {
		errorKey
		value uint64
	}
	type latencyMetric struct {
		latencyKey
		buckets []float64
		counts  []uint64
		sum     float64
		count   uint64
	}

	reqs := make([]requestMetric, 0, len(c.requests))
	for key, value := range c.requests {
		reqs = append(reqs, requestMetric{requestKey: key, value: value})
	}
	errs := make([]errorMetric, 0, len(c.errors))
	for key, value := range c.errors {
		errs = append(errs, errorMetric{errorKey: key, value: value})
	}
	lats := make([]latencyMetric, 0, len(c.latency))
	for key, hist := range c.latency {
		lats = append(lats, latencyMetric{
			latencyKey: key,
			buckets:    append([]float64(nil), hist.buckets...),
			counts:     append([]uint64(nil), hist.counts...),
			sum:        hist.sum,
			count:      hist.count,
		})
	}

	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].method == reqs[j].method {
			return reqs[i].code < reqs[j].code
		}
		return reqs[i].method < reqs[j].method
	})
	sort.Slice(errs, func(i, j int) bool {
		return errs[i].method < errs[j].method
	})
	sort.Slice(lats, func(i, j int) bool {
		return lats[i].method < lats[j].method
	})

	var builder strings.Builder
	builder.Grow(1024)

	builder.WriteString("# HELP openweb3_rpc_requests_total Total number of RPC requests dispatched.\n")
	builder.WriteString("# TYPE openweb3_rpc_requests_total counter\n")
	for _, metric := range reqs {
		builder.WriteString(fmt.Sprintf("openweb3_rpc_requests_total{method=\"%s\",code=\"%s\"} %d\n",
			escape(metric.method), escape(metric.code), metric.value))
	}

	builder.WriteString("# HELP openweb3_rpc_request_errors_total Total number of RPC requests that failed.\n")
	builder.WriteString("# TYPE openweb3_rpc_request_errors_total counter\n")
	for _, metric := range errs {
		builder.WriteString(fmt.Sprintf("openweb3_rpc_request_errors_total{method=\"%s\"} %d\n",
			escape(metric.method), metric.value))
	}

	builder.WriteString("# HELP openweb3_rpc_request_duration_seconds RPC request duration in seconds.\n")
	builder.WriteString("# TYPE openweb3_rpc_request_duration_seconds histogram\n")
	for _, metric := range lats {
		for idx, bound := range metric.buckets {
			builder.WriteString(fmt.Sprintf("openweb3_rpc_request_duration_seconds_bucket{method=\"%s\",le=\"%s\"} %d\n",
				escape(metric.method), formatFloat(bound), metric.counts[idx]))
		}
		builder.WriteString(fmt.Sprintf("openweb3_rpc_request_duration_seconds_bucket{method=\"%s\",le=\"+Inf\"} %d\n",
			escape(metric.method), metric.count))
		builder.WriteString(fmt.Sprintf("openweb3_rpc_request_duration_seconds_sum{method=\"%s\"} %s\n",
			escape(metric.method), formatFloat(metric.sum)))
		builder.WriteString(fmt.Sprintf("openweb3_rpc_request_duration_seconds_count{method=\"%s\"} %d\n",
			escape(metric.method), metric.count))
	}

	return builder.String()
}

func escape(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "\n", "")
	return value
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// StartServer launches a standalone HTTP server exposing the /metrics endpoint.
func StartServer(ctx context.Context, addr string) error {
	if addr == "" {
		return errors.New("metrics address is empty")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	}
}
