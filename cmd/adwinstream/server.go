package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/coldshift/adwin/internal/adwinfeed"
	"github.com/coldshift/adwin/internal/adwinmgr"
)

// Prometheus HTTP metrics, registered once at package init and updated
// inline by loggingMiddleware.
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adwinstream_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adwinstream_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
}

type requestIDKey struct{}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = generateID()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			duration := time.Since(start)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("duration", duration),
				zap.String("request_id", requestID(r.Context())),
			)

			httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(sw.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration.Seconds())
		})
	}
}

func recoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.String("request_id", requestID(r.Context())),
					)
					internalError(w, "an unexpected error occurred")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func chain(handler http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func generateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// newMux builds the demo binary's HTTP surface: an ingestion endpoint
// backed by the rate-limited feed, a query endpoint, and the standard
// /healthz and /metrics operational endpoints. The query endpoint looks
// streams up with GetOrCreate, so querying an untracked key starts
// tracking it and can evict the least recently used stream.
func newMux(logger *zap.Logger, limiter ingestLimiter, mgr *adwinmgr.Manager, started time.Time) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /ingest", func(w http.ResponseWriter, r *http.Request) {
		stream := r.URL.Query().Get("stream")
		if stream == "" {
			badRequest(w, "missing required query parameter: stream")
			return
		}
		raw := r.URL.Query().Get("value")
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			badRequest(w, "value must be a finite number")
			return
		}

		if err := limiter.Fit(stream, x); err != nil {
			if errors.Is(err, adwinfeed.ErrRateLimited) {
				rateLimited(w, err.Error())
				return
			}
			internalError(w, err.Error())
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("GET /streams/{key}", func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("key")
		am, err := mgr.GetOrCreate(key)
		if err != nil {
			internalError(w, err.Error())
			return
		}
		n, mean, variance := am.Stats()
		writeJSON(w, map[string]any{
			"stream":   key,
			"nobs":     n,
			"mean":     mean,
			"variance": variance,
		})
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"status":  "ok",
			"uptime":  time.Since(started).String(),
			"streams": mgr.Count(),
		})
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	return chain(mux,
		requestIDMiddleware,
		loggingMiddleware(logger),
		recoveryMiddleware(logger),
	)
}

// ingestLimiter is the subset of adwinfeed.Limiter's surface newMux
// needs, kept as an interface so handler tests can substitute a fake.
type ingestLimiter interface {
	Fit(key string, x float64) error
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
