package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// CORSMiddleware echoes the Origin header back for allow-listed origins.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin") // important for caches
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods",
					"GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers",
					"Content-Type, Authorization")
			}

			w.Header().Set("Access-Control-Expose-Headers", "Retry-After")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestObserver receives one sample per finished request.
type RequestObserver interface {
	ObserveRequest(method, route string, code int, elapsed time.Duration)
}

// RequestLogger logs every request and, when obs is non-nil, records it.
// Requests are labeled with the chi route pattern so ids do not explode
// metric cardinality.
func RequestLogger(log zerolog.Logger, obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			if obs != nil {
				obs.ObserveRequest(r.Method, route, ww.status, elapsed)
			}

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Str("ip", r.RemoteAddr).
				Dur("duration", elapsed).
				Msg("Request processed")
		})
	}
}

// RateLimiter keeps one token bucket per key. A bucket left idle long enough
// to refill completely is indistinguishable from a new one, so such buckets
// are swept instead of accumulating one per key ever seen.
type RateLimiter struct {
	limit rate.Limit
	burst int
	key   func(*http.Request) string
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	limiters  map[string]*keyedLimiter
	lastSweep time.Time
}

type keyedLimiter struct {
	*rate.Limiter
	seen time.Time
}

// NewRateLimiter allows perSecond sustained requests with the given burst for
// each key. A non-positive perSecond disables limiting.
func NewRateLimiter(perSecond float64, burst int, key func(*http.Request) string) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		key:      key,
		now:      time.Now,
		limiters: make(map[string]*keyedLimiter),
	}
	if perSecond > 0 {
		rl.idle = time.Duration(float64(burst) / perSecond * float64(time.Second))
	}
	return rl
}

// URLParamKey keys requests by a chi URL parameter.
func URLParamKey(name string) func(*http.Request) string {
	return func(r *http.Request) string { return chi.URLParam(r, name) }
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idle {
		rl.sweepLocked(now)
	}

	l, ok := rl.limiters[key]
	if !ok {
		l = &keyedLimiter{Limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = l
	}
	l.seen = now
	return l.Limiter
}

// must hold rl.mu
func (rl *RateLimiter) sweepLocked(now time.Time) {
	for k, l := range rl.limiters {
		if now.Sub(l.seen) >= rl.idle {
			delete(rl.limiters, k)
		}
	}
	rl.lastSweep = now
}

// Len reports how many keys currently hold a bucket.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		res := rl.limiter(rl.key(r)).Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			secs := int(delay/time.Second) + 1
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
