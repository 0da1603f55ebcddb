package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newIPLimiter(r rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
	}
}

func (ipl *ipLimiter) get(ip string) *rate.Limiter {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	l, ok := ipl.limiters[ip]
	if !ok {
		l = rate.NewLimiter(ipl.rate, ipl.burst)
		ipl.limiters[ip] = l
	}
	return l
}

// RateLimit limits requests per client IP. Used on the public intake
// endpoints to keep bulk submission from hammering storage and SMTP.
func RateLimit(r rate.Limit, burst int) func(http.Handler) http.Handler {
	il := newIPLimiter(r, burst)
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !il.get(ip).Allow() {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			h.ServeHTTP(w, r)
		})
	}
}
