package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	limiterIdleExpiration = 10 * time.Minute
	limiterCleanup        = 15 * time.Minute
)

// RateLimiter はクライアントごとのトークンバケットを管理するのだ。
// しばらくアクセスの無いクライアントのバケットはキャッシュの期限切れで自然に消えるのだ。
type RateLimiter struct {
	mu         sync.Mutex
	limiters   *cache.Cache
	interval   time.Duration
	burst      int
	trustProxy bool // true のときだけ X-Forwarded-For をクライアントの識別に使うのだ
}

// NewRateLimiter は interval ごとに1トークン補充され、最大 burst 個まで貯まるリミッターを生成します。
// trustProxy は信頼できるリバースプロキシの背後で動くときだけ true にするのだ。
func NewRateLimiter(interval time.Duration, burst int, trustProxy bool) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters:   cache.New(limiterIdleExpiration, limiterCleanup),
		interval:   interval,
		burst:      burst,
		trustProxy: trustProxy,
	}
}

// Allow はクライアントのリクエストを通してよいかを返すのだ。
func (rl *RateLimiter) Allow(client string) bool {
	return rl.limiterFor(client).Allow()
}

// RetryAfter はトークンが1つ補充されるまでの秒数（切り上げ）なのだ。
func (rl *RateLimiter) RetryAfter() int {
	return int(math.Ceil(rl.interval.Seconds()))
}

func (rl *RateLimiter) limiterFor(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.limiters.Get(client); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			// アクセスがある限り期限を延ばすのだ
			rl.limiters.Set(client, lim, cache.DefaultExpiration)
			return lim
		}
	}

	lim := rate.NewLimiter(rate.Every(rl.interval), rl.burst)
	rl.limiters.Set(client, lim, cache.DefaultExpiration)
	return lim
}

// RateLimitMiddleware はリミットを超えたリクエストに 429 を返すのだ。rl が nil なら素通しなのだ。
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	if rl == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r, rl.trustProxy)) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter()))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

// clientIP は接続元アドレスを返すのだ。trustProxy のときだけ X-Forwarded-For の先頭を優先するのだ。
// ヘッダーはクライアントが自由に書けるので、プロキシが上書きしてくれる環境でしか信用できないのだ。
func clientIP(r *http.Request, trustProxy bool) string {
	if xff := r.Header.Get("X-Forwarded-For"); trustProxy && xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
