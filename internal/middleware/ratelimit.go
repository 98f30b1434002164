package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter — внешний ограничитель частоты запросов. Движок заметок от него не зависит.
type Limiter interface {
	Allow(clientID string) bool
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter — token bucket из x/time/rate на каждого клиента:
// limit запросов сразу, далее пополнение до limit за period.
// В распределённой установке его заменяет реализация Limiter поверх общего хранилища.
type ClientLimiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	clients map[string]*clientBucket
	now     func() time.Time
}

// сколько клиентов держим, прежде чем выбрасывать простаивающих
const sweepThreshold = 10000

// NewClientLimiter разрешает limit запросов за period на клиента.
func NewClientLimiter(limit int, period time.Duration) *ClientLimiter {
	if limit < 1 {
		limit = 1
	}
	return &ClientLimiter{
		limit:   limit,
		period:  period,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (l *ClientLimiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.clients[clientID]
	if !ok {
		if len(l.clients) >= sweepThreshold {
			l.sweep(now)
		}
		every := l.period / time.Duration(l.limit)
		b = &clientBucket{limiter: rate.NewLimiter(rate.Every(every), l.limit)}
		l.clients[clientID] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// sweep удаляет клиентов, чьё ведро за period успело наполниться заново.
func (l *ClientLimiter) sweep(now time.Time) {
	for id, b := range l.clients {
		if now.Sub(b.lastSeen) > l.period {
			delete(l.clients, id)
		}
	}
}

// ClientID извлекает адрес клиента: X-Forwarded-For (первый адрес), X-Real-IP, RemoteAddr.
// Заголовки задаёт тот, кто стоит перед сервером, поэтому им можно верить
// только за доверенным прокси; иначе используйте RemoteClientID.
func ClientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return strings.TrimSpace(xr)
	}
	return RemoteClientID(r)
}

// RemoteClientID — адрес TCP-соединения, заголовки прокси игнорируются.
func RemoteClientID(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// WithRateLimit отвечает 429, если Limiter не пропускает клиента. nil — без ограничений.
// trustProxy=false — ключом служит только RemoteAddr.
func WithRateLimit(l Limiter, trustProxy bool) func(http.Handler) http.Handler {
	clientID := RemoteClientID
	if trustProxy {
		clientID = ClientID
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l != nil {
				if id := clientID(r); !l.Allow(id) {
					log.Warnw("Rate limit exceeded", "client", id, "path", r.URL.Path)
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("Retry-After", "60")
					w.WriteHeader(http.StatusTooManyRequests)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests"})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
