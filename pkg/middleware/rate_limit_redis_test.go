package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisLimitedRouter(t *testing.T, client *redis.Client) *gin.Engine {
	t.Helper()
	r := gin.New()
	// one request per minute-long window keeps the test clear of window edges
	r.Use(RedisRateLimitMiddleware(client, 0.01, 1, time.Minute))
	r.GET("/r", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	return r
}

func serveFrom(r *gin.Engine, addr string) *httptest.ResponseRecorder {
	rq := httptest.NewRequest("GET", "/r", nil)
	rq.RemoteAddr = addr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, rq)
	return w
}

func TestRedisRateLimitMiddleware_FixedWindow(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	r := newRedisLimitedRouter(t, redis.NewClient(&redis.Options{Addr: m.Addr()}))

	require.Equal(t, http.StatusOK, serveFrom(r, "10.1.1.1:1").Code)
	blocked := serveFrom(r, "10.1.1.1:1")
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	require.Equal(t, "60", blocked.Header().Get("Retry-After"))

	// another client has its own window counter
	require.Equal(t, http.StatusOK, serveFrom(r, "10.1.1.2:1").Code)

	// the window keys carry a TTL so redis reclaims them
	keys := m.Keys()
	require.NotEmpty(t, keys)
	require.Greater(t, m.TTL(keys[0]), time.Duration(0))
}

func TestRedisRateLimitMiddleware_RedisDown(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	m.Close()

	r := newRedisLimitedRouter(t, client)
	require.Equal(t, http.StatusInternalServerError, serveFrom(r, "10.1.1.3:1").Code)
}

func TestRedisRateLimitMiddleware_NilClientFallsBack(t *testing.T) {
	r := newRedisLimitedRouter(t, nil)
	require.Equal(t, http.StatusOK, serveFrom(r, "10.1.1.4:1").Code)
	require.Equal(t, http.StatusTooManyRequests, serveFrom(r, "10.1.1.4:1").Code)
}
