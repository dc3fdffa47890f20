package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/adapters"
	"github.com/savings-circle/backend/internal/integration/entrypoint/dto"
	"github.com/savings-circle/backend/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T) (*gin.Engine, func(ttl time.Duration) string) {
	t.Helper()
	clock := testutil.NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	tokens := adapters.NewTokenService("secret", "circle-test", clock)

	r := gin.New()
	r.Use(NewAuthMiddleware(tokens).Authenticate())
	r.GET("/me", func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "email": p.Email})
	})

	sign := func(ttl time.Duration) string {
		token, err := tokens.GenerateAccessToken(context.Background(), testutil.Principal("alice"), ttl)
		require.NoError(t, err)
		return token
	}
	return r, sign
}

func TestAuthenticate(t *testing.T) {
	r, sign := newAuthRouter(t)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   domainerror.AuthErrorCode
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeMissingToken},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeInvalidToken},
		{name: "empty bearer", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeMissingToken},
		{name: "garbage token", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeInvalidToken},
		{name: "expired token", header: "Bearer " + sign(-time.Minute), wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeExpiredToken},
		{name: "valid token", header: "Bearer " + sign(time.Hour), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				var body dto.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, string(tt.wantCode), body.Code)
				return
			}
			assert.Contains(t, w.Body.String(), `"user_id":"alice"`)
			assert.Contains(t, w.Body.String(), `"email":"alice@example.com"`)
		})
	}
}

type countingObserver struct {
	limited  int
	requests int
}

func (o *countingObserver) ObserveRateLimited() { o.limited++ }

func (o *countingObserver) ObserveRequest(string, string, int, time.Duration) { o.requests++ }

func hit(r *gin.Engine, n int) []int {
	codes := make([]int, 0, n)
	for i := 0; i < n; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	return codes
}

func pingRouter(limiter *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRateLimiter_Memory(t *testing.T) {
	obs := &countingObserver{}
	limiter := NewRateLimiterWithConfig(2, time.Minute, nil, obs)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	r := pingRouter(limiter)

	assert.Equal(t, []int{204, 204, 429}, hit(r, 3))
	assert.Equal(t, 1, obs.limited)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, []int{204}, hit(r, 1))

	now = now.Add(2 * time.Minute)
	limiter.Cleanup()
	assert.Empty(t, limiter.entries)
}

func TestRateLimiter_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRateLimiterWithConfig(2, time.Minute, client, nil)
	r := pingRouter(limiter)

	assert.Equal(t, []int{204, 204, 429}, hit(r, 3))
	assert.Empty(t, limiter.entries, "counters must live in redis")

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], redisKeyPrefix+"ip:")
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestRateLimiter_FallsBackWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	limiter := NewRateLimiterWithConfig(1, time.Minute, client, nil)
	r := pingRouter(limiter)

	assert.Equal(t, []int{204, 429}, hit(r, 2))
	assert.Len(t, limiter.entries, 1)
}

func TestRequestLogger(t *testing.T) {
	obs := &countingObserver{}
	r := gin.New()
	r.Use(RequestLogger(obs))
	r.GET("/groups/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/groups/123", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, 1, obs.requests)

	req := httptest.NewRequest(http.MethodGet, "/groups/123", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
