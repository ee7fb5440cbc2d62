package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLimiterStore struct {
	counts map[string]int64
	err    error
	scopes []string
}

func (s *stubLimiterStore) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if s.err != nil {
		return false, 0, s.err
	}
	if s.counts == nil {
		s.counts = make(map[string]int64)
	}
	s.counts[scope]++
	s.scopes = append(s.scopes, scope)
	return s.counts[scope] <= limit, s.counts[scope], nil
}

func TestRateLimitAllowsUnderLimit(t *testing.T) {
	store := &stubLimiterStore{}
	policy := NewRateLimitPolicy("cart_mutations", time.Minute, 2)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest("POST", "/cart/items", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	require.Len(t, store.scopes, 1)
	assert.Equal(t, "cart_mutations:ip:203.0.113.9", store.scopes[0])
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	store := &stubLimiterStore{}
	policy := NewRateLimitPolicy("cart_mutations", time.Minute, 1)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest("POST", "/cart/items", nil)
	r.RemoteAddr = "203.0.113.9:51234"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := &stubLimiterStore{}
	handler := RateLimit(NewRateLimitPolicy("cart_mutations", 0, 0), store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/cart/items", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.scopes)
}

func TestRateLimitNilStorePassesThrough(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("cart_mutations", time.Minute, 1), nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/cart/items", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitStoreFailure(t *testing.T) {
	store := &stubLimiterStore{err: errors.New("connection refused")}
	handler := RateLimit(NewRateLimitPolicy("cart_mutations", time.Minute, 1), store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/cart/items", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
