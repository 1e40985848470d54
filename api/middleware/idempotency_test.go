package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{entries: map[string]string{}}
}

func (s *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = value.(string)
	return true, nil
}

func (s *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "arepabuelas:idempotency:" + scope + ":" + id
}

func (s *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

func paymentRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()

	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"reference":"AR-AB12CD34"}}`))
	}))

	body := `{"email":"maria@example.com"}`

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, paymentRequest("key-1", body))
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, 1, calls)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, paymentRequest("key-1", body))
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, "application/json", second.Header().Get("Content-Type"))
	require.Equal(t, 1, calls, "second request must not reach the handler")
}

func TestIdempotencyMissingKey(t *testing.T) {
	handler := Idempotency(newMemoryIdempotencyStore(), time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, paymentRequest("", `{}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdempotencyKeyReusedWithDifferentBody(t *testing.T) {
	store := newMemoryIdempotencyStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, paymentRequest("key-2", `{"card_number":"1111222233334444"}`))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, paymentRequest("key-2", `{"card_number":"5555666677778888"}`))
	require.Equal(t, http.StatusConflict, second.Code)
	require.Contains(t, second.Body.String(), "IDEMPOTENCY_KEY_REUSED")
}

func TestIdempotencyScopedPerUser(t *testing.T) {
	store := newMemoryIdempotencyStore()

	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	body := `{"email":"x@example.com"}`

	reqA := paymentRequest("shared-key", body)
	reqA = reqA.WithContext(WithIdentity(reqA.Context(), "user-a", "a@example.com", "customer"))
	handler.ServeHTTP(httptest.NewRecorder(), reqA)

	reqB := paymentRequest("shared-key", body)
	reqB = reqB.WithContext(WithIdentity(reqB.Context(), "user-b", "b@example.com", "customer"))
	handler.ServeHTTP(httptest.NewRecorder(), reqB)

	require.Equal(t, 2, calls, "the same key from different users must not collide")
}

func TestIdempotencySkipsUnmatchedRoutes(t *testing.T) {
	calls := 0
	handler := Idempotency(newMemoryIdempotencyStore(), time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, calls)
}

// Mounts the middleware with Use on a chi route group, the same shape the
// API router uses. At group-middleware time chi only knows the group
// wildcard, so rule matching must work from the URL path.
func TestIdempotencyMountedOnRouteGroup(t *testing.T) {
	store := newMemoryIdempotencyStore()

	calls := 0
	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(Idempotency(store, time.Hour, nil))
		r.Post("/payments", func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data":{"reference":"AR-AB12CD34"}}`))
		})
	})

	body := `{"email":"maria@example.com"}`

	t.Run("missing key rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, paymentRequest("", body))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, 0, calls, "handler must not run without a key")
	})

	t.Run("replay on repeated key", func(t *testing.T) {
		first := httptest.NewRecorder()
		router.ServeHTTP(first, paymentRequest("group-key", body))
		require.Equal(t, http.StatusCreated, first.Code)
		require.Equal(t, 1, calls)

		second := httptest.NewRecorder()
		router.ServeHTTP(second, paymentRequest("group-key", body))
		require.Equal(t, http.StatusCreated, second.Code)
		require.Equal(t, first.Body.String(), second.Body.String())
		require.Equal(t, 1, calls, "second request must be served from the store")
	})
}

func TestIdempotencyHandlerStillSeesBody(t *testing.T) {
	store := newMemoryIdempotencyStore()

	var seen string
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 1024)
		n, _ := r.Body.Read(buf)
		seen = string(buf[:n])
		w.WriteHeader(http.StatusCreated)
	}))

	body := `{"email":"maria@example.com"}`
	handler.ServeHTTP(httptest.NewRecorder(), paymentRequest("key-3", body))
	require.Equal(t, body, seen)
}
