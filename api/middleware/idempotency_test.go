package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	str, _ := value.(string)
	f.data[key] = str
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func postWithKey(path, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	return req
}

func TestIdempotencyPassesThroughWithoutKey(t *testing.T) {
	store := newFakeStore()
	var calls int
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, postWithKey("/shopcarts", "", `{"user_id":1}`))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyNilStorePassesThrough(t *testing.T) {
	var calls int
	handler := Idempotency(nil, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/shopcarts", "abc", `{}`))
	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/shopcarts", "abc", `{}`))
	assert.Equal(t, 2, calls)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	var calls int
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Location", "http://example.com/shopcarts/1/items/9")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":9}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, postWithKey("/shopcarts/1/items", "abc", `{"sku":1}`))
	require.Equal(t, http.StatusCreated, first.Code)

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, postWithKey("/shopcarts/1/items", "abc", `{"sku":1}`))
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	assert.Equal(t, "http://example.com/shopcarts/1/items/9", replay.Header().Get("Location"))
	assert.Equal(t, "true", replay.Header().Get(replayHeader))
	assert.Equal(t, `{"id":9}`, strings.TrimSpace(replay.Body.String()))
	assert.Equal(t, 1, calls)

	for _, ttl := range store.ttls {
		assert.Equal(t, time.Hour, ttl)
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/shopcarts", "abc", `{"user_id":1}`))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("/shopcarts", "abc", `{"user_id":2}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestIdempotencyScopesKeyByPath(t *testing.T) {
	store := newFakeStore()
	var calls int
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/shopcarts/1/items", "abc", `{}`))
	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/shopcarts/2/items", "abc", `{}`))
	assert.Equal(t, 2, calls)
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	store := newFakeStore()
	var calls int
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/shopcarts", "abc", `{}`))
	assert.Empty(t, store.data, "claim must be released after a server error")

	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/shopcarts", "abc", `{}`))
	assert.Equal(t, 2, calls)
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner := httptest.NewRecorder()
		Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("duplicate must not reach the handler")
		})).ServeHTTP(inner, postWithKey("/shopcarts", "abc", `{}`))
		assert.Equal(t, http.StatusConflict, inner.Code)
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postWithKey("/shopcarts", "abc", `{}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestIdempotencyIgnoresReads(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/shopcarts", nil)
	req.Header.Set(idempotencyHeader, "abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, store.data)
}
