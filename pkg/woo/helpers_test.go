package woo

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordedRequest — то, что увидел mock сервер.
type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Body     []byte
	Header   http.Header
	User     string
	Pass     string
	HasAuth  bool
}

// mockShop — httptest сервер, записывающий все запросы.
type mockShop struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

// newMockShop поднимает сервер. handler получает номер запроса (с 1).
func newMockShop(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, n int)) *mockShop {
	t.Helper()

	shop := &mockShop{}
	shop.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		user, pass, ok := r.BasicAuth()

		shop.mu.Lock()
		shop.requests = append(shop.requests, recordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Body:     body,
			Header:   r.Header.Clone(),
			User:     user,
			Pass:     pass,
			HasAuth:  ok,
		})
		n := len(shop.requests)
		shop.mu.Unlock()

		handler(w, r, n)
	}))
	t.Cleanup(shop.Close)

	return shop
}

func (s *mockShop) Requests() []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedRequest(nil), s.requests...)
}

func (s *mockShop) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// noticeRecorder собирает диагностические сообщения клиента.
type noticeRecorder struct {
	mu      sync.Mutex
	notices []map[string]any
}

func (r *noticeRecorder) Warn(msg string, keyvals ...any) {
	entry := map[string]any{"msg": msg}
	for i := 0; i+1 < len(keyvals); i += 2 {
		entry[keyvals[i].(string)] = keyvals[i+1]
	}
	r.mu.Lock()
	r.notices = append(r.notices, entry)
	r.mu.Unlock()
}

func (r *noticeRecorder) All() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]any(nil), r.notices...)
}

var silent = LoggerFunc(func(string, ...any) {})

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	c, err := New(baseURL, "ck_test", "cs_test", append([]Option{WithLogger(silent)}, opts...)...)
	require.NoError(t, err)
	return c
}

// httpClientFunc позволяет подменить транспорт функцией.
type httpClientFunc func(*http.Request) (*http.Response, error)

func (f httpClientFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }
