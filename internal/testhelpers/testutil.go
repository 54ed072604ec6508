package testhelpers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// CompletionEnvelope wraps model content the way the provider does
func CompletionEnvelope(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

// CapturedRequest is one request received by a CompletionServer
type CapturedRequest struct {
	Authorization string
	Body          map[string]any
}

// CompletionServer is a fake completion provider
type CompletionServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []CapturedRequest
}

// Requests returns the requests received so far
func (s *CompletionServer) Requests() []CapturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CapturedRequest(nil), s.requests...)
}

// NewCompletionServer starts a fake provider. respond receives the prompt
// of each request and returns the status code and raw body to send.
func NewCompletionServer(t *testing.T, respond func(prompt string) (int, string)) *CompletionServer {
	t.Helper()
	s := &CompletionServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, CapturedRequest{Authorization: r.Header.Get("Authorization"), Body: body})
		s.mu.Unlock()

		prompt := ""
		if msgs, ok := body["messages"].([]any); ok && len(msgs) > 0 {
			if msg, ok := msgs[0].(map[string]any); ok {
				prompt, _ = msg["content"].(string)
			}
		}

		status, resp := respond(prompt)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, resp)
	}))
	t.Cleanup(s.Close)
	return s
}

// UnreachableURL returns the URL of a server that has already shut down
func UnreachableURL(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()
	return url
}

// SetupTestRedis starts a Redis container and returns a connected client.
// The test is skipped when Docker is not available or -short is set.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping Redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("6379/tcp"),
				wait.ForLog("Ready to accept connections"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Skipping Redis container test: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}
