package testhelpers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/kitchen-assistant/backend/internal/types"
)

// MockCompleter is a mock implementation of service.Completer
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string) (json.RawMessage, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	switch v := args.Get(0).(type) {
	case string:
		return json.RawMessage(v), args.Error(1)
	default:
		return v.(json.RawMessage), args.Error(1)
	}
}

// MockInventoryFilter is a mock implementation of service.InventoryFilter
type MockInventoryFilter struct {
	mock.Mock
}

func (m *MockInventoryFilter) FilterInventory(ctx context.Context, items []string) types.InventoryResult {
	args := m.Called(ctx, items)
	return args.Get(0).(types.InventoryResult)
}

// MockDietFilter is a mock implementation of service.DietFilter
type MockDietFilter struct {
	mock.Mock
}

func (m *MockDietFilter) FilterDiet(ctx context.Context, items []string, diet types.Diet) (types.DietResult, error) {
	args := m.Called(ctx, items, diet)
	return args.Get(0).(types.DietResult), args.Error(1)
}

// MockOrchestrator is a mock implementation of service.Orchestrator
type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) Process(ctx context.Context, items []string, diet types.Diet) (types.AskResult, error) {
	args := m.Called(ctx, items, diet)
	return args.Get(0).(types.AskResult), args.Error(1)
}

// RecordingRecorder keeps every event it receives
type RecordingRecorder struct {
	mu          sync.Mutex
	Outcomes    []string
	Fallbacks   []string
	CacheHits   int
	CacheMisses int
}

func (r *RecordingRecorder) CompletionRequest(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outcomes = append(r.Outcomes, outcome)
}

func (r *RecordingRecorder) Fallback(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Fallbacks = append(r.Fallbacks, stage)
}

func (r *RecordingRecorder) CacheLookup(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.CacheHits++
	} else {
		r.CacheMisses++
	}
}
