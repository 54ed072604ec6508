package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pageza/kitchen-assistant/backend/internal/types"
)

// Completer sends a prompt to a completion provider and returns the JSON
// document the model produced.
type Completer interface {
	Complete(ctx context.Context, prompt string) (json.RawMessage, error)
}

// InventoryFilter removes unusable entries from a raw item list
type InventoryFilter interface {
	FilterInventory(ctx context.Context, items []string) types.InventoryResult
}

// DietFilter selects diet-compatible items and suggests recipe ideas
type DietFilter interface {
	FilterDiet(ctx context.Context, items []string, diet types.Diet) (types.DietResult, error)
}

// Orchestrator runs both filters for one request
type Orchestrator interface {
	Process(ctx context.Context, items []string, diet types.Diet) (types.AskResult, error)
}

// Recorder receives operational events from the services. It is satisfied
// by monitoring.MetricsCollector.
type Recorder interface {
	CompletionRequest(outcome string, duration time.Duration)
	Fallback(stage string)
	CacheLookup(hit bool)
}

// NopRecorder discards every event
type NopRecorder struct{}

func (NopRecorder) CompletionRequest(string, time.Duration) {}
func (NopRecorder) Fallback(string)                         {}
func (NopRecorder) CacheLookup(bool)                        {}
