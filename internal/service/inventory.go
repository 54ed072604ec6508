package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/kitchen-assistant/backend/internal/types"
)

// DefaultInventoryMessage is used when the model omits a confirmation message
const DefaultInventoryMessage = "Items processed successfully."

// InventoryService filters raw kitchen items down to the usable ones
type InventoryService struct {
	completer Completer
	logger    *zap.Logger
	recorder  Recorder
}

// NewInventoryService creates a new InventoryService instance
func NewInventoryService(completer Completer, logger *zap.Logger, recorder Recorder) *InventoryService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &InventoryService{
		completer: completer,
		logger:    logger,
		recorder:  recorder,
	}
}

// FilterInventory asks the model which items are usable. It never fails:
// when the completion call does, the items are filtered locally and the
// failure is reported in the message.
func (s *InventoryService) FilterInventory(ctx context.Context, items []string) types.InventoryResult {
	result, err := s.requestUsableItems(ctx, items)
	if err != nil {
		s.logger.Warn("inventory completion failed, using local filtering",
			zap.Error(err),
			zap.Int("items", len(items)))
		s.recorder.Fallback("inventory")
		return fallbackInventory(items, err)
	}
	return result
}

func (s *InventoryService) requestUsableItems(ctx context.Context, items []string) (types.InventoryResult, error) {
	prompt, err := buildInventoryPrompt(items)
	if err != nil {
		return types.InventoryResult{}, err
	}

	content, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return types.InventoryResult{}, err
	}

	var payload struct {
		UsableItems []*string `json:"usable_items"`
		Message     *string   `json:"message"`
	}
	if err := decodeCompletion(content, &payload); err != nil {
		return types.InventoryResult{}, err
	}

	usable, err := stringList("usable_items", payload.UsableItems, content)
	if err != nil {
		return types.InventoryResult{}, err
	}

	result := types.InventoryResult{
		UsableItems: usable,
		Message:     DefaultInventoryMessage,
	}
	if payload.Message != nil {
		result.Message = *payload.Message
	}
	return result, nil
}

func buildInventoryPrompt(items []string) (string, error) {
	itemsJSON, err := marshalItems(items)
	if err != nil {
		return "", err
	}
	return "You are a kitchen assistant. Given the JSON array of ingredients:\n" +
		itemsJSON + "\n" +
		"Return a JSON object with:\n" +
		"  usable_items: an array of ingredients that are non-empty and suitable for cooking (remove blank or invalid entries),\n" +
		"  message: a short confirmation string.\n" +
		"Respond ONLY with valid JSON.", nil
}

// fallbackInventory trims every item and drops the blank ones
func fallbackInventory(items []string, cause error) types.InventoryResult {
	usable := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			usable = append(usable, trimmed)
		}
	}
	return types.InventoryResult{
		UsableItems: usable,
		Message:     fmt.Sprintf("Error processing items: %v. Using basic filtering instead.", cause),
		Degraded:    true,
	}
}

func marshalItems(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal items: %w", err)
	}
	return string(data), nil
}
