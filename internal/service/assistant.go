package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pageza/kitchen-assistant/backend/internal/types"
)

// AssistantService runs the inventory stage and then the diet stage on its
// output, merging both into one answer.
type AssistantService struct {
	inventory InventoryFilter
	diet      DietFilter
	logger    *zap.Logger
}

// NewAssistantService creates a new AssistantService instance
func NewAssistantService(inventory InventoryFilter, diet DietFilter, logger *zap.Logger) *AssistantService {
	return &AssistantService{
		inventory: inventory,
		diet:      diet,
		logger:    logger,
	}
}

// Process filters items, applies diet to the usable ones and merges the
// results. The inventory message is dropped.
func (s *AssistantService) Process(ctx context.Context, items []string, diet types.Diet) (types.AskResult, error) {
	if !diet.Valid() {
		return types.AskResult{}, fmt.Errorf("%w: %q", ErrInvalidDiet, diet)
	}

	inventory := s.inventory.FilterInventory(ctx, items)

	dietResult, err := s.diet.FilterDiet(ctx, inventory.UsableItems, diet)
	if err != nil {
		return types.AskResult{}, fmt.Errorf("diet stage: %w", err)
	}

	s.logger.Debug("processed ask request",
		zap.String("diet", diet.String()),
		zap.Int("items", len(items)),
		zap.Int("usable", len(inventory.UsableItems)),
		zap.Int("compatible", len(dietResult.CompatibleItems)),
		zap.Bool("inventory_degraded", inventory.Degraded),
		zap.Bool("diet_degraded", dietResult.Degraded))

	return types.AskResult{
		UsableItems:  inventory.UsableItems,
		DietFiltered: dietResult.CompatibleItems,
		Suggestions:  dietResult.RecipeIdeas,
	}, nil
}
