package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/kitchen-assistant/backend/internal/types"
)

// ErrInvalidDiet is returned when a diet label outside types.ValidDiets
// reaches a service. Handlers validate first, so this indicates a bug.
var ErrInvalidDiet = errors.New("invalid diet")

// nonVeganTokens are matched as substrings of the lower-cased item
var nonVeganTokens = []string{"meat", "chicken", "beef", "pork", "fish", "egg", "milk", "cheese", "butter", "cream"}

// DietService applies a diet to an item list and suggests recipe ideas
type DietService struct {
	completer Completer
	logger    *zap.Logger
	recorder  Recorder
}

// NewDietService creates a new DietService instance
func NewDietService(completer Completer, logger *zap.Logger, recorder Recorder) *DietService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &DietService{
		completer: completer,
		logger:    logger,
		recorder:  recorder,
	}
}

// FilterDiet returns the diet-compatible items and exactly
// types.RecipeIdeaCount recipe ideas. Completion failures degrade to a
// local result; the only error is an invalid diet.
func (s *DietService) FilterDiet(ctx context.Context, items []string, diet types.Diet) (types.DietResult, error) {
	if !diet.Valid() {
		return types.DietResult{}, fmt.Errorf("%w: %q", ErrInvalidDiet, diet)
	}

	result, err := s.requestCompatibleItems(ctx, items, diet)
	if err != nil {
		s.logger.Warn("diet completion failed, using local filtering",
			zap.Error(err),
			zap.String("diet", diet.String()),
			zap.Int("items", len(items)))
		s.recorder.Fallback("diet")
		return FallbackDiet(items, diet), nil
	}
	return result, nil
}

func (s *DietService) requestCompatibleItems(ctx context.Context, items []string, diet types.Diet) (types.DietResult, error) {
	prompt, err := buildDietPrompt(items, diet)
	if err != nil {
		return types.DietResult{}, err
	}

	content, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return types.DietResult{}, err
	}

	var payload struct {
		CompatibleItems []*string `json:"compatible_items"`
		RecipeIdeas     []*string `json:"suggested_recipe_ideas"`
	}
	if err := decodeCompletion(content, &payload); err != nil {
		return types.DietResult{}, err
	}

	compatible, err := stringList("compatible_items", payload.CompatibleItems, content)
	if err != nil {
		return types.DietResult{}, err
	}
	ideas, err := stringList("suggested_recipe_ideas", payload.RecipeIdeas, content)
	if err != nil {
		return types.DietResult{}, err
	}

	return types.DietResult{
		CompatibleItems: compatible,
		RecipeIdeas:     NormalizeRecipeIdeas(ideas, compatible, diet),
	}, nil
}

func buildDietPrompt(items []string, diet types.Diet) (string, error) {
	itemsJSON, err := marshalItems(items)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("You are a nutritionist and cooking expert. Given the JSON array of ingredients:\n"+
		"%s\n"+
		"And the dietary preference: %s\n\n"+
		"Return a JSON object with:\n"+
		"  compatible_items: an array of ingredients that are compatible with the %s diet,\n"+
		"  suggested_recipe_ideas: an array with EXACTLY %d recipe ideas that can be made using the compatible ingredients and follow the %s diet.\n"+
		"Recipes should be short titles, not detailed descriptions.\n"+
		"Respond ONLY with valid JSON.",
		itemsJSON, diet, diet, types.RecipeIdeaCount, diet), nil
}

// NormalizeRecipeIdeas returns exactly types.RecipeIdeaCount ideas: extra
// ideas are dropped, missing ones are filled with a title built from the
// first two compatible items. The input slice is never modified.
func NormalizeRecipeIdeas(ideas, compatibleItems []string, diet types.Diet) []string {
	normalized := make([]string, 0, types.RecipeIdeaCount)
	for _, idea := range ideas {
		if len(normalized) == types.RecipeIdeaCount {
			break
		}
		normalized = append(normalized, idea)
	}

	if len(normalized) < types.RecipeIdeaCount {
		lead := compatibleItems
		if len(lead) > 2 {
			lead = lead[:2]
		}
		filler := fmt.Sprintf("Simple %s Dish with %s", diet.DisplayName(), strings.Join(lead, ", "))
		for len(normalized) < types.RecipeIdeaCount {
			normalized = append(normalized, filler)
		}
	}
	return normalized
}

// FallbackDiet computes a result without the completion provider. Only the
// vegan diet filters anything; other diets pass the items through.
func FallbackDiet(items []string, diet types.Diet) types.DietResult {
	compatible := make([]string, 0, len(items))
	for _, item := range items {
		if diet == types.DietVegan && containsNonVegan(item) {
			continue
		}
		compatible = append(compatible, item)
	}

	subject := "ingredients"
	if len(compatible) > 0 {
		subject = compatible[0]
	}
	ideas := make([]string, types.RecipeIdeaCount)
	for i := range ideas {
		ideas[i] = fmt.Sprintf("%s Recipe %d with %s", diet.DisplayName(), i+1, subject)
	}

	return types.DietResult{
		CompatibleItems: compatible,
		RecipeIdeas:     ideas,
		Degraded:        true,
	}
}

func containsNonVegan(item string) bool {
	lower := strings.ToLower(item)
	for _, token := range nonVeganTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
