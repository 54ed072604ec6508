package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/kitchen-assistant/backend/internal/service"
	"github.com/pageza/kitchen-assistant/backend/internal/types"
)

// AssistantHandler serves the inventory, diet and ask endpoints
type AssistantHandler struct {
	inventory    service.InventoryFilter
	diet         service.DietFilter
	orchestrator service.Orchestrator
}

// NewAssistantHandler creates a new AssistantHandler instance
func NewAssistantHandler(inventory service.InventoryFilter, diet service.DietFilter, orchestrator service.Orchestrator) *AssistantHandler {
	return &AssistantHandler{
		inventory:    inventory,
		diet:         diet,
		orchestrator: orchestrator,
	}
}

// RegisterRoutes registers the assistant routes
func (h *AssistantHandler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/inventory", h.Inventory)
	router.POST("/diet", h.Diet)
	router.POST("/ask", h.Ask)
}

// Inventory filters the posted items down to the usable ones
func (h *AssistantHandler) Inventory(c *gin.Context) {
	var req types.InventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.inventory.FilterInventory(c.Request.Context(), req.Items))
}

// Diet applies the requested diet and suggests recipe ideas
func (h *AssistantHandler) Diet(c *gin.Context) {
	var req types.DietRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	diet, err := types.ParseDiet(req.Diet)
	if err != nil {
		respondInvalidDiet(c, req.Diet)
		return
	}

	result, err := h.diet.FilterDiet(c.Request.Context(), req.Items, diet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing diet: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Ask runs the inventory and diet stages in sequence
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	diet, err := types.ParseDiet(req.Diet)
	if err != nil {
		respondInvalidDiet(c, req.Diet)
		return
	}

	result, err := h.orchestrator.Process(c.Request.Context(), req.Items, diet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing request: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
