package types

// InventoryRequest represents the request body for POST /inventory
type InventoryRequest struct {
	Items []string `json:"items" binding:"required"`
}

// DietRequest represents the request body for POST /diet
type DietRequest struct {
	Items []string `json:"items" binding:"required"`
	Diet  string   `json:"diet" binding:"required,diet"`
}

// AskRequest represents the request body for POST /ask
type AskRequest struct {
	Items []string `json:"items" binding:"required"`
	Diet  string   `json:"diet" binding:"required,diet"`
}
