package entities

import (
	"encoding/json"
	"time"
)

// Representa a anotação de um curador sobre uma Entity. A exclusão da
// Entity remove as curadorias em cascata (FK no banco).
type Curation struct {
	ID        string          `json:"id"`
	EntityID  string          `json:"entity_id"`
	Doc       json.RawMessage `json:"doc"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int64           `json:"version"`
}
