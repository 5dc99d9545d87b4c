package entities

import (
	"encoding/json"
	"time"
)

type EntityType string

const (
	EntityTypeRestaurant EntityType = "restaurant"
	EntityTypeHotel      EntityType = "hotel"
	EntityTypeAttraction EntityType = "attraction"
	EntityTypeEvent      EntityType = "event"
	EntityTypeUser       EntityType = "user"
	EntityTypeAdmin      EntityType = "admin"
	EntityTypeSystem     EntityType = "system"
)

func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeRestaurant, EntityTypeHotel, EntityTypeAttraction,
		EntityTypeEvent, EntityTypeUser, EntityTypeAdmin, EntityTypeSystem:
		return true
	}
	return false
}

// Representa um assunto curável (restaurante, hotel, atração, evento...).
type Entity struct {
	ID   string     `json:"id"`
	Type EntityType `json:"type"`
	// Usamos json.RawMessage para o corpo do documento, pois permite
	// manter o JSON original sem precisar de uma struct específica,
	// aumentando a flexibilidade.
	Doc       json.RawMessage `json:"doc"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int64           `json:"version"`
}
