package test_seeder

import (
	"context"
	"encoding/json"
	"fmt"

	"conciergeapi/src/domain/entities"
)

// InsertEntity inserts an entity document directly, bypassing the repository
func (ts TestSeeder) InsertEntity(ctx context.Context, id string, entityType entities.EntityType, doc json.RawMessage) entities.Entity {
	query := `
		INSERT INTO entities (id, type, doc, created_at, updated_at, version)
		VALUES ($1, $2, $3, now(), now(), 1)
		RETURNING doc, created_at, updated_at`

	entity := entities.Entity{ID: id, Type: entityType, Version: 1}
	err := ts.pool.QueryRow(ctx, query, id, entityType, doc).
		Scan(&entity.Doc, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertEntity failed: %v", err))
	}

	return entity
}

// InsertCuration inserts a curation document directly, bypassing the repository
func (ts TestSeeder) InsertCuration(ctx context.Context, id string, entityID string, doc json.RawMessage) entities.Curation {
	query := `
		INSERT INTO curations (id, entity_id, doc, created_at, updated_at, version)
		VALUES ($1, $2, $3, now(), now(), 1)
		RETURNING doc, created_at, updated_at`

	curation := entities.Curation{ID: id, EntityID: entityID, Version: 1}
	err := ts.pool.QueryRow(ctx, query, id, entityID, doc).
		Scan(&curation.Doc, &curation.CreatedAt, &curation.UpdatedAt)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertCuration failed: %v", err))
	}

	return curation
}
