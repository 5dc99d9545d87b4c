package test_seeder

import (
	"context"

	"conciergeapi/src/domain/entities"
)

func (ts TestSeeder) SelectEntityByID(ctx context.Context, id string) (entities.Entity, bool) {
	query := `SELECT id, type, doc, created_at, updated_at, version
			  FROM entities WHERE id = $1`

	var entity entities.Entity
	err := ts.pool.QueryRow(ctx, query, id).
		Scan(&entity.ID, &entity.Type, &entity.Doc, &entity.CreatedAt, &entity.UpdatedAt, &entity.Version)
	if err != nil {
		return entities.Entity{}, false
	}

	return entity, true
}

func (ts TestSeeder) SelectCurationsByEntityID(ctx context.Context, entityID string) []entities.Curation {
	query := `SELECT id, entity_id, doc, created_at, updated_at, version
			  FROM curations WHERE entity_id = $1 ORDER BY id`

	rows, err := ts.pool.Query(ctx, query, entityID)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var curations []entities.Curation
	for rows.Next() {
		var curation entities.Curation
		if err := rows.Scan(&curation.ID, &curation.EntityID, &curation.Doc, &curation.CreatedAt, &curation.UpdatedAt, &curation.Version); err != nil {
			return nil
		}
		curations = append(curations, curation)
	}

	return curations
}
