package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"conciergeapi/src/domain"
	"conciergeapi/src/domain/entities"
	"conciergeapi/src/infra/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CurationRepository struct {
	pool *pgxpool.Pool
}

func NewCurationRepository(pool *pgxpool.Pool) *CurationRepository {
	return &CurationRepository{pool: pool}
}

// Create rejeita curadoria apontando para entity inexistente: a FK valida a
// integridade referencial no banco, não na aplicação.
func (r *CurationRepository) Create(ctx context.Context, id string, entityID string, doc json.RawMessage) (entities.Curation, error) {
	if err := validateDocument(doc, curationRequiredKeys); err != nil {
		return entities.Curation{}, fmt.Errorf("CurationRepository.Create - %w", err)
	}

	query := `
		INSERT INTO curations (id, entity_id, doc, created_at, updated_at, version)
		VALUES ($1, $2, $3, now(), now(), 1)
		RETURNING doc, created_at, updated_at;
	`

	curation := entities.Curation{ID: id, EntityID: entityID, Version: 1}
	err := r.pool.QueryRow(ctx, query, id, entityID, doc).
		Scan(&curation.Doc, &curation.CreatedAt, &curation.UpdatedAt)
	if err != nil {
		return entities.Curation{}, wrapWriteError("CurationRepository.Create - insert failed", err)
	}

	return curation, nil
}

func (r *CurationRepository) GetByID(ctx context.Context, id string) (entities.Curation, error) {
	query := `
		SELECT id, entity_id, doc, created_at, updated_at, version
		FROM curations
		WHERE id = $1;
	`

	var curation entities.Curation
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&curation.ID, &curation.EntityID, &curation.Doc, &curation.CreatedAt, &curation.UpdatedAt, &curation.Version)
	if err != nil {
		if postgres.IsNoRows(err) {
			return entities.Curation{}, fmt.Errorf("CurationRepository.GetByID - curation '%s': %w", id, domain.ErrNotFound)
		}
		if postgres.IsUnavailable(err) {
			return entities.Curation{}, fmt.Errorf("CurationRepository.GetByID - %v: %w", err, domain.ErrStoreUnavailable)
		}
		return entities.Curation{}, fmt.Errorf("CurationRepository.GetByID - query failed: %w", err)
	}

	return curation, nil
}

func (r *CurationRepository) GetByEntity(ctx context.Context, entityID string) ([]entities.Curation, error) {
	query := `
		SELECT id, entity_id, doc, created_at, updated_at, version
		FROM curations
		WHERE entity_id = $1
		ORDER BY created_at DESC;
	`

	rows, err := r.pool.Query(ctx, query, entityID)
	if err != nil {
		if postgres.IsUnavailable(err) {
			return nil, fmt.Errorf("CurationRepository.GetByEntity - %v: %w", err, domain.ErrStoreUnavailable)
		}
		return nil, fmt.Errorf("CurationRepository.GetByEntity - query failed: %w", err)
	}
	defer rows.Close()

	var curations []entities.Curation
	for rows.Next() {
		var curation entities.Curation
		if err := rows.Scan(&curation.ID, &curation.EntityID, &curation.Doc, &curation.CreatedAt, &curation.UpdatedAt, &curation.Version); err != nil {
			return nil, fmt.Errorf("CurationRepository.GetByEntity - scan failed: %w", err)
		}
		curations = append(curations, curation)
	}

	return curations, rows.Err()
}

func (r *CurationRepository) UpdateMerge(ctx context.Context, id string, patch json.RawMessage, expectedVersion int64) (entities.Curation, error) {
	if err := validatePatch(patch, curationRequiredKeys); err != nil {
		return entities.Curation{}, fmt.Errorf("CurationRepository.UpdateMerge - %w", err)
	}

	query := `
		UPDATE curations
		SET doc = jsonb_merge_patch(doc, $2),
			updated_at = clock_timestamp(),
			version = version + 1
		WHERE id = $1 AND version = $3
		RETURNING id, entity_id, doc, created_at, updated_at, version;
	`

	var curation entities.Curation
	err := r.pool.QueryRow(ctx, query, id, patch, expectedVersion).
		Scan(&curation.ID, &curation.EntityID, &curation.Doc, &curation.CreatedAt, &curation.UpdatedAt, &curation.Version)
	if err != nil {
		if postgres.IsNoRows(err) {
			return entities.Curation{}, fmt.Errorf("CurationRepository.UpdateMerge - curation '%s' with version %d: %w", id, expectedVersion, domain.ErrVersionConflict)
		}
		return entities.Curation{}, wrapWriteError("CurationRepository.UpdateMerge - update failed", err)
	}

	return curation, nil
}

func (r *CurationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM curations WHERE id = $1;`

	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return wrapWriteError("CurationRepository.Delete - delete failed", err)
	}

	return nil
}
