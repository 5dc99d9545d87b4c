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

type EntityRepository struct {
	pool *pgxpool.Pool
}

func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

func (r *EntityRepository) Create(ctx context.Context, id string, entityType entities.EntityType, doc json.RawMessage) (entities.Entity, error) {
	if err := validateDocument(doc, entityRequiredKeys); err != nil {
		return entities.Entity{}, fmt.Errorf("EntityRepository.Create - %w", err)
	}

	query := `
		INSERT INTO entities (id, type, doc, created_at, updated_at, version)
		VALUES ($1, $2, $3, now(), now(), 1)
		RETURNING doc, created_at, updated_at;
	`

	entity := entities.Entity{ID: id, Type: entityType, Version: 1}
	err := r.pool.QueryRow(ctx, query, id, entityType, doc).
		Scan(&entity.Doc, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return entities.Entity{}, wrapWriteError("EntityRepository.Create - insert failed", err)
	}

	return entity, nil
}

func (r *EntityRepository) GetByID(ctx context.Context, id string) (entities.Entity, error) {
	query := `
		SELECT id, type, doc, created_at, updated_at, version
		FROM entities
		WHERE id = $1;
	`

	var entity entities.Entity
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&entity.ID, &entity.Type, &entity.Doc, &entity.CreatedAt, &entity.UpdatedAt, &entity.Version)
	if err != nil {
		if postgres.IsNoRows(err) {
			return entities.Entity{}, fmt.Errorf("EntityRepository.GetByID - entity '%s': %w", id, domain.ErrNotFound)
		}
		if postgres.IsUnavailable(err) {
			return entities.Entity{}, fmt.Errorf("EntityRepository.GetByID - %v: %w", err, domain.ErrStoreUnavailable)
		}
		return entities.Entity{}, fmt.Errorf("EntityRepository.GetByID - query failed: %w", err)
	}

	return entity, nil
}

// UpdateMerge aplica o merge patch e o incremento de versão em um único
// UPDATE condicional: o check de versão e a mutação são atômicos, sem janela
// de lost update. Zero linhas afetadas significa versão defasada (ou linha
// inexistente) e nada é alterado.
func (r *EntityRepository) UpdateMerge(ctx context.Context, id string, patch json.RawMessage, expectedVersion int64) (entities.Entity, error) {
	if err := validatePatch(patch, entityRequiredKeys); err != nil {
		return entities.Entity{}, fmt.Errorf("EntityRepository.UpdateMerge - %w", err)
	}

	query := `
		UPDATE entities
		SET doc = jsonb_merge_patch(doc, $2),
			updated_at = clock_timestamp(),
			version = version + 1
		WHERE id = $1 AND version = $3
		RETURNING id, type, doc, created_at, updated_at, version;
	`

	var entity entities.Entity
	err := r.pool.QueryRow(ctx, query, id, patch, expectedVersion).
		Scan(&entity.ID, &entity.Type, &entity.Doc, &entity.CreatedAt, &entity.UpdatedAt, &entity.Version)
	if err != nil {
		if postgres.IsNoRows(err) {
			return entities.Entity{}, fmt.Errorf("EntityRepository.UpdateMerge - entity '%s' with version %d: %w", id, expectedVersion, domain.ErrVersionConflict)
		}
		return entities.Entity{}, wrapWriteError("EntityRepository.UpdateMerge - update failed", err)
	}

	return entity, nil
}

// Delete é idempotente: remover uma entity ausente não é erro. As curations
// dependentes caem junto pelo ON DELETE CASCADE, em um único statement.
func (r *EntityRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM entities WHERE id = $1;`

	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return wrapWriteError("EntityRepository.Delete - delete failed", err)
	}

	return nil
}
