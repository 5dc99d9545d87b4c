package repositories

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"conciergeapi/src/domain/entities"
	"conciergeapi/src/infra/redis"
)

// CachedEntityRepository decora o EntityRepository com um cache read-through
// no GetByID. Falha de cache nunca sobe: degrada para o PostgreSQL. Escritas
// delegam e invalidam a chave correspondente.
type CachedEntityRepository struct {
	entityRepository *EntityRepository
	redisClient      *redis.RedisClient
}

func NewCachedEntityRepository(
	entityRepository *EntityRepository,
	redisClient *redis.RedisClient,
) *CachedEntityRepository {
	return &CachedEntityRepository{
		entityRepository: entityRepository,
		redisClient:      redisClient,
	}
}

func (r *CachedEntityRepository) cacheKey(id string) string {
	return "entity:" + id
}

func (r *CachedEntityRepository) Create(ctx context.Context, id string, entityType entities.EntityType, doc json.RawMessage) (entities.Entity, error) {
	return r.entityRepository.Create(ctx, id, entityType, doc)
}

func (r *CachedEntityRepository) GetByID(ctx context.Context, id string) (entities.Entity, error) {
	if r.redisClient == nil {
		return r.entityRepository.GetByID(ctx, id)
	}

	key := r.cacheKey(id)

	cached, found, err := r.redisClient.GetKey(ctx, key)
	if err != nil {
		// Log erro de cache mas continua com PostgreSQL
		log.Printf("CachedEntityRepository.GetByID - cache error for key %s: %v", key, err)
	}
	if found && err == nil {
		var entity entities.Entity
		if unmarshalErr := json.Unmarshal([]byte(cached), &entity); unmarshalErr == nil {
			return entity, nil
		}
		log.Printf("CachedEntityRepository.GetByID - corrupted cache entry for key %s, falling back", key)
	}

	entity, err := r.entityRepository.GetByID(ctx, id)
	if err != nil {
		return entities.Entity{}, err
	}

	go func() {
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, marshalErr := json.Marshal(entity)
		if marshalErr != nil {
			return
		}
		if setErr := r.redisClient.SetKey(ctxWithTimeout, key, string(payload)); setErr != nil {
			log.Printf("CachedEntityRepository.GetByID - failed to cache key %s: %v", key, setErr)
		}
	}()

	return entity, nil
}

func (r *CachedEntityRepository) UpdateMerge(ctx context.Context, id string, patch json.RawMessage, expectedVersion int64) (entities.Entity, error) {
	entity, err := r.entityRepository.UpdateMerge(ctx, id, patch, expectedVersion)
	if err != nil {
		return entities.Entity{}, err
	}

	r.invalidate(id)

	return entity, nil
}

func (r *CachedEntityRepository) Delete(ctx context.Context, id string) error {
	if err := r.entityRepository.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(id)

	return nil
}

// Invalidação em background: a escrita já foi confirmada no banco e o TTL
// cobre o caso de falha na remoção.
func (r *CachedEntityRepository) invalidate(id string) {
	if r.redisClient == nil {
		return
	}

	go func() {
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := r.redisClient.DeleteKey(ctxWithTimeout, r.cacheKey(id)); err != nil {
			log.Printf("CachedEntityRepository - failed to invalidate key %s: %v", r.cacheKey(id), err)
		}
	}()
}
