package documents

import (
	"context"
	"encoding/json"
	"fmt"

	"conciergeapi/src/domain"
	"conciergeapi/src/domain/entities"
	"conciergeapi/src/services/events"
)

// CreateEntity insere um novo documento com version = 1. O id vem do
// chamador e é imutável, assim como o type.
func (s *DocumentService) CreateEntity(ctx context.Context, id string, entityType entities.EntityType, doc json.RawMessage) (entities.Entity, error) {
	if id == "" {
		return entities.Entity{}, fmt.Errorf("DocumentService.CreateEntity - entity id is required: %w", domain.ErrInvalidDocument)
	}
	if !entityType.IsValid() {
		return entities.Entity{}, fmt.Errorf("DocumentService.CreateEntity - unknown entity type '%s': %w", entityType, domain.ErrInvalidDocument)
	}

	entity, err := s.entityRepository.Create(ctx, id, entityType, doc)
	if err != nil {
		return entities.Entity{}, fmt.Errorf("DocumentService.CreateEntity - %w", err)
	}

	go s.eventPublisher.Publish(events.EventEntityCreated, entity.ID, "", string(entity.Type), entity.Version)

	return entity, nil
}

func (s *DocumentService) GetEntityByID(ctx context.Context, id string) (entities.Entity, error) {
	entity, err := s.entityRepository.GetByID(ctx, id)
	if err != nil {
		return entities.Entity{}, fmt.Errorf("DocumentService.GetEntityByID - %w", err)
	}

	return entity, nil
}

// UpdateEntity aplica um merge patch condicionado à versão esperada. Conflito
// de versão sobe para o chamador decidir; nunca há retry automático aqui.
func (s *DocumentService) UpdateEntity(ctx context.Context, id string, patch json.RawMessage, expectedVersion int64) (entities.Entity, error) {
	if expectedVersion < 1 {
		return entities.Entity{}, fmt.Errorf("DocumentService.UpdateEntity - expected version must be positive: %w", domain.ErrVersionConflict)
	}

	entity, err := s.entityRepository.UpdateMerge(ctx, id, patch, expectedVersion)
	if err != nil {
		return entities.Entity{}, fmt.Errorf("DocumentService.UpdateEntity - %w", err)
	}

	go s.eventPublisher.Publish(events.EventEntityUpdated, entity.ID, "", string(entity.Type), entity.Version)

	return entity, nil
}

func (s *DocumentService) DeleteEntity(ctx context.Context, id string) error {
	if err := s.entityRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("DocumentService.DeleteEntity - %w", err)
	}

	go s.eventPublisher.Publish(events.EventEntityDeleted, id, "", "", 0)

	return nil
}

// ListEntitiesByType é uma invocação pré-moldada do compilador de consultas,
// não uma primitiva separada.
func (s *DocumentService) ListEntitiesByType(ctx context.Context, entityType entities.EntityType, limit int, offset int) ([]entities.Entity, error) {
	request := domain.QueryRequest{
		From: domain.EntityDocuments,
		Filters: []domain.QueryFilter{
			{Path: "type", Operator: domain.OperatorEq, Value: string(entityType)},
		},
		Sort:   &domain.QuerySort{Path: "updated_at", Direction: domain.SortDesc},
		Limit:  limit,
		Offset: offset,
	}

	records, err := s.documentQueryRepository.Execute(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("DocumentService.ListEntitiesByType - %w", err)
	}

	list := make([]entities.Entity, 0, len(records))
	for _, record := range records {
		list = append(list, recordToEntity(record))
	}

	return list, nil
}

// SearchEntitiesByName usa o índice funcional LOWER(doc->>'name').
func (s *DocumentService) SearchEntitiesByName(ctx context.Context, namePattern string, limit int) ([]entities.Entity, error) {
	request := domain.QueryRequest{
		From: domain.EntityDocuments,
		Filters: []domain.QueryFilter{
			{Path: "$.name", Operator: domain.OperatorLike, Value: namePattern},
		},
		Sort:  &domain.QuerySort{Path: "$.name", Direction: domain.SortAsc},
		Limit: limit,
	}

	records, err := s.documentQueryRepository.Execute(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("DocumentService.SearchEntitiesByName - %w", err)
	}

	list := make([]entities.Entity, 0, len(records))
	for _, record := range records {
		list = append(list, recordToEntity(record))
	}

	return list, nil
}
