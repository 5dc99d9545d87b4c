package documents

import (
	"context"
	"encoding/json"
	"fmt"

	"conciergeapi/src/domain"
	"conciergeapi/src/domain/entities"
	"conciergeapi/src/services/events"
)

func (s *DocumentService) CreateCuration(ctx context.Context, id string, entityID string, doc json.RawMessage) (entities.Curation, error) {
	if id == "" {
		return entities.Curation{}, fmt.Errorf("DocumentService.CreateCuration - curation id is required: %w", domain.ErrInvalidDocument)
	}
	if entityID == "" {
		return entities.Curation{}, fmt.Errorf("DocumentService.CreateCuration - entity id is required: %w", domain.ErrReferentialViolation)
	}

	curation, err := s.curationRepository.Create(ctx, id, entityID, doc)
	if err != nil {
		return entities.Curation{}, fmt.Errorf("DocumentService.CreateCuration - %w", err)
	}

	go s.eventPublisher.Publish(events.EventCurationCreated, curation.ID, curation.EntityID, "", curation.Version)

	return curation, nil
}

func (s *DocumentService) GetCurationByID(ctx context.Context, id string) (entities.Curation, error) {
	curation, err := s.curationRepository.GetByID(ctx, id)
	if err != nil {
		return entities.Curation{}, fmt.Errorf("DocumentService.GetCurationByID - %w", err)
	}

	return curation, nil
}

func (s *DocumentService) GetCurationsByEntity(ctx context.Context, entityID string) ([]entities.Curation, error) {
	curations, err := s.curationRepository.GetByEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("DocumentService.GetCurationsByEntity - %w", err)
	}

	return curations, nil
}

func (s *DocumentService) UpdateCuration(ctx context.Context, id string, patch json.RawMessage, expectedVersion int64) (entities.Curation, error) {
	if expectedVersion < 1 {
		return entities.Curation{}, fmt.Errorf("DocumentService.UpdateCuration - expected version must be positive: %w", domain.ErrVersionConflict)
	}

	curation, err := s.curationRepository.UpdateMerge(ctx, id, patch, expectedVersion)
	if err != nil {
		return entities.Curation{}, fmt.Errorf("DocumentService.UpdateCuration - %w", err)
	}

	go s.eventPublisher.Publish(events.EventCurationUpdated, curation.ID, curation.EntityID, "", curation.Version)

	return curation, nil
}

// DeleteCuration nunca afeta a Entity referenciada.
func (s *DocumentService) DeleteCuration(ctx context.Context, id string) error {
	if err := s.curationRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("DocumentService.DeleteCuration - %w", err)
	}

	go s.eventPublisher.Publish(events.EventCurationDeleted, id, "", "", 0)

	return nil
}
