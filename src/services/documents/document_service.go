package documents

import (
	"conciergeapi/src/domain"
	"conciergeapi/src/domain/entities"
	"conciergeapi/src/repositories"
	"conciergeapi/src/services/events"
)

// DocumentService é a superfície que a camada HTTP consome: CRUD tipado por
// tipo de documento, consultas DSL e as leituras pré-moldadas sobre os
// índices funcionais.
type DocumentService struct {
	entityRepository        *repositories.CachedEntityRepository
	curationRepository      *repositories.CurationRepository
	documentQueryRepository *repositories.DocumentQueryRepository
	eventPublisher          *events.DomainEventPublisher
}

func NewDocumentService(
	entityRepository *repositories.CachedEntityRepository,
	curationRepository *repositories.CurationRepository,
	documentQueryRepository *repositories.DocumentQueryRepository,
	eventPublisher *events.DomainEventPublisher,
) *DocumentService {
	return &DocumentService{
		entityRepository:        entityRepository,
		curationRepository:      curationRepository,
		documentQueryRepository: documentQueryRepository,
		eventPublisher:          eventPublisher,
	}
}

func recordToEntity(record domain.DocumentRecord) entities.Entity {
	return entities.Entity{
		ID:        record.ID,
		Type:      entities.EntityType(record.Type),
		Doc:       record.Doc,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		Version:   record.Version,
	}
}

func recordToCuration(record domain.DocumentRecord) entities.Curation {
	return entities.Curation{
		ID:        record.ID,
		EntityID:  record.EntityID,
		Doc:       record.Doc,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		Version:   record.Version,
	}
}
