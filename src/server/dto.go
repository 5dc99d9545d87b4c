package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"conciergeapi/src/domain"
	"conciergeapi/src/domain/entities"
)

type CreateEntityRequest struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Doc  json.RawMessage `json:"doc"`
}

type CreateCurationRequest struct {
	ID       string          `json:"id"`
	EntityID string          `json:"entity_id"`
	Doc      json.RawMessage `json:"doc"`
}

// UpdateDocumentRequest carrega o merge patch e a versão esperada do
// optimistic locking.
type UpdateDocumentRequest struct {
	Doc             json.RawMessage `json:"doc"`
	ExpectedVersion int64           `json:"expected_version"`
}

type EntityDTO struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Doc       json.RawMessage `json:"doc"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int64           `json:"version"`
}

type CurationDTO struct {
	ID        string          `json:"id"`
	EntityID  string          `json:"entity_id"`
	Doc       json.RawMessage `json:"doc"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int64           `json:"version"`
}

type QueryResponse struct {
	Total int                     `json:"total"`
	Items []domain.DocumentRecord `json:"items"`
}

func MapEntityToResponse(entity entities.Entity) EntityDTO {
	return EntityDTO{
		ID:        entity.ID,
		Type:      string(entity.Type),
		Doc:       entity.Doc,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
		Version:   entity.Version,
	}
}

func MapCurationToResponse(curation entities.Curation) CurationDTO {
	return CurationDTO{
		ID:        curation.ID,
		EntityID:  curation.EntityID,
		Doc:       curation.Doc,
		CreatedAt: curation.CreatedAt,
		UpdatedAt: curation.UpdatedAt,
		Version:   curation.Version,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("ERROR: Failed to write JSON response: %v", err)
	}
}

// writeDomainError mapeia a taxonomia de erros do core para status HTTP:
// erros do chamador viram 4xx, conflito de versão vira precondition failed
// e indisponibilidade do store vira 503.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDocument), errors.Is(err, domain.ErrInvalidQuery):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrDuplicateKey):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrVersionConflict):
		http.Error(w, err.Error(), http.StatusPreconditionFailed)
	case errors.Is(err, domain.ErrReferentialViolation):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrStoreUnavailable):
		http.Error(w, domain.ErrStoreUnavailable.Error(), http.StatusServiceUnavailable)
	default:
		s.logger.Error("Unexpected error handling request", "error", err)
		http.Error(w, domain.ErrUnavailableServer.Error(), http.StatusInternalServerError)
	}
}
