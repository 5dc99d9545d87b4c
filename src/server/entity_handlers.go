package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"conciergeapi/src/domain/entities"
)

func (s *Server) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var request CreateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	entity, err := s.documentService.CreateEntity(r.Context(), request.ID, entities.EntityType(request.Type), request.Doc)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, MapEntityToResponse(entity))
}

func (s *Server) GetEntity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Entity ID is required", http.StatusBadRequest)
		return
	}

	entity, err := s.documentService.GetEntityByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MapEntityToResponse(entity))
}

// ListEntities atende ?type= e ?name= - leituras pré-moldadas sobre os
// índices funcionais.
func (s *Server) ListEntities(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("type")
	name := r.URL.Query().Get("name")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	var list []entities.Entity
	var err error

	switch {
	case name != "":
		list, err = s.documentService.SearchEntitiesByName(r.Context(), name, limit)
	case entityType != "":
		list, err = s.documentService.ListEntitiesByType(r.Context(), entities.EntityType(entityType), limit, offset)
	default:
		http.Error(w, "Query parameter 'type' or 'name' is required", http.StatusBadRequest)
		return
	}

	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	response := make([]EntityDTO, 0, len(list))
	for _, entity := range list {
		response = append(response, MapEntityToResponse(entity))
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Entity ID is required", http.StatusBadRequest)
		return
	}

	var request UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	entity, err := s.documentService.UpdateEntity(r.Context(), id, request.Doc, request.ExpectedVersion)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MapEntityToResponse(entity))
}

func (s *Server) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Entity ID is required", http.StatusBadRequest)
		return
	}

	if err := s.documentService.DeleteEntity(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetEntityCurations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Entity ID is required", http.StatusBadRequest)
		return
	}

	curations, err := s.documentService.GetCurationsByEntity(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	response := make([]CurationDTO, 0, len(curations))
	for _, curation := range curations {
		response = append(response, MapCurationToResponse(curation))
	}

	writeJSON(w, http.StatusOK, response)
}
