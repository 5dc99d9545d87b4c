package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func (s *Server) CreateCuration(w http.ResponseWriter, r *http.Request) {
	var request CreateCurationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	curation, err := s.documentService.CreateCuration(r.Context(), request.ID, request.EntityID, request.Doc)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, MapCurationToResponse(curation))
}

func (s *Server) GetCuration(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Curation ID is required", http.StatusBadRequest)
		return
	}

	curation, err := s.documentService.GetCurationByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MapCurationToResponse(curation))
}

func (s *Server) UpdateCuration(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Curation ID is required", http.StatusBadRequest)
		return
	}

	var request UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	curation, err := s.documentService.UpdateCuration(r.Context(), id, request.Doc, request.ExpectedVersion)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MapCurationToResponse(curation))
}

func (s *Server) DeleteCuration(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Curation ID is required", http.StatusBadRequest)
		return
	}

	if err := s.documentService.DeleteCuration(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchCurations atende ?category=mood&concept=lively, a busca por
// conceito dentro de uma categoria.
func (s *Server) SearchCurations(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	concept := r.URL.Query().Get("concept")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	if category == "" || concept == "" {
		http.Error(w, "Must provide both 'category' and 'concept' parameters", http.StatusBadRequest)
		return
	}

	curations, err := s.documentService.FindCurationsByCategoryConcept(r.Context(), category, concept, limit)
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
