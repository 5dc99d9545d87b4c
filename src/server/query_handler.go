package server

import (
	"encoding/json"
	"net/http"

	"conciergeapi/src/domain"
)

func (s *Server) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var request domain.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	records, err := s.documentService.ExecuteQuery(r.Context(), request)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Total: len(records),
		Items: records,
	})
}
