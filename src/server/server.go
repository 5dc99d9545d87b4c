package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"conciergeapi/src/services/documents"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Server representa o servidor HTTP da API. É um consumidor fino do
// DocumentService: validação estrutural e concorrência vivem no core.
type Server struct {
	logger          *slog.Logger
	server          *http.Server
	mux             *http.ServeMux
	port            int
	documentService *documents.DocumentService
	pool            *pgxpool.Pool
}

// NewServer cria uma nova instância do servidor
func NewServer(
	logger *slog.Logger,
	port int,
	documentService *documents.DocumentService,
	pool *pgxpool.Pool,
) *Server {
	server := &Server{
		mux:             http.NewServeMux(),
		port:            port,
		logger:          logger,
		documentService: documentService,
		pool:            pool,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	server.mux.HandleFunc("POST /v3/entities", server.CreateEntity)
	server.mux.HandleFunc("GET /v3/entities", server.ListEntities)
	server.mux.HandleFunc("GET /v3/entities/{id}", server.GetEntity)
	server.mux.HandleFunc("PATCH /v3/entities/{id}", server.UpdateEntity)
	server.mux.HandleFunc("DELETE /v3/entities/{id}", server.DeleteEntity)
	server.mux.HandleFunc("GET /v3/entities/{id}/curations", server.GetEntityCurations)

	server.mux.HandleFunc("POST /v3/curations", server.CreateCuration)
	server.mux.HandleFunc("GET /v3/curations/search", server.SearchCurations)
	server.mux.HandleFunc("GET /v3/curations/{id}", server.GetCuration)
	server.mux.HandleFunc("PATCH /v3/curations/{id}", server.UpdateCuration)
	server.mux.HandleFunc("DELETE /v3/curations/{id}", server.DeleteCuration)

	server.mux.HandleFunc("POST /v3/query", server.ExecuteQuery)
	server.mux.HandleFunc("GET /v3/health", server.HealthCheck)
	server.mux.HandleFunc("GET /v3/info", server.Info)

	return server
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		s.logger.Error("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": "3.0"})
}

// Info descreve a superfície e as capacidades da API.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":     "3.0",
		"description": "Document-oriented REST API for concierge entities and curations",
		"endpoints": map[string]map[string]string{
			"entities": {
				"POST /v3/entities":                "Create entity",
				"GET /v3/entities/{id}":            "Get entity",
				"PATCH /v3/entities/{id}":          "Update entity (merge patch)",
				"DELETE /v3/entities/{id}":         "Delete entity",
				"GET /v3/entities?type=X":          "List entities by type",
				"GET /v3/entities?name=X":          "Search entities by name",
				"GET /v3/entities/{id}/curations":  "Get entity curations",
			},
			"curations": {
				"POST /v3/curations":                           "Create curation",
				"GET /v3/curations/{id}":                       "Get curation",
				"PATCH /v3/curations/{id}":                     "Update curation (merge patch)",
				"DELETE /v3/curations/{id}":                    "Delete curation",
				"GET /v3/curations/search?category=X&concept=Y": "Search curations by concept",
			},
			"query": {
				"POST /v3/query": "Execute flexible query DSL",
			},
		},
		"features": []string{
			"Document-oriented storage",
			"Merge patch for partial updates",
			"Optimistic locking with version control",
			"Functional indexes on JSON paths",
			"Array explode queries",
			"Flexible query DSL",
		},
	})
}
