package documents

import (
	"context"
	"fmt"

	"conciergeapi/src/domain"
	"conciergeapi/src/domain/entities"
)

// ExecuteQuery é a entrada única do compilador de consultas: um QueryRequest
// vira exatamente um statement parametrizado e read-only.
func (s *DocumentService) ExecuteQuery(ctx context.Context, request domain.QueryRequest) ([]domain.DocumentRecord, error) {
	records, err := s.documentQueryRepository.Execute(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("DocumentService.ExecuteQuery - %w", err)
	}

	return records, nil
}

// FindCurationsByCategoryConcept procura curadorias cuja lista de conceitos
// na categoria contém o conceito dado. É o explode de $.categories.<cat>
// filtrado pelo alias - uma linha sintética por conceito do array.
func (s *DocumentService) FindCurationsByCategoryConcept(ctx context.Context, category string, concept string, limit int) ([]entities.Curation, error) {
	request := domain.QueryRequest{
		From: domain.CurationDocuments,
		Explode: &domain.QueryExplode{
			Path: "$.categories." + category,
			As:   "concept_value",
		},
		Filters: []domain.QueryFilter{
			{Path: "concept_value", Operator: domain.OperatorEq, Value: concept},
		},
		Limit: limit,
	}

	records, err := s.documentQueryRepository.Execute(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("DocumentService.FindCurationsByCategoryConcept - %w", err)
	}

	// O explode pode gerar mais de uma linha por curadoria quando o conceito
	// se repete no array; aqui interessa o documento, então deduplicamos.
	seen := make(map[string]bool, len(records))
	curations := make([]entities.Curation, 0, len(records))
	for _, record := range records {
		if seen[record.ID] {
			continue
		}
		seen[record.ID] = true
		curations = append(curations, recordToCuration(record))
	}

	return curations, nil
}
