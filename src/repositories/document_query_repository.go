package repositories

import (
	"context"
	"fmt"

	"conciergeapi/src/domain"
	"conciergeapi/src/infra/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DocumentQueryRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentQueryRepository(pool *pgxpool.Pool) *DocumentQueryRepository {
	return &DocumentQueryRepository{pool: pool}
}

// Execute compila o QueryRequest e roda o statement resultante em uma única
// ida ao banco. Consultas nunca escrevem.
func (r *DocumentQueryRepository) Execute(ctx context.Context, request domain.QueryRequest) ([]domain.DocumentRecord, error) {
	query, args, err := CompileQuery(request)
	if err != nil {
		return nil, fmt.Errorf("DocumentQueryRepository.Execute - %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		if postgres.IsUnavailable(err) {
			return nil, fmt.Errorf("DocumentQueryRepository.Execute - %v: %w", err, domain.ErrStoreUnavailable)
		}
		return nil, fmt.Errorf("DocumentQueryRepository.Execute - query failed: %w", err)
	}
	defer rows.Close()

	exploded := request.Explode != nil
	records := make([]domain.DocumentRecord, 0)

	for rows.Next() {
		var record domain.DocumentRecord

		// entities expõem a coluna type; curations, entity_id.
		secondColumn := &record.Type
		if request.From == domain.CurationDocuments {
			secondColumn = &record.EntityID
		}

		targets := []interface{}{
			&record.ID, secondColumn, &record.Doc,
			&record.CreatedAt, &record.UpdatedAt, &record.Version,
		}
		if exploded {
			targets = append(targets, &record.Exploded)
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("DocumentQueryRepository.Execute - scan failed: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		if postgres.IsUnavailable(err) {
			return nil, fmt.Errorf("DocumentQueryRepository.Execute - %v: %w", err, domain.ErrStoreUnavailable)
		}
		return nil, fmt.Errorf("DocumentQueryRepository.Execute - error iterating rows: %w", err)
	}

	return records, nil
}
