package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrDuplicateKey         = errors.New("document id already exists")
	ErrNotFound             = errors.New("document not found")
	ErrInvalidDocument      = errors.New("document is malformed or missing required keys")
	ErrVersionConflict      = errors.New("document was modified by another process")
	ErrInvalidQuery         = errors.New("query request is invalid")
	ErrReferentialViolation = errors.New("curation references a nonexistent entity")
	ErrStoreUnavailable     = errors.New("document store unavailable")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

// ############################################################
// ##################### QUERY DSL ############################
// ############################################################

// DocumentSet identifica a tabela física alvo de uma consulta.
type DocumentSet string

const (
	EntityDocuments   DocumentSet = "entities"
	CurationDocuments DocumentSet = "curations"
)

type FilterOperator string

const (
	OperatorEq       FilterOperator = "eq"
	OperatorNe       FilterOperator = "ne"
	OperatorIn       FilterOperator = "in"
	OperatorContains FilterOperator = "contains"
	OperatorLt       FilterOperator = "lt"
	OperatorGt       FilterOperator = "gt"
	OperatorLte      FilterOperator = "lte"
	OperatorGte      FilterOperator = "gte"
	OperatorLike     FilterOperator = "like"
)

// QueryFilter compara o valor encontrado em Path com Value.
// Path aceita caminhos de documento ("$.categories.mood"), o alias de um
// explode ou uma coluna estrutural (id, type, entity_id...).
type QueryFilter struct {
	Path     string         `json:"path"`
	Operator FilterOperator `json:"operator"`
	Value    interface{}    `json:"value"`
}

// QueryExplode achata o array JSON em Path, gerando uma linha sintética
// por elemento, exposta sob o alias As.
type QueryExplode struct {
	Path string `json:"path"`
	As   string `json:"as"`
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type QuerySort struct {
	Path      string        `json:"path"`
	Direction SortDirection `json:"direction"`
}

type QueryRequest struct {
	From    DocumentSet   `json:"from"`
	Filters []QueryFilter `json:"filters,omitempty"`
	Explode *QueryExplode `json:"explode,omitempty"`
	Sort    *QuerySort    `json:"sort,omitempty"`
	Limit   int           `json:"limit,omitempty"`
	Offset  int           `json:"offset,omitempty"`
}

// DocumentRecord é a linha genérica devolvida pelo compilador de consultas.
// Type só é preenchido para entities; EntityID só para curations. Exploded
// carrega o valor do elemento do array quando a consulta usa explode.
type DocumentRecord struct {
	ID        string          `json:"id"`
	Type      string          `json:"type,omitempty"`
	EntityID  string          `json:"entity_id,omitempty"`
	Doc       json.RawMessage `json:"doc"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int64           `json:"version"`
	Exploded  *string         `json:"exploded,omitempty"`
}
