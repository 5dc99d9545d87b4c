package repositories

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"conciergeapi/src/domain"
	"conciergeapi/src/infra/postgres"
)

const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 200
)

var (
	// "$.a.b-c" - caminhos dentro do documento JSON.
	documentPathPattern = regexp.MustCompile(`^\$(\.[A-Za-z_][A-Za-z0-9_-]*)+$`)
	// alias de explode ou coluna estrutural.
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Colunas estruturais endereçáveis por nome simples em filtros/sort.
var structuralColumns = map[domain.DocumentSet]map[string]bool{
	domain.EntityDocuments: {
		"id": true, "type": true, "created_at": true, "updated_at": true, "version": true,
	},
	domain.CurationDocuments: {
		"id": true, "entity_id": true, "created_at": true, "updated_at": true, "version": true,
	},
}

// Identificadores que o statement gerado já usa; como alias de explode eles
// produziriam SQL ambíguo ou inválido mesmo passando no padrão léxico.
var reservedAliases = map[string]bool{
	"d": true, "value": true, "exploded": true,
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"not": true, "order": true, "by": true, "limit": true, "offset": true,
	"cross": true, "join": true, "lateral": true, "as": true, "any": true,
	"case": true, "when": true, "then": true, "else": true, "end": true,
}

func validExplodeAlias(alias string) bool {
	return identifierPattern.MatchString(alias) && !reservedAliases[strings.ToLower(alias)]
}

var selectColumns = map[domain.DocumentSet]string{
	domain.EntityDocuments:   "d.id, d.type, d.doc, d.created_at, d.updated_at, d.version",
	domain.CurationDocuments: "d.id, d.entity_id, d.doc, d.created_at, d.updated_at, d.version",
}

type exprKind int

const (
	exprDocumentPath exprKind = iota
	exprExplodedAlias
	exprStructuralColumn
)

// resolvedPath é o nó intermediário entre o DSL e o SQL: sabe renderizar a
// extração como texto (comparações de alias/coluna, ORDER BY) ou como jsonb
// (comparações tipadas sobre o documento).
type resolvedPath struct {
	kind     exprKind
	segments []string // caminho dentro do doc
	name     string   // alias ou coluna
}

func (p resolvedPath) textExpr() string {
	switch p.kind {
	case exprExplodedAlias:
		return p.name + ".value"
	case exprStructuralColumn:
		return "d." + p.name
	default:
		return fmt.Sprintf("(d.doc #>> '{%s}')", strings.Join(p.segments, ","))
	}
}

func (p resolvedPath) jsonbExpr() string {
	return fmt.Sprintf("(d.doc #> '{%s}')", strings.Join(p.segments, ","))
}

// queryArgs acumula os valores ligados por placeholder. Nenhum valor vindo
// do chamador entra no texto do statement.
type queryArgs struct {
	values []interface{}
}

func (qa *queryArgs) add(value interface{}) string {
	qa.values = append(qa.values, value)
	return fmt.Sprintf("$%d", len(qa.values))
}

// CompileQuery traduz um QueryRequest em exatamente um statement
// parametrizado e read-only. O explode vira um CROSS JOIN LATERAL que gera
// uma linha sintética por elemento do array; caminho ausente ou não-array
// produz zero linhas para aquele documento.
func CompileQuery(request domain.QueryRequest) (string, []interface{}, error) {
	columns, ok := selectColumns[request.From]
	if !ok {
		return "", nil, fmt.Errorf("unknown document set '%s': %w", request.From, domain.ErrInvalidQuery)
	}

	args := &queryArgs{}
	var sb strings.Builder

	sb.WriteString("SELECT ")
	sb.WriteString(columns)
	if request.Explode != nil {
		if !validExplodeAlias(request.Explode.As) {
			return "", nil, fmt.Errorf("invalid explode alias '%s': %w", request.Explode.As, domain.ErrInvalidQuery)
		}
		sb.WriteString(", ")
		sb.WriteString(request.Explode.As)
		sb.WriteString(".value AS exploded")
	}

	sb.WriteString("\nFROM ")
	sb.WriteString(string(request.From))
	sb.WriteString(" d")

	if request.Explode != nil {
		explodePath, err := resolvePath(request.From, nil, request.Explode.Path)
		if err != nil {
			return "", nil, err
		}
		if explodePath.kind != exprDocumentPath {
			return "", nil, fmt.Errorf("explode path must address the document, got '%s': %w", request.Explode.Path, domain.ErrInvalidQuery)
		}

		source := explodePath.jsonbExpr()
		fmt.Fprintf(&sb, "\nCROSS JOIN LATERAL jsonb_array_elements_text(\n"+
			"\tCASE WHEN jsonb_typeof(%s) = 'array' THEN %s ELSE '[]'::jsonb END\n"+
			") AS %s(value)", source, source, request.Explode.As)
	}

	if len(request.Filters) > 0 {
		predicates := make([]string, 0, len(request.Filters))
		for _, filter := range request.Filters {
			predicate, err := compileFilter(request, filter, args)
			if err != nil {
				return "", nil, err
			}
			predicates = append(predicates, predicate)
		}
		// O DSL não define OR nem agrupamento: filtros são sempre AND.
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(predicates, " AND "))
	}

	sb.WriteString("\nORDER BY ")
	if request.Sort != nil {
		sortPath, err := resolvePath(request.From, request.Explode, request.Sort.Path)
		if err != nil {
			return "", nil, err
		}

		direction := "ASC"
		switch request.Sort.Direction {
		case domain.SortAsc, "":
		case domain.SortDesc:
			direction = "DESC"
		default:
			return "", nil, fmt.Errorf("invalid sort direction '%s': %w", request.Sort.Direction, domain.ErrInvalidQuery)
		}

		// Desempate por id garante paginação determinística entre chamadas
		// repetidas com os mesmos filtros.
		fmt.Fprintf(&sb, "%s %s, d.id ASC", sortPath.textExpr(), direction)
	} else {
		sb.WriteString("d.id ASC")
	}

	limit := request.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}
	offset := request.Offset
	if offset < 0 {
		offset = 0
	}
	fmt.Fprintf(&sb, "\nLIMIT %s OFFSET %s;", args.add(limit), args.add(offset))

	return sb.String(), args.values, nil
}

func resolvePath(from domain.DocumentSet, explode *domain.QueryExplode, path string) (resolvedPath, error) {
	if documentPathPattern.MatchString(path) {
		segments := strings.Split(strings.TrimPrefix(path, "$."), ".")
		return resolvedPath{kind: exprDocumentPath, segments: segments}, nil
	}

	if identifierPattern.MatchString(path) {
		// O alias do explode tem precedência sobre colunas estruturais.
		if explode != nil && path == explode.As {
			return resolvedPath{kind: exprExplodedAlias, name: path}, nil
		}
		if structuralColumns[from][path] {
			return resolvedPath{kind: exprStructuralColumn, name: path}, nil
		}
	}

	return resolvedPath{}, fmt.Errorf("unknown filter path '%s': %w", path, domain.ErrInvalidQuery)
}

// compileFilter emite um predicado parametrizado. Extrações de caminho de
// documento comparam como jsonb (números comparam numericamente e caminho
// ausente vira NULL, reprovando qualquer operador); alias e colunas comparam
// como texto.
func compileFilter(request domain.QueryRequest, filter domain.QueryFilter, args *queryArgs) (string, error) {
	if filter.Value == nil {
		return "", fmt.Errorf("filter on '%s' has no value: %w", filter.Path, domain.ErrInvalidQuery)
	}

	path, err := resolvePath(request.From, request.Explode, filter.Path)
	if err != nil {
		return "", err
	}

	switch filter.Operator {
	case domain.OperatorEq, domain.OperatorNe, domain.OperatorLt, domain.OperatorGt, domain.OperatorLte, domain.OperatorGte:
		op := sqlComparison(filter.Operator)
		if path.kind == exprDocumentPath {
			// O valor é ligado como texto JSON e o cast para jsonb acontece no
			// servidor. Ligar o valor cru deixaria o parâmetro com tipo text e a
			// comparação viraria string-vs-number na ordenação de tipos do jsonb.
			encoded, err := json.Marshal(filter.Value)
			if err != nil {
				return "", fmt.Errorf("filter on '%s' has a non-JSON value: %w", filter.Path, domain.ErrInvalidQuery)
			}
			return fmt.Sprintf("%s %s %s::jsonb", path.jsonbExpr(), op, args.add(string(encoded))), nil
		}
		return fmt.Sprintf("%s %s %s", path.textExpr(), op, args.add(scalarToText(filter.Value))), nil

	case domain.OperatorIn:
		members, err := membershipList(filter.Value)
		if err != nil {
			return "", fmt.Errorf("filter on '%s': %w", filter.Path, err)
		}
		return fmt.Sprintf("%s = ANY(%s)", path.textExpr(), args.add(members)), nil

	case domain.OperatorContains:
		if path.kind != exprDocumentPath {
			return "", fmt.Errorf("contains requires a document path, got '%s': %w", filter.Path, domain.ErrInvalidQuery)
		}
		// Pertencimento em array via @> no documento inteiro, para aproveitar
		// o índice GIN jsonb_path_ops.
		searchJSON, err := postgres.BuildSearchJSON(filter.Path, filter.Value)
		if err != nil {
			return "", fmt.Errorf("filter on '%s': %w", filter.Path, domain.ErrInvalidQuery)
		}
		return fmt.Sprintf("d.doc @> %s::jsonb", args.add(searchJSON)), nil

	case domain.OperatorLike:
		pattern := "%" + scalarToText(filter.Value) + "%"
		return fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", path.textExpr(), args.add(pattern)), nil

	default:
		return "", fmt.Errorf("unsupported operator '%s': %w", filter.Operator, domain.ErrInvalidQuery)
	}
}

func sqlComparison(operator domain.FilterOperator) string {
	switch operator {
	case domain.OperatorEq:
		return "="
	case domain.OperatorNe:
		return "<>"
	case domain.OperatorLt:
		return "<"
	case domain.OperatorGt:
		return ">"
	case domain.OperatorLte:
		return "<="
	default:
		return ">="
	}
}

func scalarToText(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func membershipList(value interface{}) ([]string, error) {
	switch list := value.(type) {
	case []string:
		return list, nil
	case []interface{}:
		members := make([]string, 0, len(list))
		for _, item := range list {
			members = append(members, scalarToText(item))
		}
		return members, nil
	default:
		return nil, fmt.Errorf("'in' requires a list value: %w", domain.ErrInvalidQuery)
	}
}
