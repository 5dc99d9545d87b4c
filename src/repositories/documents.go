package repositories

import (
	"encoding/json"
	"fmt"

	"conciergeapi/src/domain"
	"conciergeapi/src/infra/postgres"
)

// Chaves de primeiro nível que todo documento precisa carregar. O schema
// também as exige via CHECK; validar aqui evita ida ao banco com payload
// inválido.
var (
	entityRequiredKeys   = []string{"name", "metadata"}
	curationRequiredKeys = []string{"curator", "categories"}
)

func validateDocument(doc json.RawMessage, requiredKeys []string) error {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return fmt.Errorf("document is not a JSON object: %w", domain.ErrInvalidDocument)
	}

	for _, key := range requiredKeys {
		if _, ok := parsed[key]; !ok {
			return fmt.Errorf("document is missing required key '%s': %w", key, domain.ErrInvalidDocument)
		}
	}

	return nil
}

// validatePatch rejeita patches que não sejam objetos JSON ou que removam
// (via null explícito) uma chave obrigatória do documento.
func validatePatch(patch json.RawMessage, requiredKeys []string) error {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(patch, &parsed); err != nil {
		return fmt.Errorf("merge patch is not a JSON object: %w", domain.ErrInvalidDocument)
	}

	for _, key := range requiredKeys {
		if value, ok := parsed[key]; ok && string(value) == "null" {
			return fmt.Errorf("merge patch removes required key '%s': %w", key, domain.ErrInvalidDocument)
		}
	}

	return nil
}

// wrapWriteError traduz falhas do driver para o erro de domínio que o
// chamador consegue ramificar. NoRows tem significado por operação e fica a
// cargo de cada repositório.
func wrapWriteError(op string, err error) error {
	switch {
	case postgres.IsUniqueViolation(err):
		return fmt.Errorf("%s - %v: %w", op, err, domain.ErrDuplicateKey)
	case postgres.IsForeignKeyViolation(err):
		return fmt.Errorf("%s - %v: %w", op, err, domain.ErrReferentialViolation)
	case postgres.IsCheckViolation(err):
		return fmt.Errorf("%s - %v: %w", op, err, domain.ErrInvalidDocument)
	case postgres.IsUnavailable(err):
		return fmt.Errorf("%s - %v: %w", op, err, domain.ErrStoreUnavailable)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
