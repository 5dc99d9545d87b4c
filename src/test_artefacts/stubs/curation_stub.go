package stubs

import (
	"encoding/json"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
)

type CurationStub struct {
	id       string
	entityID string
	doc      map[string]interface{}
}

func NewCurationStub(entityID string) CurationStub {
	return CurationStub{
		id:       fmt.Sprintf("cur_%s", gofakeit.UUID()),
		entityID: entityID,
		doc: map[string]interface{}{
			"curator": map[string]interface{}{
				"id":    gofakeit.Username(),
				"name":  gofakeit.Name(),
				"email": gofakeit.Email(),
			},
			"categories": map[string]interface{}{
				"mood": []interface{}{"lively"},
			},
		},
	}
}

func (cs CurationStub) WithID(id string) CurationStub {
	cs.id = id
	return cs
}

func (cs CurationStub) WithCategories(categories map[string]interface{}) CurationStub {
	updated := make(map[string]interface{}, len(cs.doc))
	for k, v := range cs.doc {
		updated[k] = v
	}
	updated["categories"] = categories
	cs.doc = updated
	return cs
}

func (cs CurationStub) WithDocField(key string, value interface{}) CurationStub {
	updated := make(map[string]interface{}, len(cs.doc)+1)
	for k, v := range cs.doc {
		updated[k] = v
	}
	updated[key] = value
	cs.doc = updated
	return cs
}

func (cs CurationStub) ID() string {
	return cs.id
}

func (cs CurationStub) EntityID() string {
	return cs.entityID
}

func (cs CurationStub) Doc() json.RawMessage {
	docJSON, _ := json.Marshal(cs.doc)
	return docJSON
}
