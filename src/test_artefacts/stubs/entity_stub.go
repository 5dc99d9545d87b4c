package stubs

import (
	"encoding/json"
	"fmt"

	"conciergeapi/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type EntityStub struct {
	id         string
	entityType entities.EntityType
	doc        map[string]interface{}
}

func NewEntityStub() EntityStub {
	return EntityStub{
		id:         fmt.Sprintf("rest_%s", gofakeit.UUID()),
		entityType: entities.EntityTypeRestaurant,
		doc: map[string]interface{}{
			"name":   gofakeit.Company(),
			"status": "draft",
			"metadata": []interface{}{
				map[string]interface{}{"cuisine": gofakeit.Dinner()},
			},
		},
	}
}

func (es EntityStub) WithID(id string) EntityStub {
	es.id = id
	return es
}

func (es EntityStub) WithType(entityType entities.EntityType) EntityStub {
	es.entityType = entityType
	return es
}

func (es EntityStub) WithDoc(doc map[string]interface{}) EntityStub {
	es.doc = doc
	return es
}

func (es EntityStub) WithDocField(key string, value interface{}) EntityStub {
	updated := make(map[string]interface{}, len(es.doc)+1)
	for k, v := range es.doc {
		updated[k] = v
	}
	updated[key] = value
	es.doc = updated
	return es
}

func (es EntityStub) ID() string {
	return es.id
}

func (es EntityStub) Type() entities.EntityType {
	return es.entityType
}

func (es EntityStub) Doc() json.RawMessage {
	docJSON, _ := json.Marshal(es.doc)
	return docJSON
}
