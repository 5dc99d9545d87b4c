package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"conciergeapi/src/infra/kafka"

	"github.com/google/uuid"
)

const (
	EventEntityCreated   = "document.entity.created"
	EventEntityUpdated   = "document.entity.updated"
	EventEntityDeleted   = "document.entity.deleted"
	EventCurationCreated = "document.curation.created"
	EventCurationUpdated = "document.curation.updated"
	EventCurationDeleted = "document.curation.deleted"
)

// DocumentEvent descreve uma mutação confirmada sobre um documento.
type DocumentEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	DocumentID string    `json:"document_id"`
	EntityID   string    `json:"entity_id,omitempty"`
	EntityType string    `json:"entity_type,omitempty"`
	Version    int64     `json:"version,omitempty"`
}

type DomainEventPublisher struct {
	logger      *slog.Logger
	kafkaClient *kafka.KafkaClient
	topic       string
}

func NewDomainEventPublisher(
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	topic string,
) *DomainEventPublisher {
	return &DomainEventPublisher{
		logger:      logger,
		kafkaClient: kafkaClient,
		topic:       topic,
	}
}

// Publish envia o evento para o Kafka, particionado pelo id do documento
// para preservar a ordem por registro. A escrita no banco já foi confirmada:
// falha de publicação é logada, nunca devolvida ao chamador.
func (p *DomainEventPublisher) Publish(eventType string, documentID string, entityID string, entityType string, version int64) {
	if p == nil || p.kafkaClient == nil {
		return
	}

	event := DocumentEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		DocumentID: documentID,
		EntityID:   entityID,
		EntityType: entityType,
		Version:    version,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal document event",
			"error", err,
			"event_id", event.EventID,
			"document_id", documentID)
		return
	}

	message := kafka.Message{
		Key:   documentID, // Partition by document for ordering
		Value: eventBytes,
		Headers: map[string]string{
			"event_type":     eventType,
			"source_service": "concierge-api",
			"schema_version": "v3",
			"event_id":       event.EventID,
		},
	}
	if entityType != "" {
		message.Headers["entity_type"] = entityType
	}

	if err := p.kafkaClient.Producer([]kafka.Message{message}, p.topic); err != nil {
		p.logger.Error("Failed to publish document event",
			"error", err,
			"topic", p.topic,
			"event_id", event.EventID,
			"event_type", eventType)
		return
	}

	p.logger.Debug("Published document event",
		"topic", p.topic,
		"event_type", eventType,
		"document_id", documentID,
		"version", fmt.Sprintf("%d", version))
}
