package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360studio/semspore/vocabulary/governance"
	"github.com/c360studio/semstreams/message"
	"github.com/nats-io/nats.go"
)

// GraphIngestSubject is the default subject for applied-patch payloads.
const GraphIngestSubject = "graph.ingest.entity"

// Publisher announces triples added to a target model.
type Publisher interface {
	PublishPatch(ctx context.Context, patch, model string, added []Triple) error
}

// natsPublisher is the subset of *nats.Conn used for publishing.
type natsPublisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes PatchPayloads on a NATS subject.
type NATSPublisher struct {
	conn    natsPublisher
	subject string
	source  string
	now     func() time.Time
}

// NewNATSPublisher creates a publisher on conn. An empty subject selects
// GraphIngestSubject.
func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	return newNATSPublisher(conn, subject)
}

func newNATSPublisher(conn natsPublisher, subject string) *NATSPublisher {
	if subject == "" {
		subject = GraphIngestSubject
	}
	return &NATSPublisher{conn: conn, subject: subject, source: "semspore.apply_patch", now: time.Now}
}

// PublishPatch implements Publisher. Nothing is sent for an empty triple set.
func (p *NATSPublisher) PublishPatch(_ context.Context, patch, model string, added []Triple) error {
	if p == nil || p.conn == nil || len(added) == 0 {
		return nil
	}

	now := p.now()
	triples := make([]message.Triple, 0, len(added))
	for _, t := range added {
		triples = append(triples, message.Triple{
			Subject:    t.Subject.Value,
			Predicate:  t.Predicate.Value,
			Object:     objectValue(t.Object),
			Source:     p.source,
			Timestamp:  now,
			Confidence: 1.0,
		})
	}

	payload := &PatchPayload{
		EntityID_:  patch,
		Model:      model,
		TripleData: triples,
		UpdatedAt:  now,
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("invalid patch payload: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal patch payload: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish patch payload: %w", err)
	}
	return nil
}

// objectValue converts a term to the loosely typed object used in message triples.
func objectValue(t Term) any {
	if t.Kind != KindLiteral {
		return t.Value
	}
	switch t.Datatype {
	case governance.XSDInteger:
		if n, ok := t.Int(); ok {
			return n
		}
	case governance.XSDBoolean:
		if b, ok := t.Bool(); ok {
			return b
		}
	}
	return t.Value
}
