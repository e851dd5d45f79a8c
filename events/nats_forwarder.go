package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const sourceService = "betting"

// Envelope wraps a forwarded event payload
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     EventType       `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// publisher is the subset of *nats.Conn the forwarder needs
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSForwarder republishes committed bus events to NATS subjects
// named "<prefix>.<event type>"
type NATSForwarder struct {
	conn          publisher
	subjectPrefix string
}

// NewNATSForwarder creates a forwarder that publishes through conn
func NewNATSForwarder(conn publisher, subjectPrefix string) *NATSForwarder {
	return &NATSForwarder{conn: conn, subjectPrefix: subjectPrefix}
}

// ConnectNATS dials the NATS server with the reconnect settings used across services
func ConnectNATS(url string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(sourceService),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithField("url", url).Info("Connected to NATS")
	return nc, nil
}

// Attach subscribes the forwarder to every event type on bus
func (f *NATSForwarder) Attach(bus *Bus) {
	for _, eventType := range AllEventTypes {
		bus.Subscribe(eventType, f.Handle)
	}
}

// Handle forwards a single event; failures are logged, never propagated
func (f *NATSForwarder) Handle(ctx context.Context, event Event) {
	if err := f.Forward(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event to NATS")
	}
}

// Forward serializes event into an Envelope and publishes it
func (f *NATSForwarder) Forward(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := Envelope{
		EventID:       uuid.New().String(),
		EventType:     event.Type(),
		Timestamp:     time.Now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := f.Subject(event.Type())
	if err := f.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	log.WithFields(log.Fields{
		"subject": subject,
		"eventID": envelope.EventID,
	}).Debug("Forwarded event to NATS")
	return nil
}

// Subject returns the NATS subject for eventType
func (f *NATSForwarder) Subject(eventType EventType) string {
	return f.subjectPrefix + "." + string(eventType)
}
