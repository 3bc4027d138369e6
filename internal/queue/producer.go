package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	DetectionsStreamName = "DETECTIONS"
	DetectionsSubject    = "detections.completed"
)

// Producer publishes detection events to JetStream for downstream consumers
// (analytics, audit). It is optional; the API works without it.
type Producer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewProducer(natsURL string) (*Producer, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Producer{nc: nc, js: js}, nil
}

// EnsureStream creates the detections stream if it doesn't exist.
func (p *Producer) EnsureStream(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := p.js.CreateOrUpdateStream(opCtx, jetstream.StreamConfig{
		Name:        DetectionsStreamName,
		Subjects:    []string{"detections.>"},
		Retention:   jetstream.InterestPolicy,
		MaxAge:      24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Description: "Completed detection request events",
	})
	if err != nil {
		return fmt.Errorf("ensure detections stream: %w", err)
	}
	return nil
}

// PublishDetection sends one detection event.
func (p *Producer) PublishDetection(ctx context.Context, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal detection event: %w", err)
	}
	if _, err := p.js.Publish(ctx, DetectionsSubject, data); err != nil {
		return fmt.Errorf("publish detection event: %w", err)
	}
	return nil
}

// Ping checks NATS connectivity.
func (p *Producer) Ping() error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

func (p *Producer) Close() {
	p.nc.Close()
}
