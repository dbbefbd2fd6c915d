package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event types carried on the dispatch intake queue
const (
	DispatchOrderCreated   = "DispatchOrderCreated"
	DispatchOrderScheduled = "DispatchOrderScheduled"
	DispatchOrderCanceled  = "DispatchOrderCanceled"
)

// AzureBusMessage is the common message envelope
type AzureBusMessage struct {
	EventType string          `json:"eventType"`
	Data      json.RawMessage `json:"data"`
}

// IntakeOrder is what the intake service accepts for DispatchOrderCreated
// and DispatchOrderScheduled events.
type IntakeOrder struct {
	ClientName  string     `json:"client_name"`
	ClientPhone string     `json:"client_phone"`
	Vehicle     string     `json:"vehicle"`
	Plate       string     `json:"plate"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	ValueCents  int64      `json:"value_cents"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// IntakeCancel identifies an order the upstream dispatcher canceled.
type IntakeCancel struct {
	OrderID uuid.UUID `json:"order_id"`
}

// IntakeHandler is the slice of the order workflow the queue consumer
// drives.
type IntakeHandler interface {
	HandleOrderCreated(ctx context.Context, order IntakeOrder) error
	HandleOrderCanceled(ctx context.Context, cancel IntakeCancel) error
}

// Processor routes intake queue messages to their handlers.
type Processor struct {
	handler IntakeHandler
}

// NewProcessor creates a new intake message processor
func NewProcessor(handler IntakeHandler) *Processor {
	return &Processor{handler: handler}
}

// ProcessMessage handles one message from the dispatch intake queue.
func (p *Processor) ProcessMessage(ctx context.Context, message *azservicebus.ReceivedMessage) error {
	var msg AzureBusMessage
	if err := json.Unmarshal(message.Body, &msg); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	log.Info().Str("eventType", msg.EventType).Msg("Processing intake message")

	switch msg.EventType {
	case DispatchOrderCreated, DispatchOrderScheduled:
		var order IntakeOrder
		if err := json.Unmarshal(msg.Data, &order); err != nil {
			return err
		}
		return p.handler.HandleOrderCreated(ctx, order)

	case DispatchOrderCanceled:
		var cancel IntakeCancel
		if err := json.Unmarshal(msg.Data, &cancel); err != nil {
			return err
		}
		return p.handler.HandleOrderCanceled(ctx, cancel)

	default:
		log.Warn().Str("eventType", msg.EventType).Msg("Unknown intake event type, skipping")
		return nil
	}
}
