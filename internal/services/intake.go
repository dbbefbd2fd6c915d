package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/messaging"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/workflow"
)

// IntakeAdapter plugs the order workflow into the dispatch intake queue.
// It satisfies messaging.IntakeHandler.
type IntakeAdapter struct {
	orders *OrderService
	// system is the synthetic actor intake operations run as.
	system *models.User
}

// NewIntakeAdapter creates the queue-side adapter for the order service.
func NewIntakeAdapter(orders *OrderService) *IntakeAdapter {
	return &IntakeAdapter{
		orders: orders,
		system: &models.User{Name: "dispatch-intake", Role: models.RoleAdmin},
	}
}

// HandleOrderCreated lands an upstream dispatch job in the queue.
func (a *IntakeAdapter) HandleOrderCreated(ctx context.Context, order messaging.IntakeOrder) error {
	_, err := a.orders.Create(ctx, &OrderIntakeCommand{
		ClientName:  order.ClientName,
		ClientPhone: order.ClientPhone,
		Vehicle:     order.Vehicle,
		Plate:       order.Plate,
		Location:    order.Location,
		Description: order.Description,
		ValueCents:  order.ValueCents,
		ScheduledAt: order.ScheduledAt,
	})
	return err
}

// HandleOrderCanceled cancels an order on behalf of the upstream
// dispatcher. A transition the state machine forbids (the job already
// started or finished) is final, so it is logged and not retried.
func (a *IntakeAdapter) HandleOrderCanceled(ctx context.Context, cancel messaging.IntakeCancel) error {
	_, err := a.orders.ChangeStatus(ctx, a.system, cancel.OrderID, models.OrderCanceled, nil)
	if errors.Is(err, workflow.ErrInvalidTransition) {
		log.Warn().Str("order_id", cancel.OrderID.String()).Msg("Upstream cancel ignored, order already past cancelable state")
		return nil
	}
	return err
}
