package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/metrics"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/repositories"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/tracing"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/utils"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/workflow"
)

// ErrForbidden is returned when the acting user lacks the role an
// operation requires.
var ErrForbidden = errors.New("operation not allowed for this user")

// Notifier delivers a notification to a single user. It is satisfied by
// NotificationService and kept narrow so services stay mock-testable.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, message string, linkID *uuid.UUID) error
}

// OrderIntakeCommand is the payload dispatch intake sends when a new
// tow job enters the queue.
type OrderIntakeCommand struct {
	ClientName  string     `json:"client_name" validate:"required"`
	ClientPhone string     `json:"client_phone"`
	Vehicle     string     `json:"vehicle"`
	Plate       string     `json:"plate"`
	Location    string     `json:"location" validate:"required"`
	Description string     `json:"description"`
	ValueCents  int64      `json:"value_cents" validate:"gte=0"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	CreatedBy   *uuid.UUID `json:"created_by"`
}

// OrderView decorates an order with the derived fields the queue screen
// renders: the delay label and the transitions the current status allows.
type OrderView struct {
	models.ServiceOrder
	DelayLabel   string   `json:"delay_label"`
	NextStatuses []string `json:"next_statuses"`
	Billable     bool     `json:"billable"`
}

// OrderService handles the dispatch queue business logic
type OrderService struct {
	db        *gorm.DB
	orderRepo repositories.OrderRepository
	noteRepo  repositories.NoteRepository
	attRepo   repositories.AttachmentRepository
	notifier  Notifier
	hub       *realtime.Hub
	metrics   *metrics.Metrics
	tracer    tracing.Tracer
	now       func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	db *gorm.DB,
	readOnlyDB *gorm.DB,
	notifier Notifier,
	hub *realtime.Hub,
	m *metrics.Metrics,
	tracer tracing.Tracer,
) *OrderService {
	return &OrderService{
		db:        db,
		orderRepo: repositories.NewOrderRepository(db, readOnlyDB),
		noteRepo:  repositories.NewNoteRepository(db, readOnlyDB),
		attRepo:   repositories.NewAttachmentRepository(db, readOnlyDB),
		notifier:  notifier,
		hub:       hub,
		metrics:   m,
		tracer:    tracer,
		now:       time.Now,
	}
}

// Create registers a new service order in the queue. Orders arriving via
// the dispatch intake queue and via the API both land here.
func (s *OrderService) Create(ctx context.Context, cmd *OrderIntakeCommand) (*models.ServiceOrder, error) {
	txn := s.tracer.StartTransaction("create-order")
	defer s.tracer.EndTransaction(txn)

	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, errors.Wrap(err, "invalid intake command")
	}
	if cmd.Plate != "" && !utils.IsValidPlate(cmd.Plate) {
		return nil, errors.New("invalid vehicle plate")
	}

	order := &models.ServiceOrder{
		ID:          uuid.New(),
		Status:      models.OrderQueued,
		ClientName:  cmd.ClientName,
		ClientPhone: cmd.ClientPhone,
		Vehicle:     cmd.Vehicle,
		Plate:       cmd.Plate,
		Location:    cmd.Location,
		Description: cmd.Description,
		ValueCents:  cmd.ValueCents,
		CreatedBy:   cmd.CreatedBy,
	}
	if cmd.ScheduledAt != nil && cmd.ScheduledAt.After(s.now()) {
		order.Status = models.OrderScheduled
		order.ScheduledAt = cmd.ScheduledAt
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, errors.Wrap(err, "failed to create order")
	}

	s.metrics.IncrementCounter(metrics.CounterOrdersCreated)
	s.hub.PublishRefresh("orders")

	log.Info().
		Str("order_id", order.ID.String()).
		Str("status", order.Status).
		Str("client", order.ClientName).
		Msg("Service order created")

	return order, nil
}

// Get returns one order decorated for the queue screen.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(order), nil
}

// ListByStatus returns the orders in one queue tab, oldest first, each
// decorated with its delay label.
func (s *OrderService) ListByStatus(ctx context.Context, status string) ([]OrderView, error) {
	orders, err := s.orderRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, *s.view(&orders[i]))
	}
	return views, nil
}

func (s *OrderService) view(order *models.ServiceOrder) *OrderView {
	return &OrderView{
		ServiceOrder: *order,
		DelayLabel:   workflow.FormatDelay(order.Status, order.CreatedAt, s.now()),
		NextStatuses: workflow.OrderTransitions(order.Status),
		Billable:     workflow.CanBill(order.Status, order.BilledAt),
	}
}

// ChangeStatus moves an order through the dispatch state machine. A move
// to "Agendado" needs a future time; a move to "Concluído" opens a revenue
// ledger entry in the same transaction.
func (s *OrderService) ChangeStatus(ctx context.Context, actor *models.User, id uuid.UUID, newStatus string, scheduledAt *time.Time) (*models.ServiceOrder, error) {
	txn := s.tracer.StartTransaction("change-order-status")
	defer s.tracer.EndTransaction(txn)

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := workflow.ValidateOrderTransition(order.Status, newStatus, scheduledAt, s.now()); err != nil {
		return nil, err
	}

	previous := order.Status
	order.Status = newStatus
	if newStatus == models.OrderScheduled {
		order.ScheduledAt = scheduledAt
	}

	if newStatus == models.OrderDone {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(order).Error; err != nil {
				return err
			}
			entry := &models.RevenueEntry{
				ID:          uuid.New(),
				OrderID:     order.ID,
				AmountCents: order.ValueCents,
				Description: order.ClientName + " - " + order.Vehicle,
			}
			return tx.Create(entry).Error
		})
	} else {
		err = s.orderRepo.Save(ctx, order)
	}
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, errors.Wrap(err, "failed to update order status")
	}

	switch newStatus {
	case models.OrderDone:
		s.metrics.IncrementCounter(metrics.CounterOrdersCompleted)
	case models.OrderCanceled:
		s.metrics.IncrementCounter(metrics.CounterOrdersCanceled)
	}

	if order.CreatedBy != nil && s.notifier != nil {
		msg := "Ordem de " + order.ClientName + ": " + previous + " -> " + newStatus
		if err := s.notifier.Notify(ctx, *order.CreatedBy, models.NotifyOrderStatus, msg, &order.ID); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("Failed to notify order status change")
		}
	}
	s.hub.PublishRefresh("orders")

	log.Info().
		Str("order_id", order.ID.String()).
		Str("from", previous).
		Str("to", newStatus).
		Msg("Order status changed")

	return order, nil
}

// Reschedule moves the time of an already scheduled order. The order
// stays Agendado; only a future time is accepted.
func (s *OrderService) Reschedule(ctx context.Context, actor *models.User, id uuid.UUID, newTime time.Time) (*models.ServiceOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderScheduled {
		return nil, errors.Wrapf(workflow.ErrInvalidTransition, "reschedule from %s", order.Status)
	}
	if !newTime.After(s.now()) {
		return nil, workflow.ErrScheduleRequired
	}

	order.ScheduledAt = &newTime
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to reschedule order")
	}

	if order.CreatedBy != nil && s.notifier != nil {
		msg := "Ordem de " + order.ClientName + " reagendada para " + newTime.Format("02/01 15:04")
		if err := s.notifier.Notify(ctx, *order.CreatedBy, models.NotifyOrderStatus, msg, &order.ID); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("Failed to notify reschedule")
		}
	}
	s.hub.PublishRefresh("orders")

	log.Info().
		Str("order_id", order.ID.String()).
		Time("scheduled_at", newTime).
		Msg("Order rescheduled")

	return order, nil
}

// Bill stamps a completed order as billed and marks its ledger entry.
// Billing twice is rejected.
func (s *OrderService) Bill(ctx context.Context, actor *models.User, id uuid.UUID) (*models.ServiceOrder, error) {
	txn := s.tracer.StartTransaction("bill-order")
	defer s.tracer.EndTransaction(txn)

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := workflow.ValidateBilling(order.Status, order.BilledAt); err != nil {
		return nil, err
	}

	now := s.now()
	order.BilledAt = &now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(order).Error; err != nil {
			return err
		}
		return tx.Model(&models.RevenueEntry{}).
			Where("order_id = ?", order.ID).
			Updates(map[string]interface{}{"billed": true, "billed_at": now}).Error
	})
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, errors.Wrap(err, "failed to bill order")
	}

	s.metrics.IncrementCounter(metrics.CounterOrdersBilled)
	s.hub.PublishRefresh("orders")

	log.Info().Str("order_id", order.ID.String()).Msg("Order billed")
	return order, nil
}

// AddNote appends a note to an order. When attachmentID is set the note
// carries a file and the attachment is claimed for this note.
func (s *OrderService) AddNote(ctx context.Context, actor *models.User, orderID uuid.UUID, text string, attachmentID *uuid.UUID) (*models.OrderNote, error) {
	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	note := &models.OrderNote{
		ID:       uuid.New(),
		OrderID:  orderID,
		AuthorID: actor.ID,
		Type:     models.NoteTypeText,
		Text:     text,
	}
	if attachmentID != nil {
		note.Type = models.NoteTypeAttachment
		note.AttachmentID = attachmentID
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, errors.Wrap(err, "failed to create order note")
	}

	if attachmentID != nil {
		if err := s.attRepo.SetOwner(ctx, *attachmentID, models.OwnerOrderNote, note.ID); err != nil {
			log.Warn().Err(err).Str("attachment_id", attachmentID.String()).Msg("Failed to claim attachment for note")
		}
	}

	return note, nil
}

// Exclude soft-removes a non-terminal order from the queue. Admin only.
func (s *OrderService) Exclude(ctx context.Context, actor *models.User, id uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !workflow.CanExcludeOrder(actor.Role, order.Status) {
		return ErrForbidden
	}

	order.Status = models.OrderExcluded
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return errors.Wrap(err, "failed to exclude order")
	}

	s.hub.PublishRefresh("orders")
	log.Info().Str("order_id", id.String()).Str("actor", actor.ID.String()).Msg("Order excluded from queue")
	return nil
}

// Delete hard-removes an order together with its notes and any revenue
// ledger entry. Admin only, and never for terminal orders: those are
// immutable history and Concluído carries the billing ledger.
func (s *OrderService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !workflow.CanExcludeOrder(actor.Role, order.Status) {
		return ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.OrderNote{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.RevenueEntry{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ServiceOrder{}, "id = ?", id).Error
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete order")
	}

	s.hub.PublishRefresh("orders")
	log.Info().Str("order_id", id.String()).Str("actor", actor.ID.String()).Msg("Order deleted")
	return nil
}

// NotifyDueSoon finds scheduled orders whose time falls inside the next
// window and pings whoever created them. The worker runs this on a timer.
func (s *OrderService) NotifyDueSoon(ctx context.Context, window time.Duration) (int, error) {
	now := s.now()
	orders, err := s.orderRepo.ListScheduledBetween(ctx, now, now.Add(window))
	if err != nil {
		return 0, err
	}

	notified := 0
	for i := range orders {
		order := &orders[i]
		if order.CreatedBy == nil || s.notifier == nil {
			continue
		}
		msg := "Agendamento de " + order.ClientName + " às " + order.ScheduledAt.Format("15:04")
		if err := s.notifier.Notify(ctx, *order.CreatedBy, models.NotifyOrderDue, msg, &order.ID); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("Failed to send due-soon notification")
			continue
		}
		notified++
	}
	return notified, nil
}
