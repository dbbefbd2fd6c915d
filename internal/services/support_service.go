package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/cache"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/metrics"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/repositories"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/utils"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/workflow"
)

// ErrTicketClosed is returned when posting into a resolved or closed
// ticket thread.
var ErrTicketClosed = errors.New("ticket thread is closed")

// TicketInput carries the fields needed to open a support ticket.
type TicketInput struct {
	Subject     string `json:"subject" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Body        string `json:"body" validate:"required"`
}

// SupportService handles support tickets and their message threads
type SupportService struct {
	db          *gorm.DB
	ticketRepo  repositories.TicketRepository
	messageRepo repositories.MessageRepository
	attRepo     repositories.AttachmentRepository
	userRepo    repositories.UserRepository
	notifier    Notifier
	hub         *realtime.Hub
	cache       *cache.RedisCache
	metrics     *metrics.Metrics
}

// NewSupportService creates a new support service
func NewSupportService(
	db *gorm.DB,
	readOnlyDB *gorm.DB,
	notifier Notifier,
	hub *realtime.Hub,
	redisCache *cache.RedisCache,
	m *metrics.Metrics,
) *SupportService {
	return &SupportService{
		db:          db,
		ticketRepo:  repositories.NewTicketRepository(db, readOnlyDB),
		messageRepo: repositories.NewMessageRepository(db, readOnlyDB),
		attRepo:     repositories.NewAttachmentRepository(db, readOnlyDB),
		userRepo:    repositories.NewUserRepository(db, readOnlyDB),
		notifier:    notifier,
		hub:         hub,
		cache:       redisCache,
		metrics:     m,
	}
}

// Open creates a ticket with its first message and alerts the support
// staff (managers and admins).
func (s *SupportService) Open(ctx context.Context, actor *models.User, input *TicketInput) (*models.SupportTicket, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, errors.Wrap(err, "invalid ticket")
	}

	ticket := &models.SupportTicket{
		ID:          uuid.New(),
		Subject:     input.Subject,
		Priority:    input.Priority,
		Type:        input.Type,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Status:      models.TicketOpen,
		OpenedBy:    actor.ID,
	}
	if ticket.Priority == "" {
		ticket.Priority = "normal"
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, errors.Wrap(err, "failed to create ticket")
	}

	first := &models.SupportMessage{
		ID:       uuid.New(),
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Body:     input.Body,
	}
	if err := s.messageRepo.Create(ctx, first); err != nil {
		return nil, errors.Wrap(err, "failed to create first ticket message")
	}

	s.metrics.IncrementCounter(metrics.CounterTicketsOpened)

	if s.notifier != nil {
		staff, err := s.userRepo.ListByMinRole(ctx, models.RoleManager)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to list support staff for ticket alert")
		} else {
			msg := "Novo chamado de " + actor.Name + ": " + ticket.Subject
			for i := range staff {
				if staff[i].ID == actor.ID {
					continue
				}
				if err := s.notifier.Notify(ctx, staff[i].ID, models.NotifySupport, msg, &ticket.ID); err != nil {
					log.Warn().Err(err).Str("user_id", staff[i].ID.String()).Msg("Failed to alert support staff")
				}
			}
		}
	}

	log.Info().Str("ticket_id", ticket.ID.String()).Str("subject", ticket.Subject).Msg("Support ticket opened")
	return ticket, nil
}

// Get returns a ticket with its full message thread. Operators only see
// their own tickets.
func (s *SupportService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.SupportTicket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role < models.RoleManager && ticket.OpenedBy != actor.ID {
		return nil, ErrForbidden
	}
	return ticket, nil
}

// List returns tickets, scoped to the actor's own unless they are staff.
func (s *SupportService) List(ctx context.Context, actor *models.User, status string) ([]models.SupportTicket, error) {
	var openedBy *uuid.UUID
	if actor.Role < models.RoleManager {
		openedBy = &actor.ID
	}
	return s.ticketRepo.List(ctx, status, openedBy)
}

// ChangeStatus moves a ticket through its lifecycle, announces the change
// to the ticket room and pings the other side of the conversation.
func (s *SupportService) ChangeStatus(ctx context.Context, actor *models.User, id uuid.UUID, newStatus string) (*models.SupportTicket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role < models.RoleManager && ticket.OpenedBy != actor.ID {
		return nil, ErrForbidden
	}
	if err := workflow.ValidateTicketTransition(ticket.Status, newStatus); err != nil {
		return nil, err
	}

	ticket.Status = newStatus
	if err := s.ticketRepo.Save(ctx, ticket); err != nil {
		return nil, errors.Wrap(err, "failed to update ticket status")
	}

	if newStatus == models.TicketResolved {
		s.metrics.IncrementCounter(metrics.CounterTicketsResolved)
	}
	s.invalidate(ctx, ticket.ID)

	if s.hub != nil {
		s.hub.Publish(realtime.Event{
			Kind:     realtime.KindTicketStatus,
			TicketID: &ticket.ID,
			Data:     realtime.TicketStatusEvent{TicketID: ticket.ID, Status: newStatus},
		})
	}
	if s.notifier != nil && ticket.OpenedBy != actor.ID {
		msg := "Chamado \"" + ticket.Subject + "\" agora está: " + newStatus
		if err := s.notifier.Notify(ctx, ticket.OpenedBy, models.NotifySupport, msg, &ticket.ID); err != nil {
			log.Warn().Err(err).Str("ticket_id", ticket.ID.String()).Msg("Failed to notify ticket status change")
		}
	}

	log.Info().Str("ticket_id", ticket.ID.String()).Str("status", newStatus).Msg("Ticket status changed")
	return ticket, nil
}

// PostMessage appends to the ticket thread. The message lands in the
// ticket room immediately; participants outside the room get a support
// notification instead.
func (s *SupportService) PostMessage(ctx context.Context, actor *models.User, ticketID uuid.UUID, body string, attachmentID *uuid.UUID) (*models.SupportMessage, error) {
	if body == "" && attachmentID == nil {
		return nil, errors.New("message body is required")
	}

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if actor.Role < models.RoleManager && ticket.OpenedBy != actor.ID {
		return nil, ErrForbidden
	}
	if workflow.TicketIsTerminal(ticket.Status) {
		return nil, ErrTicketClosed
	}

	message := &models.SupportMessage{
		ID:           uuid.New(),
		TicketID:     ticketID,
		AuthorID:     actor.ID,
		Body:         body,
		AttachmentID: attachmentID,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, errors.Wrap(err, "failed to create ticket message")
	}
	if attachmentID != nil {
		if err := s.attRepo.SetOwner(ctx, *attachmentID, models.OwnerSupportMessage, message.ID); err != nil {
			log.Warn().Err(err).Str("attachment_id", attachmentID.String()).Msg("Failed to claim attachment for message")
		}
	}

	s.invalidate(ctx, ticketID)

	if s.hub != nil {
		s.hub.Publish(realtime.Event{
			Kind:     realtime.KindSupportMessage,
			TicketID: &ticketID,
			Data: realtime.SupportMessageEvent{
				MessageID: message.ID,
				TicketID:  ticketID,
				AuthorID:  actor.ID,
				Body:      body,
			},
		})
		s.hub.Publish(realtime.Event{
			Kind:     realtime.KindSupportNotification,
			UserID:   &ticket.OpenedBy,
			TicketID: nil,
			Data:     realtime.TicketStatusEvent{TicketID: ticketID, Status: ticket.Status},
		})
	}
	if s.notifier != nil && ticket.OpenedBy != actor.ID {
		msg := "Nova mensagem no chamado \"" + ticket.Subject + "\""
		if err := s.notifier.Notify(ctx, ticket.OpenedBy, models.NotifySupport, msg, &ticket.ID); err != nil {
			log.Warn().Err(err).Str("ticket_id", ticket.ID.String()).Msg("Failed to notify new message")
		}
	}

	return message, nil
}

func (s *SupportService) invalidate(ctx context.Context, ticketID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.TicketCacheKey(ticketID)); err != nil {
		log.Warn().Err(err).Str("ticket_id", ticketID.String()).Msg("Failed to invalidate ticket cache")
	}
}
