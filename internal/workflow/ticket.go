package workflow

import (
	"github.com/pkg/errors"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
)

// ticketTransitions is the fixed transition table for support tickets.
// Fechado is terminal.
var ticketTransitions = map[string][]string{
	models.TicketOpen:            {models.TicketInAnalysis, models.TicketClosed},
	models.TicketInAnalysis:      {models.TicketWaitingSupport, models.TicketWaitingCustomer, models.TicketResolved},
	models.TicketWaitingSupport:  {models.TicketInAnalysis, models.TicketWaitingCustomer, models.TicketResolved},
	models.TicketWaitingCustomer: {models.TicketInAnalysis, models.TicketWaitingSupport, models.TicketResolved},
	models.TicketResolved:        {models.TicketClosed, models.TicketInAnalysis},
	models.TicketClosed:          {},
}

// CanTransitionTicket reports whether from -> to is in the table.
func CanTransitionTicket(from, to string) bool {
	for _, t := range ticketTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// TicketIsTerminal reports whether the ticket admits no further change.
func TicketIsTerminal(status string) bool {
	return status == models.TicketClosed
}

// ValidateTicketTransition checks a requested ticket status change.
func ValidateTicketTransition(from, to string) error {
	if !CanTransitionTicket(from, to) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", from, to)
	}
	return nil
}
