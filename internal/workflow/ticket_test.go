package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
)

func TestTicketTransitionTable(t *testing.T) {
	allowed := []struct{ from, to string }{
		{models.TicketOpen, models.TicketInAnalysis},
		{models.TicketOpen, models.TicketClosed},
		{models.TicketInAnalysis, models.TicketWaitingSupport},
		{models.TicketInAnalysis, models.TicketWaitingCustomer},
		{models.TicketInAnalysis, models.TicketResolved},
		{models.TicketWaitingSupport, models.TicketResolved},
		{models.TicketWaitingCustomer, models.TicketInAnalysis},
		{models.TicketResolved, models.TicketClosed},
		{models.TicketResolved, models.TicketInAnalysis},
	}
	for _, tr := range allowed {
		require.True(t, CanTransitionTicket(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	denied := []struct{ from, to string }{
		{models.TicketOpen, models.TicketResolved},
		{models.TicketOpen, models.TicketWaitingSupport},
		{models.TicketClosed, models.TicketOpen},
		{models.TicketClosed, models.TicketInAnalysis},
		{models.TicketResolved, models.TicketOpen},
	}
	for _, tr := range denied {
		require.False(t, CanTransitionTicket(tr.from, tr.to), "%s -> %s should be denied", tr.from, tr.to)
	}
}

func TestValidateTicketTransition(t *testing.T) {
	require.NoError(t, ValidateTicketTransition(models.TicketOpen, models.TicketInAnalysis))

	err := ValidateTicketTransition(models.TicketClosed, models.TicketInAnalysis)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTicketIsTerminal(t *testing.T) {
	require.True(t, TicketIsTerminal(models.TicketClosed))
	require.False(t, TicketIsTerminal(models.TicketResolved))
	require.False(t, TicketIsTerminal(models.TicketOpen))
}
