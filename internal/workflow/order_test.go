package workflow

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
)

func TestOrderTransitionTable(t *testing.T) {
	allowed := []struct{ from, to string }{
		{models.OrderQueued, models.OrderScheduled},
		{models.OrderQueued, models.OrderInProgress},
		{models.OrderQueued, models.OrderCanceled},
		{models.OrderScheduled, models.OrderInProgress},
		{models.OrderScheduled, models.OrderCanceled},
		{models.OrderInProgress, models.OrderScheduled},
		{models.OrderInProgress, models.OrderDone},
	}
	for _, tr := range allowed {
		require.True(t, CanTransitionOrder(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	denied := []struct{ from, to string }{
		{models.OrderQueued, models.OrderDone},
		{models.OrderScheduled, models.OrderQueued},
		{models.OrderDone, models.OrderInProgress},
		{models.OrderDone, models.OrderQueued},
		{models.OrderCanceled, models.OrderQueued},
		{models.OrderCanceled, models.OrderInProgress},
		{models.OrderExcluded, models.OrderQueued},
		{models.OrderInProgress, models.OrderCanceled},
	}
	for _, tr := range denied {
		require.False(t, CanTransitionOrder(tr.from, tr.to), "%s -> %s should be denied", tr.from, tr.to)
	}
}

func TestOrderTransitionsListsCopies(t *testing.T) {
	first := OrderTransitions(models.OrderQueued)
	require.Len(t, first, 3)
	first[0] = "mutated"
	require.NotEqual(t, first[0], OrderTransitions(models.OrderQueued)[0])

	require.Empty(t, OrderTransitions(models.OrderDone))
	require.Nil(t, OrderTransitions("unknown"))
}

func TestValidateOrderTransition_ScheduleRequired(t *testing.T) {
	now := time.Now()

	err := ValidateOrderTransition(models.OrderQueued, models.OrderScheduled, nil, now)
	require.ErrorIs(t, err, ErrScheduleRequired)

	past := now.Add(-time.Hour)
	err = ValidateOrderTransition(models.OrderQueued, models.OrderScheduled, &past, now)
	require.ErrorIs(t, err, ErrScheduleRequired)

	future := now.Add(2 * time.Hour)
	err = ValidateOrderTransition(models.OrderQueued, models.OrderScheduled, &future, now)
	require.NoError(t, err)

	// Reschedule from in-progress follows the same rule.
	err = ValidateOrderTransition(models.OrderInProgress, models.OrderScheduled, &future, now)
	require.NoError(t, err)
}

func TestValidateOrderTransition_Invalid(t *testing.T) {
	err := ValidateOrderTransition(models.OrderDone, models.OrderInProgress, nil, time.Now())
	require.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestCanBill(t *testing.T) {
	now := time.Now()

	require.True(t, CanBill(models.OrderDone, nil))
	require.False(t, CanBill(models.OrderDone, &now))
	require.False(t, CanBill(models.OrderInProgress, nil))
	require.False(t, CanBill(models.OrderCanceled, nil))

	require.NoError(t, ValidateBilling(models.OrderDone, nil))
	require.ErrorIs(t, ValidateBilling(models.OrderDone, &now), ErrAlreadyBilled)
	require.ErrorIs(t, ValidateBilling(models.OrderQueued, nil), ErrNotBillable)
}

func TestCanExcludeOrder(t *testing.T) {
	require.True(t, CanExcludeOrder(models.RoleAdmin, models.OrderQueued))
	require.True(t, CanExcludeOrder(models.RoleAdmin, models.OrderInProgress))
	require.False(t, CanExcludeOrder(models.RoleAdmin, models.OrderDone))
	require.False(t, CanExcludeOrder(models.RoleAdmin, models.OrderCanceled))
	require.False(t, CanExcludeOrder(models.RoleOperator, models.OrderQueued))
	require.False(t, CanExcludeOrder(models.RoleManager, models.OrderQueued))
}

func TestFormatDelay(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 10, 5, 0, time.UTC)
	created := now.Add(-10*time.Minute - 5*time.Second)

	label := FormatDelay(models.OrderQueued, created, now)
	require.Equal(t, "Atrasado por: 00:10:05", label)

	// The clock advances once per second.
	label = FormatDelay(models.OrderQueued, created, now.Add(time.Second))
	require.Equal(t, "Atrasado por: 00:10:06", label)

	// Hour rollover.
	label = FormatDelay(models.OrderQueued, now.Add(-90*time.Minute), now)
	require.Equal(t, "Atrasado por: 01:30:00", label)

	// Terminal statuses freeze to a fixed label.
	require.Equal(t, "Encerrado", FormatDelay(models.OrderDone, created, now))
	require.Equal(t, "Encerrado", FormatDelay(models.OrderCanceled, created, now))

	// Clock skew never renders a negative delay.
	require.Equal(t, "Atrasado por: 00:00:00", FormatDelay(models.OrderQueued, now.Add(time.Minute), now))
}
