// Package workflow holds the pure domain rules of the CRM: status
// transition tables, billing eligibility, the order delay clock and the
// knowledge base capability function. Nothing here touches the network
// or the database, so every rule is unit-testable in isolation.
package workflow

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
)

var (
	// ErrInvalidTransition is returned when a status change is not in the
	// transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrScheduleRequired is returned when a transition to Agendado is
	// attempted without a future date.
	ErrScheduleRequired = errors.New("a future scheduled time is required")

	// ErrAlreadyBilled is returned when billing an order twice.
	ErrAlreadyBilled = errors.New("order already billed")

	// ErrNotBillable is returned when billing an order that is not done.
	ErrNotBillable = errors.New("only completed orders can be billed")
)

// orderTransitions is the fixed transition table for service orders.
// Concluído has no forward transition; billing is a side-transition that
// sets the billed timestamp without changing status. Cancelado and
// Lançamento Excluído are immutable.
var orderTransitions = map[string][]string{
	models.OrderQueued:     {models.OrderScheduled, models.OrderInProgress, models.OrderCanceled},
	models.OrderScheduled:  {models.OrderInProgress, models.OrderCanceled},
	models.OrderInProgress: {models.OrderScheduled, models.OrderDone},
	models.OrderDone:       {},
	models.OrderCanceled:   {},
	models.OrderExcluded:   {},
}

// OrderTransitions returns the statuses reachable from the given one.
// The soft-delete target Lançamento Excluído is admin-only and handled
// separately, so it is never listed here.
func OrderTransitions(from string) []string {
	targets, ok := orderTransitions[from]
	if !ok {
		return nil
	}
	out := make([]string, len(targets))
	copy(out, targets)
	return out
}

// CanTransitionOrder reports whether from -> to is in the table.
func CanTransitionOrder(from, to string) bool {
	for _, t := range orderTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// OrderIsTerminal reports whether the status admits no further change.
func OrderIsTerminal(status string) bool {
	return status == models.OrderDone ||
		status == models.OrderCanceled ||
		status == models.OrderExcluded
}

// RequiresSchedule reports whether the target status needs a caller
// supplied future date/time.
func RequiresSchedule(to string) bool {
	return to == models.OrderScheduled
}

// ValidateOrderTransition checks a requested status change against the
// table and the scheduling rule.
func ValidateOrderTransition(from, to string, scheduledAt *time.Time, now time.Time) error {
	if !CanTransitionOrder(from, to) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", from, to)
	}
	if RequiresSchedule(to) {
		if scheduledAt == nil || !scheduledAt.After(now) {
			return ErrScheduleRequired
		}
	}
	return nil
}

// CanBill reports whether the billing action is offered: only for a
// completed order whose billed timestamp is still unset.
func CanBill(status string, billedAt *time.Time) bool {
	return status == models.OrderDone && billedAt == nil
}

// ValidateBilling returns the reason billing is refused, if any.
func ValidateBilling(status string, billedAt *time.Time) error {
	if status != models.OrderDone {
		return ErrNotBillable
	}
	if billedAt != nil {
		return ErrAlreadyBilled
	}
	return nil
}

// CanExcludeOrder reports whether an admin may remove the order. Terminal
// entries are immutable and stay for the ledger.
func CanExcludeOrder(role models.Role, status string) bool {
	return role >= models.RoleAdmin && !OrderIsTerminal(status)
}

// Delay returns how long the order has been waiting since creation,
// truncated to whole seconds and never negative.
func Delay(createdAt, now time.Time) time.Duration {
	d := now.Sub(createdAt)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

// FormatDelay renders the waiting time as the operator-facing label,
// e.g. "Atrasado por: 00:10:05". For terminal statuses the clock is
// frozen to a fixed label instead.
func FormatDelay(status string, createdAt, now time.Time) string {
	if OrderIsTerminal(status) {
		return "Encerrado"
	}
	d := Delay(createdAt, now)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("Atrasado por: %02d:%02d:%02d", h, m, s)
}
