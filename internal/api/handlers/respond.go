package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/services"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/workflow"
)

// respondError maps service and workflow errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrTicketClosed),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrScheduleRequired),
		errors.Is(err, workflow.ErrAlreadyBilled),
		errors.Is(err, workflow.ErrNotBillable),
		errors.Is(err, workflow.ErrApproverRequired),
		errors.Is(err, workflow.ErrReasonRequired),
		errors.Is(err, workflow.ErrNotPending),
		errors.Is(err, workflow.ErrNotAssignedApprover):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
