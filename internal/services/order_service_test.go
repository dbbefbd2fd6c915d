package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/config"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/metrics"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/tracing"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/workflow"
)

func newTestOrderService(t *testing.T, orderRepo *MockOrderRepository, noteRepo *MockNoteRepository, attRepo *MockAttachmentRepository, notifier *MockNotifier) *OrderService {
	t.Helper()
	tracer, err := tracing.NewTracer(config.TracingConfig{})
	require.NoError(t, err)
	hub := realtime.NewHub(4)
	t.Cleanup(hub.Close)
	return &OrderService{
		orderRepo: orderRepo,
		noteRepo:  noteRepo,
		attRepo:   attRepo,
		notifier:  notifier,
		hub:       hub,
		metrics:   metrics.NewMetrics(),
		tracer:    tracer,
		now:       time.Now,
	}
}

func TestCreateOrderQueued(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.ServiceOrder")).Return(nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	order, err := service.Create(context.Background(), &OrderIntakeCommand{
		ClientName: "Transportes Silva",
		Location:   "BR-116 km 42",
		Plate:      "ABC1D23",
		ValueCents: 25000,
	})

	require.NoError(t, err)
	require.Equal(t, models.OrderQueued, order.Status)
	require.Nil(t, order.ScheduledAt)
	orderRepo.AssertExpectations(t)
}

func TestCreateOrderScheduledWhenTimeGiven(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.ServiceOrder")).Return(nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	future := time.Now().Add(2 * time.Hour)
	order, err := service.Create(context.Background(), &OrderIntakeCommand{
		ClientName:  "Oficina Central",
		Location:    "Av. Paulista 1000",
		ScheduledAt: &future,
	})

	require.NoError(t, err)
	require.Equal(t, models.OrderScheduled, order.Status)
	require.NotNil(t, order.ScheduledAt)
}

func TestCreateOrderRejectsInvalidInputWithoutPersisting(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	_, err := service.Create(context.Background(), &OrderIntakeCommand{
		Location: "somewhere",
	})
	require.Error(t, err)

	_, err = service.Create(context.Background(), &OrderIntakeCommand{
		ClientName: "Cliente",
		Location:   "somewhere",
		Plate:      "not-a-plate",
	})
	require.Error(t, err)

	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestChangeStatusAllowedTransition(t *testing.T) {
	creator := uuid.New()
	order := &models.ServiceOrder{
		ID:         uuid.New(),
		Status:     models.OrderQueued,
		ClientName: "Cliente A",
		CreatedBy:  &creator,
	}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.ServiceOrder")).Return(nil)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, creator, models.NotifyOrderStatus, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	service := newTestOrderService(t, orderRepo, nil, nil, notifier)

	updated, err := service.ChangeStatus(context.Background(), &models.User{Role: models.RoleOperator}, order.ID, models.OrderInProgress, nil)
	require.NoError(t, err)
	require.Equal(t, models.OrderInProgress, updated.Status)

	orderRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestChangeStatusRejectsCancelFromInProgress(t *testing.T) {
	order := &models.ServiceOrder{ID: uuid.New(), Status: models.OrderInProgress}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	_, err := service.ChangeStatus(context.Background(), &models.User{Role: models.RoleAdmin}, order.ID, models.OrderCanceled, nil)
	require.ErrorIs(t, err, workflow.ErrInvalidTransition)
	orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestChangeStatusScheduleNeedsFutureTime(t *testing.T) {
	order := &models.ServiceOrder{ID: uuid.New(), Status: models.OrderQueued}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)
	actor := &models.User{Role: models.RoleOperator}

	_, err := service.ChangeStatus(context.Background(), actor, order.ID, models.OrderScheduled, nil)
	require.ErrorIs(t, err, workflow.ErrScheduleRequired)

	past := time.Now().Add(-time.Hour)
	_, err = service.ChangeStatus(context.Background(), actor, order.ID, models.OrderScheduled, &past)
	require.ErrorIs(t, err, workflow.ErrScheduleRequired)

	orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRescheduleMovesScheduledTime(t *testing.T) {
	was := time.Now().Add(2 * time.Hour)
	order := &models.ServiceOrder{ID: uuid.New(), Status: models.OrderScheduled, ScheduledAt: &was}
	newTime := time.Now().Add(6 * time.Hour)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orderRepo.On("Save", mock.Anything, mock.MatchedBy(func(o *models.ServiceOrder) bool {
		return o.Status == models.OrderScheduled && o.ScheduledAt.Equal(newTime)
	})).Return(nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	updated, err := service.Reschedule(context.Background(), &models.User{ID: uuid.New()}, order.ID, newTime)
	require.NoError(t, err)
	require.True(t, updated.ScheduledAt.Equal(newTime))
	orderRepo.AssertExpectations(t)
}

func TestRescheduleOnlyForScheduledOrders(t *testing.T) {
	order := &models.ServiceOrder{ID: uuid.New(), Status: models.OrderQueued}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	_, err := service.Reschedule(context.Background(), &models.User{ID: uuid.New()}, order.ID, time.Now().Add(time.Hour))
	require.ErrorIs(t, err, workflow.ErrInvalidTransition)
	orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRescheduleNeedsFutureTime(t *testing.T) {
	was := time.Now().Add(2 * time.Hour)
	order := &models.ServiceOrder{ID: uuid.New(), Status: models.OrderScheduled, ScheduledAt: &was}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	_, err := service.Reschedule(context.Background(), &models.User{ID: uuid.New()}, order.ID, time.Now().Add(-time.Hour))
	require.ErrorIs(t, err, workflow.ErrScheduleRequired)
	orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBillRejectsOrdersThatAreNotDone(t *testing.T) {
	order := &models.ServiceOrder{ID: uuid.New(), Status: models.OrderInProgress}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	_, err := service.Bill(context.Background(), &models.User{Role: models.RoleManager}, order.ID)
	require.ErrorIs(t, err, workflow.ErrNotBillable)
}

func TestBillRejectsDoubleBilling(t *testing.T) {
	billed := time.Now().Add(-time.Hour)
	order := &models.ServiceOrder{ID: uuid.New(), Status: models.OrderDone, BilledAt: &billed}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	_, err := service.Bill(context.Background(), &models.User{Role: models.RoleManager}, order.ID)
	require.ErrorIs(t, err, workflow.ErrAlreadyBilled)
}

func TestExcludeRequiresAdmin(t *testing.T) {
	order := &models.ServiceOrder{ID: uuid.New(), Status: models.OrderQueued}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	err := service.Exclude(context.Background(), &models.User{ID: uuid.New(), Role: models.RoleManager}, order.ID)
	require.ErrorIs(t, err, ErrForbidden)
	orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestExcludeMarksOrderExcluded(t *testing.T) {
	order := &models.ServiceOrder{ID: uuid.New(), Status: models.OrderQueued}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orderRepo.On("Save", mock.Anything, mock.MatchedBy(func(o *models.ServiceOrder) bool {
		return o.Status == models.OrderExcluded
	})).Return(nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	err := service.Exclude(context.Background(), &models.User{ID: uuid.New(), Role: models.RoleAdmin}, order.ID)
	require.NoError(t, err)
	orderRepo.AssertExpectations(t)
}

func TestDeleteRejectsTerminalOrders(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	for _, status := range []string{models.OrderDone, models.OrderCanceled, models.OrderExcluded} {
		order := &models.ServiceOrder{ID: uuid.New(), Status: status}

		orderRepo := new(MockOrderRepository)
		orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

		service := newTestOrderService(t, orderRepo, nil, nil, nil)

		err := service.Delete(context.Background(), admin, order.ID)
		require.ErrorIs(t, err, ErrForbidden, "delete from %s should be denied", status)
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	order := &models.ServiceOrder{ID: uuid.New(), Status: models.OrderQueued}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	err := service.Delete(context.Background(), &models.User{ID: uuid.New(), Role: models.RoleManager}, order.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAddNoteClaimsAttachment(t *testing.T) {
	order := &models.ServiceOrder{ID: uuid.New(), Status: models.OrderInProgress}
	attachmentID := uuid.New()

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	noteRepo := new(MockNoteRepository)
	noteRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.OrderNote")).Return(nil)

	attRepo := new(MockAttachmentRepository)
	attRepo.On("SetOwner", mock.Anything, attachmentID, models.OwnerOrderNote, mock.AnythingOfType("uuid.UUID")).Return(nil)

	service := newTestOrderService(t, orderRepo, noteRepo, attRepo, nil)

	note, err := service.AddNote(context.Background(), &models.User{ID: uuid.New()}, order.ID, "guincho a caminho", &attachmentID)
	require.NoError(t, err)
	require.Equal(t, models.NoteTypeAttachment, note.Type)
	require.Equal(t, &attachmentID, note.AttachmentID)

	noteRepo.AssertExpectations(t)
	attRepo.AssertExpectations(t)
}

func TestNotifyDueSoonSkipsOrdersWithoutCreator(t *testing.T) {
	creator := uuid.New()
	soon := time.Now().Add(15 * time.Minute)
	orders := []models.ServiceOrder{
		{ID: uuid.New(), Status: models.OrderScheduled, ClientName: "Com dono", ScheduledAt: &soon, CreatedBy: &creator},
		{ID: uuid.New(), Status: models.OrderScheduled, ClientName: "Sem dono", ScheduledAt: &soon},
	}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("ListScheduledBetween", mock.Anything, mock.Anything, mock.Anything).Return(orders, nil)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, creator, models.NotifyOrderDue, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	service := newTestOrderService(t, orderRepo, nil, nil, notifier)

	notified, err := service.NotifyDueSoon(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, notified)
	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestOrderViewDecoration(t *testing.T) {
	created := time.Now().Add(-10 * time.Minute)
	order := &models.ServiceOrder{ID: uuid.New(), Status: models.OrderQueued, CreatedAt: created}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	service := newTestOrderService(t, orderRepo, nil, nil, nil)

	view, err := service.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Contains(t, view.DelayLabel, "Atrasado por:")
	require.ElementsMatch(t, []string{models.OrderScheduled, models.OrderInProgress, models.OrderCanceled}, view.NextStatuses)
	require.False(t, view.Billable)
}
