package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIntakeHandler struct {
	mock.Mock
}

func (m *MockIntakeHandler) HandleOrderCreated(ctx context.Context, order IntakeOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockIntakeHandler) HandleOrderCanceled(ctx context.Context, cancel IntakeCancel) error {
	args := m.Called(ctx, cancel)
	return args.Error(0)
}

func envelope(t *testing.T, eventType string, data interface{}) *azservicebus.ReceivedMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	body, err := json.Marshal(AzureBusMessage{EventType: eventType, Data: raw})
	require.NoError(t, err)
	return &azservicebus.ReceivedMessage{Body: body}
}

func TestProcessOrderCreated(t *testing.T) {
	handler := new(MockIntakeHandler)
	handler.On("HandleOrderCreated", mock.Anything, mock.MatchedBy(func(o IntakeOrder) bool {
		return o.ClientName == "Transportadora Norte" && o.ValueCents == 42000
	})).Return(nil)

	processor := NewProcessor(handler)

	msg := envelope(t, DispatchOrderCreated, IntakeOrder{
		ClientName: "Transportadora Norte",
		Location:   "SP-330 km 98",
		ValueCents: 42000,
	})

	require.NoError(t, processor.ProcessMessage(context.Background(), msg))
	handler.AssertExpectations(t)
}

func TestProcessOrderCanceled(t *testing.T) {
	orderID := uuid.New()

	handler := new(MockIntakeHandler)
	handler.On("HandleOrderCanceled", mock.Anything, IntakeCancel{OrderID: orderID}).Return(nil)

	processor := NewProcessor(handler)

	msg := envelope(t, DispatchOrderCanceled, IntakeCancel{OrderID: orderID})
	require.NoError(t, processor.ProcessMessage(context.Background(), msg))
	handler.AssertExpectations(t)
}

func TestProcessUnknownEventIsSkipped(t *testing.T) {
	handler := new(MockIntakeHandler)
	processor := NewProcessor(handler)

	msg := envelope(t, "SomethingElse", map[string]string{})
	require.NoError(t, processor.ProcessMessage(context.Background(), msg))
	handler.AssertNotCalled(t, "HandleOrderCreated", mock.Anything, mock.Anything)
	handler.AssertNotCalled(t, "HandleOrderCanceled", mock.Anything, mock.Anything)
}

func TestProcessBadEnvelopeFails(t *testing.T) {
	processor := NewProcessor(new(MockIntakeHandler))
	err := processor.ProcessMessage(context.Background(), &azservicebus.ReceivedMessage{Body: []byte("not json")})
	require.Error(t, err)
}
