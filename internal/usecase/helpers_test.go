package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/storage/memory"
	testhelpers "github.com/polkiloo/homebooking/internal/test"
)

type harness struct {
	store       *memory.Storage
	sink        *testhelpers.NotificationSinkStub
	signal      *FanoutSignal
	coordinator *Coordinator
	orders      *OrderUseCase
	reconciler  *ReconciliationUseCase
	fanout      *FanoutUseCase
	partners    *PartnerUseCase
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newHarness(t *testing.T, retries int) *harness {
	t.Helper()
	store := memory.New()
	logger := discardLogger()
	sink := &testhelpers.NotificationSinkStub{}
	signal := NewFanoutSignal()
	coordinator := NewCoordinator(store.Orders(), logger, nil)
	return &harness{
		store:       store,
		sink:        sink,
		signal:      signal,
		coordinator: coordinator,
		orders:      NewOrderUseCase(store.Orders(), coordinator, retries),
		reconciler:  NewReconciliationUseCase(store.Orders(), store.PaymentReviews(), coordinator, signal, logger, nil),
		fanout:      NewFanoutUseCase(store.Orders(), store.Partners(), sink, 4, logger, nil),
		partners:    NewPartnerUseCase(store.Partners()),
	}
}

func customer() model.Actor { return model.Actor{ID: uuid.New(), Role: model.RoleCustomer} }

func partner() model.Actor { return model.Actor{ID: uuid.New(), Role: model.RolePartner} }

func admin() model.Actor { return model.Actor{ID: uuid.New(), Role: model.RoleAdmin} }

func validInput(amount int64) CreateOrderInput {
	return CreateOrderInput{
		ServiceID:       "svc-cleaning",
		ServiceName:     "Deep cleaning",
		Category:        "cleaning",
		Date:            "2026-10-20",
		Time:            "09:00",
		DurationMinutes: 120,
		ContactName:     "Dewi",
		Phone:           "+628123456789",
		Address:         "Jl. Melati 1, Jakarta",
		Amount:          decimal.NewFromInt(amount),
		PaymentMethod:   "qris",
	}
}

func (h *harness) book(t *testing.T, owner model.Actor, amount int64) *model.Order {
	t.Helper()
	order, err := h.orders.Create(context.Background(), owner, validInput(amount))
	require.NoError(t, err)
	return order
}

func (h *harness) pay(t *testing.T, order *model.Order) {
	t.Helper()
	res, err := h.reconciler.Reconcile(context.Background(), model.PaymentSignal{
		OrderID:           order.ID,
		Amount:            order.Payment.Amount,
		OutcomeCode:       "200",
		TransactionStatus: "settlement",
		TransactionID:     "tx-" + order.ID.String()[:8],
		Channel:           model.ChannelNotify,
	})
	require.NoError(t, err)
	require.Equal(t, model.ReconciliationConfirmed, res.Outcome)
}

// seed stores an order directly in the given status with an assigned partner when provided.
func (h *harness) seed(t *testing.T, owner model.Actor, status model.OrderStatus, assigned *uuid.UUID) *model.Order {
	t.Helper()
	order := h.book(t, owner, 150000)
	if status == model.OrderStatusPendingPayment && assigned == nil {
		return order
	}
	next := order.Clone()
	next.Status = status
	next.PartnerID = assigned
	entry := model.StatusHistoryEntry{Status: status, At: order.CreatedAt, Note: "seeded"}
	next.StatusHistory = append(next.StatusHistory, entry)
	require.NoError(t, h.store.Orders().CompareAndSwap(context.Background(), model.Transition{
		Order: next, ExpectedStatus: order.Status, ExpectedVersion: order.Version, Entry: entry,
	}))
	stored, err := h.store.Orders().Get(context.Background(), order.ID)
	require.NoError(t, err)
	return stored
}

func requireHistoryConsistent(t *testing.T, order *model.Order) {
	t.Helper()
	require.NotEmpty(t, order.StatusHistory)
	require.Equal(t, order.Status, order.StatusHistory[len(order.StatusHistory)-1].Status)
	for i := 1; i < len(order.StatusHistory); i++ {
		require.False(t, order.StatusHistory[i].At.Before(order.StatusHistory[i-1].At), "history must be chronological")
	}
}
