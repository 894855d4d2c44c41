package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/domain/statemachine"
	"github.com/polkiloo/homebooking/internal/storage/memory"
	testhelpers "github.com/polkiloo/homebooking/internal/test"
)

func TestCoordinatorRejectedEventsLeaveOrderUnchanged(t *testing.T) {
	for _, status := range model.OrderStatuses {
		for _, event := range model.Events {
			if statemachine.Allowed(status, event) {
				continue
			}
			t.Run(string(status)+"/"+string(event), func(t *testing.T) {
				h := newHarness(t, 0)
				owner := customer()
				assigned := uuid.New()
				order := h.seed(t, owner, status, &assigned)

				role, _ := statemachine.RoleFor(event)
				actor := model.Actor{ID: assigned, Role: role}
				if role == model.RoleCustomer {
					actor.ID = owner.ID
				}

				_, err := h.coordinator.Apply(context.Background(), TransitionRequest{OrderID: order.ID, Event: event, Actor: actor})
				require.ErrorIs(t, err, domainErrors.ErrInvalidTransition)

				after, err := h.store.Orders().Get(context.Background(), order.ID)
				require.NoError(t, err)
				assert.Equal(t, order, after)
			})
		}
	}
}

func TestCoordinatorAppliesAndRecordsHistory(t *testing.T) {
	h := newHarness(t, 0)
	fixed := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	h.coordinator.now = func() time.Time { return fixed }
	order := h.seed(t, customer(), model.OrderStatusPendingConfirmation, nil)
	p := partner()

	updated, err := h.coordinator.Apply(context.Background(), TransitionRequest{
		OrderID: order.ID,
		Event:   model.EventPartnerClaims,
		Actor:   p,
		Mutate:  func(o *model.Order, _ time.Time) { o.PartnerID = &p.ID },
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, order.Version+1, updated.Version)
	assert.True(t, updated.AssignedTo(p.ID))
	assert.Equal(t, fixed, updated.UpdatedAt)

	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	assert.Equal(t, "claimed by partner", last.Note)
	assert.Equal(t, model.RolePartner, last.Actor)
	assert.Equal(t, fixed, last.At)

	stored, err := h.store.Orders().Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Version, stored.Version)
	requireHistoryConsistent(t, stored)
	assert.Len(t, stored.StatusHistory, len(order.StatusHistory)+1)
}

func TestCoordinatorWrongRoleIsUnauthorized(t *testing.T) {
	h := newHarness(t, 0)
	order := h.seed(t, customer(), model.OrderStatusPendingConfirmation, nil)

	_, err := h.coordinator.Apply(context.Background(), TransitionRequest{
		OrderID: order.ID,
		Event:   model.EventPartnerClaims,
		Actor:   customer(),
	})
	require.ErrorIs(t, err, domainErrors.ErrUnauthorized)
}

func TestCoordinatorExpectedStatusMismatch(t *testing.T) {
	h := newHarness(t, 0)
	owner := customer()
	order := h.seed(t, owner, model.OrderStatusPendingConfirmation, nil)

	_, err := h.coordinator.Apply(context.Background(), TransitionRequest{
		OrderID:  order.ID,
		Event:    model.EventCustomerCancels,
		Actor:    owner,
		Expected: model.OrderStatusPendingPayment,
	})
	require.ErrorIs(t, err, domainErrors.ErrConflict)
	assert.True(t, domainErrors.IsRetryable(err))
}

func TestCoordinatorCheckRunsFirstAndIsNotRetried(t *testing.T) {
	h := newHarness(t, 0)
	order := h.seed(t, customer(), model.OrderStatusPendingConfirmation, nil)
	calls := 0
	denied := domainErrors.New(domainErrors.CodeConflict, "taken")

	_, err := h.coordinator.Apply(context.Background(), TransitionRequest{
		OrderID: order.ID,
		Event:   model.EventPartnerClaims,
		Actor:   partner(),
		Check: func(*model.Order) error {
			calls++
			return denied
		},
		Retries: 3,
	})
	require.ErrorIs(t, err, domainErrors.ErrConflict)
	assert.Equal(t, 1, calls)
}

func TestCoordinatorTerminalOrderIsInvalidBeforeOwnership(t *testing.T) {
	h := newHarness(t, 0)
	owner := customer()
	first := partner()
	for _, status := range []model.OrderStatus{model.OrderStatusCompleted, model.OrderStatusCancelled} {
		order := h.seed(t, owner, status, &first.ID)

		_, err := h.orders.Claim(context.Background(), partner(), order.ID)
		require.ErrorIs(t, err, domainErrors.ErrInvalidTransition, status)

		_, err = h.orders.StartWork(context.Background(), partner(), order.ID)
		require.ErrorIs(t, err, domainErrors.ErrInvalidTransition, status)

		_, err = h.orders.Cancel(context.Background(), customer(), order.ID, CancelInput{})
		require.ErrorIs(t, err, domainErrors.ErrInvalidTransition, status)
	}

	// a live order still reports who holds it
	taken := h.seed(t, owner, model.OrderStatusConfirmed, &first.ID)
	_, err := h.orders.Claim(context.Background(), partner(), taken.ID)
	require.ErrorIs(t, err, domainErrors.ErrConflict)
}

func TestCoordinatorRetriesLostCompareAndSwap(t *testing.T) {
	store := memory.New()
	failures := 2
	repo := &testhelpers.OrderRepositoryStub{OrderRepository: store.Orders()}
	repo.CompareAndSwapFn = func(ctx context.Context, tr model.Transition) error {
		if failures > 0 {
			failures--
			return domainErrors.New(domainErrors.CodeConflict, "stale")
		}
		return store.Orders().CompareAndSwap(ctx, tr)
	}
	coordinator := NewCoordinator(repo, discardLogger(), nil)
	owner := customer()
	order, err := NewOrderUseCase(store.Orders(), coordinator, 0).Create(context.Background(), owner, validInput(150000))
	require.NoError(t, err)

	req := TransitionRequest{OrderID: order.ID, Event: model.EventCustomerCancels, Actor: owner, Retries: 1}
	_, err = coordinator.Apply(context.Background(), req)
	require.ErrorIs(t, err, domainErrors.ErrConflict)
	assert.Equal(t, 0, failures)

	failures = 1
	updated, err := coordinator.Apply(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, updated.Status)
}

func TestCoordinatorPropagatesStoreErrors(t *testing.T) {
	store := memory.New()
	boom := errors.New("store down")
	repo := &testhelpers.OrderRepositoryStub{
		OrderRepository:  store.Orders(),
		CompareAndSwapFn: func(context.Context, model.Transition) error { return boom },
	}
	coordinator := NewCoordinator(repo, discardLogger(), nil)
	owner := customer()
	order, err := NewOrderUseCase(store.Orders(), coordinator, 0).Create(context.Background(), owner, validInput(150000))
	require.NoError(t, err)

	_, err = coordinator.Apply(context.Background(), TransitionRequest{
		OrderID: order.ID, Event: model.EventCustomerCancels, Actor: owner, Retries: 5,
	})
	require.ErrorIs(t, err, boom)

	_, err = coordinator.Apply(context.Background(), TransitionRequest{
		OrderID: uuid.New(), Event: model.EventCustomerCancels, Actor: owner,
	})
	require.ErrorIs(t, err, domainErrors.ErrNotFound)
}
