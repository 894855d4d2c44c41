// Package statemachine decides order lifecycle transitions. It performs no I/O.
package statemachine

import (
	"fmt"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
)

// Decision is an accepted transition.
type Decision struct {
	From model.OrderStatus
	To   model.OrderStatus
	Note string
}

type rule struct {
	role model.Role
	from []model.OrderStatus
	to   model.OrderStatus
	note string
}

var rules = map[model.Event]rule{
	model.EventPaymentConfirmed: {
		role: model.RoleGateway,
		from: []model.OrderStatus{model.OrderStatusPendingPayment},
		to:   model.OrderStatusPendingConfirmation,
		note: "payment confirmed",
	},
	model.EventPartnerClaims: {
		role: model.RolePartner,
		from: []model.OrderStatus{model.OrderStatusPendingConfirmation},
		to:   model.OrderStatusConfirmed,
		note: "claimed by partner",
	},
	model.EventWorkStarted: {
		role: model.RolePartner,
		from: []model.OrderStatus{model.OrderStatusConfirmed},
		to:   model.OrderStatusInProgress,
		note: "work started",
	},
	model.EventCompletionRequested: {
		role: model.RolePartner,
		from: []model.OrderStatus{model.OrderStatusConfirmed, model.OrderStatusInProgress},
		to:   model.OrderStatusPendingCompletionApproval,
		note: "completion requested by partner",
	},
	model.EventCustomerConfirmsCompletion: {
		role: model.RoleCustomer,
		from: []model.OrderStatus{model.OrderStatusPendingCompletionApproval},
		to:   model.OrderStatusCompleted,
		note: "completion confirmed by customer",
	},
	model.EventCustomerCancels: {
		role: model.RoleCustomer,
		from: []model.OrderStatus{
			model.OrderStatusPendingPayment,
			model.OrderStatusPendingConfirmation,
			model.OrderStatusConfirmed,
		},
		to:   model.OrderStatusCancelled,
		note: "cancelled by customer",
	},
}

// Decide evaluates event against the current state for an actor of the given role.
// An event not allowed from current yields ErrInvalidTransition regardless of role;
// an allowed event issued by the wrong role yields ErrUnauthorized.
func Decide(current model.OrderStatus, event model.Event, role model.Role) (Decision, error) {
	r, ok := rules[event]
	if !ok {
		return Decision{}, domainErrors.New(domainErrors.CodeInvalidTransition, fmt.Sprintf("unknown event %q", event))
	}
	if !contains(r.from, current) {
		return Decision{}, domainErrors.New(domainErrors.CodeInvalidTransition,
			fmt.Sprintf("event %s is not allowed from %s", event, current))
	}
	if role != r.role {
		return Decision{}, domainErrors.New(domainErrors.CodeUnauthorized,
			fmt.Sprintf("event %s requires role %s", event, r.role))
	}
	return Decision{From: current, To: r.to, Note: r.note}, nil
}

// Allowed reports whether event is legal from current, ignoring the actor.
func Allowed(current model.OrderStatus, event model.Event) bool {
	r, ok := rules[event]
	return ok && contains(r.from, current)
}

// RoleFor returns the role that may issue event.
func RoleFor(event model.Event) (model.Role, bool) {
	r, ok := rules[event]
	return r.role, ok
}

func contains(states []model.OrderStatus, s model.OrderStatus) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}
