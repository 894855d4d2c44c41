package model

import "github.com/google/uuid"

// Event is a lifecycle trigger evaluated by the state machine.
type Event string

const (
	EventPaymentConfirmed           Event = "payment_confirmed"
	EventPartnerClaims              Event = "partner_claims"
	EventWorkStarted                Event = "work_started"
	EventCompletionRequested        Event = "completion_requested"
	EventCustomerConfirmsCompletion Event = "customer_confirms_completion"
	EventCustomerCancels            Event = "customer_cancels"
)

// Events lists every known event.
var Events = []Event{
	EventPaymentConfirmed,
	EventPartnerClaims,
	EventWorkStarted,
	EventCompletionRequested,
	EventCustomerConfirmsCompletion,
	EventCustomerCancels,
}

// Role is the kind of actor issuing a call.
type Role string

const (
	RoleCustomer Role = "customer"
	RolePartner  Role = "partner"
	RoleGateway  Role = "gateway"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RolePartner, RoleGateway, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated identity behind a call.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// GatewayActor identifies writes performed on behalf of the payment gateway.
var GatewayActor = Actor{Role: RoleGateway}
