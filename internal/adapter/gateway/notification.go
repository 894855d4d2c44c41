package gateway

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
)

// Notification is the gateway's transaction payload. The same fields arrive as
// return-redirect query parameters, as the notify JSON body and from the status API.
type Notification struct {
	OrderID           string `json:"order_id" form:"order_id"`
	GrossAmount       string `json:"gross_amount" form:"gross_amount"`
	StatusCode        string `json:"status_code" form:"status_code"`
	TransactionStatus string `json:"transaction_status" form:"transaction_status"`
	TransactionID     string `json:"transaction_id" form:"transaction_id"`
	SignatureKey      string `json:"signature_key,omitempty" form:"signature_key"`
}

// Signal converts the payload into a reconciliation input for channel.
func (n Notification) Signal(channel model.PaymentChannel) (model.PaymentSignal, error) {
	id, err := uuid.Parse(strings.TrimSpace(n.OrderID))
	if err != nil {
		return model.PaymentSignal{}, domainErrors.New(domainErrors.CodeValidation, "order_id must be a uuid")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(n.GrossAmount))
	if err != nil {
		return model.PaymentSignal{}, domainErrors.New(domainErrors.CodeValidation, "gross_amount must be a decimal number")
	}
	return model.PaymentSignal{
		OrderID:           id,
		Amount:            amount,
		OutcomeCode:       n.StatusCode,
		TransactionStatus: n.TransactionStatus,
		TransactionID:     n.TransactionID,
		Channel:           channel,
	}, nil
}

// Signature computes hex(sha512(order_id + status_code + gross_amount + server_key)).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// Verifier checks notify signatures against the configured server key.
type Verifier struct {
	serverKey string
}

// NewVerifier constructs Verifier. An empty key disables checking.
func NewVerifier(serverKey string) *Verifier {
	return &Verifier{serverKey: serverKey}
}

// Enabled reports whether signatures are checked.
func (v *Verifier) Enabled() bool {
	return v != nil && v.serverKey != ""
}

// Verify returns an unauthenticated error when the notification's signature does not match.
func (v *Verifier) Verify(n Notification) error {
	if !v.Enabled() {
		return nil
	}
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, v.serverKey)
	got := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return domainErrors.New(domainErrors.CodeUnauthenticated, "invalid gateway signature")
	}
	return nil
}
