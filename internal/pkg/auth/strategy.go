package auth

import (
	"errors"
	"time"

	"github.com/polkiloo/homebooking/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Strategy verifies bearer tokens issued by the identity provider.
type Strategy interface {
	IssueToken(actor model.Actor) (string, error)
	ParseToken(token string) (model.Actor, error)
	Name() string
}

type Options struct {
	Issuer string
	TTL    time.Duration
}
