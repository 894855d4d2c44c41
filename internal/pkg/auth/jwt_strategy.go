package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/polkiloo/homebooking/internal/domain/model"
)

var signingMethod = jwt.SigningMethodHS256

// Claims is the identity token payload: sub carries the actor id.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTStrategy verifies HS256 identity tokens. IssueToken exists for tests and local tooling;
// production tokens come from the identity provider.
type JWTStrategy struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTStrategy builds JWTStrategy with provided secret and options.
func NewJWTStrategy(secret string, opts Options) *JWTStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTStrategy{secret: []byte(secret), issuer: opts.Issuer, ttl: ttl, now: time.Now}
}

// IssueToken signs a token for actor.
func (s *JWTStrategy) IssueToken(actor model.Actor) (string, error) {
	if !callerRole(actor.Role) {
		return "", fmt.Errorf("role %q cannot hold a token", actor.Role)
	}
	now := s.now()
	claims := Claims{
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseToken validates token and returns the actor it identifies.
func (s *JWTStrategy) ParseToken(token string) (model.Actor, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return model.Actor{}, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Actor{}, ErrInvalidToken
	}
	if !callerRole(claims.Role) {
		return model.Actor{}, ErrInvalidToken
	}
	return model.Actor{ID: id, Role: claims.Role}, nil
}

func (s *JWTStrategy) Name() string {
	return "jwt"
}

// The gateway never authenticates with a bearer token.
func callerRole(r model.Role) bool {
	return r == model.RoleCustomer || r == model.RolePartner || r == model.RoleAdmin
}
