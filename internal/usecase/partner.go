package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/homebooking/internal/domain/errors"
	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/domain/repository"
)

// PartnerInput registers or updates a partner's eligibility.
type PartnerInput struct {
	Name   string `validate:"required,max=200"`
	Active bool
}

// PartnerUseCase manages partner eligibility for notifications.
type PartnerUseCase struct {
	partners repository.PartnerRepository
}

// NewPartnerUseCase constructs PartnerUseCase.
func NewPartnerUseCase(partners repository.PartnerRepository) *PartnerUseCase {
	return &PartnerUseCase{partners: partners}
}

// Upsert creates or updates partner id. Admin only; the completed-jobs counter is never set here.
func (u *PartnerUseCase) Upsert(ctx context.Context, actor model.Actor, id uuid.UUID, in PartnerInput) (*model.Partner, error) {
	if actor.Role != model.RoleAdmin {
		return nil, domainErrors.New(domainErrors.CodeUnauthorized, "partner management is admin only")
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	p := &model.Partner{ID: id, Name: in.Name, Active: in.Active}
	if err := u.partners.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Profile returns the calling partner's record, including the completed-jobs counter.
func (u *PartnerUseCase) Profile(ctx context.Context, actor model.Actor) (*model.Partner, error) {
	if actor.Role != model.RolePartner {
		return nil, domainErrors.New(domainErrors.CodeUnauthorized, "only partners have a profile")
	}
	return u.partners.Get(ctx, actor.ID)
}
