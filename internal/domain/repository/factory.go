package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Orders() OrderRepository
	Partners() PartnerRepository
	PaymentReviews() PaymentReviewRepository
	HealthCheck(ctx context.Context) error
	Close()
}
