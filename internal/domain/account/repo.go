package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository reads user and pharmacy profiles. Missing rows surface as
// apperr.KindNotFound.
type Repository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetPharmacy(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	PharmacyExists(ctx context.Context, id uuid.UUID) (bool, error)
	ListPharmacies(ctx context.Context, limit, offset int) ([]*Pharmacy, int, error)
}
