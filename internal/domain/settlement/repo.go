package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordRepository reads the prescriptions routed to a pharmacy in a time
// window. Half-open interval: from inclusive, to exclusive.
type RecordRepository interface {
	ListByPharmacyBetween(ctx context.Context, pharmacyID uuid.UUID, from, to time.Time) ([]Record, error)
}
