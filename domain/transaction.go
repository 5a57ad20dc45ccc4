package domain

import "time"

// TransactionStatus is the lifecycle state of a booking.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusApproved  TransactionStatus = "APPROVED"
	TransactionStatusRejected  TransactionStatus = "REJECTED"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// transitions lists the legal status moves. REJECTED, COMPLETED and
// CANCELLED are terminal.
var transitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPending:  {TransactionStatusApproved, TransactionStatusRejected, TransactionStatusCancelled},
	TransactionStatusApproved: {TransactionStatusCompleted, TransactionStatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to TransactionStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transaction representa la solicitud de alquiler de un tenant sobre una
// propiedad. OwnerID and Amount are snapshots taken from the property at
// creation time and are never re-derived.
type Transaction struct {
	ID         string            `bson:"_id,omitempty" json:"id"`
	PropertyID string            `bson:"property_id" json:"property_id"`
	TenantID   string            `bson:"tenant_id" json:"tenant_id"`
	OwnerID    string            `bson:"owner_id" json:"owner_id"`
	Amount     float64           `bson:"amount" json:"amount"`
	StartDate  time.Time         `bson:"start_date" json:"start_date"`
	EndDate    time.Time         `bson:"end_date" json:"end_date"`
	Status     TransactionStatus `bson:"status" json:"status"`
	CreatedAt  time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `bson:"updated_at" json:"updated_at"`
}
