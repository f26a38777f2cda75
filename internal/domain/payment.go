package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod configured way of charging a client
type PaymentMethod struct {
	ID            int64
	BusinessID    int64
	Name          string
	RequiresProof bool
	Active        bool
}

// Payment registered against an appointment
type Payment struct {
	ID            int64
	AppointmentID int64
	MethodID      int64
	Amount        decimal.Decimal
	ProofImageURL *string
	Reference     *string
	RegisteredBy  int64
	CreatedAt     time.Time
}
