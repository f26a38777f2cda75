package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionMode defines how the commission percentage is chosen
type CommissionMode string

const (
	// CommissionModeGeneral one rate for all services: specialist override, else business default
	CommissionModeGeneral CommissionMode = "GENERAL"
	// CommissionModePerService rate configured per service
	CommissionModePerService CommissionMode = "POR_SERVICIO"
	// CommissionModeMixed service rate with business default as fallback
	CommissionModeMixed CommissionMode = "MIXTO"
)

// IsValid returns true for known modes
func (m CommissionMode) IsValid() bool {
	switch m {
	case CommissionModeGeneral, CommissionModePerService, CommissionModeMixed:
		return true
	}
	return false
}

// CommissionStatus represents the payout status of a commission
type CommissionStatus string

const (
	CommissionPending          CommissionStatus = "pending"
	CommissionPaymentRequested CommissionStatus = "payment_requested"
	CommissionPaid             CommissionStatus = "paid"
)

// CommissionRecord is created exactly once per completed appointment
type CommissionRecord struct {
	ID                   int64
	BusinessID           int64
	SpecialistID         int64
	AppointmentID        int64
	ServiceID            int64
	CommissionAmount     decimal.Decimal
	CommissionPercentage decimal.Decimal
	Status               CommissionStatus
	PaymentRequestID     *int64
	AppointmentDate      time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// PaymentRequestStatus status of a payout request
type PaymentRequestStatus string

const (
	PaymentRequestPending  PaymentRequestStatus = "pending"
	PaymentRequestApproved PaymentRequestStatus = "approved"
	PaymentRequestPaid     PaymentRequestStatus = "paid"
	PaymentRequestRejected PaymentRequestStatus = "rejected"
)

// PaymentRequest batches pending commissions of one specialist for payout
type PaymentRequest struct {
	ID            int64
	BusinessID    int64
	SpecialistID  int64
	CommissionIDs []int64
	TotalAmount   decimal.Decimal
	Status        PaymentRequestStatus
	RequestDate   time.Time
	PaidDate      *time.Time
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ServiceInfo is the part of a catalogue service relevant to commissions and completion
type ServiceInfo struct {
	ID         int64
	BusinessID int64
	Name       string
	Price      decimal.Decimal
	// CommissionPercentage is the service-specific rate, nil when not configured
	CommissionPercentage *decimal.Decimal
	RequiresConsent      bool
	RequiresEvidence     bool
	RequiresPayment      bool
}

// SpecialistRate holds the commission rates applicable to a specialist
type SpecialistRate struct {
	SpecialistID int64
	// Override is the specialist-specific rate, nil when not set
	Override *decimal.Decimal
	// BusinessDefault is the business-wide default rate
	BusinessDefault decimal.Decimal
}
