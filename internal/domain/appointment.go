package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	StatusPending    AppointmentStatus = "pending"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCanceled   AppointmentStatus = "canceled"
)

// Appointment represents a booked service performed by a specialist at a branch.
// Appointments are never physically deleted; CANCELED is a terminal logical state.
type Appointment struct {
	ID           int64
	BusinessID   int64
	BranchID     int64
	SpecialistID int64
	ClientID     int64
	ServiceID    int64

	StartTime time.Time // UTC
	EndTime   time.Time // UTC, strictly after StartTime
	Status    AppointmentStatus

	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal // never above TotalAmount

	HasConsent     bool
	EvidencePhotos []string

	// Flags copied from the service at creation time
	RequiresConsent  bool
	RequiresEvidence bool
	RequiresPayment  bool

	Notes              *string
	CancellationReason *string
	CanceledAt         *time.Time
	CompletedAt        *time.Time

	// Version is incremented on every write and used for optimistic locking
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if the status admits no further transitions
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// IsValid returns true for known statuses
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// IsTerminal returns true if the appointment is completed or canceled
func (a *Appointment) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// IsFullyPaid returns true when paid amount covers the total
func (a *Appointment) IsFullyPaid() bool {
	return a.PaidAmount.GreaterThanOrEqual(a.TotalAmount)
}

// OutstandingAmount returns the amount still to be paid, never negative
func (a *Appointment) OutstandingAmount() decimal.Decimal {
	rest := a.TotalAmount.Sub(a.PaidAmount)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// Clone returns a deep copy so guards and workflows can work on an immutable snapshot
func (a *Appointment) Clone() *Appointment {
	if a == nil {
		return nil
	}
	c := *a
	if a.EvidencePhotos != nil {
		c.EvidencePhotos = append([]string(nil), a.EvidencePhotos...)
	}
	return &c
}

// AppointmentFilter filter for listing appointments
type AppointmentFilter struct {
	BusinessID   int64      // required
	BranchID     *int64     // optional
	SpecialistID *int64     // optional
	Status       *AppointmentStatus
	From         *time.Time // StartTime >= From
	To           *time.Time // StartTime < To
}
