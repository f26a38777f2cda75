package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// Request модели

// CreatePaymentRequest запрос на создание заявки на выплату
type CreatePaymentRequest struct {
	SpecialistID  int64   `json:"specialistId"`
	CommissionIDs []int64 `json:"commissionIds"`
	Notes         *string `json:"notes,omitempty"`
}

// Response модели

// CommissionResponse комиссия
type CommissionResponse struct {
	ID                   int64           `json:"id"`
	SpecialistID         int64           `json:"specialistId"`
	AppointmentID        int64           `json:"appointmentId"`
	ServiceID            int64           `json:"serviceId"`
	CommissionAmount     decimal.Decimal `json:"commissionAmount"`
	CommissionPercentage decimal.Decimal `json:"commissionPercentage"`
	Status               string          `json:"status"`
	PaymentRequestID     *int64          `json:"paymentRequestId,omitempty"`
	AppointmentDate      time.Time       `json:"appointmentDate"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// SummaryResponse сводка по статусам
type SummaryResponse struct {
	Pending        int             `json:"pending"`
	TotalPending   decimal.Decimal `json:"totalPending"`
	Requested      int             `json:"requested"`
	TotalRequested decimal.Decimal `json:"totalRequested"`
	Paid           int             `json:"paid"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
}

// CommissionListResponse список комиссий специалиста со сводкой
type CommissionListResponse struct {
	SpecialistID int64                `json:"specialistId"`
	Commissions  []CommissionResponse `json:"commissions"`
	Summary      SummaryResponse      `json:"summary"`
}

// PaymentRequestResponse заявка на выплату
type PaymentRequestResponse struct {
	ID            int64           `json:"id"`
	SpecialistID  int64           `json:"specialistId"`
	CommissionIDs []int64         `json:"commissionIds"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        string          `json:"status"`
	RequestDate   time.Time       `json:"requestDate"`
	PaidDate      *time.Time      `json:"paidDate,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
}

// FromDomainCommission конвертирует комиссию в ответ
func FromDomainCommission(c *domain.CommissionRecord) CommissionResponse {
	return CommissionResponse{
		ID:                   c.ID,
		SpecialistID:         c.SpecialistID,
		AppointmentID:        c.AppointmentID,
		ServiceID:            c.ServiceID,
		CommissionAmount:     c.CommissionAmount,
		CommissionPercentage: c.CommissionPercentage,
		Status:               string(c.Status),
		PaymentRequestID:     c.PaymentRequestID,
		AppointmentDate:      c.AppointmentDate,
		CreatedAt:            c.CreatedAt,
	}
}

// FromDomainPaymentRequest конвертирует заявку в ответ
func FromDomainPaymentRequest(p *domain.PaymentRequest) *PaymentRequestResponse {
	ids := p.CommissionIDs
	if ids == nil {
		ids = []int64{}
	}
	return &PaymentRequestResponse{
		ID:            p.ID,
		SpecialistID:  p.SpecialistID,
		CommissionIDs: ids,
		TotalAmount:   p.TotalAmount,
		Status:        string(p.Status),
		RequestDate:   p.RequestDate,
		PaidDate:      p.PaidDate,
		Notes:         p.Notes,
	}
}
