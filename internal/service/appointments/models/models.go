package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// TransitionRequest запрос на смену статуса записи
type TransitionRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"` // обязателен для отмены
}

// EditRequest запрос на изменение записи
type EditRequest struct {
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

// ListRequest запрос на получение записей бизнеса
type ListRequest struct {
	BranchID     *int64
	SpecialistID *int64
	Status       *string
	From         *time.Time
	To           *time.Time
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListRequest) ToDomainFilter(businessID int64) (domain.AppointmentFilter, error) {
	filter := domain.AppointmentFilter{
		BusinessID:   businessID,
		BranchID:     r.BranchID,
		SpecialistID: r.SpecialistID,
		From:         r.From,
		To:           r.To,
	}
	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	return filter, nil
}

// ToDomainStatus конвертирует строку в статус записи
func ToDomainStatus(s string) (domain.AppointmentStatus, error) {
	status := domain.AppointmentStatus(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID                 int64           `json:"id"`
	BusinessID         int64           `json:"businessId"`
	BranchID           int64           `json:"branchId"`
	SpecialistID       int64           `json:"specialistId"`
	ClientID           int64           `json:"clientId"`
	ServiceID          int64           `json:"serviceId"`
	StartTime          time.Time       `json:"startTime"`
	EndTime            time.Time       `json:"endTime"`
	Status             string          `json:"status"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	PaidAmount         decimal.Decimal `json:"paidAmount"`
	HasConsent         bool            `json:"hasConsent"`
	EvidencePhotos     []string        `json:"evidencePhotos"`
	RequiresConsent    bool            `json:"requiresConsent"`
	RequiresEvidence   bool            `json:"requiresEvidence"`
	RequiresPayment    bool            `json:"requiresPayment"`
	Notes              *string         `json:"notes,omitempty"`
	CancellationReason *string         `json:"cancellationReason,omitempty"`
	CanceledAt         *time.Time      `json:"canceledAt,omitempty"`
	CompletedAt        *time.Time      `json:"completedAt,omitempty"`
	NextStatuses       []string        `json:"nextStatuses"`
	Version            int64           `json:"version"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// AppointmentListResponse список записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// FromDomainAppointment конвертирует доменную запись в ответ
// next - статусы, достижимые из текущего
func FromDomainAppointment(a *domain.Appointment, next []domain.AppointmentStatus) *AppointmentResponse {
	photos := a.EvidencePhotos
	if photos == nil {
		photos = []string{}
	}
	nextStatuses := make([]string, len(next))
	for i, s := range next {
		nextStatuses[i] = string(s)
	}
	return &AppointmentResponse{
		ID:                 a.ID,
		BusinessID:         a.BusinessID,
		BranchID:           a.BranchID,
		SpecialistID:       a.SpecialistID,
		ClientID:           a.ClientID,
		ServiceID:          a.ServiceID,
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		Status:             string(a.Status),
		TotalAmount:        a.TotalAmount,
		PaidAmount:         a.PaidAmount,
		HasConsent:         a.HasConsent,
		EvidencePhotos:     photos,
		RequiresConsent:    a.RequiresConsent,
		RequiresEvidence:   a.RequiresEvidence,
		RequiresPayment:    a.RequiresPayment,
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CanceledAt:         a.CanceledAt,
		CompletedAt:        a.CompletedAt,
		NextStatuses:       nextStatuses,
		Version:            a.Version,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}
