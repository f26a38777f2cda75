package complete_appointment

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/integrations/evidencestorage"
)

// EvidencePhoto фото-доказательство выполненной услуги
type EvidencePhoto = evidencestorage.Photo

// PaymentInput данные оплаты при закрытии записи
type PaymentInput struct {
	MethodID      int64
	Amount        decimal.Decimal
	ProofImageURL *string
	Reference     *string
}

// Request входные данные для завершения записи
type Request struct {
	Actor         domain.Actor
	AppointmentID int64
	Evidence      []EvidencePhoto
	// Payment nil - обычное завершение без оплаты
	Payment *PaymentInput
	// Confirmation nil - подтверждение не требуется
	Confirmation ConfirmationPrompt
}

// Summary сводка действия для подтверждения пользователем
type Summary struct {
	AppointmentID int64
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	PaymentAmount decimal.Decimal
	Outstanding   decimal.Decimal
	EvidenceCount int
	Warnings      []string
}

// Response результат завершения записи
type Response struct {
	// Confirmed false - пользователь не подтвердил, ничего не сохранено
	Confirmed   bool
	Summary     Summary
	Appointment *domain.Appointment
	Payment     *domain.Payment
	Commission  *domain.CommissionRecord
	Warnings    []string
}
