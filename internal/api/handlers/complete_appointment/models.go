package complete_appointment

import (
	"encoding/base64"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/appointments"
	appointmentModels "github.com/m04kA/SMC-SalonService/internal/service/appointments/models"
	commissionModels "github.com/m04kA/SMC-SalonService/internal/service/commissions/models"
	completeAppointment "github.com/m04kA/SMC-SalonService/internal/usecase/complete_appointment"
)

// EvidencePhotoRequest фото в base64
type EvidencePhotoRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,oneof=image/jpeg image/png image/webp"`
	Content     string `json:"content" validate:"required,base64"`
}

// PaymentRequest оплата при закрытии записи
type PaymentRequest struct {
	MethodID      int64           `json:"methodId" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount"`
	ProofImageURL *string         `json:"proofImageUrl,omitempty" validate:"omitempty,url"`
	Reference     *string         `json:"reference,omitempty" validate:"omitempty,max=255"`
}

// CompleteAppointmentRequest HTTP request model.
// Confirmed не передан - подтверждение не запрашивается; false - вернуть только сводку без сохранения.
type CompleteAppointmentRequest struct {
	Confirmed *bool                  `json:"confirmed,omitempty"`
	Evidence  []EvidencePhotoRequest `json:"evidence,omitempty" validate:"max=10,dive"`
	Payment   *PaymentRequest        `json:"payment,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CompleteAppointmentRequest) ToUseCaseRequest(actor domain.Actor, appointmentID int64) (*completeAppointment.Request, error) {
	req := &completeAppointment.Request{
		Actor:         actor,
		AppointmentID: appointmentID,
		Evidence:      make([]completeAppointment.EvidencePhoto, 0, len(r.Evidence)),
	}

	for i, p := range r.Evidence {
		content, err := base64.StdEncoding.DecodeString(p.Content)
		if err != nil {
			return nil, fmt.Errorf("evidence %d: %w", i, err)
		}
		req.Evidence = append(req.Evidence, completeAppointment.EvidencePhoto{
			FileName:    p.FileName,
			ContentType: p.ContentType,
			Content:     content,
		})
	}

	if r.Payment != nil {
		req.Payment = &completeAppointment.PaymentInput{
			MethodID:      r.Payment.MethodID,
			Amount:        r.Payment.Amount,
			ProofImageURL: r.Payment.ProofImageURL,
			Reference:     r.Payment.Reference,
		}
	}

	if r.Confirmed != nil {
		req.Confirmation = completeAppointment.ConfirmedFlag(*r.Confirmed)
	}

	return req, nil
}

// SummaryResponse сводка перед сохранением
type SummaryResponse struct {
	AppointmentID int64           `json:"appointmentId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	PaymentAmount decimal.Decimal `json:"paymentAmount"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	EvidenceCount int             `json:"evidenceCount"`
}

// PaymentResponse зарегистрированный платеж
type PaymentResponse struct {
	ID            int64           `json:"id"`
	MethodID      int64           `json:"methodId"`
	Amount        decimal.Decimal `json:"amount"`
	ProofImageURL *string         `json:"proofImageUrl,omitempty"`
	Reference     *string         `json:"reference,omitempty"`
}

// CompleteAppointmentResponse HTTP response model
type CompleteAppointmentResponse struct {
	Confirmed   bool                                  `json:"confirmed"`
	Summary     SummaryResponse                       `json:"summary"`
	Appointment *appointmentModels.AppointmentResponse `json:"appointment,omitempty"`
	Payment     *PaymentResponse                      `json:"payment,omitempty"`
	Commission  *commissionModels.CommissionResponse  `json:"commission,omitempty"`
	Warnings    []string                              `json:"warnings"`
}

// FromUseCaseResponse конвертирует результат use case в HTTP response
func FromUseCaseResponse(resp *completeAppointment.Response) *CompleteAppointmentResponse {
	out := &CompleteAppointmentResponse{
		Confirmed: resp.Confirmed,
		Summary: SummaryResponse{
			AppointmentID: resp.Summary.AppointmentID,
			TotalAmount:   resp.Summary.TotalAmount,
			PaidAmount:    resp.Summary.PaidAmount,
			PaymentAmount: resp.Summary.PaymentAmount,
			Outstanding:   resp.Summary.Outstanding,
			EvidenceCount: resp.Summary.EvidenceCount,
		},
		Warnings: resp.Warnings,
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}

	if resp.Appointment != nil {
		out.Appointment = appointmentModels.FromDomainAppointment(resp.Appointment, appointments.NextStatuses(resp.Appointment.Status))
	}
	if resp.Payment != nil {
		out.Payment = &PaymentResponse{
			ID:            resp.Payment.ID,
			MethodID:      resp.Payment.MethodID,
			Amount:        resp.Payment.Amount,
			ProofImageURL: resp.Payment.ProofImageURL,
			Reference:     resp.Payment.Reference,
		}
	}
	if resp.Commission != nil {
		c := commissionModels.FromDomainCommission(resp.Commission)
		out.Commission = &c
	}

	return out
}
