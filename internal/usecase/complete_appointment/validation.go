package complete_appointment

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AppointmentID <= 0 {
		return fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	if len(req.Evidence) > domain.MaxEvidencePhotos {
		return fmt.Errorf("%w: at most %d evidence photos allowed", ErrInvalidInput, domain.MaxEvidencePhotos)
	}

	for i, photo := range req.Evidence {
		if len(photo.Content) == 0 {
			return fmt.Errorf("%w: evidence photo %d is empty", ErrInvalidInput, i)
		}
	}

	return nil
}

// validatePaymentPayload проверяет поля оплаты, не зависящие от способа оплаты
func validatePaymentPayload(payment *PaymentInput, outstanding decimal.Decimal) error {
	if payment.MethodID <= 0 {
		return invalidPayment("payment method is required")
	}

	if !payment.Amount.IsPositive() {
		return invalidPayment("payment amount must be greater than zero")
	}

	if payment.Amount.GreaterThan(outstanding) {
		return invalidPayment(fmt.Sprintf("payment amount %s exceeds outstanding amount %s",
			payment.Amount.StringFixed(domain.DefaultCurrencyPlaces), outstanding.StringFixed(domain.DefaultCurrencyPlaces)))
	}

	return nil
}

// validatePaymentMethod проверяет способ оплаты и наличие чека, если способ его требует
func validatePaymentMethod(payment *PaymentInput, method *domain.PaymentMethod) error {
	if !method.Active {
		return invalidPayment(fmt.Sprintf("payment method %q is not active", method.Name))
	}

	if method.RequiresProof && (payment.ProofImageURL == nil || strings.TrimSpace(*payment.ProofImageURL) == "") {
		return invalidPayment(fmt.Sprintf("payment method %q requires a proof image", method.Name))
	}

	return nil
}

func invalidPayment(message string) error {
	return fmt.Errorf("%w: %w", ErrInvalidPayment, domain.ValidationError{
		Code:    domain.CodeInvalidPayment,
		Message: message,
	})
}
