package complete_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("complete_appointment: appointment not found")

	// ErrDenied возвращается, когда guard завершения запретил действие
	ErrDenied = errors.New("complete_appointment: action denied")

	// ErrInvalidPayment возвращается при некорректных данных оплаты
	ErrInvalidPayment = errors.New("complete_appointment: invalid payment")

	// ErrPaymentMethodNotFound возвращается, когда способ оплаты не найден в бизнесе
	ErrPaymentMethodNotFound = errors.New("complete_appointment: payment method not found")

	// ErrVersionConflict возвращается, когда запись изменили параллельно
	ErrVersionConflict = errors.New("complete_appointment: appointment was modified concurrently")

	// ErrCommissionNotGenerated возвращается, когда запись завершена, но комиссию сохранить не удалось
	ErrCommissionNotGenerated = errors.New("complete_appointment: appointment completed but commission was not generated")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("complete_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("complete_appointment: internal error")
)
