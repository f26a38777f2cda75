package commissions

import "errors"

var (
	// ErrPaymentRequestNotFound возвращается, когда заявка на выплату не найдена
	ErrPaymentRequestNotFound = errors.New("commissions: payment request not found")

	// ErrCommissionNotFound возвращается, когда одна из выбранных комиссий не найдена
	ErrCommissionNotFound = errors.New("commissions: commission not found")

	// ErrCommissionNotPending возвращается, когда выбранная комиссия уже запрошена или выплачена
	ErrCommissionNotPending = errors.New("commissions: commission is not pending")

	// ErrInvalidRequestStatus возвращается при недопустимой смене статуса заявки
	ErrInvalidRequestStatus = errors.New("commissions: invalid payment request status change")

	// ErrAccessDenied возвращается, когда у пользователя нет прав
	ErrAccessDenied = errors.New("commissions: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("commissions: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("commissions: internal error")
)
