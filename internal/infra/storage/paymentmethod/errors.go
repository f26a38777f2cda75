package paymentmethod

import "errors"

var (
	// ErrPaymentMethodNotFound возвращается, когда способ оплаты не найден
	ErrPaymentMethodNotFound = errors.New("paymentmethod.repository: payment method not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("paymentmethod.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("paymentmethod.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("paymentmethod.repository: failed to scan row")
)
