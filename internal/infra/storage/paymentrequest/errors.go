package paymentrequest

import "errors"

var (
	// ErrPaymentRequestNotFound возвращается, когда заявка на выплату не найдена
	ErrPaymentRequestNotFound = errors.New("paymentrequest.repository: payment request not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("paymentrequest.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("paymentrequest.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("paymentrequest.repository: failed to scan row")
)
