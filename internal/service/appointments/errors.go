package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")

	// ErrDenied возвращается, когда guard запретил действие; причина доступна через errors.As(domain.ValidationError)
	ErrDenied = errors.New("appointments: action denied")

	// ErrInvalidTransition возвращается при запросе перехода, которого нет в графе статусов
	ErrInvalidTransition = errors.New("appointments: invalid status transition")

	// ErrVersionConflict возвращается, когда запись была изменена параллельно
	ErrVersionConflict = errors.New("appointments: appointment was modified concurrently")

	// ErrUseCompletionWorkflow возвращается при попытке завершить запись простым переходом
	ErrUseCompletionWorkflow = errors.New("appointments: completion must go through the completion workflow")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("appointments: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("appointments: internal error")
)
