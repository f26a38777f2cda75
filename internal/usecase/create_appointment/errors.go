package create_appointment

import "errors"

var (
	// ErrBranchNotFound возвращается, когда филиал не найден в бизнесе пользователя
	ErrBranchNotFound = errors.New("create_appointment: branch not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена в бизнесе пользователя
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrDenied возвращается, когда guard создания запретил действие
	ErrDenied = errors.New("create_appointment: action denied")

	// ErrInvalidTime возвращается, когда время записи некорректно или в прошлом
	ErrInvalidTime = errors.New("create_appointment: invalid appointment time")

	// ErrSpecialistBusy возвращается, когда у специалиста уже есть запись на это время
	ErrSpecialistBusy = errors.New("create_appointment: specialist already has an appointment at this time")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
