package rules

import "errors"

var (
	// ErrUnknownRule возвращается при попытке записать правило, которого нет в реестре
	ErrUnknownRule = errors.New("rules: unknown rule key")

	// ErrInvalidValue возвращается, когда значение правила не подходит ключу
	ErrInvalidValue = errors.New("rules: invalid rule value")

	// ErrAccessDenied возвращается, когда у пользователя нет прав
	ErrAccessDenied = errors.New("rules: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("rules: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("rules: internal error")
)
