package evidencestorage

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("evidencestorage client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от хранилища
	ErrInvalidResponse = errors.New("evidencestorage client: invalid response")

	// ErrRejected возвращается, когда хранилище отклонило файл (размер, тип)
	ErrRejected = errors.New("evidencestorage client: photo rejected")
)
