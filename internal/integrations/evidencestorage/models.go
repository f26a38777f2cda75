package evidencestorage

// Photo фото-доказательство для загрузки
type Photo struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

// UploadResponse ответ хранилища на загрузку
type UploadResponse struct {
	URL string `json:"url"`
}

// ErrorResponse модель ошибки от хранилища
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
