package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// Request модель запроса на создание записи
type Request struct {
	Actor        domain.Actor // Пользователь, создающий запись
	BranchID     int64        // ID филиала
	SpecialistID int64        // ID специалиста
	ClientID     int64        // ID клиента
	ServiceID    int64        // ID услуги
	StartTime    time.Time    // Начало (UTC)
	EndTime      time.Time    // Конец (UTC), строго позже начала
	Notes        *string      // Заметки (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	Appointment *domain.Appointment
}
