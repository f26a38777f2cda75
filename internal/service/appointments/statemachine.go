package appointments

import (
	"fmt"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// transitions допустимые переходы статусов записи
var transitions = map[domain.AppointmentStatus][]domain.AppointmentStatus{
	domain.StatusPending:    {domain.StatusConfirmed, domain.StatusInProgress, domain.StatusCanceled},
	domain.StatusConfirmed:  {domain.StatusInProgress, domain.StatusCanceled},
	domain.StatusInProgress: {domain.StatusCompleted, domain.StatusCanceled},
}

// CanTransition возвращает true, если переход from → to есть в графе
func CanTransition(from, to domain.AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses возвращает статусы, достижимые из from
func NextStatuses(from domain.AppointmentStatus) []domain.AppointmentStatus {
	next := transitions[from]
	out := make([]domain.AppointmentStatus, len(next))
	copy(out, next)
	return out
}

// CheckTransition возвращает ErrInvalidTransition для переходов вне графа
func CheckTransition(from, to domain.AppointmentStatus) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
