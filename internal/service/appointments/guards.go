package appointments

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// Названия guard-ов для логов и метрик
const (
	GuardCreate   = "can_create"
	GuardEdit     = "can_edit"
	GuardCancel   = "can_cancel"
	GuardComplete = "can_complete"
)

// GuardResult решение guard-а. При Allowed=false Reason всегда непустой.
type GuardResult struct {
	Allowed bool
	Guard   string
	Reason  string
}

// Err возвращает nil для разрешения и ErrDenied с причиной для запрета
func (r GuardResult) Err() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrDenied, domain.ValidationError{
		Code:    domain.CodeGuardDenied,
		Message: r.Reason,
	})
}

func allow(guard string) GuardResult {
	return GuardResult{Allowed: true, Guard: guard}
}

func deny(guard, format string, v ...interface{}) GuardResult {
	return GuardResult{Guard: guard, Reason: fmt.Sprintf(format, v...)}
}

// Guards набор чистых проверок перед переходами статусов.
// Все проверки работают над снимком (запись, правила, права) и не обращаются к I/O.
type Guards struct {
	defaultCancellationHours int
}

// NewGuards создает guards; defaultCancellationHours используется, когда правило отмены не задает значение
func NewGuards(defaultCancellationHours int) Guards {
	if defaultCancellationHours <= 0 {
		defaultCancellationHours = domain.DefaultCancellationLeadHours
	}
	return Guards{defaultCancellationHours: defaultCancellationHours}
}

// CanCreate проверяет право создать запись
func (g Guards) CanCreate(actor domain.Actor, rules domain.RuleSet) GuardResult {
	if !actor.Permissions.HasPermission(domain.PermAppointmentsCreate) {
		return deny(GuardCreate, "missing permission %s", domain.PermAppointmentsCreate)
	}
	if actor.IsSpecialist() {
		rule := rules.Check(domain.RuleSpecialistCanCreate)
		if rule.Exists && !rule.Enabled {
			return deny(GuardCreate, "specialists are not allowed to create appointments in this business")
		}
	}
	return allow(GuardCreate)
}

// CanEdit проверяет право изменить запись
func (g Guards) CanEdit(actor domain.Actor, appt *domain.Appointment) GuardResult {
	if !actor.Permissions.HasPermission(domain.PermAppointmentsEdit) {
		return deny(GuardEdit, "missing permission %s", domain.PermAppointmentsEdit)
	}
	if r, ok := checkScope(GuardEdit, actor, appt); !ok {
		return r
	}
	if actor.IsSpecialist() && appt.SpecialistID != actor.ID {
		return deny(GuardEdit, "specialists can only edit their own appointments")
	}
	if appt.Status.IsTerminal() {
		return deny(GuardEdit, "appointment is %s and can no longer be edited", appt.Status)
	}
	return allow(GuardEdit)
}

// CanCancel проверяет право отменить запись.
// now передается снаружи и читается один раз на проверку.
func (g Guards) CanCancel(actor domain.Actor, appt *domain.Appointment, rules domain.RuleSet, now time.Time) GuardResult {
	if !actor.Permissions.HasPermission(domain.PermAppointmentsCancel) {
		return deny(GuardCancel, "missing permission %s", domain.PermAppointmentsCancel)
	}
	if r, ok := checkScope(GuardCancel, actor, appt); !ok {
		return r
	}
	if appt.Status.IsTerminal() {
		return deny(GuardCancel, "appointment is %s and cannot be canceled", appt.Status)
	}

	rule := rules.Check(domain.RuleEnableCancellation)
	if rule.IsActive() {
		required := g.defaultCancellationHours
		if v, ok := rule.IntValue(); ok && v > 0 {
			required = v
		}
		hoursUntil := appt.StartTime.Sub(now).Hours()
		if hoursUntil < float64(required) {
			return deny(GuardCancel,
				"appointments must be canceled at least %d hours in advance (%.1f hours left)",
				required, hoursUntil)
		}
	}
	return allow(GuardCancel)
}

// CanComplete проверяет, можно ли завершить запись.
// Порядок проверок фиксирован: права, бизнес, статус, согласие, фото, оплата.
func (g Guards) CanComplete(actor domain.Actor, appt *domain.Appointment, rules domain.RuleSet) GuardResult {
	if !actor.Permissions.HasPermission(domain.PermAppointmentsComplete) {
		return deny(GuardComplete, "missing permission %s", domain.PermAppointmentsComplete)
	}
	if r, ok := checkScope(GuardComplete, actor, appt); !ok {
		return r
	}
	if appt.Status != domain.StatusInProgress {
		return deny(GuardComplete, "only appointments in progress can be completed, current status is %s", appt.Status)
	}
	if rules.IsActive(domain.RuleRequiresConsentForCompletion) && !appt.HasConsent {
		return deny(GuardComplete, "client consent is required before completing the appointment")
	}
	if rules.IsActive(domain.RuleRequiresEvidencePhotos) && len(appt.EvidencePhotos) == 0 {
		return deny(GuardComplete, "at least one evidence photo is required before completing the appointment")
	}
	if rules.IsActive(domain.RuleRequiresFullPayment) && appt.PaidAmount.LessThan(appt.TotalAmount) {
		return deny(GuardComplete, "full payment is required before completing the appointment, outstanding %s",
			appt.OutstandingAmount().StringFixed(domain.DefaultCurrencyPlaces))
	}
	return allow(GuardComplete)
}

// CanResumeCompletion проверяет право довести до конца уже завершенную запись,
// например начислить комиссию, которую не удалось сохранить после коммита
func (g Guards) CanResumeCompletion(actor domain.Actor, appt *domain.Appointment) GuardResult {
	if !actor.Permissions.HasPermission(domain.PermAppointmentsComplete) {
		return deny(GuardComplete, "missing permission %s", domain.PermAppointmentsComplete)
	}
	if r, ok := checkScope(GuardComplete, actor, appt); !ok {
		return r
	}
	if appt.Status != domain.StatusCompleted {
		return deny(GuardComplete, "appointment is %s, not completed", appt.Status)
	}
	return allow(GuardComplete)
}

// CanCloseWithPayment проверяет право закрыть запись с оплатой
func (g Guards) CanCloseWithPayment(actor domain.Actor) GuardResult {
	if !actor.Permissions.HasPermission(domain.PermAppointmentsCloseWithPayment) {
		return deny(GuardComplete, "missing permission %s", domain.PermAppointmentsCloseWithPayment)
	}
	return allow(GuardComplete)
}

// checkScope единственная проверка мультиарендности: запись должна принадлежать бизнесу пользователя
func checkScope(guard string, actor domain.Actor, appt *domain.Appointment) (GuardResult, bool) {
	if appt.BusinessID != actor.BusinessID {
		return deny(guard, "appointment belongs to another business"), false
	}
	return GuardResult{}, true
}
