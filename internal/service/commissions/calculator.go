package commissions

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Commission результат расчета комиссии
type Commission struct {
	Amount     decimal.Decimal
	Percentage decimal.Decimal
	// RateSource откуда взята ставка: specialist, business, service или none
	RateSource string
}

// Calculator чистый калькулятор комиссий
type Calculator struct {
	places int32
}

// NewCalculator создает калькулятор; places - число знаков минимальной денежной единицы
func NewCalculator(places int32) Calculator {
	if places < 0 {
		places = domain.DefaultCurrencyPlaces
	}
	return Calculator{places: places}
}

// Compute рассчитывает комиссию за завершенную запись.
//
// GENERAL       - ставка специалиста, иначе ставка бизнеса по умолчанию
// POR_SERVICIO  - ставка услуги; без ставки услуги комиссия нулевая
// MIXTO         - ставка услуги, иначе ставка бизнеса по умолчанию
//
// Сумма = totalAmount * percentage / 100, округление half-up до places знаков.
func (c Calculator) Compute(
	appt *domain.Appointment,
	service *domain.ServiceInfo,
	rate domain.SpecialistRate,
	mode domain.CommissionMode,
) Commission {
	percentage, source := selectRate(service, rate, mode)
	amount := appt.TotalAmount.Mul(percentage).Div(hundred).Round(c.places)
	return Commission{
		Amount:     amount,
		Percentage: percentage,
		RateSource: source,
	}
}

func selectRate(service *domain.ServiceInfo, rate domain.SpecialistRate, mode domain.CommissionMode) (decimal.Decimal, string) {
	var serviceRate *decimal.Decimal
	if service != nil {
		serviceRate = service.CommissionPercentage
	}

	switch mode {
	case domain.CommissionModePerService:
		if serviceRate != nil {
			return *serviceRate, "service"
		}
		return decimal.Zero, "none"
	case domain.CommissionModeMixed:
		if serviceRate != nil {
			return *serviceRate, "service"
		}
		return rate.BusinessDefault, "business"
	default:
		if rate.Override != nil {
			return *rate.Override, "specialist"
		}
		return rate.BusinessDefault, "business"
	}
}

// Summary сводка комиссий по статусам
type Summary struct {
	Pending        int             `json:"pending"`
	TotalPending   decimal.Decimal `json:"totalPending"`
	Requested      int             `json:"requested"`
	TotalRequested decimal.Decimal `json:"totalRequested"`
	Paid           int             `json:"paid"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
}

// Summarize группирует комиссии по статусам
func Summarize(records []*domain.CommissionRecord) Summary {
	s := Summary{
		TotalPending:   decimal.Zero,
		TotalRequested: decimal.Zero,
		TotalPaid:      decimal.Zero,
	}
	for _, r := range records {
		switch r.Status {
		case domain.CommissionPending:
			s.Pending++
			s.TotalPending = s.TotalPending.Add(r.CommissionAmount)
		case domain.CommissionPaymentRequested:
			s.Requested++
			s.TotalRequested = s.TotalRequested.Add(r.CommissionAmount)
		case domain.CommissionPaid:
			s.Paid++
			s.TotalPaid = s.TotalPaid.Add(r.CommissionAmount)
		}
	}
	return s
}

// SelectedTotal сумма комиссий с ID из ids; неизвестные ID игнорируются, повторы учитываются один раз
func SelectedTotal(records []*domain.CommissionRecord, ids []int64) decimal.Decimal {
	selected := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}

	total := decimal.Zero
	for _, r := range records {
		if _, ok := selected[r.ID]; ok {
			total = total.Add(r.CommissionAmount)
			delete(selected, r.ID)
		}
	}
	return total
}
