package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus метрик сервиса
// Все методы безопасны для вызова на nil (метрики выключены)
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration   *prometheus.HistogramVec
	DBOpenConnections *prometheus.GaugeVec

	// Доменные метрики
	AppointmentTransitions   *prometheus.CounterVec
	GuardDenials             *prometheus.CounterVec
	ScheduleValidationErrors *prometheus.CounterVec
	CommissionsGenerated     prometheus.Counter
}

// New создает и регистрирует метрики в глобальном реестре
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики в указанном реестре (используется в тестах)
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests",
			ConstLabels: constLabels,
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "path"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Duration of database queries",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation", "status"}),
		DBOpenConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections",
			Help:        "Database connection pool state",
			ConstLabels: constLabels,
		}, []string{"state"}),

		AppointmentTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointment_transitions_total",
			Help:        "Appointment status transitions by outcome",
			ConstLabels: constLabels,
		}, []string{"from", "to", "result"}),
		GuardDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointment_guard_denials_total",
			Help:        "Guard evaluations that denied an action",
			ConstLabels: constLabels,
		}, []string{"guard"}),
		ScheduleValidationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "schedule_validation_errors_total",
			Help:        "Schedule validation errors by code",
			ConstLabels: constLabels,
		}, []string{"code"}),
		CommissionsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name:        "commissions_generated_total",
			Help:        "Commission records generated on appointment completion",
			ConstLabels: constLabels,
		}),
	}
}

// ObserveHTTPRequest фиксирует HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueryDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// SetDBConnections обновляет состояние пула соединений
func (m *Metrics) SetDBConnections(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.DBOpenConnections.WithLabelValues("open").Set(float64(open))
	m.DBOpenConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DBOpenConnections.WithLabelValues("idle").Set(float64(idle))
}

// ObserveTransition фиксирует попытку перехода статуса записи
func (m *Metrics) ObserveTransition(from, to, result string) {
	if m == nil {
		return
	}
	m.AppointmentTransitions.WithLabelValues(from, to, result).Inc()
}

// ObserveGuardDenial фиксирует отказ guard-а
func (m *Metrics) ObserveGuardDenial(guard string) {
	if m == nil {
		return
	}
	m.GuardDenials.WithLabelValues(guard).Inc()
}

// ObserveScheduleErrors фиксирует ошибки валидации расписания
func (m *Metrics) ObserveScheduleErrors(codes []string) {
	if m == nil {
		return
	}
	for _, code := range codes {
		m.ScheduleValidationErrors.WithLabelValues(code).Inc()
	}
}

// ObserveCommissionGenerated фиксирует созданную комиссию
func (m *Metrics) ObserveCommissionGenerated() {
	if m == nil {
		return
	}
	m.CommissionsGenerated.Inc()
}
