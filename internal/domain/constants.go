package domain

// Default configuration values
const (
	DefaultCancellationLeadHours = 24
	DefaultCurrencyPlaces        = 2
)

// Business validation constants
const (
	MinBreakMinutes             = 15
	MaxBreakMinutes             = 180
	MaxCancellationReasonLength = 500
	MaxNotesLength              = 500
	MaxEvidencePhotos           = 10
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// NonTerminalStatuses statuses from which a cancellation is possible
var NonTerminalStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
}
