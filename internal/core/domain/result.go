package domain

import "time"

// ActionName identifies a dashboard action.
type ActionName string

const (
	ActionBTCPrice      ActionName = "btc_price"
	ActionETHPrice      ActionName = "eth_price"
	ActionWeather       ActionName = "weather"
	ActionNews          ActionName = "news"
	ActionUptime        ActionName = "uptime"
	ActionPDFSummary    ActionName = "pdf_summary"
	ActionBackup        ActionName = "backup"
	ActionEmail         ActionName = "email"
	ActionMachineReport ActionName = "machine_report"
	ActionTask          ActionName = "task"
)

// AllActions lists every action in display order.
var AllActions = []ActionName{
	ActionBTCPrice,
	ActionETHPrice,
	ActionWeather,
	ActionNews,
	ActionUptime,
	ActionPDFSummary,
	ActionBackup,
	ActionEmail,
	ActionMachineReport,
	ActionTask,
}

// Valid reports whether a is a known action.
func (a ActionName) Valid() bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}
	return false
}

// Result is what every action returns. Formatting is left to the caller.
type Result struct {
	Action    ActionName    `json:"action"`
	OK        bool          `json:"ok"`
	Kind      ErrorKind     `json:"kind,omitempty"`
	Message   string        `json:"message"`
	Value     *float64      `json:"value,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// Nested holds results of actions run on behalf of this one, such as a triggered task.
	Nested []Result `json:"nested,omitempty"`
}

// Success builds a successful result.
func Success(action ActionName, msg string) Result {
	return Result{Action: action, OK: true, Message: msg}
}

// SuccessValue builds a successful result carrying a numeric value.
func SuccessValue(action ActionName, value float64, msg string) Result {
	return Result{Action: action, OK: true, Message: msg, Value: &value}
}

// Failure builds a failed result with an explicit message.
func Failure(action ActionName, kind ErrorKind, msg string) Result {
	return Result{Action: action, Kind: kind, Message: msg}
}

// FailureFromError builds a failed result from err, using its message verbatim.
func FailureFromError(action ActionName, err error) Result {
	kind := KindOf(err)
	if kind == KindNone {
		kind = KindApplication
	}
	return Result{Action: action, Kind: kind, Message: err.Error()}
}
