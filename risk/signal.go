package risk

import "time"

type SignalType string

const (
	RapidWithdrawal   SignalType = "RAPID_WITHDRAWAL"
	MultipleLogins    SignalType = "MULTIPLE_LOGINS" // reserved, no rule produces it yet
	OddHours          SignalType = "ODD_HOURS"
	DeviceChange      SignalType = "DEVICE_CHANGE" // reserved, no rule produces it yet
	HighValueTransfer SignalType = "HIGH_VALUE_TRANSFER"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityCritical Severity = "CRITICAL"
)

// Signal is the audit record of a triggered rule. Once appended to a
// session's log it is never modified.
type Signal struct {
	ID          string
	Type        SignalType
	Severity    Severity
	Time        time.Time
	Description string
}

type Verdict string

const (
	Allow Verdict = "ALLOW"
	Block Verdict = "BLOCK"
)
