package diag

import "strings"

// Severity defines the importance of a diagnostic. Higher values are more
// severe; Bag.Sort and HasErrors rely on that order.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Label is the lowercase form used by one-line output.
func (s Severity) Label() string {
	return strings.ToLower(s.String())
}

// WarningPolicy decides what happens to SevWarning diagnostics.
type WarningPolicy uint8

const (
	WarningsKeep WarningPolicy = iota
	WarningsIgnore
	WarningsAsErrors
)

// apply returns the adjusted severity and whether the diagnostic survives.
func (p WarningPolicy) apply(sev Severity) (Severity, bool) {
	if sev != SevWarning {
		return sev, true
	}
	switch p {
	case WarningsIgnore:
		return sev, false
	case WarningsAsErrors:
		return SevError, true
	}
	return sev, true
}
