package logging

import "strings"

// Severity is one of the seven ordered logging levels. Lower values are more
// severe; enabling a level enables every severity at or below it.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarn
	SeverityInfo
	SeverityHTTP
	SeverityVerbose
	SeverityDebug
	SeveritySilly
)

var severityNames = [...]string{"error", "warn", "info", "http", "verbose", "debug", "silly"}

func (s Severity) String() string {
	if s < SeverityError || s > SeveritySilly {
		return "unknown"
	}
	return severityNames[s]
}

// Upper returns the severity name in uppercase, as rendered in log lines.
func (s Severity) Upper() string {
	return strings.ToUpper(s.String())
}

// ParseSeverity maps a severity name to its value.
func ParseSeverity(name string) (Severity, bool) {
	for i, n := range severityNames {
		if strings.EqualFold(name, n) {
			return Severity(i), true
		}
	}
	return SeverityError, false
}
