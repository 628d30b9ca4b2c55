package diagnostic

import (
	"fmt"
	"strconv"
	"strings"
)

// Severity is an RFC 5424 log level. Lower values are more severe.
type Severity int

const (
	Emergency Severity = iota
	Alert
	Critical
	Error
	Warning
	Notice
	Info
	Debug
)

var severityNames = [...]string{
	Emergency: "EMERGENCY",
	Alert:     "ALERT",
	Critical:  "CRITICAL",
	Error:     "ERROR",
	Warning:   "WARNING",
	Notice:    "NOTICE",
	Info:      "INFO",
	Debug:     "DEBUG",
}

// String returns the upper-case label of the severity.
func (s Severity) String() string {
	if s.IsValid() {
		return severityNames[s]
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// IsValid reports whether s is within 0..7.
func (s Severity) IsValid() bool {
	return s >= Emergency && s <= Debug
}

// AtLeast reports whether s is as severe as, or more severe than, other.
func (s Severity) AtLeast(other Severity) bool {
	return s <= other
}

// ParseSeverity accepts a label (case-insensitive, "warn" and "err" short
// forms included) or a number between 0 and 7.
func ParseSeverity(value string) (Severity, error) {
	v := strings.ToUpper(strings.TrimSpace(value))
	switch v {
	case "WARN":
		return Warning, nil
	case "ERR":
		return Error, nil
	case "CRIT":
		return Critical, nil
	case "EMERG":
		return Emergency, nil
	}
	for i, name := range severityNames {
		if name == v {
			return Severity(i), nil
		}
	}
	if n, err := strconv.Atoi(v); err == nil && Severity(n).IsValid() {
		return Severity(n), nil
	}
	return 0, fmt.Errorf("invalid severity %q: must be one of emergency, alert, critical, error, warning, notice, info, debug or 0-7", value)
}
