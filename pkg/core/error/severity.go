package error

// Severity represents the severity level of an error
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// SeverityFromCode determines the default severity for a code
func SeverityFromCode(code Code) Severity {
	switch code {
	case CodeInternal:
		return SeverityCritical
	case CodeStoreFailed, CodeIOFailed, CodeServiceUnavailable:
		return SeverityHigh
	case CodeInvalidInput, CodeParseFailed, CodeTypeFailed, CodeFileNotFound, CodeTooLarge:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
