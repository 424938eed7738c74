package error

import "google.golang.org/grpc/codes"

// Code represents a structured error code for categorizing errors
type Code string

const (
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Files and storage
	CodeFileNotFound Code = "FILE_NOT_FOUND"
	CodeIOFailed     Code = "IO_FAILED"
	CodeStoreFailed  Code = "STORE_FAILED"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Language front end
	CodeParseFailed Code = "PARSE_FAILED"
	CodeTypeFailed  Code = "TYPE_FAILED"

	// Service
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeTooLarge           Code = "TOO_LARGE"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeFileNotFound, CodeIOFailed, CodeStoreFailed:
		return "storage"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	case CodeParseFailed, CodeTypeFailed:
		return "language"
	case CodeServiceUnavailable, CodeTooLarge, CodeTimeout:
		return "service"
	default:
		return "generic"
	}
}

// GRPCCode maps the error code onto a gRPC status code
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeInvalidInput, CodeParseFailed, CodeTypeFailed, CodeInvalidConfig:
		return codes.InvalidArgument
	case CodeFileNotFound:
		return codes.NotFound
	case CodeTooLarge:
		return codes.ResourceExhausted
	case CodeTimeout:
		return codes.DeadlineExceeded
	case CodeServiceUnavailable, CodeStoreFailed:
		return codes.Unavailable
	case CodeUnknown:
		return codes.Unknown
	default:
		return codes.Internal
	}
}
