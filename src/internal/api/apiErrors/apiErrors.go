package apiErrors

import "fmt"

type ErrorCode string

const (
	BadRequest       ErrorCode = "BAD_REQUEST"
	Unauthorized     ErrorCode = "UNAUTHORIZED"
	Forbidden        ErrorCode = "FORBIDDEN"
	NotFound         ErrorCode = "NOT_FOUND"
	ValidationFailed ErrorCode = "VALIDATION_FAILED"
	Incomplete       ErrorCode = "INCOMPLETE"
	InvalidStatus    ErrorCode = "INVALID_STATUS"
	Busy             ErrorCode = "BUSY"
	UnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA"
	UploadsDisabled  ErrorCode = "UPLOADS_DISABLED"
	Timeout          ErrorCode = "TIMEOUT"
	InternalError    ErrorCode = "INTERNAL_ERROR"
)

type APIError struct {
	Code    ErrorCode
	Message string
	Details []string
}

func (e APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
