package errors

import (
	"errors"
)

// As is errors.As narrowed to *Error
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// Is is errors.Is; *Error matches by code
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func lookup(err error) (*Error, bool) {
	var e *Error
	if err == nil || !errors.As(err, &e) {
		return nil, false
	}
	return e, true
}

// GetCode extracts the code; plain errors are CodeInternal
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	if e, ok := lookup(err); ok {
		return e.Code
	}
	return CodeInternal
}

// GetMeta extracts metadata, nil for plain errors
func GetMeta(err error) map[string]any {
	if e, ok := lookup(err); ok {
		return e.Meta
	}
	return nil
}

// GetMessage extracts the message of an *Error or the text of a plain error
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := lookup(err); ok {
		return e.Message
	}
	return err.Error()
}

// PublicMessage is the text a player may see for err. Internal failures and
// plain errors are replaced so operator detail never leaves the server.
func PublicMessage(err error) string {
	e, ok := lookup(err)
	if !ok {
		return "internal error"
	}
	switch e.Code {
	case CodeInternal, CodeDataLoss:
		return "internal error"
	case CodeUnavailable:
		return "service unavailable"
	}
	return e.Message
}

// IsNotFound reports CodeNotFound
func IsNotFound(err error) bool { return GetCode(err) == CodeNotFound }

// IsInvalidArgument reports CodeInvalidArgument
func IsInvalidArgument(err error) bool { return GetCode(err) == CodeInvalidArgument }

// IsAlreadyExists reports CodeAlreadyExists
func IsAlreadyExists(err error) bool { return GetCode(err) == CodeAlreadyExists }

// IsPermissionDenied reports CodePermissionDenied
func IsPermissionDenied(err error) bool { return GetCode(err) == CodePermissionDenied }

// IsUnavailable reports CodeUnavailable
func IsUnavailable(err error) bool { return GetCode(err) == CodeUnavailable }

// IsUnauthenticated reports CodeUnauthenticated
func IsUnauthenticated(err error) bool { return GetCode(err) == CodeUnauthenticated }

// IsResourceExhausted reports CodeResourceExhausted
func IsResourceExhausted(err error) bool { return GetCode(err) == CodeResourceExhausted }

// IsFailedPrecondition reports CodeFailedPrecondition
func IsFailedPrecondition(err error) bool { return GetCode(err) == CodeFailedPrecondition }
