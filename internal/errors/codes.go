package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code classifies an error. Each value has a fixed gRPC code and HTTP status.
type Code string

// Error codes
const (
	CodeOK                 Code = "OK"
	CodeCanceled           Code = "CANCELED"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeDeadlineExceeded   Code = "DEADLINE_EXCEEDED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodePermissionDenied   Code = "PERMISSION_DENIED"
	CodeResourceExhausted  Code = "RESOURCE_EXHAUSTED"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeAborted            Code = "ABORTED"
	CodeOutOfRange         Code = "OUT_OF_RANGE"
	CodeUnimplemented      Code = "UNIMPLEMENTED"
	CodeInternal           Code = "INTERNAL"
	CodeUnavailable        Code = "UNAVAILABLE"
	CodeDataLoss           Code = "DATA_LOSS"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
)

type codeMapping struct {
	grpc codes.Code
	http int
}

// Turn, claim and version conflicts all surface as 409 so a web client
// refreshes and retries the same way for each.
var codeTable = map[Code]codeMapping{
	CodeOK:                 {codes.OK, http.StatusOK},
	CodeCanceled:           {codes.Canceled, http.StatusRequestTimeout},
	CodeInvalidArgument:    {codes.InvalidArgument, http.StatusBadRequest},
	CodeDeadlineExceeded:   {codes.DeadlineExceeded, http.StatusGatewayTimeout},
	CodeNotFound:           {codes.NotFound, http.StatusNotFound},
	CodeAlreadyExists:      {codes.AlreadyExists, http.StatusConflict},
	CodePermissionDenied:   {codes.PermissionDenied, http.StatusForbidden},
	CodeResourceExhausted:  {codes.ResourceExhausted, http.StatusTooManyRequests},
	CodeFailedPrecondition: {codes.FailedPrecondition, http.StatusConflict},
	CodeAborted:            {codes.Aborted, http.StatusConflict},
	CodeOutOfRange:         {codes.OutOfRange, http.StatusBadRequest},
	CodeUnimplemented:      {codes.Unimplemented, http.StatusNotImplemented},
	CodeInternal:           {codes.Internal, http.StatusInternalServerError},
	CodeUnavailable:        {codes.Unavailable, http.StatusServiceUnavailable},
	CodeDataLoss:           {codes.DataLoss, http.StatusInternalServerError},
	CodeUnauthenticated:    {codes.Unauthenticated, http.StatusUnauthorized},
}

var grpcTable = func() map[codes.Code]Code {
	out := make(map[codes.Code]Code, len(codeTable))
	for code, m := range codeTable {
		out[m.grpc] = code
	}
	return out
}()

func (c Code) String() string {
	return string(c)
}

// HTTPStatus returns the status a web handler answers with
func (c Code) HTTPStatus() int {
	if m, ok := codeTable[c]; ok {
		return m.http
	}
	return http.StatusInternalServerError
}

// GRPCCode returns the corresponding gRPC code
func (c Code) GRPCCode() codes.Code {
	if m, ok := codeTable[c]; ok {
		return m.grpc
	}
	return codes.Unknown
}

// codeFromGRPC maps a gRPC code back; codes.Unknown becomes CodeInternal
func codeFromGRPC(c codes.Code) Code {
	if code, ok := grpcTable[c]; ok {
		return code
	}
	return CodeInternal
}
