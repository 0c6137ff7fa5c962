package rpc

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errorCodes maps taxonomy sentinels to status codes. The status message is
// the error text, which starts with the sentinel text, so the client can
// recover the sentinel from code and message.
var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrDuplicateAccount, codes.AlreadyExists},
	{common.ErrConflict, codes.AlreadyExists},
	{common.ErrUserNotFound, codes.NotFound},
	{common.ErrAccountNotFound, codes.NotFound},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrRefreshTokenExpired, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrNotAuthenticated, codes.Unauthenticated},
	{common.ErrorUnauthorized, codes.Unauthenticated},
	{common.ErrPermissionDenied, codes.PermissionDenied},
	{common.ErrValidation, codes.InvalidArgument},
	{common.ErrInvalidTransition, codes.FailedPrecondition},
	{common.ErrInvalidOrExpiredToken, codes.FailedPrecondition},
	{common.ErrTooManyRequests, codes.ResourceExhausted},
	{common.ErrGenerationService, codes.Unavailable},
}

// StatusFromError converts a service error into a gRPC status error.
// Errors outside the taxonomy become codes.Internal without details.
func StatusFromError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return status.Error(e.code, err.Error())
		}
	}
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}

// ErrorFromStatus recovers the taxonomy sentinel carried by a status error.
// It returns false when the status matches none of them.
func ErrorFromStatus(st *status.Status) (error, bool) {
	msg := st.Message()
	for _, e := range errorCodes {
		if e.code != st.Code() || !strings.HasPrefix(msg, e.err.Error()) {
			continue
		}
		if msg == e.err.Error() {
			return e.err, true
		}
		return &remoteDetail{sentinel: e.err, msg: msg}, true
	}
	return nil, false
}

// remoteDetail keeps the server's message while matching the sentinel.
type remoteDetail struct {
	sentinel error
	msg      string
}

func (e *remoteDetail) Error() string { return e.msg }
func (e *remoteDetail) Unwrap() error { return e.sentinel }
