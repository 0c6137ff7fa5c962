package api

import (
	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mapError turns a call error into a taxonomy sentinel when the server sent
// one, and into a *common.RemoteServiceError otherwise.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return &common.RemoteServiceError{Kind: common.RemoteUnknown, Message: err.Error(), Err: err}
	}
	if sentinel, ok := rpc.ErrorFromStatus(st); ok {
		return sentinel
	}

	kind := common.RemoteUnknown
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		kind = common.RemoteUnavailable
	case codes.AlreadyExists:
		kind = common.RemoteConflict
	case codes.NotFound:
		kind = common.RemoteNotFound
	case codes.PermissionDenied:
		kind = common.RemotePermissionDenied
	}
	return &common.RemoteServiceError{Kind: kind, Message: st.Message(), Err: err}
}
