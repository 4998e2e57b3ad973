package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/tripledger/internal/apperrors"
)

// CodeOf maps a ledger error to the Connect code reported to clients.
func CodeOf(err error) connect.Code {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code()
	}
	switch apperrors.KindOf(err) {
	case apperrors.ErrValidation:
		return connect.CodeInvalidArgument
	case apperrors.ErrNotFound:
		return connect.CodeNotFound
	case apperrors.ErrConflict:
		return connect.CodeFailedPrecondition
	case apperrors.ErrInvariant:
		return connect.CodeInternal
	}
	switch {
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	}
	return connect.CodeInternal
}

// toConnectError wraps err with its Connect code. Internal failures are not
// described to clients.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	code := CodeOf(err)
	if code == connect.CodeInternal && !errors.Is(err, apperrors.ErrInvariant) {
		return connect.NewError(code, errors.New("internal error"))
	}
	return connect.NewError(code, err)
}
